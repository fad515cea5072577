package match

import (
	"github.com/foxseedlab/tomodachin/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Registry, error) {
		repo := do.MustInvoke[repository.Store](i)
		return NewRegistry(repo), nil
	})
}
