package bot

import (
	"github.com/foxseedlab/tomodachin/internal/config"
	"github.com/foxseedlab/tomodachin/internal/discord"
	"github.com/foxseedlab/tomodachin/internal/match"
	"github.com/foxseedlab/tomodachin/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*match.Registry](i)
		dc := do.MustInvoke[discord.Client](i)
		wh := do.MustInvoke[webhook.Sender](i)
		return NewHandler(cfg, registry, dc, wh), nil
	})
	do.Provide(injector, func(i do.Injector) (*match.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*match.Registry](i)
		dc := do.MustInvoke[discord.Client](i)
		handler := do.MustInvoke[*Handler](i)
		return match.NewScheduler(registry, dc, handler, cfg.SchedulerTick(), cfg.ReminderLead(), cfg.Location()), nil
	})
}
