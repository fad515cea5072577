package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/tomodachin/external/config"
	"github.com/foxseedlab/tomodachin/external/discord"
	repositoryimpl "github.com/foxseedlab/tomodachin/external/repository"
	webhookimpl "github.com/foxseedlab/tomodachin/external/webhook"
	"github.com/foxseedlab/tomodachin/internal/bot"
	"github.com/foxseedlab/tomodachin/internal/config"
	discordpkg "github.com/foxseedlab/tomodachin/internal/discord"
	"github.com/foxseedlab/tomodachin/internal/match"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	registryLoadTimeout   = 30 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	match.RegisterDI(injector)
	bot.RegisterDI(injector)

	return injector
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	registry, err := do.Invoke[*match.Registry](injector)
	if err != nil {
		slog.Error("failed to resolve match registry", "error", err)
		os.Exit(1)
	}
	handler, err := do.Invoke[*bot.Handler](injector)
	if err != nil {
		slog.Error("failed to resolve bot handler", "error", err)
		os.Exit(1)
	}
	scheduler, err := do.Invoke[*match.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve scheduler", "error", err)
		os.Exit(1)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), registryLoadTimeout)
	if err := registry.Load(loadCtx); err != nil {
		cancelLoad()
		slog.Error("failed to load match registry", "error", err)
		os.Exit(1)
	}
	cancelLoad()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancelConnect()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(connectCtx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")

	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, bot.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterSlashCommandHandler(handler.HandleSlashCommand)
	dc.RegisterComponentHandler(handler.HandleComponent)
	dc.RegisterAutocompleteHandler(handler.HandleAutocomplete)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID,
		"commands", []string{"naisen-create", "naisen-delete", "naisen-absent"})
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	handler.RestoreAnnouncements()

	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	scheduler.Start(schedCtx)

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
}
