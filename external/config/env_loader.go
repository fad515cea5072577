package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/tomodachin/internal/config"
)

type envConfig struct {
	Env                  string   `env:"ENV" envDefault:"production"`
	DatabaseURL          string   `env:"DATABASE_URL,required"`
	DiscordToken         string   `env:"DISCORD_TOKEN,required"`
	DiscordGuildID       string   `env:"DISCORD_GUILD_ID,required"`
	Timezone             string   `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	SchedulerTickSeconds int      `env:"SCHEDULER_TICK_SECONDS" envDefault:"60"`
	ReminderLeadMinutes  int      `env:"REMINDER_LEAD_MINUTES" envDefault:"10"`
	PredefinedGames      []string `env:"PREDEFINED_GAMES" envSeparator:","`
	MatchEventWebhookURL string   `env:"MATCH_EVENT_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                  raw.Env,
		DatabaseURL:          raw.DatabaseURL,
		DiscordToken:         raw.DiscordToken,
		DiscordGuildID:       raw.DiscordGuildID,
		Timezone:             raw.Timezone,
		SchedulerTickSeconds: raw.SchedulerTickSeconds,
		ReminderLeadMinutes:  raw.ReminderLeadMinutes,
		PredefinedGames:      raw.PredefinedGames,
		MatchEventWebhookURL: raw.MatchEventWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
