package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                  string
	DatabaseURL          string
	DiscordToken         string
	DiscordGuildID       string
	Timezone             string
	SchedulerTickSeconds int
	ReminderLeadMinutes  int
	PredefinedGames      []string
	MatchEventWebhookURL string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.SchedulerTickSeconds <= 0 {
		return fmt.Errorf("SCHEDULER_TICK_SECONDS must be positive, got %d", c.SchedulerTickSeconds)
	}
	if c.ReminderLeadMinutes <= 0 {
		return fmt.Errorf("REMINDER_LEAD_MINUTES must be positive, got %d", c.ReminderLeadMinutes)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "TIMEZONE", value: c.Timezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) SchedulerTick() time.Duration {
	return time.Duration(c.SchedulerTickSeconds) * time.Second
}

func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
