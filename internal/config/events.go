package config

import (
	"time"
)

type EventsConfig struct {
	BufferSize     int           `yaml:"buffer_size"`
	Workers        int           `yaml:"workers"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

type JobsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ReconcileCron string `yaml:"reconcile_cron"`
}

func loadEventsConfig() *EventsConfig {
	return &EventsConfig{
		BufferSize:     getEnvAsInt("EVENTS_BUFFER_SIZE", 1024),
		Workers:        getEnvAsInt("EVENTS_WORKERS", 4),
		HandlerTimeout: getEnvAsDuration("EVENTS_HANDLER_TIMEOUT", 10*time.Second),
	}
}

func loadJobsConfig() *JobsConfig {
	return &JobsConfig{
		Enabled:       getEnvAsBool("JOBS_ENABLED", true),
		ReconcileCron: getEnv("RECONCILE_CRON", "@every 6h"),
	}
}
