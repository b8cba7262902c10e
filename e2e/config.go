package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_TOXICITY_THRESHOLD tunes how aggressive the statistical layer is
	ToxicityThreshold float64 `envconfig:"E2E_TOXICITY_THRESHOLD" default:"0.7"`
	// E2E_POLL_INTERVAL drives the polling fallback during the sync scenarios
	PollInterval  string `envconfig:"E2E_POLL_INTERVAL" default:"20ms"`
	AppendRetries int    `envconfig:"E2E_APPEND_RETRIES" default:"3"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
