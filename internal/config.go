package internal

import (
	"fmt"
	"time"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	SharedLogKey      string        `env:"SHARED_LOG_KEY,default=safespace_messages"`
	PollInterval      time.Duration `env:"POLL_INTERVAL,default=1s"`
	HealthInterval    time.Duration `env:"HEALTH_INTERVAL,default=5s"`
	ToxicityThreshold float64       `env:"TOXICITY_THRESHOLD,default=0.7"`
	RulesEnabled      bool          `env:"RULES_ENABLED,default=true"`
	OptimisticAppend  bool          `env:"OPTIMISTIC_APPEND,default=true"`
	AppendRetries     int           `env:"APPEND_RETRIES,default=3"`
	SearchLimit       *int          `env:"SEARCH_LIMIT"`
	DebugPort         *int          `env:"DEBUG_PORT"`
}

func (c Config) Validate() error {
	if c.ToxicityThreshold <= 0 || c.ToxicityThreshold >= 1 {
		return fmt.Errorf("TOXICITY_THRESHOLD must be in (0, 1), got %v", c.ToxicityThreshold)
	}
	if c.AppendRetries < 0 {
		return fmt.Errorf("APPEND_RETRIES must not be negative, got %d", c.AppendRetries)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.PollInterval)
	}
	return nil
}
