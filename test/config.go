package test

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config exposes the integration-test knobs. Defaults keep the scenario
// runnable without any environment setup.
type Config struct {
	// IT_SNAPSHOT_WAIT bounds how long the scenario waits for a snapshot
	// to propagate through the fan-out.
	SnapshotWait time.Duration `envconfig:"IT_SNAPSHOT_WAIT" default:"2s"`
	// IT_AUTH_TOKEN_DURATION controls the lifetime of issued session tokens.
	AuthTokenDuration time.Duration `envconfig:"IT_AUTH_TOKEN_DURATION" default:"1h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
