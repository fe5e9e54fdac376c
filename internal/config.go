package internal

import "time"

// Config holds the environment-driven settings of the chat client.
type Config struct {
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,default=30s"`
}
