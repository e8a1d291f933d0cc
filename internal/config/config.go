package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Store
	Security
}

// New loads a .env file from the working directory when one exists and
// returns the env-backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
