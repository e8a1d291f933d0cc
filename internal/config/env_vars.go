package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	apiBaseURLVar    = "API_BASE_URL"
	apiTimeoutVar    = "API_TIMEOUT_SECONDS"
	defaultAPIOrigin = "http://127.0.0.1:5000"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Makita Conecta")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the origin of the remote adoption API (e.g. "http://127.0.0.1:5000").
// Every API request is resolved against it.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, defaultAPIOrigin), "/")
}

func (API) GetAPITimeout() time.Duration {
	return time.Duration(GetEnvInt(apiTimeoutVar, 10)) * time.Second
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
