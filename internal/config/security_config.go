package config

import "time"

type SecurityConfig interface {
	GetTabCookieName() string
	GetMaxTabIdle() time.Duration
	GetTokenRetention() time.Duration
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetTabCookieName() string {
	return "makita_tab"
}

// GetMaxTabIdle is how long an unused tab context survives before its
// in-memory session is swept. The persisted token outlives it until
// GetTokenRetention runs out.
func (Security) GetMaxTabIdle() time.Duration {
	return time.Duration(GetEnvInt("TAB_MAX_IDLE_MINUTES", 30)) * time.Minute
}

// GetTokenRetention is how long a stored token is kept after it was last set
func (Security) GetTokenRetention() time.Duration {
	return time.Duration(GetEnvInt("TOKEN_RETENTION_HOURS", 24)) * time.Hour
}

func (Security) GetSecureCookies() bool {
	return GetEnv("SECURE_COOKIES", "false") == "true"
}
