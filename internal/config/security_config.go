package config

import "time"

type ConsoleConfig interface {
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetSecureCookies() bool
}

type Console struct{}

var _ ConsoleConfig = Console{}

func (Console) GetSessionCookieName() string {
	return "admin_session_id"
}

func (Console) GetMaxSessionAge() time.Duration {
	return 12 * time.Hour
}

// GetSecureCookies is off in DEV so the console works over plain http locally
func (Console) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != "DEV"
}
