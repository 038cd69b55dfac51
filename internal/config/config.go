package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	ConsoleConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type StorageConfig interface {
	GetTokenFile() string
	GetTokenPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Console
}

func New() Config {
	return mainConfig{}
}
