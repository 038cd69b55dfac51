package config

import (
	"os"
	"path/filepath"
)

type Storage struct{}

var _ StorageConfig = Storage{}

// GetTokenFile is where the CLI keeps the session token between invocations
func (Storage) GetTokenFile() string {
	if f := os.Getenv("TOKEN_FILE"); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".materials-admin", "token")
	}
	return filepath.Join(home, ".materials-admin", "token")
}

// GetTokenPassphrase seals the token file when set
func (Storage) GetTokenPassphrase() string {
	return GetEnv("TOKEN_PASSPHRASE", "")
}

// GetRedisAddr enables Redis-backed token storage in the console when set
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}
