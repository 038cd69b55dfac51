package config

import "time"

const (
	apiBaseURLEnvVar = "API_BASE_URL"
	apiTimeoutEnvVar = "API_TIMEOUT"

	// DefaultAPIBaseURL is the hosted backend the admin client talks to
	DefaultAPIBaseURL = "https://784c6b116829d23d.mokky.dev"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the remote API root, without a trailing slash
func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLEnvVar, DefaultAPIBaseURL)
}

func (API) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(apiTimeoutEnvVar, "10s"))
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
