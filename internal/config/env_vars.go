package config

import (
	"fmt"
	"strings"
)

func (s *Settings) GetEnv() string {
	return s.Env
}

func (s *Settings) GetAppName() string {
	return s.AppName
}

// GetPort returns the listen address, e.g. ":8080"
func (s *Settings) GetPort() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return fmt.Sprintf(":%s", s.Port)
}

// GetBaseURL returns the base URL for the service (e.g., "https://auth.example.com")
// It is the default issuer and the prefix of the discovery document endpoints.
func (s *Settings) GetBaseURL() string {
	return strings.TrimSuffix(s.BaseURL, "/")
}

func (s *Settings) GetLogLevel() string {
	return s.LogLevel
}
