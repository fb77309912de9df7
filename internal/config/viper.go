package config

import (
	"os"

	"github.com/spf13/viper"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// ResolveAPIKey returns the provider's API key, preferring Viper
// configuration (which covers FINTAIL_-prefixed variables and config
// files) over the plain environment lookup.
func ResolveAPIKey(p Provider) string {
	if p.APIKeyEnv == "" {
		return ""
	}
	if v := GetString(p.APIKeyEnv); v != "" {
		return v
	}
	return p.APIKey()
}
