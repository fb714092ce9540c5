package env

import (
	"os"
	"strings"
)

// Get returns the environment value for key, or fallback when unset/blank.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// Bool reports whether the environment value for key is a truthy flag.
func Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}
