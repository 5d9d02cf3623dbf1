// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/RaghavenderSingh/hyperbotbackend/internal/solana"
)

// LoadEnv loads a .env file if present. Existing environment variables win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Getenv returns the environment value or a default when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetenvDuration returns the environment value parsed as a duration, or a
// default when unset or unparsable.
func GetenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// ParseEndpoints turns a comma-separated list of HTTP RPC URLs into
// endpoints, in the given order. WebSocket URLs are derived from the HTTP
// ones (https becomes wss).
func ParseEndpoints(list string) ([]solana.Endpoint, error) {
	var eps []solana.Endpoint

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		u, err := url.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint %q: %w", part, err)
		}

		ws := *u
		switch u.Scheme {
		case "https":
			ws.Scheme = "wss"
		case "http":
			ws.Scheme = "ws"
		default:
			return nil, fmt.Errorf("endpoint %q: unsupported scheme %q", part, u.Scheme)
		}

		eps = append(eps, solana.Endpoint{
			Name:    u.Hostname(),
			HTTPURL: part,
			WSURL:   ws.String(),
		})
	}

	if len(eps) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}

	return eps, nil
}
