package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Host             string
	Port             int
	KeepAliveTimeout time.Duration
}

// GetServerConfig reads the listen address from HOST and PORT. Everything
// else is intentionally not configurable through the environment.
func GetServerConfig() (*ServerConfig, error) {
	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	port := 13241
	if raw := os.Getenv("PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PORT: %w", err)
		}
		port = parsed
	}

	return &ServerConfig{
		Host: host,
		Port: port,
		// Long syntheses stream for minutes; the transport keep-alive is the
		// only bound on total request lifetime.
		KeepAliveTimeout: 600 * time.Second,
	}, nil
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
