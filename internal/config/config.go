// Package config provides the process-wide configuration, loaded once at
// startup and passed explicitly to each component.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	MySQLURI        string // e.g. root:root@tcp(localhost:3306)
	MySQLDB         string
	RedisAddr       string // optional; empty disables the idempotency guard
	JWTSecret       string
	JWTAlgorithm    string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
}

// DSN assembles the driver connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("%s/%s?parseTime=true", c.MySQLURI, c.MySQLDB)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load collects configuration from environment variables. Every missing
// required key is reported; a partial configuration is never returned.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		MySQLURI:        os.Getenv("MYSQL_URI"),
		MySQLDB:         os.Getenv("MYSQL_DB"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTAlgorithm:    os.Getenv("JWT_ALGORITHM"),
		TokenTTL:        time.Duration(atoienv("TOKEN_TTL_MINUTES", 0)) * time.Minute,
		ShutdownTimeout: time.Duration(atoienv("SHUTDOWN_TIMEOUT", 5)) * time.Second,
	}

	var missing []string
	if cfg.MySQLURI == "" {
		missing = append(missing, "MYSQL_URI")
	}
	if cfg.MySQLDB == "" {
		missing = append(missing, "MYSQL_DB")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.JWTAlgorithm == "" {
		missing = append(missing, "JWT_ALGORITHM")
	}
	if cfg.TokenTTL <= 0 {
		missing = append(missing, "TOKEN_TTL_MINUTES")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
