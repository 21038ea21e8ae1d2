// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/benbeisheim/ochello-backend/internal/rules"
	"go.uber.org/zap/zapcore"
)

// ArchiveInMemory selects a process-local archive.
const ArchiveInMemory = ":memory:"

type Config struct {
	Addr                string
	AllowedOrigins      []string
	AssetBase           string
	// ArchiveDir is where finished games are kept. Empty disables the archive and
	// ArchiveInMemory keeps it for the life of the process.
	ArchiveDir          string
	EnPassant           rules.EnPassantRule
	LogLevel            zapcore.Level
	MatchmakingInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:                ":3000",
		AllowedOrigins:      []string{"http://localhost:5173"},
		AssetBase:           "/img/",
		EnPassant:           rules.EnPassantReference,
		LogLevel:            zapcore.InfoLevel,
		MatchmakingInterval: time.Second,
	}
}

// Load reads the OCHELLO_* environment variables over the defaults.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("OCHELLO_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("OCHELLO_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
		if len(cfg.AllowedOrigins) == 0 {
			return cfg, fmt.Errorf("OCHELLO_ALLOWED_ORIGINS: no origins in %q", v)
		}
	}
	if v, ok := lookup(getenv, "OCHELLO_ASSET_BASE"); ok {
		cfg.AssetBase = v
	}
	if v := getenv("OCHELLO_ARCHIVE_DIR"); v != "" {
		cfg.ArchiveDir = v
	}
	if v := getenv("OCHELLO_EN_PASSANT"); v != "" {
		rule := rules.EnPassantRule(strings.ToLower(v))
		if !rule.Valid() {
			return cfg, fmt.Errorf("OCHELLO_EN_PASSANT: want %q or %q, got %q", rules.EnPassantReference, rules.EnPassantStrict, v)
		}
		cfg.EnPassant = rule
	}
	if v := getenv("OCHELLO_LOG_LEVEL"); v != "" {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("OCHELLO_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}
	if v := getenv("OCHELLO_MATCHMAKING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("OCHELLO_MATCHMAKING_INTERVAL: %w", err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("OCHELLO_MATCHMAKING_INTERVAL: must be positive, got %s", d)
		}
		cfg.MatchmakingInterval = d
	}
	return cfg, nil
}

// lookup treats "-" as an explicit empty value so asset handles can be switched off.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}

// CORSOrigins joins the allowed origins the way the cors middleware expects them.
func (c Config) CORSOrigins() string {
	return strings.Join(c.AllowedOrigins, ", ")
}
