// Package config loads the API server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Siddarth2230/branchmoji/pkg/alphabet"
)

// Config is the API server configuration.
type Config struct {
	Addr     string `env:"BRANCHMOJI_ADDR" envDefault:":8080"`
	LogLevel string `env:"BRANCHMOJI_LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"BRANCHMOJI_DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"BRANCHMOJI_DB_URL" envDefault:"file:branchmoji.db"`

	// RedisAddr enables the namespace snapshot cache when set.
	RedisAddr   string        `env:"BRANCHMOJI_REDIS_ADDR"`
	SnapshotTTL time.Duration `env:"BRANCHMOJI_SNAPSHOT_TTL" envDefault:"30s"`

	DecodeCacheSize int `env:"BRANCHMOJI_DECODE_CACHE_SIZE" envDefault:"10000"`

	// Alphabet overrides the built-in emoji digits.
	Alphabet string `env:"BRANCHMOJI_ALPHABET"`
	// Shuffle permutes the alphabet once at startup. Every restart then
	// spells ordinals differently, so only use it with throwaway namespaces.
	Shuffle bool `env:"BRANCHMOJI_SHUFFLE" envDefault:"false"`
}

// Load parses the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DecodeCacheSize <= 0 {
		return nil, fmt.Errorf("BRANCHMOJI_DECODE_CACHE_SIZE must be positive, got %d", cfg.DecodeCacheSize)
	}
	return &cfg, nil
}

// BuildAlphabet returns the configured alphabet, shuffled with perm when
// Shuffle is set.
func BuildAlphabet(spec string, shuffle bool, perm alphabet.Permuter) (*alphabet.Alphabet, error) {
	a := alphabet.Default()
	if spec != "" {
		var err error
		if a, err = alphabet.Parse(spec); err != nil {
			return nil, fmt.Errorf("alphabet: %w", err)
		}
	}
	if !shuffle {
		return a, nil
	}
	return alphabet.Shuffle(a, perm)
}
