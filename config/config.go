// Package config loads process configuration from defaults, an
// optional config file and CHESS_-prefixed environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the engine process.
type Config struct {
	// Difficulty is the starting level: easy, medium, hard, master.
	Difficulty string
	// JitterMax bounds the random perturbation of root move scores.
	// Zero plays fully deterministically.
	JitterMax int
	// TableCapacity bounds the transposition table; zero derives a
	// capacity from system memory.
	TableCapacity int
	// ThinkDelay is the presentation pause before the engine starts
	// searching.
	ThinkDelay time.Duration
	// SearchTimeout aborts a search, keeping the best move found so
	// far. Zero means search to full depth without a deadline.
	SearchTimeout time.Duration
	// StorePath is the SQLite analysis log; empty disables logging
	// analyses.
	StorePath string
	// Debug enables debug-level logging.
	Debug bool
}

// Load reads configuration. The optional configPath points at a YAML
// file; env variables like CHESS_DIFFICULTY override it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetDefault("difficulty", "medium")
	v.SetDefault("jitter-max", 10)
	v.SetDefault("table-capacity", 0)
	v.SetDefault("think-delay", 500*time.Millisecond)
	v.SetDefault("search-timeout", time.Duration(0))
	v.SetDefault("store-path", "")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("chess")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return &Config{
		Difficulty:    v.GetString("difficulty"),
		JitterMax:     v.GetInt("jitter-max"),
		TableCapacity: v.GetInt("table-capacity"),
		ThinkDelay:    v.GetDuration("think-delay"),
		SearchTimeout: v.GetDuration("search-timeout"),
		StorePath:     v.GetString("store-path"),
		Debug:         v.GetBool("debug"),
	}, nil
}
