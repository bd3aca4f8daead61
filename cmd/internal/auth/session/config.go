package session

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds session service tuning.
type Config struct {
	// StoreTimeout bounds every single call into a backing store. Calls
	// that exceed it surface as ErrStoreUnavailable.
	StoreTimeout time.Duration

	// MaxPerUser caps how many live refresh tokens one user may hold.
	// Zero means unbounded. When the cap is hit, the oldest token is
	// evicted to make room.
	MaxPerUser int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		StoreTimeout: 3 * time.Second,
		MaxPerUser:   0,
	}
}

// LoadConfigFromEnv reads GATEHOUSE_SESSION_* variables over DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GATEHOUSE_SESSION_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: GATEHOUSE_SESSION_STORE_TIMEOUT: %v", ErrConfig, err)
		}
		cfg.StoreTimeout = d
	}
	if v := os.Getenv("GATEHOUSE_SESSION_MAX_PER_USER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: GATEHOUSE_SESSION_MAX_PER_USER: %v", ErrConfig, err)
		}
		cfg.MaxPerUser = n
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("%w: store timeout must be positive", ErrConfig)
	}
	if c.MaxPerUser < 0 {
		return fmt.Errorf("%w: max tokens per user cannot be negative", ErrConfig)
	}
	return nil
}
