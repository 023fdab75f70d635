package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// Config selects and configures a store driver.
type Config struct {
	Driver   string        `yaml:"driver"`   // memory, sqlite, redis
	Path     string        `yaml:"path"`     // sqlite database file
	Address  string        `yaml:"address"`  // redis host:port
	Password string        `yaml:"password"` // redis password
	DB       int           `yaml:"db"`       // redis database number
	TTL      time.Duration `yaml:"ttl"`      // redis expiry, e.g. 720h
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = constants.DefaultStoreDriver
	}

	switch driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		return NewSQLite(cfg.Path)
	case "redis":
		if cfg.Address == "" {
			return nil, fmt.Errorf("redis store requires an address")
		}
		return NewRedis(ctx, cfg.Address, cfg.Password, cfg.DB, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
