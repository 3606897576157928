// Package config loads graphom runtime configuration from YAML and
// turns it into concrete store backends.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/syssam/graphom/store"
	"github.com/syssam/graphom/store/badgerstore"
	"github.com/syssam/graphom/store/memstore"
	"github.com/syssam/graphom/store/sqlstore"
)

// Store backends selectable via Config.Store.Backend.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// StoreConfig selects and parameterizes the graph store backend.
type StoreConfig struct {
	// Backend is one of memory, badger, or sqlite.
	Backend string `yaml:"backend"`
	// Path is the database location for the badger and sqlite backends.
	Path string `yaml:"path"`
}

// LogConfig controls the logger handed to the graph.
type LogConfig struct {
	// Level is one of debug, info, warn, or error.
	Level string `yaml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

// Default returns the configuration used when no file is given: an
// in-memory store and info-level logging.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendMemory},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads and validates a YAML configuration file. Absent fields keep
// their defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBadger, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("config: %s backend requires store.path", c.Store.Backend)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return l, nil
}

// OpenStore opens the configured store backend.
func (c *Config) OpenStore() (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return memstore.New(), nil
	case BackendBadger:
		return badgerstore.Open(c.Store.Path)
	case BackendSQLite:
		return sqlstore.Open(c.Store.Path)
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
}

// Watch reloads the file whenever it changes and calls onChange with the
// freshly validated configuration. Invalid intermediate states are
// skipped. A nil log discards watcher output. The returned stop
// function releases the watcher.
func Watch(path string, log *slog.Logger, onChange func(*Config)) (stop func() error, err error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files on save, which drops a
	// watch held on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					log.Warn("config reload skipped", "path", path, "err", err)
					continue
				}
				log.Info("config reloaded", "path", path)
				onChange(c)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watch error", "err", err)
			}
		}
	}()
	return w.Close, nil
}
