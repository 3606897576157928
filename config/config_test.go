package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphom/config"
	"github.com/syssam/graphom/store/memstore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoad tests YAML parsing, defaults, and validation.
func TestLoad(t *testing.T) {
	t.Run("full_document", func(t *testing.T) {
		path := writeConfig(t, `
store:
  backend: sqlite
  path: /tmp/graphom.db
log:
  level: debug
`)
		c, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.BackendSQLite, c.Store.Backend)
		assert.Equal(t, "/tmp/graphom.db", c.Store.Path)

		level, err := c.LogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	t.Run("absent_fields_keep_defaults", func(t *testing.T) {
		path := writeConfig(t, `log: {level: warn}`)
		c, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.BackendMemory, c.Store.Backend)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown_backend", "store: {backend: etcd}"},
		{"badger_without_path", "store: {backend: badger}"},
		{"bad_log_level", "log: {level: loud}"},
		{"not_yaml", ":\n:::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

// TestOpenStore tests the backend factory.
func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := config.Default().OpenStore()
		require.NoError(t, err)
		assert.IsType(t, &memstore.Store{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		c := config.Default()
		c.Store.Backend = config.BackendSQLite
		c.Store.Path = filepath.Join(t.TempDir(), "g.db")
		s, err := c.OpenStore()
		require.NoError(t, err)
		ref, err := s.CreateNode()
		require.NoError(t, err)
		assert.NotEmpty(t, ref)
	})
}

// TestWatch tests reloading on file change.
func TestWatch(t *testing.T) {
	path := writeConfig(t, "log: {level: info}")

	reloaded := make(chan *config.Config, 1)
	stop, err := config.Watch(path, slog.New(slog.DiscardHandler), func(c *config.Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("log: {level: error}"), 0o644))

	select {
	case c := <-reloaded:
		level, err := c.LogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelError, level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}

// TestWatchNilLogger tests that watching without a logger survives both
// failed and successful reloads.
func TestWatchNilLogger(t *testing.T) {
	path := writeConfig(t, "log: {level: info}")

	reloaded := make(chan *config.Config, 1)
	stop, err := config.Watch(path, nil, func(c *config.Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("log: {level: loud}"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log: {level: warn}"), 0o644))

	select {
	case c := <-reloaded:
		level, err := c.LogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelWarn, level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
