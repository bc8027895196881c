package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchedConfig(t *testing.T, path string, port int) {
	t.Helper()
	content := fmt.Sprintf("[server]\nport = %d\n", port)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestWatcher(t *testing.T, path string) *ConfigWatcher {
	t.Helper()
	watcher, err := NewConfigWatcher(path)
	require.NoError(t, err)
	// Keep the debounce short so tests settle quickly.
	watcher.debouncePeriod = 20 * time.Millisecond
	watcher.Start()
	t.Cleanup(func() { watcher.Stop() })
	return watcher
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ravencare.toml")
	writeWatchedConfig(t, path, 9100)

	watcher := newTestWatcher(t, path)

	reloaded := make(chan *Config, 1)
	watcher.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})

	writeWatchedConfig(t, path, 9200)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 9200, cfg.Server.EffectivePort())
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestOwnWriteFlagConsumedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ravencare.toml")
	writeWatchedConfig(t, path, 9100)

	watcher, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer watcher.Stop()

	// Unmarked events must reload; a marked write is swallowed exactly once.
	assert.False(t, watcher.checkOwnWrite())
	watcher.MarkOwnWrite()
	assert.True(t, watcher.checkOwnWrite())
	assert.False(t, watcher.checkOwnWrite())
}

func TestWatcherRequiresExistingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
