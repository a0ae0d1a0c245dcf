package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/ropecore/internal/config/loader"
	"github.com/dshills/ropecore/internal/config/watcher"
	"github.com/dshills/ropecore/internal/logging"
)

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ropecore.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchWith(ctx, path, logging.Null, loader.DefaultFS(), environ(),
			func(c *Config) {
				select {
				case reloaded <- c:
				default:
				}
			},
			watcher.WithDebounce(20*time.Millisecond))
	}()

	// Let the watch register before the first write.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("[log\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for level := ""; level != "debug"; {
		select {
		case cfg := <-reloaded:
			level = cfg.Log.Level
		case <-timeout:
			t.Fatal("configuration was not reloaded")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchWith = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WatchWith did not return after cancel")
	}
}
