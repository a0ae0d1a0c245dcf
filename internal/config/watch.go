package config

import (
	"context"
	"os"

	"github.com/dshills/ropecore/internal/config/loader"
	"github.com/dshills/ropecore/internal/config/watcher"
	"github.com/dshills/ropecore/internal/logging"
)

// Watch reloads the configuration file at path each time it changes and
// passes every configuration that loads cleanly to fn. A change that
// fails to load is logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, l *logging.Logger, fn func(*Config)) error {
	return WatchWith(ctx, path, l, loader.DefaultFS(), os.Environ, fn, watcher.WithLogger(l))
}

// WatchWith is Watch with the file system, environment and watcher
// options given explicitly.
func WatchWith(ctx context.Context, path string, l *logging.Logger, fsys loader.FileSystem,
	environ func() []string, fn func(*Config), opts ...watcher.Option) error {
	if l == nil {
		l = logging.Null
	}
	l = l.WithComponent("config")

	w := watcher.New(opts...)
	if err := w.Watch(path); err != nil {
		return err
	}
	w.OnChange(func(e watcher.Event) {
		if e.Op == watcher.OpRemove || e.Op == watcher.OpRename {
			l.Info("config file %s: %s, keeping current settings", e.Path, e.Op)
			return
		}
		cfg, err := LoadWith(fsys, path, environ)
		if err != nil {
			l.Warn("reloading %s: %v", path, err)
			return
		}
		l.Debug("reloaded %s", path)
		fn(cfg)
	})
	return w.Run(ctx)
}
