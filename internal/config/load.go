package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/ropecore/internal/config/loader"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROPECORE_"

// FileNames are the names Find looks for, in order.
var FileNames = []string{"ropecore.toml", "ropecore.yaml", "ropecore.yml"}

// Load resolves the configuration from the defaults, the file at path and
// the process environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	return LoadWith(loader.DefaultFS(), path, os.Environ)
}

// LoadWith is Load reading files through fsys and the environment through
// environ. The result is validated.
func LoadWith(fsys loader.FileSystem, path string, environ func() []string) (*Config, error) {
	defaults, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	var errs []error
	merged := loader.DeepMerge(nil, defaults)

	if path != "" {
		if _, err := fsys.ReadFile(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		l, err := loader.ForPath(fsys, path)
		if err != nil {
			return nil, err
		}
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		errs = append(errs, overlay(merged, defaults, data)...)
	}

	env, err := loader.NewEnvLoader(EnvPrefix).WithEnviron(environ).Load()
	if err != nil {
		return nil, err
	}
	errs = append(errs, overlay(merged, defaults, env)...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cfg := Default()
	if err := fromMap(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first of FileNames present in dir, or "".
func Find(fsys loader.FileSystem, dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := fsys.ReadFile(p); err == nil {
			return p
		}
	}
	return ""
}

// overlay copies every value of layer into merged, coerced to the type of
// the matching default. Paths without a default are reported.
func overlay(merged, defaults, layer map[string]any) []error {
	var errs []error
	var paths []string
	values := make(map[string]any)
	loader.Walk(layer, func(path string, value any) {
		paths = append(paths, path)
		values[path] = value
	})
	sort.Strings(paths)

	for _, path := range paths {
		value := values[path]
		def, ok := loader.GetByPath(defaults, path)
		if !ok {
			errs = append(errs, &ValidationError{
				Path:    path,
				Message: "unknown setting",
				Value:   value,
				Code:    ErrCodeUnknownSetting,
			})
			continue
		}
		v, err := coerce(path, value, def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loader.SetByPath(merged, path, v)
	}
	return errs
}

func coerce(path string, value, def any) (any, error) {
	mismatch := func(want string) error {
		return &ValidationError{
			Path:    path,
			Message: "expected " + want,
			Value:   value,
			Code:    ErrCodeTypeMismatch,
		}
	}

	switch def.(type) {
	case string:
		switch v := value.(type) {
		case string:
			return v, nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
		return nil, mismatch("a string")
	case bool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			if v == 0 || v == 1 {
				return v == 1, nil
			}
		}
		return nil, mismatch("a boolean")
	case int64:
		switch v := value.(type) {
		case int64:
			return v, nil
		case float64:
			if v == float64(int64(v)) {
				return int64(v), nil
			}
		}
		return nil, mismatch("an integer")
	}
	return nil, mismatch("a table")
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any, cfg *Config) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}
