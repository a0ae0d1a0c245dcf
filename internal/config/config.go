package config

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/logging"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/rope"
	"github.com/dshills/ropecore/internal/script"
)

// Config is the complete engine configuration.
type Config struct {
	Log      LogConfig      `toml:"log" yaml:"log"`
	Guard    GuardConfig    `toml:"guard" yaml:"guard"`
	Encoding EncodingConfig `toml:"encoding" yaml:"encoding"`
	Native   NativeConfig   `toml:"native" yaml:"native"`
	Script   ScriptConfig   `toml:"script" yaml:"script"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// GuardConfig configures the aliasing guard.
type GuardConfig struct {
	// Policy is one of log, panic, ignore.
	Policy string `toml:"policy" yaml:"policy"`
	// Debug turns on content assertions in rope constructors.
	Debug bool `toml:"debug" yaml:"debug"`
}

// EncodingConfig names the default encodings. An empty External uses the
// locale encoding; an empty Internal leaves it unset.
type EncodingConfig struct {
	External string `toml:"external" yaml:"external"`
	Internal string `toml:"internal" yaml:"internal"`
}

// NativeConfig configures native arenas.
type NativeConfig struct {
	// MmapThreshold is the smallest block served by an anonymous mapping.
	MmapThreshold int `toml:"mmapThreshold" yaml:"mmapThreshold"`
	// Limit caps live bytes per arena. Zero means unlimited.
	Limit int `toml:"limit" yaml:"limit"`
}

// ScriptConfig configures the Lua runtime.
type ScriptConfig struct {
	CallStackSize int `toml:"callStackSize" yaml:"callStackSize"`
	RegistrySize  int `toml:"registrySize" yaml:"registrySize"`
	// TimeoutMS bounds a single evaluation. Zero means no timeout.
	TimeoutMS int `toml:"timeoutMs" yaml:"timeoutMs"`
	// Sandbox restricts scripts to the base, table, string and math
	// libraries.
	Sandbox bool `toml:"sandbox" yaml:"sandbox"`
}

// CacheConfig configures the frozen leaf cache.
type CacheConfig struct {
	// Limit caps the number of cached leaves. Zero means unlimited.
	Limit int `toml:"limit" yaml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Prefix: "ropecore",
		},
		Guard: GuardConfig{
			Policy: "log",
		},
		Native: NativeConfig{
			MmapThreshold: native.DefaultMmapThreshold,
		},
		Script: ScriptConfig{
			CallStackSize: 256,
			RegistrySize:  1024 * 20,
			TimeoutMS:     5000,
			Sandbox:       true,
		},
		Cache: CacheConfig{
			Limit: 4096,
		},
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
)

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate checks every setting and returns the failures joined, or nil.
// Each failure is a *ValidationError.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if !oneOf(c.Log.Level, logLevels) {
		add("log.level", "must be one of debug, info, warn, error", c.Log.Level, ErrCodeInvalidEnum)
	}
	if !oneOf(c.Log.Format, logFormats) {
		add("log.format", "must be text or json", c.Log.Format, ErrCodeInvalidEnum)
	}
	if _, err := rope.ParsePolicy(c.Guard.Policy); err != nil {
		add("guard.policy", "must be one of log, panic, ignore", c.Guard.Policy, ErrCodeInvalidEnum)
	}
	if c.Native.MmapThreshold < 0 {
		add("native.mmapThreshold", "must not be negative", c.Native.MmapThreshold, ErrCodeOutOfRange)
	}
	if c.Native.Limit < 0 {
		add("native.limit", "must not be negative", c.Native.Limit, ErrCodeOutOfRange)
	}
	if c.Script.CallStackSize <= 0 {
		add("script.callStackSize", "must be positive", c.Script.CallStackSize, ErrCodeOutOfRange)
	}
	if c.Script.RegistrySize <= 0 {
		add("script.registrySize", "must be positive", c.Script.RegistrySize, ErrCodeOutOfRange)
	}
	if c.Script.TimeoutMS < 0 {
		add("script.timeoutMs", "must not be negative", c.Script.TimeoutMS, ErrCodeOutOfRange)
	}
	if c.Cache.Limit < 0 {
		add("cache.limit", "must not be negative", c.Cache.Limit, ErrCodeOutOfRange)
	}

	reg := encoding.NewRegistry()
	for path, name := range map[string]string{
		"encoding.external": c.Encoding.External,
		"encoding.internal": c.Encoding.Internal,
	} {
		if name == "" {
			continue
		}
		if _, ok := reg.Lookup(name); !ok {
			add(path, "unknown encoding", name, ErrCodeInvalidEnum)
		}
	}

	return errors.Join(errs...)
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(c.Log.Level),
		Format: logging.ParseFormat(c.Log.Format),
		Output: w,
		Prefix: c.Log.Prefix,
	})
}

// Policy returns the guard policy. Invalid names fall back to logging.
func (c *Config) Policy() rope.Policy {
	p, _ := rope.ParsePolicy(c.Guard.Policy)
	return p
}

// GuardOptions returns the options for a rope.Guard.
func (c *Config) GuardOptions(l *logging.Logger) []rope.GuardOption {
	return []rope.GuardOption{
		rope.WithPolicy(c.Policy()),
		rope.WithGuardLogger(l),
	}
}

// ArenaOptions returns the options for a native.Arena.
func (c *Config) ArenaOptions(l *logging.Logger) []native.Option {
	opts := []native.Option{
		native.WithLogger(l),
		native.WithMmapThreshold(c.Native.MmapThreshold),
	}
	if c.Native.Limit > 0 {
		opts = append(opts, native.WithLimit(c.Native.Limit))
	}
	return opts
}

// Registry builds an encoding registry with its defaults resolved from
// the configured names and the locale found through getenv.
func (c *Config) Registry(l *logging.Logger, getenv func(string) string) (*encoding.Registry, error) {
	reg := encoding.NewRegistry(encoding.WithLogger(l))
	if err := reg.InitDefaults(getenv, c.Encoding.External, c.Encoding.Internal); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewCache builds a leaf cache with the configured limit.
func (c *Config) NewCache() *rope.Cache {
	return rope.NewCache(c.Cache.Limit)
}

// ScriptOptions returns the options for a script state that resolves
// encodings through reg and allocates native ropes from arena. Either may
// be nil.
func (c *Config) ScriptOptions(l *logging.Logger, reg *encoding.Registry, arena *native.Arena) []script.Option {
	opts := []script.Option{
		script.WithLogger(l),
		script.WithRegistry(reg),
		script.WithTimeout(time.Duration(c.Script.TimeoutMS) * time.Millisecond),
		script.WithCallStackSize(c.Script.CallStackSize),
		script.WithRegistrySize(c.Script.RegistrySize),
		script.WithSandbox(c.Script.Sandbox),
	}
	if arena != nil {
		opts = append(opts, script.WithArena(arena))
	}
	return opts
}

// Apply installs the process-wide settings: the rope debug assertions and
// the default guard.
func (c *Config) Apply(l *logging.Logger) {
	rope.Debug = c.Guard.Debug
	rope.DefaultGuard.Configure(c.GuardOptions(l)...)
}
