// Package main is the entry point for ropectl, a command line front end to
// the rope engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/config/loader"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage reports a malformed command line. The usage text has already
// been printed.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		escape: isTerminal(os.Stdout),
	}
	os.Exit(run(ctx, os.Args[1:], env))
}

// environment is the process state a command sees.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// escape shows control characters and malformed bytes as escapes.
	escape bool
}

// app is the state shared by every command after global flags are parsed.
type app struct {
	*environment

	cfg      *config.Config
	cfgPath  string
	logger   *logging.Logger
	registry *encoding.Registry

	// enc is the -encoding override, or nil for the default external
	// encoding.
	enc encoding.Encoding
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"classify": {"classify [string|-]", "Show the encoding, code range and lengths of a string", runClassify},
	"succ":     {"succ [string|-]", "Print the successor of a string", runSucc},
	"tr":       {"tr [-s] string from to", "Translate characters, optionally squeezing runs", runTranslate},
	"case":     {"case [-ascii] [-fold] [-turkic] mode string", "Map case (upcase, downcase, swapcase, capitalize)", runCase},
	"to_i":     {"to_i [-base n] [-strict] string", "Parse an integer", runToInteger},
	"eval":     {"eval [-e code] [file]", "Run a Lua script with the rope module", runEval},
	"watch":    {"watch", "Reload the configuration file as it changes", runWatch},
}

func run(ctx context.Context, args []string, env *environment) int {
	fs := flag.NewFlagSet("ropectl", flag.ContinueOnError)
	fs.SetOutput(env.stderr)

	var (
		cfgPath     string
		logLevel    string
		encName     string
		escape      bool
		showVersion bool
	)
	fs.StringVar(&cfgPath, "config", "", "Path to configuration file")
	fs.StringVar(&cfgPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&encName, "encoding", "", "Encoding of string arguments")
	fs.StringVar(&encName, "e", "", "Encoding of string arguments (shorthand)")
	fs.BoolVar(&escape, "escape", env.escape, "Escape control characters and malformed bytes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "ropectl - byte string rope toolkit\n\n")
		fmt.Fprintf(env.stderr, "Usage: ropectl [options] command [arguments]\n\n")
		fmt.Fprintf(env.stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(env.stderr, "\nCommands:\n")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(env.stderr, "  %-44s %s\n", commands[name].usage, commands[name].help)
		}
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(env.stdout, "ropectl %s\n", version)
		fmt.Fprintf(env.stdout, "Commit: %s\n", commit)
		fmt.Fprintf(env.stdout, "Built: %s\n", date)
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(env.stderr, "Error: unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	env.escape = escape
	a, err := newApp(env, cfgPath, logLevel, encName)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 1
	}

	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(env.stderr, "Usage: ropectl %s\n", cmd.usage)
			return 2
		}
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newApp loads the configuration and builds the logger and registry.
// Without -config, a configuration file in the working directory is used
// when one exists.
func newApp(env *environment, cfgPath, logLevel, encName string) (*app, error) {
	if cfgPath == "" {
		cfgPath = config.Find(loader.DefaultFS(), ".")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger(env.stderr)
	cfg.Apply(logger)

	reg, err := cfg.Registry(logger, env.getenv)
	if err != nil {
		return nil, err
	}

	a := &app{
		environment: env,
		cfg:         cfg,
		cfgPath:     cfgPath,
		logger:      logger,
		registry:    reg,
	}
	if encName != "" {
		if a.enc, err = reg.MustLookup(encName); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// encoding returns the encoding of string arguments.
func (a *app) encoding() encoding.Encoding {
	if a.enc != nil {
		return a.enc
	}
	if e := a.registry.DefaultExternal(); e != nil {
		return e
	}
	return encoding.UTF8
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
