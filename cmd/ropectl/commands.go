package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/rope"
	"github.com/dshills/ropecore/internal/script"
	"github.com/dshills/ropecore/internal/strsupport"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {}
	return fs
}

// parse parses args and checks the positional argument count.
func parse(fs *flag.FlagSet, args []string, want int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != want {
		return errUsage
	}
	return nil
}

// input returns s, or standard input without its final newline when s is
// "-".
func (a *app) input(s string) (string, error) {
	if s != "-" {
		return s, nil
	}
	b, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("reading standard input: %w", err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

func (a *app) rope(s string) *rope.Leaf {
	return rope.FromString(s, a.encoding())
}

func (a *app) println(r rope.Rope) {
	fmt.Fprintln(a.stdout, a.format(r))
}

// format renders r for output. With escaping on, control characters,
// malformed bytes and non-ASCII characters of non-Unicode encodings are
// shown as escapes.
func (a *app) format(r rope.Rope) string {
	if !a.escape {
		return rope.String(r)
	}
	unicode := r.Encoding().IsUnicode()

	var sb strings.Builder
	it := rope.Chars(r)
	for it.Next() {
		c, ok := it.CodePoint()
		switch {
		case !ok:
			for _, b := range it.Bytes() {
				sb.WriteString(strsupport.EscapeChar(int(b), false))
			}
		case c < 0x20 || c == 0x7f || (!unicode && c >= 0x80):
			sb.WriteString(strsupport.EscapeChar(c, unicode))
		default:
			sb.Write(it.Bytes())
		}
	}
	return sb.String()
}

func runClassify(_ context.Context, a *app, args []string) error {
	fs := a.flags("classify")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	s, err := a.input(fs.Arg(0))
	if err != nil {
		return err
	}
	r := a.rope(s)

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "encoding\t%s\n", r.Encoding().Name())
	fmt.Fprintf(w, "coderange\t%s\n", r.CodeRange())
	fmt.Fprintf(w, "bytes\t%d\n", r.ByteLength())
	fmt.Fprintf(w, "chars\t%d\n", r.CharacterLength())
	if r.CodeRange() != coderange.Broken {
		fmt.Fprintf(w, "graphemes\t%d\n", rope.GraphemeLength(r))
		fmt.Fprintf(w, "width\t%d\n", rope.DisplayWidth(r))
	}
	return w.Flush()
}

func runSucc(_ context.Context, a *app, args []string) error {
	fs := a.flags("succ")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	s, err := a.input(fs.Arg(0))
	if err != nil {
		return err
	}
	a.println(rope.Succ(a.rope(s)))
	return nil
}

func runTranslate(_ context.Context, a *app, args []string) error {
	fs := a.flags("tr")
	squeeze := fs.Bool("s", false, "squeeze runs of translated characters")
	if err := parse(fs, args, 3); err != nil {
		return err
	}
	s, err := a.input(fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := rope.Translate(a.rope(s), a.rope(fs.Arg(1)), a.rope(fs.Arg(2)), *squeeze)
	if err != nil {
		return err
	}
	a.println(out)
	return nil
}

func runCase(_ context.Context, a *app, args []string) error {
	fs := a.flags("case")
	var opts strsupport.CaseOptions
	fs.BoolVar(&opts.ASCIIOnly, "ascii", false, "map ASCII characters only")
	fs.BoolVar(&opts.Fold, "fold", false, "use case folding")
	fs.BoolVar(&opts.Turkic, "turkic", false, "use Turkic dotted and dotless i")
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	mode, err := rope.ParseCaseMode(fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := a.input(fs.Arg(1))
	if err != nil {
		return err
	}
	out, err := rope.MapCase(a.rope(s), mode, opts)
	if err != nil {
		return err
	}
	a.println(out)
	return nil
}

func runToInteger(_ context.Context, a *app, args []string) error {
	fs := a.flags("to_i")
	base := fs.Int("base", 10, "radix, or 0 to detect a prefix")
	strict := fs.Bool("strict", false, "reject trailing garbage")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	s, err := a.input(fs.Arg(0))
	if err != nil {
		return err
	}
	i, err := rope.ToInteger(a.rope(s), *base, *strict)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, i.String())
	return nil
}

func runEval(ctx context.Context, a *app, args []string) error {
	fs := a.flags("eval")
	code := fs.String("e", "", "code to run instead of a file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	src := *code
	switch {
	case src != "" && fs.NArg() == 0:
	case src == "" && fs.NArg() == 1 && fs.Arg(0) == "-":
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("reading standard input: %w", err)
		}
		src = string(b)
	case src == "" && fs.NArg() == 1:
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return err
		}
		src = string(b)
	default:
		return errUsage
	}

	arena := native.NewArena(a.cfg.ArenaOptions(a.logger)...)
	defer arena.Release()

	opts := append(a.cfg.ScriptOptions(a.logger, a.registry, arena), script.WithOutput(a.stdout))
	state := script.NewState(opts...)
	defer state.Close()

	results, err := state.Eval(ctx, src)
	if err != nil {
		return err
	}
	for _, v := range results {
		fmt.Fprintln(a.stdout, script.Format(v))
	}
	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("watch")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if a.cfgPath == "" {
		return errors.New("no configuration file to watch")
	}

	a.logger.Info("watching %s", a.cfgPath)
	return config.Watch(ctx, a.cfgPath, a.logger, func(c *config.Config) {
		c.Apply(a.logger)
		a.logger.Info("configuration reloaded: guard policy %s, debug %t", c.Policy(), c.Guard.Debug)
	})
}
