package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/logging"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/rope"
)

// Default limits for a State.
const (
	DefaultTimeout       = 5 * time.Second
	DefaultCallStackSize = 256
	DefaultRegistrySize  = 1024 * 20
)

// State wraps a gopher-lua state with the rope module installed.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls
// made through State; direct use of L bypasses it.
type State struct {
	L *lua.LState

	mu sync.Mutex

	guard    *rope.Guard
	registry *encoding.Registry
	arena    *native.Arena
	logger   *logging.Logger
	out      io.Writer

	timeout       time.Duration
	callStackSize int
	registrySize  int
	sandbox       bool

	// owners holds every String created, so Close can detach them.
	owners []*String
	closed bool
}

// Option configures a State.
type Option func(*State)

// WithGuard sets the guard Strings report to. Defaults to rope.DefaultGuard.
func WithGuard(g *rope.Guard) Option {
	return func(s *State) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithRegistry sets the registry used to resolve encoding names. Lua
// strings converted implicitly take its default external encoding.
func WithRegistry(r *encoding.Registry) Option {
	return func(s *State) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithArena enables rope.native, allocating from a.
func WithArena(a *native.Arena) Option {
	return func(s *State) {
		s.arena = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l.WithComponent("script")
		}
	}
}

// WithOutput redirects print. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithTimeout bounds each evaluation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithCallStackSize sets the Lua call stack size.
func WithCallStackSize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithRegistrySize sets the Lua registry size.
func WithRegistrySize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.registrySize = n
		}
	}
}

// WithSandbox limits scripts to the base, table, string and math
// libraries and removes the loaders.
func WithSandbox(on bool) Option {
	return func(s *State) {
		s.sandbox = on
	}
}

// NewState creates a Lua state with the rope module installed.
func NewState(opts ...Option) *State {
	s := &State{
		guard:         rope.DefaultGuard,
		logger:        logging.Null,
		out:           os.Stdout,
		timeout:       DefaultTimeout,
		callStackSize: DefaultCallStackSize,
		registrySize:  DefaultRegistrySize,
		sandbox:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = encoding.NewRegistry(encoding.WithLogger(s.logger))
	}

	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:  s.sandbox,
		CallStackSize: s.callStackSize,
		RegistrySize:  s.registrySize,
	})
	if s.sandbox {
		openSafeLibraries(s.L)
	}
	s.installPrint()
	s.registerModule()
	return s
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint routes print to the configured output.
func (s *State) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = Format(L.Get(i))
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// defaultEncoding is the encoding of Lua strings converted to ropes.
func (s *State) defaultEncoding() encoding.Encoding {
	if e := s.registry.DefaultExternal(); e != nil {
		return e
	}
	return encoding.UTF8
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	_, err := s.Eval(ctx, code)
	return err
}

// Eval runs code as a chunk and returns its results.
func (s *State) Eval(ctx context.Context, code string) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := s.L.LoadString(code)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, fn)
}

// Call calls a global Lua function with the given arguments.
func (s *State) Call(ctx context.Context, name string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("function %q not found", name)
	}
	return s.call(ctx, fn, args...)
}

// call runs fn under the timeout and collects every result.
func (s *State) call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) (results []lua.LValue, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
			s.L.SetTop(top)
		}
	}()

	s.L.Push(fn)
	for _, a := range args {
		s.L.Push(a)
	}
	if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	n := s.L.GetTop() - top
	results = make([]lua.LValue, n)
	for i := range n {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.SetTop(top)
	return results, nil
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, v lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.L.SetGlobal(name, v)
	}
}

// GetGlobal returns a global variable, or LNil.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Close detaches every String's rope and closes the Lua state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for _, o := range s.owners {
		o.release()
	}
	s.owners = nil
	s.L.Close()
	s.closed = true
	return nil
}

// Format renders a Lua value for display. Strings show their bytes.
func Format(v lua.LValue) string {
	if ud, ok := v.(*lua.LUserData); ok {
		if str, ok := ud.Value.(*String); ok {
			return rope.String(str.Rope())
		}
	}
	return v.String()
}
