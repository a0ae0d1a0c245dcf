package rope

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/ropecore/internal/logging"
	"github.com/dshills/ropecore/internal/native"
)

// Attachable is a rope that an owner can attach as its backing store.
// Only ropes that are not read-only are tracked by a Guard.
type Attachable interface {
	Rope
	IsReadOnly() bool
}

// Policy selects what Enforce does with an aliasing violation.
type Policy uint8

const (
	// PolicyLog logs a warning.
	PolicyLog Policy = iota
	// PolicyPanic panics with an *AliasingError.
	PolicyPanic
	// PolicyIgnore does nothing.
	PolicyIgnore
)

func (p Policy) String() string {
	switch p {
	case PolicyLog:
		return "log"
	case PolicyPanic:
		return "panic"
	case PolicyIgnore:
		return "ignore"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy converts a policy name. Unknown names yield an error.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log", "warn", "":
		return PolicyLog, nil
	case "panic", "fatal":
		return PolicyPanic, nil
	case "ignore", "off", "none":
		return PolicyIgnore, nil
	}
	return PolicyLog, fmt.Errorf("unknown guard policy %q", s)
}

// Guard tracks which mutable ropes are attached to an owner. A mutable
// rope attached to two owners at once breaks the single-owner rule that
// in-place edits rely on.
//
// The Guard protects only its own bookkeeping. It does not make the
// ropes it tracks safe for concurrent use.
type Guard struct {
	mu       sync.Mutex
	attached map[Attachable]struct{}
	arenas   map[*native.Arena]struct{}
	policy   Policy
	logger   *logging.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithPolicy sets the violation policy used by Enforce.
func WithPolicy(p Policy) GuardOption {
	return func(g *Guard) {
		g.policy = p
	}
}

// WithGuardLogger sets the logger for violations.
func WithGuardLogger(l *logging.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l.WithComponent("guard")
		}
	}
}

// NewGuard creates an empty guard.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		attached: make(map[Attachable]struct{}),
		arenas:   make(map[*native.Arena]struct{}),
		logger:   logging.Null,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DefaultGuard is the process-wide guard.
var DefaultGuard = NewGuard()

// Configure replaces the policy and logger of g.
func (g *Guard) Configure(opts ...GuardOption) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, opt := range opts {
		opt(g)
	}
}

// Policy returns the violation policy.
func (g *Guard) Policy() Policy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.policy
}

// CheckAttach records that an owner is replacing oldRope with newRope and
// reports whether doing so is safe. Either rope may be nil.
//
// oldRope, if mutable, is detached. newRope is safe when it is oldRope,
// when it is not an Attachable, or when it is read-only. Otherwise it is
// attached, and CheckAttach returns false if it already was.
func (g *Guard) CheckAttach(newRope, oldRope Rope) bool {
	if newRope == oldRope {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := oldRope.(Attachable); ok {
		delete(g.attached, old)
	}

	r, ok := newRope.(Attachable)
	if !ok || r.IsReadOnly() {
		return true
	}
	if _, dup := g.attached[r]; dup {
		return false
	}
	g.attached[r] = struct{}{}
	if n, ok := r.(*NativeRope); ok {
		g.watchArena(n.Arena())
	}
	return true
}

// watchArena arranges for the release of a to detach its native ropes.
func (g *Guard) watchArena(a *native.Arena) {
	if _, ok := g.arenas[a]; ok {
		return
	}
	g.arenas[a] = struct{}{}
	a.OnRelease(func() { g.releaseArena(a) })
}

func (g *Guard) releaseArena(a *native.Arena) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.arenas, a)
	for r := range g.attached {
		if n, ok := r.(*NativeRope); ok && n.Arena() == a {
			delete(g.attached, r)
		}
	}
}

// Enforce runs CheckAttach and applies the guard's policy to a violation.
// It returns the CheckAttach result unless the policy panics.
func (g *Guard) Enforce(newRope, oldRope Rope) bool {
	if g.CheckAttach(newRope, oldRope) {
		return true
	}
	err := &AliasingError{Rope: newRope}
	switch g.Policy() {
	case PolicyPanic:
		panic(err)
	case PolicyLog:
		g.logger.Warn("%v", err)
	}
	return false
}

// Detach forgets r. It is a no-op when r is not attached.
func (g *Guard) Detach(r Rope) {
	a, ok := r.(Attachable)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attached, a)
}

// Attached reports whether r is currently attached.
func (g *Guard) Attached(r Rope) bool {
	a, ok := r.(Attachable)
	if !ok {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, found := g.attached[a]
	return found
}

// Len returns the number of attached ropes.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.attached)
}

// Reset detaches everything.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.attached)
}
