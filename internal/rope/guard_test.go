package rope

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/logging"
	"github.com/dshills/ropecore/internal/native"
)

func TestGuardCheckAttach(t *testing.T) {
	g := NewGuard()
	leaf := FromString("abc", encoding.UTF8)
	m1 := leaf.MakeMutable()
	m2 := leaf.MakeMutable()

	if !g.CheckAttach(nil, nil) {
		t.Error("nil into nil should be safe")
	}
	if !g.CheckAttach(leaf, nil) || g.Attached(leaf) {
		t.Error("read-only ropes are never tracked")
	}
	if !g.CheckAttach(m1, nil) || !g.Attached(m1) {
		t.Fatal("first attach of a mutable rope should succeed")
	}
	if !g.CheckAttach(m1, m1) {
		t.Error("replacing a rope with itself is safe")
	}
	if g.CheckAttach(m1, nil) {
		t.Error("second attach of the same rope should fail")
	}

	// Moving m1 from one owner to another detaches it first.
	if !g.CheckAttach(m2, m1) || g.Attached(m1) || !g.Attached(m2) {
		t.Error("replacement should detach the old rope")
	}
	if !g.CheckAttach(m1, nil) {
		t.Error("detached rope should attach again")
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}

	g.Detach(m1)
	g.Detach(leaf)
	if g.Attached(m1) || g.Len() != 1 {
		t.Error("Detach")
	}
	g.Reset()
	if g.Len() != 0 {
		t.Error("Reset")
	}
}

func TestGuardFrozenRope(t *testing.T) {
	g := NewGuard()
	m := FromString("abc", encoding.UTF8).MakeMutable()
	m.Freeze()
	if !g.CheckAttach(m, nil) || !g.CheckAttach(m, nil) {
		t.Error("frozen ropes are read-only and never tracked")
	}
}

func TestGuardEnforce(t *testing.T) {
	m := FromString("abc", encoding.UTF8).MakeMutable()

	t.Run("panic", func(t *testing.T) {
		g := NewGuard(WithPolicy(PolicyPanic))
		g.Enforce(m, nil)
		v := mustPanic(t, "Enforce", func() { g.Enforce(m, nil) })
		err, ok := v.(*AliasingError)
		if !ok {
			t.Fatalf("panic value %T, want *AliasingError", v)
		}
		if err.Rope != m || !errors.Is(err, ErrAliased) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("log", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
		g := NewGuard(WithGuardLogger(logger))
		if g.Policy() != PolicyLog {
			t.Fatalf("default policy = %v", g.Policy())
		}
		g.Enforce(m, nil)
		if g.Enforce(m, nil) {
			t.Error("Enforce should report the violation")
		}
		out := buf.String()
		if !strings.Contains(out, "already attached") || !strings.Contains(out, "guard") {
			t.Errorf("log output = %q", out)
		}
	})

	t.Run("ignore", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
		g := NewGuard(WithPolicy(PolicyIgnore), WithGuardLogger(logger))
		g.Enforce(m, nil)
		if g.Enforce(m, nil) {
			t.Error("Enforce should report the violation")
		}
		if buf.Len() != 0 {
			t.Errorf("ignore policy logged %q", buf.String())
		}
	})
}

func TestGuardConfigure(t *testing.T) {
	g := NewGuard()
	g.Configure(WithPolicy(PolicyPanic))
	if g.Policy() != PolicyPanic {
		t.Errorf("Policy() = %v", g.Policy())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		err  bool
	}{
		{"", PolicyLog, false},
		{"warn", PolicyLog, false},
		{"PANIC", PolicyPanic, false},
		{" ignore ", PolicyIgnore, false},
		{"off", PolicyIgnore, false},
		{"explode", PolicyLog, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
	for _, p := range []Policy{PolicyLog, PolicyPanic, PolicyIgnore} {
		if got, _ := ParsePolicy(p.String()); got != p {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestGuardArenaRelease(t *testing.T) {
	g := NewGuard()
	a := native.NewArena()
	other := native.NewArena()
	defer other.Release()

	r1, _ := NewNative(a, []byte("one"), encoding.UTF8, 3, coderange.SevenBit)
	r2, _ := NewNative(a, []byte("two"), encoding.UTF8, 3, coderange.SevenBit)
	r3, _ := NewNative(other, []byte("three"), encoding.UTF8, 5, coderange.SevenBit)
	m := FromString("m", encoding.UTF8).MakeMutable()

	for _, r := range []Rope{r1, r2, r3, m} {
		if !g.CheckAttach(r, nil) {
			t.Fatalf("attach %v failed", r)
		}
	}
	a.Release()

	if g.Attached(r1) || g.Attached(r2) {
		t.Error("ropes of a released arena should be detached")
	}
	if !g.Attached(r3) || !g.Attached(m) {
		t.Error("unrelated ropes should stay attached")
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestGuardConcurrent(t *testing.T) {
	g := NewGuard()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var prev Rope
			for range 100 {
				m := NewMutable([]byte("x"), encoding.UTF8, coderange.SevenBit, 1)
				if !g.CheckAttach(m, prev) {
					t.Error("fresh rope rejected")
					return
				}
				prev = m
			}
			g.Detach(prev)
		}()
	}
	wg.Wait()
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}
