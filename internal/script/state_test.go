package script

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/logging"
	"github.com/dshills/ropecore/internal/native"
	"github.com/dshills/ropecore/internal/rope"
)

func newTestState(t *testing.T, opts ...Option) *State {
	t.Helper()
	opts = append([]Option{WithGuard(rope.NewGuard())}, opts...)
	s := NewState(opts...)
	t.Cleanup(func() { s.Close() })
	return s
}

func eval(t *testing.T, s *State, code string) []string {
	t.Helper()
	vals, err := s.Eval(context.Background(), code)
	if err != nil {
		t.Fatalf("Eval(%q): %v", code, err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Format(v)
	}
	return out
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"upcase", `return rope.new("hello"):upcase()`, []string{"HELLO"}},
		{"upcase grows", `return rope.new("straße"):upcase()`, []string{"STRASSE"}},
		{"upcase ascii only", `return rope.new("aé"):upcase("ascii")`, []string{"Aé"}},
		{"capitalize", `return rope.new("hELLO"):capitalize()`, []string{"Hello"}},
		{"chars", `return rope.new("héllo"):chars()`, []string{"5"}},
		{"len operator", `return #rope.new("héllo")`, []string{"6"}},
		{"code range", `return rope.new("héllo"):code_range()`, []string{"VALID"}},
		{"broken", `return rope.new("a\255"):code_range(), rope.new("a\255"):valid()`, []string{"BROKEN", "false"}},
		{"tr", `return rope.new("hello"):tr("el", "ip")`, []string{"hippo"}},
		{"tr_s", `return rope.new("aabbcc"):tr_s("a-c", "x")`, []string{"x"}},
		{"squeeze", `return rope.new("aaabbb"):squeeze()`, []string{"ab"}},
		{"squeeze set", `return rope.new("mississippi"):squeeze("s")`, []string{"misisippi"}},
		{"count", `return rope.new("hello world"):count("lo")`, []string{"5"}},
		{"delete", `return rope.new("hello"):delete("l")`, []string{"heo"}},
		{"succ", `return rope.new("az"):succ()`, []string{"ba"}},
		{"to_i", `return rope.new("  42abc"):to_i()`, []string{"42"}},
		{"to_i radix", `return rope.new("1f"):to_i(16)`, []string{"31"}},
		{"to_i big", `return rope.new("123456789012345678901234567890"):to_i()`, []string{"123456789012345678901234567890"}},
		{"codepoint", `return rope.new("é"):codepoint(0)`, []string{"233"}},
		{"casecmp", `return rope.new("hello"):casecmp("HELLO"), rope.new("a"):casecmp("B")`, []string{"0", "-1"}},
		{"concat", `return rope.new("abc") .. "def", "x" .. rope.new("y")`, []string{"abcdef", "xy"}},
		{"equal", `return rope.new("abc") == rope.new("abc"), rope.new("abc") == rope.new("abd")`, []string{"true", "false"}},
		{"sub", `return rope.new("hello"):sub(1, 3)`, []string{"ell"}},
		{"byte", `return rope.new("abc"):byte(1)`, []string{"98"}},
		{"width", `return rope.new("日本a"):width()`, []string{"5"}},
		{"graphemes", `return rope.new("e\204\129a"):graphemes()`, []string{"2"}},
		{"tostring", `return tostring(rope.new("plain"))`, []string{"plain"}},
		{"encoding", `return rope.new("x", "ISO-8859-1"):encoding()`, []string{"ISO-8859-1"}},
		{"force encoding", `local s = rope.new("\233") return s:code_range(), s:force_encoding("ISO-8859-1"):code_range()`, []string{"BROKEN", "VALID"}},
		{"each char", `local t = {} for c in rope.new("aé"):each_char() do t[#t+1] = c end return table.concat(t, ",")`, []string{"a,é"}},
		{"append", `local b = rope.buffer("abc") b:append("déf") return b, b:code_range()`, []string{"abcdéf", "VALID"}},
		{"replace", `local b = rope.buffer("hello") b:replace(0, "J") return b`, []string{"Jello"}},
		{"setbyte", `local b = rope.buffer("abc") b:setbyte(0, 255) return b:code_range()`, []string{"BROKEN"}},
		{"recase", `local b = rope.buffer("hello") return b:recase("upcase"), b`, []string{"true", "HELLO"}},
		{"recase unchanged", `local b = rope.buffer("123") return b:recase("upcase")`, []string{"false"}},
		{"recase leaf", `local s = rope.new("abc") local t = s s:recase("upcase") return s, t`, []string{"ABC", "ABC"}},
		{"frozen", `local b = rope.buffer("x") local f = b:frozen() b:freeze() return f, b:frozen()`, []string{"false", "true"}},
		{"literal not frozen", `return rope.new("x"):frozen()`, []string{"false"}},
		{"freeze is one way", `local b = rope.buffer("x") b:freeze() pcall(b.append, b, "y") return b, b:frozen()`, []string{"x", "true"}},
		{"dup of frozen", `local b = rope.buffer("x") b:freeze() local c = b:dup() c:append("y") return c, c:frozen(), b:frozen()`, []string{"xy", "false", "true"}},
		{"dup", `local b = rope.buffer("x") local c = b:dup() c:append("y") return b, c`, []string{"x", "xy"}},
	}

	s := newTestState(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eval(t, s, tt.code)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"bad radix", `return rope.new("1"):to_i(1)`, "to_i"},
		{"strict", `return rope.new("12x"):to_i(10, true)`, "to_i"},
		{"unknown encoding", `return rope.new("x", "NOPE")`, "unknown encoding"},
		{"broken upcase", `return rope.new("a\255"):upcase()`, "upcase"},
		{"unknown case mode", `return rope.buffer("a"):recase("loud")`, "unknown case mode"},
		{"unknown case option", `return rope.new("a"):upcase("shouty")`, "unknown case option"},
		{"no arena", `return rope.native("x")`, "no native arena"},
		{"byte out of range", `return rope.new("abc"):byte(5)`, "bad argument"},
		{"replace out of range", `return rope.buffer("abc"):replace(2, "xyz")`, "out of bounds"},
		{"invalid tr range", `return rope.new("abc"):tr("z-a", "x")`, "invalid range"},
		{"not a string", `return rope.new("a"):tr({}, "b")`, "string expected"},
		{"append frozen", `local b = rope.buffer("x") b:freeze() b:append("y")`, "can't modify frozen String"},
		{"replace frozen", `local b = rope.buffer("x") b:freeze() b:replace(0, "y")`, "can't modify frozen String"},
		{"setbyte frozen", `local b = rope.new("x") b:freeze() b:setbyte(0, 65)`, "can't modify frozen String"},
		{"recase frozen", `local b = rope.new("x") b:freeze() b:recase("upcase")`, "can't modify frozen String"},
		{"force encoding frozen", `local b = rope.new("x") b:freeze() b:force_encoding("ISO-8859-1")`, "can't modify frozen String"},
		{"sandboxed io", `return io.open("x")`, "nil"},
		{"sandboxed dofile", `dofile("x")`, "non-function"},
	}

	s := newTestState(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Eval(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestUnsandboxed(t *testing.T) {
	s := newTestState(t, WithSandbox(false))
	got := eval(t, s, `return type(io), type(os)`)
	if got[0] != "table" || got[1] != "table" {
		t.Errorf("got %v, want io and os tables", got)
	}
}

func TestShareViolationPanics(t *testing.T) {
	g := rope.NewGuard(rope.WithPolicy(rope.PolicyPanic))
	s := newTestState(t, WithGuard(g))

	_, err := s.Eval(context.Background(), `local b = rope.buffer("abc") local c = b:share()`)
	if err == nil || !strings.Contains(err.Error(), "already attached") {
		t.Fatalf("err = %v, want an aliasing error", err)
	}
}

func TestShareViolationCopies(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})
	g := rope.NewGuard(rope.WithPolicy(rope.PolicyLog), rope.WithGuardLogger(logger))
	s := newTestState(t, WithGuard(g))

	got := eval(t, s, `local b = rope.buffer("abc") local c = b:share() c:append("d") return b, c`)
	if got[0] != "abc" || got[1] != "abcd" {
		t.Errorf("got %v, want the shared owner to edit a private copy", got)
	}
	if !strings.Contains(buf.String(), "already attached") {
		t.Errorf("violation not logged: %q", buf.String())
	}
	if g.Len() != 2 {
		t.Errorf("guard tracks %d ropes, want 2", g.Len())
	}

	s.Close()
	if g.Len() != 0 {
		t.Errorf("guard tracks %d ropes after Close, want 0", g.Len())
	}
}

func TestImmutableShareIsSafe(t *testing.T) {
	g := rope.NewGuard(rope.WithPolicy(rope.PolicyPanic))
	s := newTestState(t, WithGuard(g))
	got := eval(t, s, `local a = rope.new("abc") local b = a:share() return a == b`)
	if got[0] != "true" {
		t.Errorf("got %v", got)
	}
	if g.Len() != 0 {
		t.Errorf("immutable ropes should not be tracked, got %d", g.Len())
	}
}

func TestStringSet(t *testing.T) {
	g := rope.NewGuard()
	m := rope.NewMutable([]byte("abc"), encoding.UTF8, 0, -1)
	a := NewString(g, m)
	if !g.Attached(m) {
		t.Fatal("rope not attached to its first owner")
	}

	b := NewString(g, m)
	if b.Rope() == rope.Rope(m) {
		t.Error("second owner should hold a private copy")
	}

	a.Set(rope.FromString("x", encoding.UTF8))
	if g.Attached(m) {
		t.Error("replaced rope still attached")
	}

	l := b.Freeze()
	if l.String() != "abc" || b.Rope() != rope.Rope(l) {
		t.Errorf("Freeze = %q", l.String())
	}
	if !b.Frozen() || b.Freeze() != l {
		t.Error("Freeze is not sticky")
	}
	if _, err := b.Mutable(); !errors.Is(err, ErrFrozen) {
		t.Errorf("Mutable after Freeze = %v, want ErrFrozen", err)
	}
	if a.Frozen() {
		t.Error("unfrozen owner reports frozen")
	}
	if m, err := a.Mutable(); err != nil || m.String() != "x" {
		t.Errorf("Mutable = %v, %v", m, err)
	}
}

func TestNativeStrings(t *testing.T) {
	arena := native.NewArena()
	defer arena.Release()
	s := newTestState(t, WithArena(arena))

	got := eval(t, s, `local n = rope.native("héllo") n:setbyte(0, 72) return n, n:chars(), n:frozen()`)
	if strings.Join(got, "|") != "Héllo|5|false" {
		t.Errorf("got %v", got)
	}
	if arena.Len() == 0 {
		t.Error("native rope did not allocate from the arena")
	}
}

func TestTimeout(t *testing.T) {
	s := newTestState(t, WithTimeout(50*time.Millisecond))
	start := time.Now()
	if err := s.DoString(context.Background(), `while true do end`); err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not enforced")
	}
	if got := eval(t, s, `return 1 + 1`); got[0] != "2" {
		t.Errorf("state unusable after timeout: %v", got)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	s := newTestState(t, WithOutput(&buf))
	if err := s.DoString(context.Background(), `print(rope.new("hi"), 1, nil)`); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "hi\t1\tnil\n" {
		t.Errorf("print wrote %q", got)
	}
}

func TestCall(t *testing.T) {
	s := newTestState(t)
	if err := s.DoString(context.Background(), `function shout(x) return rope.new(x):upcase() end`); err != nil {
		t.Fatal(err)
	}
	vals, err := s.Call(context.Background(), "shout", lua.LString("quiet"))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(vals) != 1 || Format(vals[0]) != "QUIET" {
		t.Errorf("Call = %v", vals)
	}
	if _, err := s.Call(context.Background(), "missing"); err == nil {
		t.Error("calling a missing function should fail")
	}
}

func TestGlobals(t *testing.T) {
	s := newTestState(t)
	s.SetGlobal("greeting", lua.LString("hi"))
	if got := s.GetGlobal("greeting"); got.String() != "hi" {
		t.Errorf("GetGlobal = %v", got)
	}
}

func TestDefaultEncodingFromRegistry(t *testing.T) {
	reg := encoding.NewRegistry()
	if err := reg.InitDefaults(func(string) string { return "" }, "ISO-8859-1", ""); err != nil {
		t.Fatal(err)
	}
	s := newTestState(t, WithRegistry(reg))
	got := eval(t, s, `return rope.new("x"):encoding(), ("a" .. rope.new("b")):encoding()`)
	if got[0] != "ISO-8859-1" || got[1] != "ISO-8859-1" {
		t.Errorf("got %v", got)
	}

	got = eval(t, s, `local n = 0 for _, name in ipairs(rope.encodings()) do n = n + 1 end return n > 5`)
	if got[0] != "true" {
		t.Error("rope.encodings listed too few encodings")
	}
}

func TestClosed(t *testing.T) {
	s := NewState(WithGuard(rope.NewGuard()))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if _, err := s.Eval(context.Background(), "return 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Eval after Close = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call(context.Background(), "f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call after Close = %v, want ErrStateClosed", err)
	}
	if s.GetGlobal("rope") != lua.LNil {
		t.Error("GetGlobal after Close should be nil")
	}
}
