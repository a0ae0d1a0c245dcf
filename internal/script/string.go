package script

import (
	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/rope"
)

// String owns a rope on behalf of a Lua value.
//
// Once frozen a String stays frozen: the mutating methods fail with
// ErrFrozen whatever rope it holds.
type String struct {
	r      rope.Rope
	guard  *rope.Guard
	frozen bool
}

// NewString creates an owner of r attached through g.
func NewString(g *rope.Guard, r rope.Rope) *String {
	s := &String{guard: g}
	s.Set(r)
	return s
}

// Rope returns the owned rope.
func (s *String) Rope() rope.Rope { return s.r }

// Frozen reports whether Freeze has been called.
func (s *String) Frozen() bool { return s.frozen }

// Set replaces the owned rope. If r is a mutable rope that already has
// an owner and the guard does not panic, s takes a private copy instead.
// Set does not check Frozen; callers editing content go through Mutable.
func (s *String) Set(r rope.Rope) {
	if !s.guard.Enforce(r, s.r) {
		r = privateCopy(r)
		s.guard.CheckAttach(r, nil)
	}
	s.r = r
}

// Mutable returns the owned rope as a mutable leaf, first replacing a
// read-only rope with a private mutable copy. It fails with ErrFrozen
// once s is frozen.
func (s *String) Mutable() (*rope.MutableLeaf, error) {
	if s.frozen {
		return nil, ErrFrozen
	}
	if m, ok := s.r.(*rope.MutableLeaf); ok && !m.IsReadOnly() {
		return m, nil
	}
	m := rope.NewMutable(s.r.Bytes().Bytes(), s.r.Encoding(), coderange.Unknown, -1)
	s.Set(m)
	return m, nil
}

// Freeze marks s frozen and replaces a mutable rope with its frozen leaf.
// Freezing twice returns the same leaf.
func (s *String) Freeze() *rope.Leaf {
	s.frozen = true
	switch r := s.r.(type) {
	case *rope.Leaf:
		return r
	case *rope.MutableLeaf:
		l := r.Freeze()
		s.Set(l)
		return l
	case *rope.NativeRope:
		l := r.ToLeaf()
		s.Set(l)
		return l
	}
	l := rope.FromBytes(s.r.Bytes().Raw(), s.r.Encoding())
	s.Set(l)
	return l
}

func (s *String) release() {
	if s.r != nil {
		s.guard.Detach(s.r)
	}
}

func privateCopy(r rope.Rope) rope.Rope {
	switch r := r.(type) {
	case *rope.MutableLeaf:
		return r.CloneAs(false)
	case *rope.NativeRope:
		if cp, err := r.MakeCopy(); err == nil {
			return cp
		}
		return r.ToLeaf().MakeMutable()
	}
	return r
}
