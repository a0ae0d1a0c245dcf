package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ropecore/internal/coderange"
	"github.com/dshills/ropecore/internal/encoding"
	"github.com/dshills/ropecore/internal/rope"
	"github.com/dshills/ropecore/internal/strsupport"
)

const typeName = "rope.String"

// registerModule installs the String metatable and the rope global.
func (s *State) registerModule() {
	L := s.L

	mt := L.NewTypeMetatable(typeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"len":            s.byteLength,
		"chars":          s.chars,
		"code_range":     s.codeRange,
		"encoding":       s.encodingName,
		"valid":          s.valid,
		"frozen":         s.frozen,
		"bytes":          s.bytes,
		"byte":           s.byteAt,
		"sub":            s.sub,
		"upcase":         s.mapCase(rope.CaseUp),
		"downcase":       s.mapCase(rope.CaseDown),
		"swapcase":       s.mapCase(rope.CaseSwap),
		"capitalize":     s.mapCase(rope.CaseCapitalize),
		"recase":         s.recase,
		"tr":             s.translate(false),
		"tr_s":           s.translate(true),
		"delete":         s.delete,
		"squeeze":        s.squeeze,
		"count":          s.count,
		"succ":           s.succ,
		"to_i":           s.toInteger,
		"codepoint":      s.codePoint,
		"casecmp":        s.caseCompare,
		"graphemes":      s.graphemes,
		"width":          s.width,
		"append":         s.append,
		"replace":        s.replace,
		"setbyte":        s.setByte,
		"freeze":         s.freeze,
		"force_encoding": s.forceEncoding,
		"each_char":      s.eachChar,
		"dup":            s.dup,
		"share":          s.share,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(s.bytes))
	L.SetField(mt, "__len", L.NewFunction(s.byteLength))
	L.SetField(mt, "__concat", L.NewFunction(s.concat))
	L.SetField(mt, "__eq", L.NewFunction(s.equal))

	L.SetGlobal("rope", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new":       s.newLeaf,
		"buffer":    s.newBuffer,
		"native":    s.newNative,
		"encodings": s.encodings,
	}))
}

// wrap creates a String owning r and returns it as userdata.
func (s *State) wrap(L *lua.LState, r rope.Rope) *lua.LUserData {
	str := NewString(s.guard, r)
	s.owners = append(s.owners, str)
	ud := L.NewUserData()
	ud.Value = str
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}

func (s *State) push(L *lua.LState, r rope.Rope) int {
	L.Push(s.wrap(L, r))
	return 1
}

func checkString(L *lua.LState, n int) *String {
	ud := L.CheckUserData(n)
	str, ok := ud.Value.(*String)
	if !ok {
		L.ArgError(n, typeName+" expected")
	}
	return str
}

// toRope accepts a String, a Lua string or a number.
func (s *State) toRope(L *lua.LState, n int) rope.Rope {
	switch v := L.Get(n).(type) {
	case *lua.LUserData:
		if str, ok := v.Value.(*String); ok {
			return str.Rope()
		}
	case lua.LString:
		return rope.FromString(string(v), s.defaultEncoding())
	case lua.LNumber:
		return rope.FromString(v.String(), s.defaultEncoding())
	}
	L.ArgError(n, "string expected")
	return nil
}

func (s *State) ropes(L *lua.LState, from int) []rope.Rope {
	var out []rope.Rope
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, s.toRope(L, i))
	}
	return out
}

func (s *State) optEncoding(L *lua.LState, n int) encoding.Encoding {
	if L.Get(n) == lua.LNil {
		return s.defaultEncoding()
	}
	enc, err := s.registry.MustLookup(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return enc
}

func caseOptions(L *lua.LState, from int) strsupport.CaseOptions {
	var opts strsupport.CaseOptions
	for i := from; i <= L.GetTop(); i++ {
		switch name := L.CheckString(i); name {
		case "ascii":
			opts.ASCIIOnly = true
		case "fold":
			opts.Fold = true
		case "turkic":
			opts.Turkic = true
		default:
			L.ArgError(i, "unknown case option "+name)
		}
	}
	return opts
}

func raise(L *lua.LState, op string, err error) {
	L.RaiseError("%s: %v", op, err)
}

// modifiable raises ErrFrozen for a frozen String.
func modifiable(L *lua.LState, op string, str *String) {
	if str.Frozen() {
		raise(L, op, ErrFrozen)
	}
}

// mutable returns the String's rope as a mutable leaf, raising ErrFrozen
// for a frozen String.
func mutable(L *lua.LState, op string, str *String) *rope.MutableLeaf {
	m, err := str.Mutable()
	if err != nil {
		raise(L, op, err)
	}
	return m
}

// rope.new(s [, encoding])
func (s *State) newLeaf(L *lua.LState) int {
	b := L.CheckString(1)
	return s.push(L, rope.FromString(b, s.optEncoding(L, 2)))
}

// rope.buffer(s [, encoding])
func (s *State) newBuffer(L *lua.LState) int {
	b := L.CheckString(1)
	return s.push(L, rope.NewMutable([]byte(b), s.optEncoding(L, 2), coderange.Unknown, -1))
}

// rope.native(s [, encoding])
func (s *State) newNative(L *lua.LState) int {
	b := L.CheckString(1)
	enc := s.optEncoding(L, 2)
	if s.arena == nil {
		raise(L, "native", ErrNoArena)
		return 0
	}
	r, err := rope.NewNative(s.arena, []byte(b), enc, -1, coderange.Unknown)
	if err != nil {
		raise(L, "native", err)
		return 0
	}
	return s.push(L, r)
}

// rope.encodings() -> {name, ...}
func (s *State) encodings(L *lua.LState) int {
	t := L.NewTable()
	for _, e := range s.registry.List() {
		t.Append(lua.LString(e.Name()))
	}
	L.Push(t)
	return 1
}

func (s *State) byteLength(L *lua.LState) int {
	L.Push(lua.LNumber(checkString(L, 1).Rope().ByteLength()))
	return 1
}

func (s *State) chars(L *lua.LState) int {
	L.Push(lua.LNumber(checkString(L, 1).Rope().CharacterLength()))
	return 1
}

func (s *State) codeRange(L *lua.LState) int {
	L.Push(lua.LString(checkString(L, 1).Rope().CodeRange().String()))
	return 1
}

func (s *State) encodingName(L *lua.LState) int {
	L.Push(lua.LString(checkString(L, 1).Rope().Encoding().Name()))
	return 1
}

func (s *State) valid(L *lua.LState) int {
	L.Push(lua.LBool(checkString(L, 1).Rope().CodeRange() != coderange.Broken))
	return 1
}

func (s *State) frozen(L *lua.LState) int {
	L.Push(lua.LBool(checkString(L, 1).Frozen()))
	return 1
}

func (s *State) bytes(L *lua.LState) int {
	L.Push(lua.LString(rope.String(checkString(L, 1).Rope())))
	return 1
}

// s:byte(i) -> number, with 0-based i
func (s *State) byteAt(L *lua.LState) int {
	r := checkString(L, 1).Rope()
	b, err := r.Bytes().CheckedGet(L.CheckInt(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	L.Push(lua.LNumber(b))
	return 1
}

// s:sub(off, n) -> String, with a 0-based byte offset
func (s *State) sub(L *lua.LState) int {
	r := checkString(L, 1).Rope()
	off, n := L.CheckInt(2), L.CheckInt(3)
	v, err := r.Bytes().CheckedSlice(off, n)
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	if l, ok := r.(*rope.Leaf); ok {
		return s.push(L, l.Substring(off, n))
	}
	return s.push(L, rope.FromBytes(v.Raw(), r.Encoding()))
}

// s:upcase(opts...) and friends return a new String.
func (s *State) mapCase(mode rope.CaseMode) lua.LGFunction {
	return func(L *lua.LState) int {
		r := checkString(L, 1).Rope()
		out, err := rope.MapCase(r, mode, caseOptions(L, 2))
		if err != nil {
			raise(L, mode.String(), err)
			return 0
		}
		return s.push(L, out)
	}
}

// s:recase(mode, opts...) -> changed, mapping in place
func (s *State) recase(L *lua.LState) int {
	str := checkString(L, 1)
	mode, err := rope.ParseCaseMode(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	changed, err := rope.MapCaseInPlace(mutable(L, "recase", str), mode, caseOptions(L, 3))
	if err != nil {
		raise(L, mode.String(), err)
		return 0
	}
	L.Push(lua.LBool(changed))
	return 1
}

func (s *State) translate(squeeze bool) lua.LGFunction {
	op := "tr"
	if squeeze {
		op = "tr_s"
	}
	return func(L *lua.LState) int {
		r := checkString(L, 1).Rope()
		out, err := rope.Translate(r, s.toRope(L, 2), s.toRope(L, 3), squeeze)
		if err != nil {
			raise(L, op, err)
			return 0
		}
		return s.push(L, out)
	}
}

func (s *State) delete(L *lua.LState) int {
	out, err := rope.Delete(checkString(L, 1).Rope(), s.ropes(L, 2)...)
	if err != nil {
		raise(L, "delete", err)
		return 0
	}
	return s.push(L, out)
}

func (s *State) squeeze(L *lua.LState) int {
	out, err := rope.Squeeze(checkString(L, 1).Rope(), s.ropes(L, 2)...)
	if err != nil {
		raise(L, "squeeze", err)
		return 0
	}
	return s.push(L, out)
}

func (s *State) count(L *lua.LState) int {
	n, err := rope.Count(checkString(L, 1).Rope(), s.ropes(L, 2)...)
	if err != nil {
		raise(L, "count", err)
		return 0
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (s *State) succ(L *lua.LState) int {
	return s.push(L, rope.Succ(checkString(L, 1).Rope()))
}

// s:to_i([base [, strict]]) -> number, or a decimal string when the value
// does not fit in an int64
func (s *State) toInteger(L *lua.LState) int {
	r := checkString(L, 1).Rope()
	i, err := rope.ToInteger(r, L.OptInt(2, 10), L.OptBool(3, false))
	if err != nil {
		raise(L, "to_i", err)
		return 0
	}
	if i.IsBig() {
		L.Push(lua.LString(i.String()))
	} else {
		L.Push(lua.LNumber(i.Int64()))
	}
	return 1
}

// s:codepoint(off) -> number, with a 0-based byte offset
func (s *State) codePoint(L *lua.LState) int {
	c, err := rope.CodePointAt(checkString(L, 1).Rope(), L.CheckInt(2))
	if err != nil {
		raise(L, "codepoint", err)
		return 0
	}
	L.Push(lua.LNumber(c))
	return 1
}

// s:casecmp(other) -> -1, 0, 1, or nil for incompatible encodings
func (s *State) caseCompare(L *lua.LState) int {
	c, ok := rope.CaseCompare(checkString(L, 1).Rope(), s.toRope(L, 2))
	if !ok {
		L.Push(lua.LNil)
	} else {
		L.Push(lua.LNumber(c))
	}
	return 1
}

func (s *State) graphemes(L *lua.LState) int {
	L.Push(lua.LNumber(rope.GraphemeLength(checkString(L, 1).Rope())))
	return 1
}

func (s *State) width(L *lua.LState) int {
	L.Push(lua.LNumber(rope.DisplayWidth(checkString(L, 1).Rope())))
	return 1
}

// s:append(x) -> s
func (s *State) append(L *lua.LState) int {
	str := checkString(L, 1)
	other := s.toRope(L, 2)
	mutable(L, "append", str).Append(other.Bytes().Raw(), other.CodeRange())
	L.Push(L.Get(1))
	return 1
}

// s:replace(off, x) -> s, overwriting len(x) bytes at a 0-based offset
func (s *State) replace(L *lua.LState) int {
	str := checkString(L, 1)
	off := L.CheckInt(2)
	src := s.toRope(L, 3)
	if off < 0 || off+src.ByteLength() > str.Rope().ByteLength() {
		L.ArgError(2, "range out of bounds")
		return 0
	}
	mutable(L, "replace", str).ReplaceRange(off, src.Bytes().Raw(), src.CodeRange())
	L.Push(L.Get(1))
	return 1
}

// s:setbyte(i, b) -> s
func (s *State) setByte(L *lua.LState) int {
	str := checkString(L, 1)
	modifiable(L, "setbyte", str)
	i := L.CheckInt(2)
	b := L.CheckInt(3)
	if i < 0 || i >= str.Rope().ByteLength() {
		L.ArgError(2, "index out of bounds")
		return 0
	}
	if b < 0 || b > 0xff {
		L.ArgError(3, "byte out of range")
		return 0
	}
	if n, ok := str.Rope().(*rope.NativeRope); ok {
		n.Set(i, byte(b))
	} else {
		m := mutable(L, "setbyte", str)
		m.SetByte(i, byte(b))
		m.ClearCodeRange()
	}
	L.Push(L.Get(1))
	return 1
}

func (s *State) freeze(L *lua.LState) int {
	checkString(L, 1).Freeze()
	L.Push(L.Get(1))
	return 1
}

// s:force_encoding(name) -> s
func (s *State) forceEncoding(L *lua.LState) int {
	str := checkString(L, 1)
	modifiable(L, "force_encoding", str)
	enc := s.optEncoding(L, 2)
	switch r := str.Rope().(type) {
	case *rope.Leaf:
		str.Set(r.WithEncoding(enc))
	case *rope.NativeRope:
		str.Set(r.WithEncoding(enc))
	default:
		str.Set(rope.NewMutable(r.Bytes().Bytes(), enc, coderange.Unknown, -1))
	}
	L.Push(L.Get(1))
	return 1
}

// s:each_char() -> iterator over character strings
func (s *State) eachChar(L *lua.LState) int {
	it := rope.Chars(checkString(L, 1).Rope())
	L.Push(L.NewFunction(func(L *lua.LState) int {
		if !it.Next() {
			return 0
		}
		L.Push(lua.LString(string(it.Bytes())))
		return 1
	}))
	return 1
}

// s:dup() -> a String owning a private copy of a mutable rope, or the
// same immutable rope
func (s *State) dup(L *lua.LState) int {
	return s.push(L, privateCopy(checkString(L, 1).Rope()))
}

// s:share() -> a second String owning the same rope. For a mutable rope
// this is an aliasing violation handled by the guard policy.
func (s *State) share(L *lua.LState) int {
	return s.push(L, checkString(L, 1).Rope())
}

func (s *State) concat(L *lua.LState) int {
	return s.push(L, rope.Concat(s.toRope(L, 1), s.toRope(L, 2)))
}

func (s *State) equal(L *lua.LState) int {
	L.Push(lua.LBool(rope.Equal(s.toRope(L, 1), s.toRope(L, 2))))
	return 1
}
