// Package script embeds a Lua runtime whose string values are ropes.
//
// A String userdata owns one rope at a time. Every operation that swaps
// the owned rope reports the swap to a rope.Guard, so a mutable rope that
// ends up with two owners is caught. When the guard's policy does not
// panic, the second owner continues with a private copy.
//
// Scripts see a global "rope" module:
//
//	local s = rope.new("straße")        -- immutable leaf, default encoding
//	local b = rope.buffer("abc", "UTF-8") -- mutable leaf
//	print(s:upcase(), #s, s:chars(), s:code_range())
//	b:append("def"); b:recase("upcase")
//	print(b:tr("a-y", "b-z"), b:succ())
//
// Strings convert to Lua strings with tostring, and Lua strings are
// accepted wherever a String is expected.
package script
