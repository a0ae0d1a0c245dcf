// Package convert parses and formats integers held in byte strings.
//
// BytesToInteger follows the Ruby rules for String#to_i and Integer():
// optional leading whitespace, one sign, an optional radix prefix,
// single underscores between digits, and a lenient mode that stops at
// the first character that is not a digit. Results that overflow int64
// are returned as big integers.
package convert
