// Package naming turns arbitrary topic strings into identifiers that are legal
// MATLAB variable and field names, and remembers how to get back.
package naming

import (
	"strconv"
	"strings"
)

// MaxIdentLen is MATLAB's namelengthmax.
const MaxIdentLen = 63

// Sanitize maps name into [A-Za-z][0-9A-Za-z_]{0,62}, resolves collisions
// against used by appending _1, _2, ... and reserves the result in used.
func Sanitize(name string, used map[string]struct{}) string {
	base := clean(name)
	candidate := base
	for n := 1; ; n++ {
		if _, taken := used[candidate]; !taken {
			break
		}
		suffix := "_" + strconv.Itoa(n)
		trimmed := base
		if len(trimmed)+len(suffix) > MaxIdentLen {
			trimmed = trimmed[:MaxIdentLen-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	used[candidate] = struct{}{}
	return candidate
}

func clean(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	for _, r := range name {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || !isLetter(out[0]) {
		out = "v_" + out
	}
	if len(out) > MaxIdentLen {
		out = out[:MaxIdentLen]
	}
	return out
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentRune(r rune) bool {
	return r < 0x80 && (isLetter(byte(r)) || (r >= '0' && r <= '9') || r == '_')
}
