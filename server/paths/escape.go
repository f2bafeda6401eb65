package paths

import (
	"strings"

	"github.com/gear6io/glacier/pkg/errors"
)

const hexDigits = "0123456789ABCDEF"

// EscapeForFileName maps an arbitrary catalog identifier to a path-safe
// segment. The mapping is reversible and collision-free: ASCII letters,
// digits and '_' pass through, every other byte becomes %XX. This is the
// same scheme the catalog uses for on-disk object names, so backup layouts
// stay byte-compatible with catalog layouts.
func EscapeForFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

// UnescapeForFileName reverses EscapeForFileName.
func UnescapeForFileName(name string) (string, error) {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(name) {
			return "", errors.New(ErrMalformedEscapeSequence, "truncated escape sequence", nil).AddContext("name", name)
		}
		hi, ok1 := unhex(name[i+1])
		lo, ok2 := unhex(name[i+2])
		if !ok1 || !ok2 {
			return "", errors.New(ErrMalformedEscapeSequence, "invalid hex digits in escape sequence", nil).AddContext("name", name)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
