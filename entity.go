package mwdump

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var predefinedEntities = map[string]byte{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
	"apos": '\'',
}

// appendUnescaped appends raw to dst, resolving the five predefined
// XML entities and numeric character references.
func appendUnescaped(dst, raw []byte) ([]byte, error) {
	for {
		i := bytes.IndexByte(raw, '&')
		if i < 0 {
			return append(dst, raw...), nil
		}
		dst = append(dst, raw[:i]...)
		raw = raw[i+1:]

		end := bytes.IndexByte(raw, ';')
		if end < 0 {
			return dst, errors.Errorf("unterminated entity reference %q", truncate(raw))
		}
		ref := raw[:end]
		raw = raw[end+1:]

		if len(ref) > 1 && ref[0] == '#' {
			r, err := charRef(ref[1:])
			if err != nil {
				return dst, err
			}
			dst = utf8.AppendRune(dst, r)
			continue
		}
		c, ok := predefinedEntities[string(ref)]
		if !ok {
			return dst, errors.Errorf("unknown entity &%s;", ref)
		}
		dst = append(dst, c)
	}
}

func charRef(ref []byte) (rune, error) {
	base := 10
	digits := ref
	if digits[0] == 'x' {
		base = 16
		digits = digits[1:]
	}
	n, err := strconv.ParseUint(string(digits), base, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad character reference &#%s;", ref)
	}
	r := rune(n)
	if !validXMLChar(r) {
		return 0, errors.Errorf("character reference &#%s; is not a valid xml character", ref)
	}
	return r, nil
}

// validXMLChar reports whether r is in the XML 1.0 Char production.
func validXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func truncate(b []byte) []byte {
	if len(b) > 16 {
		return b[:16]
	}
	return b
}
