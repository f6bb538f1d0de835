package message

import (
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// PathUnescape decodes %XX escapes in s. Escapes that are not followed by two
// hex digits are kept literally. The decoded bytes must form valid UTF-8.
func PathUnescape(s string) (string, error) {
	if strings.IndexByte(s, '%') == -1 {
		if !utf8.ValidString(s) {
			return "", ErrInvalidPathEncoding
		}
		return s, nil
	}

	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]) {
			b = append(b, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		b = append(b, c)
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidPathEncoding
	}
	return string(b), nil
}

// EscapeSegment percent-encodes every byte of s that is not an ASCII letter
// or digit.
func EscapeSegment(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0x0f])
	}
	return sb.String()
}

// EscapePath encodes each '/'-separated segment of p with EscapeSegment and
// joins them back with '/'.
func EscapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = EscapeSegment(seg)
	}
	return strings.Join(segs, "/")
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
