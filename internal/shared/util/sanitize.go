package util

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFileNameBytes = 128

// ErrInvalidFileName is returned for names that cannot be forwarded safely.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded file name safe to forward in a
// multipart header. Path separators become underscores, control characters
// are dropped and traversal patterns are rejected. Long names are cut from
// the front of the stem so the extension survives.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r == '"':
			return '\''
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" || strings.Trim(s, "_.") == "" {
		return "", ErrInvalidFileName
	}
	if len(s) > maxFileNameBytes {
		ext := ""
		if i := strings.LastIndexByte(s, '.'); i > 0 && len(s)-i <= 8 {
			ext = s[i:]
		}
		stem := s[:maxFileNameBytes-len(ext)]
		for !utf8.ValidString(stem) {
			stem = stem[:len(stem)-1]
		}
		s = stem + ext
	}
	return s, nil
}
