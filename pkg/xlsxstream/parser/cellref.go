package parser

import (
	"errors"
	"strings"
)

// ErrInvalidColumn is returned for column names that are empty or contain
// anything but ASCII letters.
var ErrInvalidColumn = errors.New("invalid column name")

// MaxColumns is the column limit of the xlsx format (XFD).
const MaxColumns = 16384

// ColumnIndex decodes column letters into a zero-based index: A is 0,
// Z is 25, AA is 26. Letters are case-insensitive.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, ErrInvalidColumn
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return 0, ErrInvalidColumn
		}
		n = n*26 + int(c-'A'+1)
		if n > MaxColumns {
			return 0, ErrInvalidColumn
		}
	}
	return n - 1, nil
}

// ColumnName encodes a zero-based column index into letters.
func ColumnName(index int) (string, error) {
	if index < 0 || index >= MaxColumns {
		return "", ErrInvalidColumn
	}
	var buf [3]byte
	i := len(buf)
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:]), nil
}

// splitCellRef separates the column letters of a reference such as "AB12"
// from its row digits.
func splitCellRef(ref string) (letters, digits string) {
	i := strings.IndexFunc(ref, func(r rune) bool {
		return r < 'A' || (r > 'Z' && r < 'a') || r > 'z'
	})
	if i < 0 {
		return ref, ""
	}
	return ref[:i], ref[i:]
}
