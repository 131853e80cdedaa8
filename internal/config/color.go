package config

import (
	"unicode/utf8"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
)

// colorLength is the number of characters a non-default color must have.
const colorLength = 6

// ParseColor validates a user supplied background color and returns it with a
// leading '#'. The sentinel DefaultColor is returned unchanged. Only the length
// is checked; "FFFFFF", "1e90ff" and "ZZZZZZ" are all accepted.
func ParseColor(s string) (string, error) {
	if s == DefaultColor {
		return s, nil
	}
	if utf8.RuneCountInString(s) == colorLength {
		return "#" + s, nil
	}
	return "", errors.ValidationError("color must be a 6 character string like FFFFFF, with no #").
		WithContext("color", s).
		Build()
}
