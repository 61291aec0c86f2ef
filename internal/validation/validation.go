package validation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidName is returned for empty, oversized, or bad-charset names.
var ErrInvalidName = errors.New("invalid name")

// Names are 1-100 characters: letters, digits, space, underscore, hyphen, period.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9 _\-.]{1,100}$`)

// Name trims the input and checks length and charset.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || !nameRe.MatchString(name) {
		return "", ErrInvalidName
	}
	return name, nil
}

// Description trims surrounding whitespace; empty descriptions become nil.
func Description(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
