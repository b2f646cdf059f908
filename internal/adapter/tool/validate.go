package tool

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RequireField returns an error if value is empty or only whitespace.
func RequireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("'%s' is required", name)
	}
	return nil
}

// ValidateMaxLength checks that value has at most max runes.
func ValidateMaxLength(name, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return fmt.Errorf("'%s' is too long (%d > %d characters)", name, n, max)
	}
	return nil
}

// ValidateAll returns the first non-nil error.
func ValidateAll(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
