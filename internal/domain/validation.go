package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Validation errors
var (
	ErrTitleTooLong    = errors.New("title too long")
	ErrCategoryTooLong = errors.New("category too long")
	ErrTypeTooLong     = errors.New("type too long")
)

// Validation constants
const (
	MaxTitleLength    = 200
	MaxCategoryLength = 100
	MaxTypeLength     = 50
)

// ValidateEntry checks field length bounds. Content is otherwise free-form:
// unknown categories and types are accepted and handled by aggregation.
func ValidateEntry(e Entry) error {
	if n := utf8.RuneCountInString(e.Title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrTitleTooLong, n, MaxTitleLength)
	}

	if n := utf8.RuneCountInString(e.Category); n > MaxCategoryLength {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrCategoryTooLong, n, MaxCategoryLength)
	}

	if n := utf8.RuneCountInString(e.Type); n > MaxTypeLength {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrTypeTooLong, n, MaxTypeLength)
	}

	return nil
}
