package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEntry(t *testing.T) {
	t.Parallel()

	t.Run("free-form values accepted", func(t *testing.T) {
		if err := ValidateEntry(Entry{Title: "Coffee", Category: "Food", Type: "Gift"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("title too long", func(t *testing.T) {
		err := ValidateEntry(Entry{Title: strings.Repeat("a", MaxTitleLength+1)})
		if !errors.Is(err, ErrTitleTooLong) {
			t.Fatalf("expected ErrTitleTooLong, got %v", err)
		}
	})

	t.Run("category too long", func(t *testing.T) {
		err := ValidateEntry(Entry{Category: strings.Repeat("é", MaxCategoryLength+1)})
		if !errors.Is(err, ErrCategoryTooLong) {
			t.Fatalf("expected ErrCategoryTooLong, got %v", err)
		}
	})

	t.Run("type too long", func(t *testing.T) {
		err := ValidateEntry(Entry{Type: strings.Repeat("x", MaxTypeLength+1)})
		if !errors.Is(err, ErrTypeTooLong) {
			t.Fatalf("expected ErrTypeTooLong, got %v", err)
		}
	})
}
