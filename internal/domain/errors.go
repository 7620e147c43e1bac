package domain

import "errors"

var (
	// Entry errors
	ErrEntryNotFound = errors.New("entry not found")
	ErrMissingID     = errors.New("entry has no id")
)
