package domain

import "time"

// Change kinds
const (
	ChangeEntryCreated   = "entry.created"
	ChangeEntryUpdated   = "entry.updated"
	ChangeEntryDeleted   = "entry.deleted"
	ChangeEntriesCleared = "entries.cleared"
)

// ChangeEvent describes a mutation applied to the ledger store.
type ChangeEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EntryID    int64     `json:"entry_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
