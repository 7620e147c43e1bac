package domain

import (
	"github.com/shopspring/decimal"
)

// Entry types recognised by aggregation.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
)

// Category suggestions offered by entry forms. Free text is accepted as well.
const (
	CategoryNetflix = "Netflix"
	CategoryPaypal  = "Paypal"
	CategorySalary  = "Salary"
	CategoryUpwork  = "Upwork"
	CategoryOthers  = "Others"
)

// Entry represents a single income or expense record.
type Entry struct {
	// ID is nil until the store assigns one on insert.
	ID       *int64
	Title    string
	Amount   decimal.Decimal
	Date     int64 // milliseconds since epoch, 0 when unset
	Category string
	Type     string
	Bookmark bool
}

// HasID reports whether the entry has been persisted.
func (e Entry) HasID() bool {
	return e.ID != nil
}

// IDValue returns the entry id or 0 when unassigned.
func (e Entry) IDValue() int64 {
	if e.ID == nil {
		return 0
	}
	return *e.ID
}

// WithID returns a copy of e carrying the given id.
func (e Entry) WithID(id int64) Entry {
	e.ID = &id
	return e
}

// ToggledBookmark returns a copy of e with the bookmark flag flipped.
func (e Entry) ToggledBookmark() Entry {
	e.Bookmark = !e.Bookmark
	return e
}

// CategorySuggestions returns the categories offered by entry forms.
func CategorySuggestions() []string {
	return []string{CategoryNetflix, CategoryPaypal, CategorySalary, CategoryUpwork, CategoryOthers}
}

// TypeChoices returns the entry types offered by entry forms.
func TypeChoices() []string {
	return []string{TypeIncome, TypeExpense}
}

// SampleEntries returns the fixture rows inserted when a store is first created.
func SampleEntries(date int64) []Entry {
	return []Entry{
		Entry{Title: "Salary", Amount: decimal.RequireFromString("6200.70"), Date: date, Category: CategorySalary, Type: TypeIncome}.WithID(1),
		Entry{Title: "Netflix", Amount: decimal.RequireFromString("1000.70"), Date: date, Category: CategoryNetflix, Type: TypeExpense}.WithID(2),
		Entry{Title: "Paypal", Amount: decimal.RequireFromString("500.30"), Date: date, Category: CategoryPaypal, Type: TypeExpense}.WithID(3),
		Entry{Title: "Upwork", Amount: decimal.RequireFromString("2000.00"), Date: date, Category: CategoryUpwork, Type: TypeIncome}.WithID(4),
	}
}
