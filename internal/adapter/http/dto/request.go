package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// EntryRequest is the body of entry create and update requests.
// Amount is free text; malformed values become zero.
type EntryRequest struct {
	Title    string `json:"title" validate:"max=200"`
	Amount   string `json:"amount"`
	Date     int64  `json:"date" validate:"gte=0"`
	Category string `json:"category" validate:"max=100"`
	Type     string `json:"type" validate:"max=50"`
	Bookmark bool   `json:"bookmark"`
}

// Validate checks the field bounds of the request.
func (r *EntryRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts to use case input.
func (r *EntryRequest) ToUseCaseInput() usecase.AddEntryInput {
	return usecase.AddEntryInput{
		Title:    r.Title,
		Amount:   domain.ParseAmount(r.Amount),
		Date:     r.Date,
		Category: r.Category,
		Type:     r.Type,
		Bookmark: r.Bookmark,
	}
}

// ToDomain converts the request into the entry stored under id.
func (r *EntryRequest) ToDomain(id int64) domain.Entry {
	return domain.Entry{
		Title:    r.Title,
		Amount:   domain.ParseAmount(r.Amount),
		Date:     r.Date,
		Category: r.Category,
		Type:     r.Type,
		Bookmark: r.Bookmark,
	}.WithID(id)
}
