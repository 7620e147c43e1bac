package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/domain"
)

const dayLayout = "2006-01-02"

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Amount          decimal.Decimal `json:"amount"`
	Date            int64           `json:"date"`
	Category        string          `json:"category"`
	Type            string          `json:"type"`
	Bookmark        bool            `json:"bookmark"`
	Icon            string          `json:"icon"`
	FormattedDate   string          `json:"formatted_date"`
	FormattedAmount string          `json:"formatted_amount"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.IDValue(),
		Title:           e.Title,
		Amount:          e.Amount,
		Date:            e.Date,
		Category:        e.Category,
		Type:            e.Type,
		Bookmark:        e.Bookmark,
		Icon:            string(domain.IconFor(*e)),
		FormattedDate:   domain.FormatDate(e.Date),
		FormattedAmount: domain.FormatAmount(e.Amount),
	}
}

// EntriesFromDomain converts domain entries to responses. A nil slice yields
// an empty list.
func EntriesFromDomain(entries []domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i := range entries {
		result[i] = EntryFromDomain(&entries[i])
	}
	return result
}

// CreateEntryResponse reports the outcome of an insert.
type CreateEntryResponse struct {
	Created bool           `json:"created"`
	Entry   *EntryResponse `json:"entry,omitempty"`
}

// DailyTotalResponse is the expense total of one day.
type DailyTotalResponse struct {
	Day    string          `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

// SummaryResponse holds overview totals.
type SummaryResponse struct {
	Income  decimal.Decimal      `json:"income"`
	Expense decimal.Decimal      `json:"expense"`
	Balance decimal.Decimal      `json:"balance"`
	Count   int                  `json:"count"`
	Daily   []DailyTotalResponse `json:"daily"`
}

// SummaryFromDomain converts aggregates to a response.
func SummaryFromDomain(s domain.Summary, daily []domain.DailyTotal) *SummaryResponse {
	resp := &SummaryResponse{
		Income:  s.Income,
		Expense: s.Expense,
		Balance: s.Balance,
		Count:   s.Count,
		Daily:   make([]DailyTotalResponse, len(daily)),
	}
	for i, d := range daily {
		resp.Daily[i] = DailyTotalResponse{Day: d.Day.Format(dayLayout), Amount: d.Amount}
	}
	return resp
}

// CategoriesResponse lists form choices.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Types      []string `json:"types"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
