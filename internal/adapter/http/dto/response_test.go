package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/domain"
)

func TestEntryFromDomain(t *testing.T) {
	date := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC).UnixMilli()
	entry := domain.Entry{
		Title:    "Netflix",
		Amount:   decimal.RequireFromString("1000.7"),
		Date:     date,
		Category: domain.CategoryNetflix,
		Type:     domain.TypeExpense,
	}.WithID(2)

	resp := EntryFromDomain(&entry)

	if resp.ID != 2 || resp.Icon != "netflix" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.FormattedDate != "05/03/24" {
		t.Fatalf("formatted date = %q", resp.FormattedDate)
	}
	if resp.FormattedAmount != "1000.70" {
		t.Fatalf("formatted amount = %q", resp.FormattedAmount)
	}
}

func TestEntriesFromDomain_EmptyEncodesAsList(t *testing.T) {
	data, err := json.Marshal(EntriesFromDomain(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [], got %s", data)
	}
}

func TestSummaryFromDomain(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	resp := SummaryFromDomain(domain.Summary{
		Income:  decimal.NewFromInt(10),
		Expense: decimal.NewFromInt(4),
		Balance: decimal.NewFromInt(6),
		Count:   3,
	}, []domain.DailyTotal{{Day: day, Amount: decimal.NewFromInt(4)}})

	if resp.Count != 3 || !resp.Balance.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected summary %+v", resp)
	}
	if len(resp.Daily) != 1 || resp.Daily[0].Day != "2024-03-05" {
		t.Fatalf("unexpected daily totals %+v", resp.Daily)
	}
}
