package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/usecase"
)

type summaryServiceStub struct {
	summary domain.Summary
	err     error
	days    int
}

func (s *summaryServiceStub) Summary(ctx context.Context) (domain.Summary, error) {
	return s.summary, s.err
}

func (s *summaryServiceStub) DailyExpenses(ctx context.Context, days int) ([]domain.DailyTotal, error) {
	s.days = days
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	totals := make([]domain.DailyTotal, days)
	for i := range totals {
		totals[i] = domain.DailyTotal{Day: start.AddDate(0, 0, i), Amount: decimal.Zero}
	}
	return totals, nil
}

func TestSummaryHandler_Get(t *testing.T) {
	stub := &summaryServiceStub{summary: domain.Summary{
		Income:  decimal.RequireFromString("8200.7"),
		Expense: decimal.RequireFromString("1501"),
		Balance: decimal.RequireFromString("6699.7"),
		Count:   4,
	}}
	handler := NewSummaryHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.days != usecase.OverviewDays {
		t.Fatalf("expected default window of %d days, got %d", usecase.OverviewDays, stub.days)
	}

	var resp dto.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("6699.7")) || resp.Count != 4 {
		t.Fatalf("unexpected summary %+v", resp)
	}
	if len(resp.Daily) != usecase.OverviewDays || resp.Daily[0].Day != "2024-01-01" {
		t.Fatalf("unexpected daily totals %+v", resp.Daily)
	}
}

func TestSummaryHandler_DaysOutOfRange(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/summary?days=0", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSummaryHandler_Error(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceStub{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	rec := httptest.NewRecorder()

	Categories(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	var resp dto.CategoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Categories) != 5 || len(resp.Types) != 2 {
		t.Fatalf("unexpected choices %+v", resp)
	}
}
