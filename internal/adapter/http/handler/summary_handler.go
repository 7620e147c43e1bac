package handler

import (
	"context"
	"net/http"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/usecase"
)

const maxSummaryDays = 366

// SummaryService computes overview aggregates.
type SummaryService interface {
	Summary(ctx context.Context) (domain.Summary, error)
	DailyExpenses(ctx context.Context, days int) ([]domain.DailyTotal, error)
}

// SummaryHandler serves the overview figures.
type SummaryHandler struct {
	summaryUC SummaryService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryUC SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryUC: summaryUC}
}

// Get returns totals plus daily expense sums for the last ?days= days.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	days := parseIntQuery(r, "days", usecase.OverviewDays)
	if days < 1 || days > maxSummaryDays {
		writeError(w, http.StatusBadRequest, "days out of range", "")
		return
	}

	summary, err := h.summaryUC.Summary(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute summary", err.Error())
		return
	}

	daily, err := h.summaryUC.DailyExpenses(r.Context(), days)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute daily totals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary, daily))
}

// Categories lists the category suggestions and type choices of entry forms.
func Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{
		Categories: domain.CategorySuggestions(),
		Types:      domain.TypeChoices(),
	})
}
