package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/usecase"
)

type entryServiceStub struct {
	createFn   func(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error)
	getFn      func(ctx context.Context, id int64) (*domain.Entry, bool)
	updateFn   func(ctx context.Context, entry domain.Entry) error
	deleteFn   func(ctx context.Context, id int64) error
	deleteAll  func(ctx context.Context) error
	toggleFn   func(ctx context.Context, id int64) (*domain.Entry, error)
	listFn     func(ctx context.Context) ([]domain.Entry, error)
	listTypeFn func(ctx context.Context, entryType string) ([]domain.Entry, error)
	bookmarkFn func(ctx context.Context) ([]domain.Entry, error)
}

func (s *entryServiceStub) CreateEntry(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error) {
	return s.createFn(ctx, input)
}

func (s *entryServiceStub) GetEntry(ctx context.Context, id int64) (*domain.Entry, bool) {
	return s.getFn(ctx, id)
}

func (s *entryServiceStub) UpdateEntry(ctx context.Context, entry domain.Entry) error {
	return s.updateFn(ctx, entry)
}

func (s *entryServiceStub) DeleteEntry(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *entryServiceStub) DeleteAll(ctx context.Context) error {
	return s.deleteAll(ctx)
}

func (s *entryServiceStub) ToggleBookmark(ctx context.Context, id int64) (*domain.Entry, error) {
	return s.toggleFn(ctx, id)
}

func (s *entryServiceStub) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	return s.listFn(ctx)
}

func (s *entryServiceStub) ListEntriesByType(ctx context.Context, entryType string) ([]domain.Entry, error) {
	return s.listTypeFn(ctx, entryType)
}

func (s *entryServiceStub) ListBookmarked(ctx context.Context) ([]domain.Entry, error) {
	return s.bookmarkFn(ctx)
}

// withID routes req through a chi context carrying the {id} parameter.
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestEntryHandler_Create_Success(t *testing.T) {
	var captured usecase.AddEntryInput
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error) {
			captured = input
			entry := domain.Entry{
				Title:    input.Title,
				Amount:   input.Amount,
				Category: input.Category,
				Type:     input.Type,
			}.WithID(5)
			return &entry, nil
		},
	})

	body, _ := json.Marshal(dto.EntryRequest{
		Title:    "Salary",
		Amount:   "6200.70",
		Category: domain.CategorySalary,
		Type:     domain.TypeIncome,
	})

	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if !captured.Amount.Equal(decimal.RequireFromString("6200.7")) {
		t.Fatalf("expected parsed amount 6200.7, got %s", captured.Amount)
	}

	var resp dto.CreateEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Created || resp.Entry == nil || resp.Entry.ID != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestEntryHandler_Create_MalformedAmountStoresZero(t *testing.T) {
	var captured usecase.AddEntryInput
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error) {
			captured = input
			entry := domain.Entry{Title: input.Title, Amount: input.Amount}.WithID(1)
			return &entry, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{"title":"x","amount":"abc","type":"Expense"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !captured.Amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", captured.Amount)
	}
}

func TestEntryHandler_Create_FailureReportsNotCreated(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error) {
			return nil, errors.New("disk full")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{"title":"x","amount":"1"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.CreateEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Created || resp.Entry != nil {
		t.Fatalf("expected created=false without entry, got %+v", resp)
	}
}

func TestEntryHandler_Create_RejectsLongTitle(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.EntryRequest{Title: strings.Repeat("a", domain.MaxTitleLength+1)})
	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestEntryHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntryHandler_List_FiltersByType(t *testing.T) {
	var requestedType string
	handler := NewEntryHandler(&entryServiceStub{
		listTypeFn: func(ctx context.Context, entryType string) ([]domain.Entry, error) {
			requestedType = entryType
			return []domain.Entry{domain.Entry{Title: "Upwork", Type: domain.TypeIncome}.WithID(4)}, nil
		},
		listFn: func(ctx context.Context) ([]domain.Entry, error) {
			t.Fatal("unfiltered listing must not be used")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries?type=Income", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if requestedType != domain.TypeIncome {
		t.Fatalf("expected type Income, got %q", requestedType)
	}

	var resp []dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Title != "Upwork" {
		t.Fatalf("unexpected entries %+v", resp)
	}
}

func TestEntryHandler_List_Error(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context) ([]domain.Entry, error) {
			return nil, errors.New("database is locked")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestEntryHandler_ListBookmarked(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		bookmarkFn: func(ctx context.Context) ([]domain.Entry, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries/bookmarks", nil)
	rec := httptest.NewRecorder()

	handler.ListBookmarked(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty list, got %s", got)
	}
}

func TestEntryHandler_Get_NotFound(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Entry, bool) {
			return nil, false
		},
	})

	req := withID(httptest.NewRequest(http.MethodGet, "/entries/99", nil), "99")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEntryHandler_Get_InvalidID(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{})

	req := withID(httptest.NewRequest(http.MethodGet, "/entries/abc", nil), "abc")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntryHandler_Get_Success(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Entry, bool) {
			entry := domain.Entry{Title: "Paypal", Category: domain.CategoryPaypal}.WithID(id)
			return &entry, true
		},
	})

	req := withID(httptest.NewRequest(http.MethodGet, "/entries/3", nil), "3")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 3 || resp.Icon != string(domain.IconPaypal) {
		t.Fatalf("unexpected entry %+v", resp)
	}
}

func TestEntryHandler_Update(t *testing.T) {
	var updated domain.Entry
	handler := NewEntryHandler(&entryServiceStub{
		updateFn: func(ctx context.Context, entry domain.Entry) error {
			updated = entry
			return nil
		},
	})

	req := withID(httptest.NewRequest(http.MethodPut, "/entries/2", strings.NewReader(`{"title":"Netflix","amount":"12","type":"Expense","bookmark":true}`)), "2")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated.IDValue() != 2 || !updated.Bookmark || updated.Title != "Netflix" {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestEntryHandler_Update_NotFound(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		updateFn: func(ctx context.Context, entry domain.Entry) error {
			return domain.ErrEntryNotFound
		},
	})

	req := withID(httptest.NewRequest(http.MethodPut, "/entries/8", strings.NewReader(`{"title":"x"}`)), "8")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEntryHandler_ToggleBookmark(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		toggleFn: func(ctx context.Context, id int64) (*domain.Entry, error) {
			entry := domain.Entry{Title: "Upwork", Bookmark: true}.WithID(id)
			return &entry, nil
		},
	})

	req := withID(httptest.NewRequest(http.MethodPost, "/entries/4/bookmark", nil), "4")
	rec := httptest.NewRecorder()

	handler.ToggleBookmark(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Bookmark {
		t.Fatalf("expected bookmarked entry, got %+v", resp)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	var deleted int64
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	})

	req := withID(httptest.NewRequest(http.MethodDelete, "/entries/6", nil), "6")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != 6 {
		t.Fatalf("expected id 6 deleted, got %d", deleted)
	}
}

func TestEntryHandler_DeleteAll(t *testing.T) {
	called := false
	handler := NewEntryHandler(&entryServiceStub{
		deleteAll: func(ctx context.Context) error {
			called = true
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/entries", nil)
	rec := httptest.NewRecorder()

	handler.DeleteAll(rec, req)

	if rec.Code != http.StatusNoContent || !called {
		t.Fatalf("expected 204 and service call, got %d (called=%v)", rec.Code, called)
	}
}
