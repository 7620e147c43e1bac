package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/usecase"
)

// EntryService is the subset of the entry use case served over HTTP.
type EntryService interface {
	CreateEntry(ctx context.Context, input usecase.AddEntryInput) (*domain.Entry, error)
	GetEntry(ctx context.Context, id int64) (*domain.Entry, bool)
	UpdateEntry(ctx context.Context, entry domain.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ToggleBookmark(ctx context.Context, id int64) (*domain.Entry, error)
	ListEntries(ctx context.Context) ([]domain.Entry, error)
	ListEntriesByType(ctx context.Context, entryType string) ([]domain.Entry, error)
	ListBookmarked(ctx context.Context) ([]domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create inserts an entry. Any failure answers 422 with created=false.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	logger := zerolog.Ctx(r.Context())

	if err := req.Validate(); err != nil {
		logger.Warn().Err(err).Msg("entry rejected")
		writeJSON(w, http.StatusUnprocessableEntity, dto.CreateEntryResponse{Created: false})
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		logger.Warn().Err(err).Str("title", req.Title).Msg("entry not stored")
		writeJSON(w, http.StatusUnprocessableEntity, dto.CreateEntryResponse{Created: false})
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateEntryResponse{
		Created: true,
		Entry:   dto.EntryFromDomain(entry),
	})
}

// List returns all entries, or only those of ?type= when given.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.Entry
		err     error
	)

	if entryType := r.URL.Query().Get("type"); entryType != "" {
		entries, err = h.entryUC.ListEntriesByType(r.Context(), entryType)
	} else {
		entries, err = h.entryUC.ListEntries(r.Context())
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListBookmarked returns bookmarked entries.
func (h *EntryHandler) ListBookmarked(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryUC.ListBookmarked(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list bookmarks", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Get returns a single entry.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	entry, ok := h.entryUC.GetEntry(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Update replaces an entry.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var req dto.EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}

	entry := req.ToDomain(id)
	if err := h.entryUC.UpdateEntry(r.Context(), entry); err != nil {
		writeError(w, mapDomainError(err), "failed to update entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(&entry))
}

// ToggleBookmark flips the bookmark flag of an entry.
func (h *EntryHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	entry, err := h.entryUC.ToggleBookmark(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to toggle bookmark", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete removes an entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.entryUC.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete entry", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll removes every entry.
func (h *EntryHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.entryUC.DeleteAll(r.Context()); err != nil {
		writeError(w, mapDomainError(err), "failed to delete entries", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
