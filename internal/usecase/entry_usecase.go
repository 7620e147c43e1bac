package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/domain"
)

const summaryCacheKey = "expense:summary"

// EntryUseCaseConfig wires the collaborators of EntryUseCase. Only Repo is
// required.
type EntryUseCaseConfig struct {
	Repo       EntryRepository
	Dispatcher *Dispatcher
	Publisher  ChangePublisher
	IDGen      IDGenerator
	Cache      Cache
	CacheTTL   time.Duration
	Recorder   Recorder
	Logger     *zerolog.Logger
	Timeout    time.Duration
	Now        func() time.Time
}

// EntryUseCase handles entry business logic.
type EntryUseCase struct {
	repo       EntryRepository
	dispatcher *Dispatcher
	publisher  ChangePublisher
	idGen      IDGenerator
	cache      Cache
	cacheTTL   time.Duration
	recorder   Recorder
	logger     zerolog.Logger
	timeout    time.Duration
	now        func() time.Time
	feed       *Feed

	// generation advances on every committed mutation; a summary computed
	// across a change is never left in the cache.
	generation atomic.Uint64
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(cfg EntryUseCaseConfig) *EntryUseCase {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultStoreTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultOverviewCacheTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	uc := &EntryUseCase{
		repo:       cfg.Repo,
		dispatcher: cfg.Dispatcher,
		publisher:  cfg.Publisher,
		idGen:      cfg.IDGen,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		recorder:   cfg.Recorder,
		logger:     logger,
		timeout:    cfg.Timeout,
		now:        cfg.Now,
	}
	uc.feed = NewFeed(uc.ListEntries, &logger)

	return uc
}

// Feed returns the live snapshot feed backed by this use case.
func (uc *EntryUseCase) Feed() *Feed {
	return uc.feed
}

// AddEntryInput represents input for creating an entry.
type AddEntryInput struct {
	Title    string
	Amount   decimal.Decimal
	Date     int64
	Category string
	Type     string
	Bookmark bool
}

// CreateEntry inserts a new entry and returns it with the store-assigned id.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input AddEntryInput) (*domain.Entry, error) {
	entry := domain.Entry{
		Title:    input.Title,
		Amount:   input.Amount,
		Date:     input.Date,
		Category: input.Category,
		Type:     input.Type,
		Bookmark: input.Bookmark,
	}

	if err := domain.ValidateEntry(entry); err != nil {
		uc.record(domain.ChangeEntryCreated, false)
		return nil, err
	}

	err := uc.mutate(ctx, 0, domain.ChangeEntryCreated, func(ctx context.Context) (int64, error) {
		err := uc.store(ctx, "insert", func(ctx context.Context) error {
			return uc.repo.Insert(ctx, &entry)
		})
		return entry.IDValue(), err
	})
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	return &entry, nil
}

// AddEntry inserts a new entry and reports whether it was stored. Failure
// details are logged, never returned.
func (uc *EntryUseCase) AddEntry(ctx context.Context, input AddEntryInput) bool {
	if _, err := uc.CreateEntry(ctx, input); err != nil {
		uc.logger.Warn().Err(err).Str("title", input.Title).Msg("add entry failed")
		return false
	}
	return true
}

// GetEntry looks up an entry by id. The second result is false when no entry
// matches.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id int64) (*domain.Entry, bool) {
	var entry *domain.Entry
	err := uc.store(ctx, "get", func(ctx context.Context) error {
		var err error
		entry, err = uc.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrEntryNotFound) {
			uc.logger.Error().Err(err).Int64("entry_id", id).Msg("get entry failed")
		}
		return nil, false
	}
	return entry, true
}

// UpdateEntry replaces the stored entry matching entry.ID.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, entry domain.Entry) error {
	if !entry.HasID() {
		return domain.ErrMissingID
	}
	if err := domain.ValidateEntry(entry); err != nil {
		return err
	}

	err := uc.mutate(ctx, entry.IDValue(), domain.ChangeEntryUpdated, func(ctx context.Context) (int64, error) {
		return entry.IDValue(), uc.store(ctx, "update", func(ctx context.Context) error {
			return uc.repo.Update(ctx, entry)
		})
	})
	if err != nil {
		return fmt.Errorf("update entry %d: %w", entry.IDValue(), err)
	}

	return nil
}

// DeleteEntry removes the entry with the given id.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, id int64) error {
	err := uc.mutate(ctx, id, domain.ChangeEntryDeleted, func(ctx context.Context) (int64, error) {
		return id, uc.store(ctx, "delete", func(ctx context.Context) error {
			return uc.repo.Delete(ctx, id)
		})
	})
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}

	return nil
}

// DeleteAll removes every entry.
func (uc *EntryUseCase) DeleteAll(ctx context.Context) error {
	err := uc.mutate(ctx, 0, domain.ChangeEntriesCleared, func(ctx context.Context) (int64, error) {
		return 0, uc.store(ctx, "delete_all", uc.repo.DeleteAll)
	})
	if err != nil {
		return fmt.Errorf("delete all entries: %w", err)
	}

	return nil
}

// ToggleBookmark flips the bookmark flag of an entry and rewrites the record.
func (uc *EntryUseCase) ToggleBookmark(ctx context.Context, id int64) (*domain.Entry, error) {
	var toggled domain.Entry

	err := uc.mutate(ctx, id, domain.ChangeEntryUpdated, func(ctx context.Context) (int64, error) {
		var current *domain.Entry
		err := uc.store(ctx, "get", func(ctx context.Context) error {
			var err error
			current, err = uc.repo.GetByID(ctx, id)
			return err
		})
		if err != nil {
			return id, err
		}

		toggled = current.ToggledBookmark()
		return id, uc.store(ctx, "update", func(ctx context.Context) error {
			return uc.repo.Update(ctx, toggled)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("toggle bookmark %d: %w", id, err)
	}

	return &toggled, nil
}

// ListEntries returns every entry, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := uc.store(ctx, "list", func(ctx context.Context) error {
		var err error
		entries, err = uc.repo.ListAll(ctx)
		return err
	})
	return entries, err
}

// ListEntriesByType returns entries whose type equals entryType exactly.
func (uc *EntryUseCase) ListEntriesByType(ctx context.Context, entryType string) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := uc.store(ctx, "list_by_type", func(ctx context.Context) error {
		var err error
		entries, err = uc.repo.ListByType(ctx, entryType)
		return err
	})
	return entries, err
}

// ListBookmarked returns bookmarked entries.
func (uc *EntryUseCase) ListBookmarked(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := uc.store(ctx, "list_bookmarked", func(ctx context.Context) error {
		var err error
		entries, err = uc.repo.ListBookmarked(ctx)
		return err
	})
	return entries, err
}

// Summary returns income, expense and balance totals over all entries.
func (uc *EntryUseCase) Summary(ctx context.Context) (domain.Summary, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, summaryCacheKey); err == nil {
			var cached domain.Summary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Msg("summary cache read failed")
		}
	}

	gen := uc.generation.Load()

	entries, err := uc.ListEntries(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summarize(entries)

	if uc.cache != nil {
		uc.cacheSummary(ctx, gen, summary)
	}

	return summary, nil
}

// cacheSummary stores summary unless a mutation committed after gen was
// read. A mutation landing between the write and the recheck is undone here,
// one landing after the recheck is undone by its own invalidation.
func (uc *EntryUseCase) cacheSummary(ctx context.Context, gen uint64, summary domain.Summary) {
	if uc.generation.Load() != gen {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, summaryCacheKey, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Msg("summary cache write failed")
		return
	}

	if uc.generation.Load() != gen {
		if err := uc.cache.Delete(ctx, summaryCacheKey); err != nil {
			uc.logger.Warn().Err(err).Msg("summary cache invalidation failed")
		}
	}
}

// DailyExpenses returns per-day expense totals for the last days days,
// ending today.
func (uc *EntryUseCase) DailyExpenses(ctx context.Context, days int) ([]domain.DailyTotal, error) {
	entries, err := uc.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DailyExpenseTotals(entries, uc.now(), days), nil
}

// Ping checks store connectivity.
func (uc *EntryUseCase) Ping(ctx context.Context) error {
	return uc.store(ctx, "ping", uc.repo.Ping)
}

// Close stops the feed. The dispatcher is owned by the caller.
func (uc *EntryUseCase) Close() {
	uc.feed.Close()
}

// mutate runs op on the dispatcher under key. op returns the id of the
// affected entry. Commit side effects run as part of the dispatched job, so
// they happen even when the caller stops waiting.
func (uc *EntryUseCase) mutate(ctx context.Context, key int64, kind string, op func(ctx context.Context) (int64, error)) error {
	run := func(ctx context.Context) error {
		entryID, err := op(ctx)
		if err != nil {
			uc.record(kind, false)
			return err
		}
		uc.afterMutation(ctx, kind, entryID)
		return nil
	}

	if uc.dispatcher == nil {
		return run(ctx)
	}
	return uc.dispatcher.Do(ctx, key, run)
}

func (uc *EntryUseCase) store(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if uc.recorder != nil {
		uc.recorder.ObserveStoreOperation(op, time.Since(start), err)
	}
	return err
}

func (uc *EntryUseCase) record(kind string, success bool) {
	if uc.recorder != nil {
		uc.recorder.RecordMutation(kind, success)
	}
}

// afterMutation runs once a mutation is committed. It never fails the caller.
func (uc *EntryUseCase) afterMutation(ctx context.Context, kind string, entryID int64) {
	uc.generation.Add(1)
	uc.record(kind, true)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, summaryCacheKey); err != nil {
			uc.logger.Warn().Err(err).Msg("summary cache invalidation failed")
		}
	}

	if uc.publisher != nil {
		event := &domain.ChangeEvent{
			Kind:       kind,
			EntryID:    entryID,
			OccurredAt: uc.now().UTC(),
		}
		if uc.idGen != nil {
			event.ID = uc.idGen.Generate()
		}
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Error().Err(err).Str("kind", kind).Int64("entry_id", entryID).Msg("publish change event failed")
		}
	}

	uc.feed.Refresh(ctx)
}
