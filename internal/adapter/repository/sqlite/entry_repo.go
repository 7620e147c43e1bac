package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/infrastructure/retry"
)

const entryColumns = `id, title, amount, date, category, type, bookmark`

// EntryRepository implements usecase.EntryRepository on an SQLite database.
type EntryRepository struct {
	db      *sql.DB
	retrier *retry.Retrier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db *sql.DB, retrier *retry.Retrier) *EntryRepository {
	return &EntryRepository{db: db, retrier: retrier}
}

// Insert stores entry. When entry.ID is nil the assigned id is written back.
func (r *EntryRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	return r.retry(ctx, func() error {
		var id sql.NullInt64
		if entry.HasID() {
			id = sql.NullInt64{Int64: entry.IDValue(), Valid: true}
		}

		res, err := r.db.ExecContext(ctx,
			`INSERT INTO expense_table (id, title, amount, date, category, type, bookmark)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, entry.Title, entry.Amount.InexactFloat64(), entry.Date, entry.Category, entry.Type, entry.Bookmark,
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		if !entry.HasID() {
			newID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("read inserted id: %w", err)
			}
			entry.ID = &newID
		}
		return nil
	})
}

// Update replaces the row matching entry.ID.
func (r *EntryRepository) Update(ctx context.Context, entry domain.Entry) error {
	if !entry.HasID() {
		return domain.ErrMissingID
	}

	return r.retry(ctx, func() error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE expense_table
			 SET title = ?, amount = ?, date = ?, category = ?, type = ?, bookmark = ?
			 WHERE id = ?`,
			entry.Title, entry.Amount.InexactFloat64(), entry.Date, entry.Category, entry.Type, entry.Bookmark, entry.IDValue(),
		)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return requireAffected(res)
	})
}

// Delete removes the row with the given id.
func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	return r.retry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM expense_table WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return requireAffected(res)
	})
}

// DeleteAll removes every row.
func (r *EntryRepository) DeleteAll(ctx context.Context) error {
	return r.retry(ctx, func() error {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_table`); err != nil {
			return fmt.Errorf("delete all entries: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an entry by id.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// ListAll returns all entries ordered by date, newest first.
func (r *EntryRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM expense_table ORDER BY date DESC, id DESC`)
}

// ListByType returns entries of the given type ordered by date, newest first.
func (r *EntryRepository) ListByType(ctx context.Context, entryType string) ([]domain.Entry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE type = ? ORDER BY date DESC, id DESC`, entryType)
}

// ListBookmarked returns bookmarked entries.
func (r *EntryRepository) ListBookmarked(ctx context.Context) ([]domain.Entry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE bookmark = 1 ORDER BY date DESC, id DESC`)
}

// Ping checks database connectivity.
func (r *EntryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Seed inserts entries with their fixed ids in a single transaction.
func (r *EntryRepository) Seed(ctx context.Context, entries []domain.Entry) error {
	return r.retry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin seed: %w", err)
		}
		defer tx.Rollback()

		for _, e := range entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO expense_table (id, title, amount, date, category, type, bookmark)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				e.IDValue(), e.Title, e.Amount.InexactFloat64(), e.Date, e.Category, e.Type, e.Bookmark,
			); err != nil {
				return fmt.Errorf("seed entry %q: %w", e.Title, err)
			}
		}

		return tx.Commit()
	})
}

func (r *EntryRepository) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

func (r *EntryRepository) retry(ctx context.Context, op func() error) error {
	if r.retrier == nil {
		return op()
	}
	return r.retrier.Retry(ctx, op)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (domain.Entry, error) {
	var (
		e      domain.Entry
		id     int64
		amount float64
	)

	if err := s.Scan(&id, &e.Title, &amount, &e.Date, &e.Category, &e.Type, &e.Bookmark); err != nil {
		return domain.Entry{}, err
	}

	e.ID = &id
	e.Amount = decimal.NewFromFloat(amount)
	return e, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
