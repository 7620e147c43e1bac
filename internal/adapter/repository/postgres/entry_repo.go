package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/infrastructure/retry"
)

const entryColumns = `id, title, amount, date, category, type, bookmark`

// pgxPool is the subset of *pgxpool.Pool used by the repository.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// EntryRepository implements usecase.EntryRepository on PostgreSQL.
type EntryRepository struct {
	pool    pgxPool
	retrier *retry.Retrier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool, retrier *retry.Retrier) *EntryRepository {
	return newEntryRepositoryWithPool(pool, retrier)
}

func newEntryRepositoryWithPool(pool pgxPool, retrier *retry.Retrier) *EntryRepository {
	return &EntryRepository{pool: pool, retrier: retrier}
}

// Insert stores entry. When entry.ID is nil the assigned id is written back.
func (r *EntryRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	return r.retry(ctx, func() error {
		if entry.HasID() {
			_, err := r.pool.Exec(ctx,
				`INSERT INTO expense_table (id, title, amount, date, category, type, bookmark)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				entry.IDValue(), entry.Title, entry.Amount.InexactFloat64(), entry.Date, entry.Category, entry.Type, entry.Bookmark,
			)
			if err != nil {
				return fmt.Errorf("insert entry: %w", err)
			}
			return nil
		}

		var id int64
		err := r.pool.QueryRow(ctx,
			`INSERT INTO expense_table (title, amount, date, category, type, bookmark)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			entry.Title, entry.Amount.InexactFloat64(), entry.Date, entry.Category, entry.Type, entry.Bookmark,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		entry.ID = &id
		return nil
	})
}

// Update replaces the row matching entry.ID.
func (r *EntryRepository) Update(ctx context.Context, entry domain.Entry) error {
	if !entry.HasID() {
		return domain.ErrMissingID
	}

	return r.retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE expense_table
			 SET title = $1, amount = $2, date = $3, category = $4, type = $5, bookmark = $6
			 WHERE id = $7`,
			entry.Title, entry.Amount.InexactFloat64(), entry.Date, entry.Category, entry.Type, entry.Bookmark, entry.IDValue(),
		)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// Delete removes the row with the given id.
func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	return r.retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM expense_table WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// DeleteAll removes every row.
func (r *EntryRepository) DeleteAll(ctx context.Context) error {
	return r.retry(ctx, func() error {
		if _, err := r.pool.Exec(ctx, `DELETE FROM expense_table`); err != nil {
			return fmt.Errorf("delete all entries: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an entry by id.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	return r.list(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE type = $1 ORDER BY date DESC, id DESC`, entryType)
}

// ListBookmarked returns bookmarked entries.
func (r *EntryRepository) ListBookmarked(ctx context.Context) ([]domain.Entry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM expense_table WHERE bookmark ORDER BY date DESC, id DESC`)
}

// Ping checks database connectivity.
func (r *EntryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Seed inserts entries with their fixed ids and moves the identity
// sequence past them.
func (r *EntryRepository) Seed(ctx context.Context, entries []domain.Entry) error {
	return r.retry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin seed: %w", err)
		}
		defer tx.Rollback(ctx)

		for _, e := range entries {
			if _, err := tx.Exec(ctx,
				`INSERT INTO expense_table (id, title, amount, date, category, type, bookmark)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO NOTHING`,
				e.IDValue(), e.Title, e.Amount.InexactFloat64(), e.Date, e.Category, e.Type, e.Bookmark,
			); err != nil {
				return fmt.Errorf("seed entry %q: %w", e.Title, err)
			}
		}

		if _, err := tx.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('expense_table', 'id'), (SELECT COALESCE(MAX(id), 1) FROM expense_table))`,
		); err != nil {
			return fmt.Errorf("advance id sequence: %w", err)
		}

		return tx.Commit(ctx)
	})
}

func (r *EntryRepository) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func scanEntry(row pgx.Row) (domain.Entry, error) {
	var (
		e      domain.Entry
		id     int64
		amount float64
	)

	if err := row.Scan(&id, &e.Title, &amount, &e.Date, &e.Category, &e.Type, &e.Bookmark); err != nil {
		return domain.Entry{}, err
	}

	e.ID = &id
	e.Amount = decimal.NewFromFloat(amount)
	return e, nil
}
