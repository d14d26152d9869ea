package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// pollLockKey is the advisory lock taken by Update. Any constant works as
// long as every replica uses the same one.
const pollLockKey int64 = 0x77706f6c6c

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Load(ctx context.Context) (*domain.PollState, error) {
	return r.load(ctx, r.db)
}

func (r *pollRepository) Save(ctx context.Context, state *domain.PollState) error {
	return r.save(ctx, r.db, state)
}

// Update serializes read-modify-write cycles across every process sharing
// the database with a transaction-scoped advisory lock.
func (r *pollRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.PollState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, pollLockKey); err != nil {
		return nil, fmt.Errorf("%w: failed to acquire poll lock: %w", domain.ErrPersistence, err)
	}

	current, err := r.load(ctx, tx)
	if err != nil && !errors.Is(err, domain.ErrNoActivePoll) {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, domain.ErrNoActivePoll
	}

	if err := r.save(ctx, tx, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrPersistence, err)
	}

	return next, nil
}

func (r *pollRepository) load(ctx context.Context, q querier) (*domain.PollState, error) {
	query := `
		SELECT document
		FROM poll_state
		WHERE id = 1
	`

	var document []byte
	err := q.QueryRowContext(ctx, query).Scan(&document)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNoActivePoll
		}
		return nil, fmt.Errorf("%w: failed to get poll: %w", domain.ErrPersistence, err)
	}

	var state domain.PollState
	if err := json.Unmarshal(document, &state); err != nil {
		return nil, fmt.Errorf("%w: failed to decode poll document: %w", domain.ErrPersistence, err)
	}
	return &state, nil
}

func (r *pollRepository) save(ctx context.Context, q querier, state *domain.PollState) error {
	if state == nil {
		return fmt.Errorf("%w: refusing to save a nil poll", domain.ErrPersistence)
	}
	document, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}

	query := `
		INSERT INTO poll_state (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`
	if _, err := q.ExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("%w: failed to save poll: %w", domain.ErrPersistence, err)
	}
	return nil
}
