// Package file stores the poll as a single JSON document on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// DefaultPath is used when no path is configured.
var DefaultPath = filepath.Join("data", "poll.json")

// PollRepository keeps the poll document at Path. Writes go to a temp file in
// the same directory and are renamed over the document, so readers never see
// a partial write. Only one process should use a given path.
type PollRepository struct {
	Path string

	mu sync.Mutex
}

func NewPollRepository(path string) *PollRepository {
	if path == "" {
		path = DefaultPath
	}
	return &PollRepository{Path: path}
}

var _ ports.PollRepository = (*PollRepository)(nil)

func (r *PollRepository) Load(ctx context.Context) (*domain.PollState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *PollRepository) Save(ctx context.Context, state *domain.PollState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(state)
}

func (r *PollRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.PollState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current, err := r.load()
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
	if err := r.save(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *PollRepository) load() (*domain.PollState, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoActivePoll
		}
		return nil, fmt.Errorf("%w: failed to read poll file: %w", domain.ErrPersistence, err)
	}

	var state domain.PollState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: failed to decode poll file %s: %w", domain.ErrPersistence, r.Path, err)
	}
	return &state, nil
}

func (r *PollRepository) save(state *domain.PollState) error {
	if state == nil {
		return fmt.Errorf("%w: refusing to save a nil poll", domain.ErrPersistence)
	}
	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to ensure data directory: %w", domain.ErrPersistence, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-poll-*.json")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", domain.ErrPersistence, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %w", domain.ErrPersistence, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("%w: failed to fsync temp file: %w", domain.ErrPersistence, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %w", domain.ErrPersistence, err)
	}
	if err := os.Rename(tmpPath, r.Path); err != nil {
		return fmt.Errorf("%w: failed to replace poll file: %w", domain.ErrPersistence, err)
	}
	return nil
}
