// Package memory keeps the poll in process memory. The poll is lost when the
// process stops, so this is mainly useful for tests and local runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

type PollRepository struct {
	mu    sync.Mutex
	state *domain.PollState
}

func NewPollRepository() *PollRepository {
	return &PollRepository{}
}

var _ ports.PollRepository = (*PollRepository)(nil)

func (r *PollRepository) Load(ctx context.Context) (*domain.PollState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *PollRepository) Save(ctx context.Context, state *domain.PollState) error {
	if state == nil {
		return fmt.Errorf("%w: refusing to save a nil poll", domain.ErrPersistence)
	}
	r.mu.Lock()
	r.state = state.Clone()
	r.mu.Unlock()
	return nil
}

func (r *PollRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.PollState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
	r.state = next.Clone()
	return next, nil
}

func (r *PollRepository) load() (*domain.PollState, error) {
	if r.state == nil {
		return nil, domain.ErrNoActivePoll
	}
	return r.state.Clone(), nil
}
