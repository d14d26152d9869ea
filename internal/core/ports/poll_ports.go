package ports

import (
	"context"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

// UpdateFunc computes the next poll state from the current one. current is
// nil when no poll is active. Returning an error aborts the update without
// saving anything.
type UpdateFunc func(current *domain.PollState) (*domain.PollState, error)

// PollRepository owns the durable copy of the poll.
type PollRepository interface {
	// Load returns domain.ErrNoActivePoll when nothing was ever saved.
	Load(ctx context.Context) (*domain.PollState, error)
	// Save replaces the stored poll atomically.
	Save(ctx context.Context, state *domain.PollState) error
	// Update runs load, fn and save as one serialized step.
	Update(ctx context.Context, fn UpdateFunc) (*domain.PollState, error)
}

type ToggleResult struct {
	State  *domain.PollState
	Option domain.Option
	Joined bool
}

type PollService interface {
	Current(ctx context.Context) (*domain.PollState, error)
	Toggle(ctx context.Context, optionTag string, participant domain.Participant) (*ToggleResult, error)
	Reset(ctx context.Context) (*domain.PollState, error)
}
