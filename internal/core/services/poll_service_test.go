package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

func TestPollService_ToggleFlow(t *testing.T) {
	ctx := context.Background()
	svc := NewPollService(memory.NewPollRepository())

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActivePoll)

	_, err = svc.Toggle(ctx, "mon", "Alice")
	assert.ErrorIs(t, err, domain.ErrNoActivePoll)

	state, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.True(t, domain.Reset().Equal(state))

	res, err := svc.Toggle(ctx, "mon", "Alice")
	require.NoError(t, err)
	assert.True(t, res.Joined)
	assert.Equal(t, domain.Monday, res.Option)

	res, err = svc.Toggle(ctx, "mon", "Bob")
	require.NoError(t, err)
	assert.Equal(t, []domain.Participant{"Alice", "Bob"}, res.State.Participants(domain.Monday))

	res, err = svc.Toggle(ctx, "mon", "Alice")
	require.NoError(t, err)
	assert.False(t, res.Joined)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Participant{"Bob"}, current.Participants(domain.Monday))
	assert.Empty(t, current.Participants(domain.Tuesday))
}

func TestPollService_InvalidOptionLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := NewPollService(repo)
	_, err := svc.Reset(ctx)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, "tue", "Alice")
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, "Funday", "Alice")
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	current, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Participant{"Alice"}, current.Participants(domain.Tuesday))
}

func TestPollService_PersistenceError(t *testing.T) {
	svc := NewPollService(&brokenRepository{state: domain.Reset()})

	_, err := svc.Toggle(context.Background(), "wed", "Alice")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = svc.Reset(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
