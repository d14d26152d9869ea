// Package porttest holds contract suites shared by port implementations.
package porttest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// RunPollRepositoryContract checks a PollRepository implementation. newRepo
// must return a repository backed by empty storage on every call.
func RunPollRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.PollRepository) {
	t.Helper()

	t.Run("LoadWithoutSave", func(t *testing.T) {
		repo := newRepo(t)
		state, err := repo.Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoActivePoll)
		assert.Nil(t, state)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		state, err := domain.Toggle(domain.Reset(), domain.Monday, "Alice")
		require.NoError(t, err)
		state, err = domain.Toggle(state, domain.Monday, "Bob")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, state))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Participant{"Alice", "Bob"}, loaded.Participants(domain.Monday))
		for _, o := range domain.Options() {
			assert.True(t, loaded.Has(o), "option %s must survive a round trip", o)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		state, err := domain.Toggle(domain.Reset(), domain.Friday, "Alice")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, state))
		require.NoError(t, repo.Save(ctx, domain.Reset()))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.True(t, domain.Reset().Equal(loaded))
	})

	t.Run("SaveNilIsRejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		assert.ErrorIs(t, repo.Save(ctx, nil), domain.ErrPersistence)
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNoActivePoll, "a rejected save must not store anything")

		require.NoError(t, repo.Save(ctx, domain.Reset()))
		assert.ErrorIs(t, repo.Save(ctx, nil), domain.ErrPersistence)
		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.True(t, domain.Reset().Equal(loaded))
	})

	t.Run("UpdateWithoutPoll", func(t *testing.T) {
		repo := newRepo(t)
		var seen *domain.PollState
		called := false
		_, err := repo.Update(context.Background(), func(current *domain.PollState) (*domain.PollState, error) {
			called = true
			seen = current
			return domain.Reset(), nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, seen)

		loaded, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(domain.Options()), loaded.Len())
	})

	t.Run("UpdateErrorSavesNothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, domain.Reset()))

		boom := errors.New("boom")
		_, err := repo.Update(ctx, func(current *domain.PollState) (*domain.PollState, error) {
			return domain.Toggle(current, domain.Monday, "Alice")
		})
		require.NoError(t, err)
		_, err = repo.Update(ctx, func(current *domain.PollState) (*domain.PollState, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Participant{"Alice"}, loaded.Participants(domain.Monday))
	})

	t.Run("ConcurrentUpdatesAreSerialized", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, domain.Reset()))

		const workers = 12
		expected := map[domain.Option]int{domain.Wednesday: workers}
		var wg sync.WaitGroup
		errs := make(chan error, workers*2)
		for i := 0; i < workers; i++ {
			name := domain.Participant(fmt.Sprintf("user-%02d", i))
			other := domain.Options()[i%len(domain.Options())]
			expected[other]++
			wg.Add(2)
			// same option for everybody
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, func(current *domain.PollState) (*domain.PollState, error) {
					return domain.Toggle(current, domain.Wednesday, name)
				})
				errs <- err
			}()
			// spread over all options
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, func(current *domain.PollState) (*domain.PollState, error) {
					return domain.Toggle(current, other, name+"-b")
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		for _, o := range domain.Options() {
			assert.Equal(t, expected[o], loaded.Count(o), "lost toggle on %s", o)
		}
	})
}
