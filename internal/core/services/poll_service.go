package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Current(ctx context.Context) (*domain.PollState, error) {
	return s.repo.Load(ctx)
}

func (s *pollService) Toggle(ctx context.Context, optionTag string, participant domain.Participant) (*ports.ToggleResult, error) {
	option, err := domain.ParseOption(optionTag)
	if err != nil {
		return nil, err
	}

	state, err := s.repo.Update(ctx, func(current *domain.PollState) (*domain.PollState, error) {
		return domain.Toggle(current, option, participant)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle %s for %q: %w", option, participant, err)
	}

	return &ports.ToggleResult{
		State:  state,
		Option: option,
		Joined: state.Joined(option, participant),
	}, nil
}

func (s *pollService) Reset(ctx context.Context) (*domain.PollState, error) {
	state, err := s.repo.Update(ctx, func(*domain.PollState) (*domain.PollState, error) {
		return domain.Reset(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset poll: %w", err)
	}
	return state, nil
}
