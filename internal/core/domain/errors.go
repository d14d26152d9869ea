package domain

import "errors"

var (
	ErrInvalidOption   = errors.New("invalid option for this poll")
	ErrNoActivePoll    = errors.New("no active poll")
	ErrPersistence     = errors.New("poll persistence failed")
	ErrUnauthorized    = errors.New("not allowed to reset the poll")
	ErrDuplicateEvent  = errors.New("event already handled")
	ErrDuplicateMember = errors.New("participant listed twice for one option")
)
