// Package redis stores the poll document under a single Redis key, so that
// several bot replicas can share it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

const (
	DefaultPrefix  = "weeklypoll:"
	defaultLockTTL = 10 * time.Second
)

type PollRepository struct {
	client  backend.UniversalClient
	prefix  string
	lockTTL time.Duration

	// mu keeps goroutines of this process from polling the shared lock
	// against each other.
	mu     sync.Mutex
	locker *Locker
}

type Option func(*PollRepository)

// WithPrefix sets the key prefix. The document lives at <prefix>state and the
// lock at <prefix>lock.
func WithPrefix(prefix string) Option {
	return func(r *PollRepository) {
		r.prefix = prefix
	}
}

// WithLockTTL sets how long the update lock is held at most.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *PollRepository) {
		r.lockTTL = ttl
	}
}

// New connects to Redis at address.
func New(address, password string, db int, opts ...Option) *PollRepository {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a repository from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *PollRepository {
	r := &PollRepository{
		client:  client,
		prefix:  DefaultPrefix,
		lockTTL: defaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.locker = NewLocker(client, r.prefix+"lock")
	return r
}

var _ ports.PollRepository = (*PollRepository)(nil)

func (r *PollRepository) stateKey() string {
	return r.prefix + "state"
}

func (r *PollRepository) Load(ctx context.Context) (*domain.PollState, error) {
	val, err := r.client.Get(ctx, r.stateKey()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNoActivePoll
		}
		return nil, fmt.Errorf("%w: failed to get from redis: %w", domain.ErrPersistence, err)
	}

	var state domain.PollState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("%w: failed to decode poll document: %w", domain.ErrPersistence, err)
	}
	return &state, nil
}

func (r *PollRepository) Save(ctx context.Context, state *domain.PollState) error {
	if state == nil {
		return fmt.Errorf("%w: refusing to save a nil poll", domain.ErrPersistence)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}
	if err := r.client.Set(ctx, r.stateKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to save to redis: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (r *PollRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.PollState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.locker.Lock(ctx, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	defer func() {
		// release even if the request context is already gone
		_ = unlock(context.WithoutCancel(ctx))
	}()

	current, err := r.Load(ctx)
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
	if err := r.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Close closes the underlying client.
func (r *PollRepository) Close() error {
	return r.client.Close()
}
