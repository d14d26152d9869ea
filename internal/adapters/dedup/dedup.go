// Package dedup filters redelivered chat events by their delivery ID.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// DefaultTTL covers the retry window of the Telegram webhook.
const DefaultTTL = 10 * time.Minute

// Memory remembers IDs in process memory for ttl.
type Memory struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

var _ ports.Deduplicator = (*Memory)(nil)

func (m *Memory) Seen(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, expires := range m.seen {
		if !now.Before(expires) {
			delete(m.seen, key)
		}
	}

	if _, ok := m.seen[id]; ok {
		return true, nil
	}
	m.seen[id] = now.Add(m.ttl)
	return false, nil
}

// Redis records IDs with SET NX so replicas share one window.
type Redis struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(client backend.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

var _ ports.Deduplicator = (*Redis)(nil)

func (r *Redis) Seen(ctx context.Context, id string) (bool, error) {
	fresh, err := r.client.SetNX(ctx, r.prefix+"event:"+id, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", id, err)
	}
	return !fresh, nil
}
