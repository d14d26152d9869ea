package services

import (
	"context"
	"errors"
	"sync"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

type sentMessage struct {
	kind     string
	chatID   int64
	ref      domain.MessageRef
	text     string
	keyboard []domain.Button
}

type fakeMessenger struct {
	mu        sync.Mutex
	acks      map[string]string
	sent      []sentMessage
	failAcks  bool
	failPosts bool

	// onUpdate runs before an edit is recorded, with the 1-based call number.
	onUpdate func(call int)
	updates  int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{acks: make(map[string]string)}
}

func (m *fakeMessenger) Acknowledge(ctx context.Context, callbackID string, notice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAcks {
		return errors.New("ack failed")
	}
	m.acks[callbackID] = notice
	return nil
}

func (m *fakeMessenger) UpdateDisplay(ctx context.Context, ref domain.MessageRef, text string, keyboard []domain.Button) error {
	m.mu.Lock()
	m.updates++
	call, hook := m.updates, m.onUpdate
	m.mu.Unlock()
	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPosts {
		return errors.New("edit failed")
	}
	m.sent = append(m.sent, sentMessage{kind: "update", ref: ref, text: text, keyboard: keyboard})
	return nil
}

func (m *fakeMessenger) Broadcast(ctx context.Context, text string, keyboard []domain.Button) (domain.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPosts {
		return domain.MessageRef{}, errors.New("send failed")
	}
	m.sent = append(m.sent, sentMessage{kind: "broadcast", text: text, keyboard: keyboard})
	return domain.MessageRef{ChatID: -100, MessageID: len(m.sent)}, nil
}

func (m *fakeMessenger) Reply(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{kind: "reply", chatID: chatID, text: text})
	return nil
}

func (m *fakeMessenger) ack(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notice, ok := m.acks[id]
	return notice, ok
}

func (m *fakeMessenger) messages(kind string) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// brokenRepository fails every write, and every read when failLoads is set.
type brokenRepository struct {
	state     *domain.PollState
	failLoads bool
}

func (r *brokenRepository) Load(ctx context.Context) (*domain.PollState, error) {
	if r.failLoads {
		return nil, errors.Join(domain.ErrPersistence, errors.New("connection refused"))
	}
	if r.state == nil {
		return nil, domain.ErrNoActivePoll
	}
	return r.state.Clone(), nil
}

func (r *brokenRepository) Save(ctx context.Context, state *domain.PollState) error {
	return errors.Join(domain.ErrPersistence, errors.New("disk full"))
}

func (r *brokenRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.PollState, error) {
	current, err := r.Load(ctx)
	if errors.Is(err, domain.ErrPersistence) {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	return nil, r.Save(ctx, next)
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) ObserveEvent(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[kind+"/"+outcome]++
}

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

type setDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *setDedup) Seen(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[id] {
		return true, nil
	}
	d.seen[id] = true
	return false, nil
}
