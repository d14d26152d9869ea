package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
	"github.com/vncsmyrnk/weeklypoll/internal/core/render"
	"github.com/vncsmyrnk/weeklypoll/internal/logging"
)

const (
	greeting           = "👋 Hi! I post the weekly poll here. Tap a day to join or leave it."
	noticeInvalid      = "Unknown option."
	noticeNoPoll       = "This poll is closed. Wait for the next one."
	noticeSaveFailed   = "Could not save your choice, please try again."
	noticeUnauthorized = "Only the poll owner can start a new poll."
	noticeResetFailed  = "Could not start a new poll, please try again."
	noticeShowFailed   = "Could not load the poll, please try again."
	noticeNoActivePoll = "There is no active poll yet."
	noticeStaleButton  = "This button no longer works here."
)

// Outcome labels reported to DispatchMetrics.
const (
	OutcomeOK           = "ok"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalid      = "invalid_option"
	OutcomeNoPoll       = "no_active_poll"
	OutcomeUnauthorized = "unauthorized"
	OutcomePersistence  = "persistence_error"
	OutcomeDelivery     = "delivery_error"
	OutcomeError        = "error"
)

// Dispatcher turns inbound chat events into poll operations and replies.
// It keeps no poll state between events.
type Dispatcher struct {
	polls     ports.PollService
	messenger ports.Messenger
	renderer  *render.Renderer

	dedup   ports.Deduplicator
	metrics ports.DispatchMetrics
	ownerID string
	logger  *slog.Logger

	displayMu sync.Mutex
	displays  map[domain.MessageRef]*displayLock
}

// displayLock serializes edits of one poll message. refs counts the holders
// and waiters so the entry can be dropped once nobody uses it.
type displayLock struct {
	mu   sync.Mutex
	refs int
}

type DispatcherOption func(*Dispatcher)

// WithOwner restricts manual resets to one requester. An empty owner lets
// everyone reset.
func WithOwner(ownerID string) DispatcherOption {
	return func(d *Dispatcher) {
		d.ownerID = ownerID
	}
}

func WithDeduplicator(dedup ports.Deduplicator) DispatcherOption {
	return func(d *Dispatcher) {
		d.dedup = dedup
	}
}

func WithMetrics(metrics ports.DispatchMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(polls ports.PollService, messenger ports.Messenger, renderer *render.Renderer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		polls:     polls,
		messenger: messenger,
		renderer:  renderer,
		logger:    logging.NewNop(),
		displays:  make(map[domain.MessageRef]*displayLock),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one event. Duplicate deliveries return
// domain.ErrDuplicateEvent without touching the poll.
func (d *Dispatcher) Handle(ctx context.Context, event domain.Event) error {
	kind := eventKind(event)

	if d.duplicate(ctx, event) {
		d.observe(kind, OutcomeDuplicate)
		// answer anyway so the client stops waiting
		switch click := event.(type) {
		case domain.ToggleClicked:
			_ = d.messenger.Acknowledge(ctx, click.CallbackID, "")
		case domain.ClickIgnored:
			_ = d.messenger.Acknowledge(ctx, click.CallbackID, "")
		}
		return domain.ErrDuplicateEvent
	}

	var err error
	switch e := event.(type) {
	case domain.ToggleClicked:
		err = d.handleToggle(ctx, e)
	case domain.ResetRequested:
		err = d.handleReset(ctx, e)
	case domain.ScheduledReset:
		err = d.handleScheduledReset(ctx)
	case domain.ShowRequested:
		err = d.handleShow(ctx, e)
	case domain.GreetRequested:
		err = d.messenger.Reply(ctx, e.ChatID, greeting)
	case domain.ClickIgnored:
		if ackErr := d.messenger.Acknowledge(ctx, e.CallbackID, noticeStaleButton); ackErr != nil {
			err = fmt.Errorf("%w: failed to acknowledge click: %w", errDelivery, ackErr)
		}
	default:
		err = fmt.Errorf("unsupported event %T", event)
	}

	d.observe(kind, outcomeOf(err))
	if err != nil {
		d.logger.Warn("event failed", "kind", kind, "event_id", event.EventID(), "error", err)
	}
	return err
}

func (d *Dispatcher) handleToggle(ctx context.Context, e domain.ToggleClicked) error {
	res, err := d.polls.Toggle(ctx, e.OptionTag, e.Participant)
	if err != nil {
		if ackErr := d.messenger.Acknowledge(ctx, e.CallbackID, toggleNotice(err)); ackErr != nil {
			d.logger.Warn("failed to acknowledge click", "callback_id", e.CallbackID, "error", ackErr)
		}
		return err
	}

	label := d.renderer.Label(res.Option)
	notice := "❌ " + label
	if res.Joined {
		notice = "✅ " + label
	}
	d.logger.Info("poll toggled", "option", res.Option, "participant", e.Participant, "joined", res.Joined)

	var g errgroup.Group
	g.Go(func() error {
		return d.refreshDisplay(ctx, e.Message, res.State)
	})
	g.Go(func() error {
		if err := d.messenger.Acknowledge(ctx, e.CallbackID, notice); err != nil {
			return fmt.Errorf("%w: failed to acknowledge click: %w", errDelivery, err)
		}
		return nil
	})
	return g.Wait()
}

// refreshDisplay edits the poll message with the stored state. Edits of the
// same message run one at a time and each reloads the state, so the last edit
// to land always shows the latest save. fallback is used when the reload
// fails.
func (d *Dispatcher) refreshDisplay(ctx context.Context, ref domain.MessageRef, fallback *domain.PollState) error {
	unlock := d.lockDisplay(ref)
	defer unlock()

	state, err := d.polls.Current(ctx)
	if err != nil {
		d.logger.Warn("failed to reload poll before edit", "message_id", ref.MessageID, "error", err)
		state = fallback
	}

	if err := d.messenger.UpdateDisplay(ctx, ref, d.renderer.Text(state), d.renderer.Keyboard(state, nil)); err != nil {
		return fmt.Errorf("%w: failed to update poll message: %w", errDelivery, err)
	}
	return nil
}

func (d *Dispatcher) lockDisplay(ref domain.MessageRef) func() {
	d.displayMu.Lock()
	l, ok := d.displays[ref]
	if !ok {
		l = &displayLock{}
		d.displays[ref] = l
	}
	l.refs++
	d.displayMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		d.displayMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.displays, ref)
		}
		d.displayMu.Unlock()
	}
}

func (d *Dispatcher) handleReset(ctx context.Context, e domain.ResetRequested) error {
	if !d.authorized(e.RequesterID) {
		if err := d.messenger.Reply(ctx, e.ChatID, noticeUnauthorized); err != nil {
			d.logger.Warn("failed to send rejection", "error", err)
		}
		return fmt.Errorf("%w: requester %s", domain.ErrUnauthorized, e.RequesterID)
	}

	if err := d.resetAndBroadcast(ctx); err != nil {
		if !errors.Is(err, errDelivery) {
			if replyErr := d.messenger.Reply(ctx, e.ChatID, noticeResetFailed); replyErr != nil {
				d.logger.Warn("failed to send reset failure notice", "error", replyErr)
			}
		}
		return err
	}
	return nil
}

func (d *Dispatcher) handleScheduledReset(ctx context.Context) error {
	return d.resetAndBroadcast(ctx)
}

func (d *Dispatcher) resetAndBroadcast(ctx context.Context) error {
	state, err := d.polls.Reset(ctx)
	if err != nil {
		return err
	}
	d.logger.Info("poll reset")

	ref, err := d.messenger.Broadcast(ctx, d.renderer.Text(state), d.renderer.Keyboard(state, nil))
	if err != nil {
		return fmt.Errorf("%w: failed to post new poll: %w", errDelivery, err)
	}
	d.logger.Debug("poll posted", "chat_id", ref.ChatID, "message_id", ref.MessageID)
	return nil
}

func (d *Dispatcher) handleShow(ctx context.Context, e domain.ShowRequested) error {
	state, err := d.polls.Current(ctx)
	if errors.Is(err, domain.ErrNoActivePoll) {
		return d.messenger.Reply(ctx, e.ChatID, noticeNoActivePoll)
	}
	if err != nil {
		if replyErr := d.messenger.Reply(ctx, e.ChatID, noticeShowFailed); replyErr != nil {
			d.logger.Warn("failed to send show failure notice", "error", replyErr)
		}
		return err
	}

	if _, err := d.messenger.Broadcast(ctx, d.renderer.Text(state), d.renderer.Keyboard(state, nil)); err != nil {
		return fmt.Errorf("%w: failed to post poll: %w", errDelivery, err)
	}
	return nil
}

func (d *Dispatcher) authorized(requesterID string) bool {
	return d.ownerID == "" || requesterID == d.ownerID
}

func (d *Dispatcher) duplicate(ctx context.Context, event domain.Event) bool {
	if d.dedup == nil || event.EventID() == "" {
		return false
	}
	seen, err := d.dedup.Seen(ctx, event.EventID())
	if err != nil {
		d.logger.Warn("dedup lookup failed, handling event anyway", "event_id", event.EventID(), "error", err)
		return false
	}
	return seen
}

func (d *Dispatcher) observe(kind, outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveEvent(kind, outcome)
	}
}

var errDelivery = errors.New("chat delivery failed")

func toggleNotice(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOption):
		return noticeInvalid
	case errors.Is(err, domain.ErrNoActivePoll):
		return noticeNoPoll
	default:
		return noticeSaveFailed
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidOption):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrNoActivePoll):
		return OutcomeNoPoll
	case errors.Is(err, domain.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, domain.ErrPersistence):
		return OutcomePersistence
	case errors.Is(err, errDelivery):
		return OutcomeDelivery
	}
	return OutcomeError
}

func eventKind(event domain.Event) string {
	switch event.(type) {
	case domain.ToggleClicked:
		return "toggle"
	case domain.ResetRequested:
		return "reset"
	case domain.ScheduledReset:
		return "scheduled_reset"
	case domain.ShowRequested:
		return "show"
	case domain.GreetRequested:
		return "greet"
	case domain.ClickIgnored:
		return "ignored_click"
	}
	return "unknown"
}
