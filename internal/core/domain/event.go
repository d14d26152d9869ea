package domain

// Event is an inbound unit of work for the dispatcher. ID is the transport's
// delivery identifier and is used to drop redelivered events.
type Event interface {
	EventID() string
}

// ToggleClicked is a click on one of the poll buttons.
type ToggleClicked struct {
	ID          string
	CallbackID  string
	Participant Participant
	OptionTag   string
	Message     MessageRef
}

func (e ToggleClicked) EventID() string { return e.ID }

// ResetRequested is a manual reset command.
type ResetRequested struct {
	ID          string
	RequesterID string
	ChatID      int64
}

func (e ResetRequested) EventID() string { return e.ID }

// ScheduledReset is fired by the weekly scheduler and skips the owner check.
type ScheduledReset struct {
	ID string
}

func (e ScheduledReset) EventID() string { return e.ID }

// ShowRequested asks for the current poll to be posted again.
type ShowRequested struct {
	ID     string
	ChatID int64
}

func (e ShowRequested) EventID() string { return e.ID }

// GreetRequested is the /start command.
type GreetRequested struct {
	ID     string
	ChatID int64
}

func (e GreetRequested) EventID() string { return e.ID }

// ClickIgnored is a button click the bot cannot act on, such as one on an
// inline-mode message with no chat attached. It is only acknowledged.
type ClickIgnored struct {
	ID         string
	CallbackID string
}

func (e ClickIgnored) EventID() string { return e.ID }
