package domain

// Button is one inline button of the poll keyboard. Action carries the
// option tag routed back with the next click.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// MessageRef points at a message already posted to the chat.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}
