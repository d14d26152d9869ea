package ports

import (
	"context"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// Acknowledge answers a button click with a notice only the clicking
	// user sees.
	Acknowledge(ctx context.Context, callbackID string, notice string) error
	// UpdateDisplay edits an already posted poll message.
	UpdateDisplay(ctx context.Context, ref domain.MessageRef, text string, keyboard []domain.Button) error
	// Broadcast posts a new poll message to the configured chat.
	Broadcast(ctx context.Context, text string, keyboard []domain.Button) (domain.MessageRef, error)
	// Reply sends a plain text message.
	Reply(ctx context.Context, chatID int64, text string) error
}
