// Package telegram connects the poll to a Telegram group chat through the
// Bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// botClient is the subset of *tgbotapi.BotAPI the messenger uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger posts the poll to one chat and edits it in place.
type Messenger struct {
	api    botClient
	chatID int64
}

// NewMessenger logs in with token. Broadcasts go to chatID.
func NewMessenger(token string, chatID int64) (*Messenger, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return NewMessengerFromClient(api, chatID), nil
}

func NewMessengerFromClient(api botClient, chatID int64) *Messenger {
	return &Messenger{
		api:    api,
		chatID: chatID,
	}
}

var _ ports.Messenger = (*Messenger)(nil)

func (m *Messenger) Acknowledge(ctx context.Context, callbackID string, notice string) error {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, notice)); err != nil {
		return fmt.Errorf("failed to answer callback %s: %w", callbackID, err)
	}
	return nil
}

func (m *Messenger) UpdateDisplay(ctx context.Context, ref domain.MessageRef, text string, keyboard []domain.Button) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, inlineKeyboard(keyboard))
	if _, err := m.api.Request(edit); err != nil {
		if notModified(err) {
			return nil
		}
		return fmt.Errorf("failed to edit message %d: %w", ref.MessageID, err)
	}
	return nil
}

func (m *Messenger) Broadcast(ctx context.Context, text string, keyboard []domain.Button) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(m.chatID, text)
	msg.ReplyMarkup = inlineKeyboard(keyboard)

	sent, err := m.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("failed to post to chat %d: %w", m.chatID, err)
	}
	ref := domain.MessageRef{ChatID: m.chatID, MessageID: sent.MessageID}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}

func (m *Messenger) Reply(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		chatID = m.chatID
	}
	if _, err := m.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to reply to chat %d: %w", chatID, err)
	}
	return nil
}

// SetWebhook points Telegram at url for update delivery.
func (m *Messenger) SetWebhook(ctx context.Context, url string) error {
	webhook, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := m.api.Request(webhook); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// inlineKeyboard lays out one button per row.
func inlineKeyboard(buttons []domain.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Telegram rejects edits that leave the message unchanged.
func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
