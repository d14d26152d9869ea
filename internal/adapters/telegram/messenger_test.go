package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

type fakeBot struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}
	return tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: -100}}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requested = append(b.requested, c)
	if b.err != nil {
		return nil, b.err
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

var buttons = []domain.Button{
	{Label: "Monday", Action: "mon"},
	{Label: "✅ Tuesday", Action: "tue"},
}

func TestMessenger_Broadcast(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessengerFromClient(bot, -100)

	ref, err := m.Broadcast(context.Background(), "poll text", buttons)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRef{ChatID: -100, MessageID: 99}, ref)

	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, "poll text", msg.Text)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "✅ Tuesday", markup.InlineKeyboard[1][0].Text)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "tue", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestMessenger_UpdateDisplay(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessengerFromClient(bot, -100)

	err := m.UpdateDisplay(context.Background(), domain.MessageRef{ChatID: -5, MessageID: 7}, "new text", buttons)
	require.NoError(t, err)

	require.Len(t, bot.requested, 1)
	edit, ok := bot.requested[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-5), edit.ChatID)
	assert.Equal(t, 7, edit.MessageID)
	assert.Equal(t, "new text", edit.Text)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Len(t, edit.ReplyMarkup.InlineKeyboard, 2)
}

func TestMessenger_UpdateDisplayNotModified(t *testing.T) {
	bot := &fakeBot{err: errors.New("Bad Request: message is not modified")}
	m := NewMessengerFromClient(bot, -100)

	assert.NoError(t, m.UpdateDisplay(context.Background(), domain.MessageRef{ChatID: -5, MessageID: 7}, "same", buttons))
}

func TestMessenger_Acknowledge(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessengerFromClient(bot, -100)

	require.NoError(t, m.Acknowledge(context.Background(), "cb-1", "✅ Monday"))
	cb, ok := bot.requested[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)
	assert.Equal(t, "✅ Monday", cb.Text)
}

func TestMessenger_Reply(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessengerFromClient(bot, -100)

	require.NoError(t, m.Reply(context.Background(), 12, "hi"))
	require.NoError(t, m.Reply(context.Background(), 0, "fallback"))

	assert.Equal(t, int64(12), bot.sent[0].(tgbotapi.MessageConfig).ChatID)
	assert.Equal(t, int64(-100), bot.sent[1].(tgbotapi.MessageConfig).ChatID)
}

func TestMessenger_SendError(t *testing.T) {
	bot := &fakeBot{err: errors.New("Forbidden: bot was kicked")}
	m := NewMessengerFromClient(bot, -100)

	_, err := m.Broadcast(context.Background(), "text", buttons)
	assert.ErrorContains(t, err, "bot was kicked")
}

func TestMessenger_SetWebhook(t *testing.T) {
	bot := &fakeBot{}
	m := NewMessengerFromClient(bot, -100)

	require.NoError(t, m.SetWebhook(context.Background(), "https://example.com/webhook/s3cret"))
	hook, ok := bot.requested[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/webhook/s3cret", hook.URL.String())
}
