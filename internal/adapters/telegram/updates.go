package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

// ToEvent translates an update into a dispatcher event. Updates the bot does
// not act on return false. Every callback query yields an event so the
// client's spinner is always answered.
func ToEvent(update tgbotapi.Update) (domain.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return domain.ClickIgnored{ID: cq.ID, CallbackID: cq.ID}, true
		}
		return domain.ToggleClicked{
			ID:          cq.ID,
			CallbackID:  cq.ID,
			Participant: DisplayName(cq.From),
			OptionTag:   cq.Data,
			Message: domain.MessageRef{
				ChatID:    cq.Message.Chat.ID,
				MessageID: cq.Message.MessageID,
			},
		}, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return nil, false
	}

	id := "update:" + strconv.Itoa(update.UpdateID)
	switch msg.Command() {
	case "reset", "postnow":
		requester := ""
		if msg.From != nil {
			requester = strconv.FormatInt(msg.From.ID, 10)
		}
		return domain.ResetRequested{ID: id, RequesterID: requester, ChatID: msg.Chat.ID}, true
	case "poll":
		return domain.ShowRequested{ID: id, ChatID: msg.Chat.ID}, true
	case "start":
		return domain.GreetRequested{ID: id, ChatID: msg.Chat.ID}, true
	}
	return nil, false
}

// DisplayName is how a user shows up in the poll: full name, else @username,
// else the numeric ID.
func DisplayName(user *tgbotapi.User) domain.Participant {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if name != "" {
		return domain.Participant(name)
	}
	if user.UserName != "" {
		return domain.Participant("@" + user.UserName)
	}
	return domain.Participant(strconv.FormatInt(user.ID, 10))
}
