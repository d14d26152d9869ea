package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/telegram"
	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// maxUpdateBytes caps a webhook body. Real updates are a few kilobytes.
const maxUpdateBytes = 1 << 20

// WebhookHandler receives Telegram updates. The secret path segment keeps
// strangers from injecting updates.
type WebhookHandler struct {
	dispatcher ports.Dispatcher
	secret     string
	logger     *slog.Logger
}

func NewWebhookHandler(dispatcher ports.Dispatcher, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		secret:     secret,
		logger:     logger,
	}
}

// HandleUpdate always answers 200 once the update is understood. Failures
// were already reported in the chat, and a non-2xx status would only make
// Telegram redeliver the update.
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	body := http.MaxBytesReader(w, r.Body, maxUpdateBytes)
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "update too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	event, ok := telegram.ToEvent(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.dispatcher.Handle(r.Context(), event); err != nil && !errors.Is(err, domain.ErrDuplicateEvent) {
		h.logger.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
