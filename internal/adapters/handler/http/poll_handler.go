package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
	"github.com/vncsmyrnk/weeklypoll/internal/core/render"
)

type PollHandler struct {
	service  ports.PollService
	renderer *render.Renderer
}

func NewPollHandler(service ports.PollService, renderer *render.Renderer) *PollHandler {
	return &PollHandler{
		service:  service,
		renderer: renderer,
	}
}

type optionResponse struct {
	Tag          string   `json:"tag"`
	Label        string   `json:"label"`
	Participants []string `json:"participants"`
}

type pollResponse struct {
	Active   bool             `json:"active"`
	Text     string           `json:"text"`
	Options  []optionResponse `json:"options"`
	Keyboard []domain.Button  `json:"keyboard"`
}

// GetPoll returns the current poll. With ?viewer=<name> the keyboard marks
// the options that participant joined.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	var viewer *domain.Participant
	if v := r.URL.Query().Get("viewer"); v != "" {
		p := domain.Participant(v)
		viewer = &p
	}

	state, err := h.service.Current(r.Context())
	if err != nil && !errors.Is(err, domain.ErrNoActivePoll) {
		http.Error(w, "failed to load poll", http.StatusInternalServerError)
		return
	}

	resp := pollResponse{
		Active:   state != nil,
		Text:     h.renderer.Text(state),
		Options:  []optionResponse{},
		Keyboard: h.renderer.Keyboard(state, viewer),
	}
	if state != nil {
		for _, o := range domain.Options() {
			participants := []string{}
			for _, p := range state.Participants(o) {
				participants = append(participants, string(p))
			}
			resp.Options = append(resp.Options, optionResponse{
				Tag:          o.String(),
				Label:        h.renderer.Label(o),
				Participants: participants,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
