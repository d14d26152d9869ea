// Package render turns a poll state into the chat message text and the
// inline keyboard. Everything here is pure.
package render

import (
	"fmt"
	"strings"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

const (
	DefaultTitle    = "📅 Who's in this week?"
	emptyMarker     = "–"
	joinedMarker    = "✅ "
	noActivePollMsg = "No active poll. Use /reset to start one."
)

// Labels overrides the display names of options. Missing entries fall back
// to the built-in labels.
type Labels map[domain.Option]string

func (l Labels) For(o domain.Option) string {
	if label, ok := l[o]; ok && label != "" {
		return label
	}
	return o.Label()
}

type Renderer struct {
	title  string
	labels Labels
}

func NewRenderer(title string, labels Labels) *Renderer {
	if title == "" {
		title = DefaultTitle
	}
	return &Renderer{title: title, labels: labels}
}

func (r *Renderer) Label(o domain.Option) string {
	return r.labels.For(o)
}

// Text lists every option in order with its participant count and names.
func (r *Renderer) Text(state *domain.PollState) string {
	if state == nil {
		return noActivePollMsg
	}

	var b strings.Builder
	b.WriteString(r.title)
	b.WriteString("\n")
	for _, o := range domain.Options() {
		participants := state.Participants(o)
		names := emptyMarker
		if len(participants) > 0 {
			parts := make([]string, len(participants))
			for i, p := range participants {
				parts[i] = string(p)
			}
			names = strings.Join(parts, ", ")
		}
		fmt.Fprintf(&b, "\n%s (%d): %s", r.labels.For(o), len(participants), names)
	}
	return b.String()
}

// Keyboard returns one button per option in order. When viewer is set, the
// options the viewer joined are marked.
func (r *Renderer) Keyboard(state *domain.PollState, viewer *domain.Participant) []domain.Button {
	opts := domain.Options()
	buttons := make([]domain.Button, 0, len(opts))
	for _, o := range opts {
		label := r.labels.For(o)
		if viewer != nil && state != nil && state.Joined(o, *viewer) {
			label = joinedMarker + label
		}
		buttons = append(buttons, domain.Button{Label: label, Action: string(o)})
	}
	return buttons
}
