package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
)

// BadgeColor is the accent behind the pending count.
const BadgeColor = "#FF1D6C"

const badgeStateKey = "badge"

// Badge is the short pending-task indicator.
type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// BadgeText formats a pending count: empty for zero, "99+" above 99.
func BadgeText(pending int) string {
	switch {
	case pending <= 0:
		return ""
	case pending > 99:
		return "99+"
	default:
		return strconv.Itoa(pending)
	}
}

// PendingBadge returns the badge for a pending count.
func PendingBadge(pending int) Badge {
	text := BadgeText(pending)
	if text == "" {
		return Badge{}
	}
	return Badge{Text: text, Color: BadgeColor}
}

// Cleared reports whether the badge shows nothing.
func (b Badge) Cleared() bool { return b.Text == "" }

// Render draws the badge for a terminal.
func (b Badge) Render() string {
	if b.Cleared() {
		return ""
	}
	color := b.Color
	if color == "" {
		color = BadgeColor
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(b.Text)
}

// BadgeSink receives badge updates.
type BadgeSink interface {
	SetBadge(ctx context.Context, b Badge) error
}

// KV is the key/value persistence the state-backed sink needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// StateBadge persists the badge so other processes can read it.
type StateBadge struct {
	kv KV
}

func NewStateBadge(kv KV) *StateBadge { return &StateBadge{kv: kv} }

func (s *StateBadge) SetBadge(ctx context.Context, b Badge) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, badgeStateKey, string(raw))
}

// Badge returns the last persisted badge; a never-set badge is cleared.
func (s *StateBadge) Badge(ctx context.Context) (Badge, error) {
	raw, ok, err := s.kv.Get(ctx, badgeStateKey)
	if err != nil || !ok {
		return Badge{}, err
	}
	var b Badge
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return Badge{}, fmt.Errorf("corrupt badge state: %w", err)
	}
	return b, nil
}

// TerminalBadge prints the badge whenever its text changes.
type TerminalBadge struct {
	Out  io.Writer
	last *Badge
}

func (t *TerminalBadge) SetBadge(_ context.Context, b Badge) error {
	if t.last != nil && *t.last == b {
		return nil
	}
	t.last = &b
	if b.Cleared() {
		_, err := fmt.Fprintln(t.Out, "Badge: (cleared)")
		return err
	}
	_, err := fmt.Fprintf(t.Out, "Badge: %s\n", b.Render())
	return err
}

// BadgeSinks fans a badge update out to every sink, returning the first error.
func BadgeSinks(sinks ...BadgeSink) BadgeSink {
	return multiBadge(sinks)
}

type multiBadge []BadgeSink

func (m multiBadge) SetBadge(ctx context.Context, b Badge) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.SetBadge(ctx, b); err != nil && first == nil {
			first = err
		}
	}
	return first
}
