// Package notify holds the user-visible surfaces: discrete notifications,
// the notification request message passed between components, and the
// pending-task badge.
package notify

import (
	"context"
	"io"
	"os"

	"github.com/blackroad/cli/pkg/logx"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
)

// Priority of a notification. Higher is more urgent.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 1
	PriorityHigh   Priority = 2
)

// Notification is one user-visible alert. URL is opened when the user acts on it.
type Notification struct {
	Title    string
	Message  string
	Priority Priority
	URL      string
}

// Notifier emits notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// TerminalNotifier prints notifications with pterm and, when Open is set,
// opens the notification URL in the default browser. The notification counts
// as shown once printed; a browser that fails to open is only logged.
type TerminalNotifier struct {
	Out     io.Writer
	Open    bool
	OpenURL func(url string) error
	Log     logx.Logger
}

// NewTerminalNotifier returns a notifier writing to stdout.
func NewTerminalNotifier(open bool, log logx.Logger) *TerminalNotifier {
	return &TerminalNotifier{Out: os.Stdout, Open: open, OpenURL: browser.OpenURL, Log: log}
}

func (t *TerminalNotifier) Notify(ctx context.Context, n Notification) error {
	out := t.Out
	if out == nil {
		out = os.Stdout
	}

	printer := pterm.Info
	if n.Priority >= PriorityHigh {
		printer = pterm.Warning
	}
	printer.WithWriter(out).Printfln("%s: %s", n.Title, n.Message)

	if t.Open && n.URL != "" && t.OpenURL != nil {
		if err := t.OpenURL(n.URL); err != nil {
			t.Log.Warn("failed to open notification url", logx.String("url", n.URL), logx.Err(err))
		}
	}
	return nil
}
