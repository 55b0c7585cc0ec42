package notify

import (
	"context"
	"strings"
)

// MessageTypeNotification is the only message type the Center acts on.
const MessageTypeNotification = "notification"

// TitlePrefix is prepended to every notification title.
const TitlePrefix = "BlackRoad: "

// Message is a request from an interactive command to raise a notification.
type Message struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NotificationMessage builds a notification request.
func NotificationMessage(title, message string) Message {
	return Message{Type: MessageTypeNotification, Title: title, Message: message}
}

// Messenger delivers messages to whoever raises notifications.
type Messenger interface {
	Send(ctx context.Context, msg Message) error
}

// Center receives notification requests and turns them into notifications.
type Center struct {
	notifier   Notifier
	consoleURL string
}

// NewCenter returns a Center emitting through n. consoleURL is attached to
// every notification as its click target.
func NewCenter(n Notifier, consoleURL string) *Center {
	return &Center{notifier: n, consoleURL: consoleURL}
}

// Send handles msg. Messages of unknown type are ignored.
func (c *Center) Send(ctx context.Context, msg Message) error {
	if msg.Type != MessageTypeNotification {
		return nil
	}
	return c.notifier.Notify(ctx, Notification{
		Title:    WithPrefix(msg.Title),
		Message:  msg.Message,
		Priority: PriorityNormal,
		URL:      c.consoleURL,
	})
}

// Notify forwards n unchanged, filling in the console URL when unset.
func (c *Center) Notify(ctx context.Context, n Notification) error {
	if n.URL == "" {
		n.URL = c.consoleURL
	}
	return c.notifier.Notify(ctx, n)
}

// WithPrefix prepends TitlePrefix unless title already carries it.
func WithPrefix(title string) string {
	if strings.HasPrefix(title, TitlePrefix) {
		return title
	}
	return TitlePrefix + title
}
