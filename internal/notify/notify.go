// Package notify dispatches transfer notifications to destination schools.
// The Notifier interface keeps the transfer workflow independent of the
// delivery channel; production uses SendGrid email (sendgrid.go), local
// development logs the message instead.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one notification to deliver. To is the destination address
// (school mailbox); Subject and Body are ready-to-send text.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a message. Implementations must return the delivery
// error to the caller: notification failures are business-critical and the
// initiating workflow decides what to do with them.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleNotifier logs messages instead of delivering them. Used in
// development and as the fallback when no SendGrid key is configured.
type ConsoleNotifier struct {
	Log zerolog.Logger
}

// Send implements Notifier.
func (n *ConsoleNotifier) Send(_ context.Context, msg Message) error {
	n.Log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("notification (console)")
	return nil
}

var _ Notifier = (*ConsoleNotifier)(nil)
