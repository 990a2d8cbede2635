package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier delivers notifications as transactional email through
// SendGrid. Delivery errors (including non-2xx API statuses) are returned to
// the caller so the transfer workflow can surface them.
type SendGridNotifier struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGridNotifier builds a notifier sending from the given address.
func NewSendGridNotifier(apiKey, fromName, fromAddr string) *SendGridNotifier {
	return &SendGridNotifier{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// Send implements Notifier.
func (n *SendGridNotifier) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(n.fromName, n.fromAddr)
	to := mail.NewEmail("", msg.To)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	resp, err := n.client.SendWithContext(ctx, email)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

var _ Notifier = (*SendGridNotifier)(nil)
