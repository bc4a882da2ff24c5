package providers

import "context"

// EmailSender delivers transactional email. Senders are best-effort: callers
// must not fail the enclosing request when delivery errors.
type EmailSender interface {
	// Send delivers a plain-text message to a single recipient.
	Send(ctx context.Context, to, subject, body string) error
}
