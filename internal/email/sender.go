package email

import "context"

// EmailSender delivers league notifications. The SES client implements it;
// tests substitute recording fakes.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
