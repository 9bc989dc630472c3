// Package notification delivers outbound email.
package notification

import (
	"context"
)

const confirmationSubject = "email_confirmation"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message synchronously. A returned error means the
// message was not accepted for delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfirmationMessage carries a confirmation code to its owner. The body is
// the bare code so it can be pasted straight into the token request.
func ConfirmationMessage(email, code string) Message {
	return Message{To: email, Subject: confirmationSubject, Body: code}
}
