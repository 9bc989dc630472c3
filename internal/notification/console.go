package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ConsoleSender writes messages to the log instead of delivering them. It is
// used when no SMTP host is configured.
type ConsoleSender struct {
	from   string
	logger *logrus.Logger
}

func NewConsoleSender(from string, logger *logrus.Logger) *ConsoleSender {
	return &ConsoleSender{from: from, logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.WithFields(logrus.Fields{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}).Info("Mail (console)")
	return nil
}
