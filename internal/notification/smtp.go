package notification

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// dialer is the part of *gomail.Dialer the sender needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	RatePerSecond float64
}

// SMTPSender sends mail through an SMTP relay, paced by a token bucket.
type SMTPSender struct {
	dialer  dialer
	from    string
	limiter *rate.Limiter
	logger  *logrus.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *logrus.Logger) *SMTPSender {
	return newSMTPSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, logger)
}

func newSMTPSender(d dialer, cfg SMTPConfig, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{
		dialer:  d,
		from:    cfg.From,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		logger:  logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limiter: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Mail sent")
	return nil
}
