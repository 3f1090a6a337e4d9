package sender

import (
	"context"
	"log/slog"

	"github.com/agenghermawan/clandestineproject/internal/contact"
)

// Log writes mail to the logger instead of delivering it. Used in
// development so the form works without mail credentials.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, m contact.Mail) error {
	l.logger.InfoContext(ctx, "contact mail (not delivered)",
		"to", m.To,
		"reply_to", m.ReplyTo,
		"subject", m.Subject,
		"bytes", len(m.Text),
	)
	return nil
}
