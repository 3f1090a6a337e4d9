// Package contact delivers the public contact form to the project mailbox.
package contact

import (
	"context"
	"log/slog"

	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

// Sender hands a composed mail to a delivery channel.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

type Service struct {
	sender    Sender
	recipient string
	logger    *slog.Logger
}

func NewService(sender Sender, recipient string, logger *slog.Logger) *Service {
	return &Service{sender: sender, recipient: recipient, logger: logger}
}

// Submit validates and delivers one submission.
func (s *Service) Submit(ctx context.Context, sub Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	m := Compose(sub, s.recipient)
	if err := s.sender.Send(ctx, m); err != nil {
		s.logger.ErrorContext(ctx, "contact delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to send message")
	}
	s.logger.InfoContext(ctx, "contact message delivered",
		"request_id", requestcontext.RequestID(ctx),
		"subject", m.Subject,
	)
	return nil
}
