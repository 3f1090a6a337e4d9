package sender

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/agenghermawan/clandestineproject/internal/contact"
	"github.com/agenghermawan/clandestineproject/pkg/email"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP delivers through an authenticated relay. The envelope sender is the
// relay account; the visitor's address goes in Reply-To.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	send     sendFunc
	now      func() time.Time
}

func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// Send blocks until the relay accepts the message or ctx ends. net/smtp has
// no context support, so a cancelled ctx abandons the wait but not the dial.
func (s *SMTP) Send(ctx context.Context, m contact.Mail) error {
	msg := s.Build(m)
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- s.send(addr, auth, s.username, []string{m.To}, msg)
	}()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Build renders the RFC 5322 message.
func (s *SMTP) Build(m contact.Mail) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k + ": " + v + "\r\n")
	}
	header("From", email.FormatAddress(m.FromName, s.username))
	header("Reply-To", email.FormatAddress(m.FromName, m.ReplyTo))
	header("To", email.HeaderSafe(m.To))
	header("Subject", email.HeaderSafe(m.Subject))
	header("Date", s.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Text, "\n", "\r\n"))
	return []byte(b.String())
}
