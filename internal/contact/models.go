package contact

import (
	"strings"

	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/email"
)

const (
	CaptchaRequiredMessage = "Captcha is required."
	FieldsRequiredMessage  = "Email and message are required."
	InvalidEmailMessage    = "Please provide a valid email address."
)

// Submission is the contact form as posted by the site.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Captcha string `json:"captcha"`
}

// Validate only checks that a captcha answer is present; verifying it is
// left to the form's provider.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Captcha) == "" {
		return dErrors.New(dErrors.CodeValidation, CaptchaRequiredMessage)
	}
	if strings.TrimSpace(s.Email) == "" || strings.TrimSpace(s.Message) == "" {
		return dErrors.New(dErrors.CodeValidation, FieldsRequiredMessage)
	}
	if !email.Valid(strings.TrimSpace(s.Email)) {
		return dErrors.New(dErrors.CodeValidation, InvalidEmailMessage)
	}
	return nil
}

// Mail is a composed message ready for a Sender.
type Mail struct {
	FromName string `json:"from_name"`
	ReplyTo  string `json:"reply_to"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
}

// Compose turns a submission into the mail delivered to recipient.
func Compose(s Submission, recipient string) Mail {
	addr := strings.TrimSpace(s.Email)
	name := email.DisplayName(s.Name, addr)
	text := strings.Join([]string{
		"Name    : " + name,
		"Email   : " + addr,
		"",
		"Message:",
		s.Message,
	}, "\n")
	return Mail{
		FromName: name,
		ReplyTo:  addr,
		To:       recipient,
		Subject:  "[Contact Form] Message from " + name,
		Text:     text,
	}
}
