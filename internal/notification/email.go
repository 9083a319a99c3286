package notification

import (
	"fmt"
	"net/smtp"

	"github.com/casetrail/casetrail/pkg/workspace"
)

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// EmailService delivers invite emails over SMTP. It implements
// workspace.InviteNotifier.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service.
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SendInviteEmail sends a workspace invitation email.
func (s *EmailService) SendInviteEmail(msg workspace.InviteEmail) error {
	subject := fmt.Sprintf("You've been invited to join %s", msg.WorkspaceName)
	body := fmt.Sprintf(`<html><body>
		<h2>Join %s on Casetrail</h2>
		<p>%s has invited you to join the workspace <strong>%s</strong> as <strong>%s</strong>.</p>
		<p><a href="%s">Click here to accept the invitation</a></p>
		<p>Or copy this link to your browser: %s</p>
		<p>This invitation expires; if the link no longer works, ask %s to send a new one.</p>
	</body></html>`,
		msg.WorkspaceName, msg.InviterName, msg.WorkspaceName, msg.Role, msg.AcceptURL, msg.AcceptURL, msg.InviterName)
	return s.sendEmail(msg.Email, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
