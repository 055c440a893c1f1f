package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender. Returns nil when SMTP is not
// configured so callers can skip notifications entirely.
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	if cfg.SMTPHost == "" {
		logger.Info("SMTP not configured, email notifications disabled")
		return nil
	}
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendBudgetInvite notifies a participant that they were added to a
// shared budget.
func (s *Sender) SendBudgetInvite(to, username, budgetName, ownerName string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("You were added to the shared budget %q", budgetName)

	body := fmt.Sprintf(
		"Dear %s,\n\n", username,
	)
	body += fmt.Sprintf(
		"%s added you as a participant of the shared budget %q.\n"+
			"Open the Spnd app to see the budget and start contributing.\n",
		ownerName, budgetName,
	)
	body += "\nBest regards,\nSpnd"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
