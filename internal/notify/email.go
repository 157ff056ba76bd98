package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/config"
	"github.com/ncasas/obra-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// OverBudgetAlert notifies the configured recipient that a partida went
// over budget. A missing recipient disables alerts silently.
func (s *Sender) OverBudgetAlert(_ context.Context, partida *models.Partida) error {
	if s.cfg.AlertEmail == "" {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AlertEmail}
	e.Subject = fmt.Sprintf("Partida over budget: %s", partida.Name)

	body := fmt.Sprintf(
		"The partida %q has exceeded its budget.\n\n"+
			"Budget:           %s ARS\n"+
			"Accumulated cost: %s ARS\n"+
			"Progress:         %d%%\n\n"+
			"Detected at %s.\n",
		partida.Name, partida.Budget.StringFixed(2), partida.AccumulatedCost.StringFixed(2),
		partida.ProgressPercent, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send over-budget alert: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", s.cfg.AlertEmail, e.Subject)
	return nil
}

// SendLiquidityDigest emails the pending cash projection matrix for a
// project.
func (s *Sender) SendLiquidityDigest(projectName string, matrix map[int]models.HorizonBucket) error {
	if s.cfg.DigestEmail == "" {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.DigestEmail}
	e.Subject = fmt.Sprintf("Liquidity projection: %s", projectName)

	days := make([]int, 0, len(matrix))
	for d := range matrix {
		days = append(days, d)
	}
	sort.Ints(days)

	body := fmt.Sprintf("Pending cash projection for %s (amounts in ARS):\n\n", projectName)
	for _, d := range days {
		bucket := matrix[d]
		body += fmt.Sprintf(
			"Next %d days: incoming %s, outgoing %s, net %s\n",
			d, bucket.Incoming.StringFixed(2), bucket.Outgoing.StringFixed(2), bucket.Net.StringFixed(2),
		)
	}
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send liquidity digest: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", s.cfg.DigestEmail, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return err
	}
	return nil
}
