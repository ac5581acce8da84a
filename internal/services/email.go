package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/deployhub-io/deployhub/backend/internal/config"
	"github.com/deployhub-io/deployhub/backend/pkg/logger"
)

// EmailService delivers invitation notifications over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// ProcessInviteEmailTask renders and sends the invitation email for a task.
// It is the processor wired into the task queue and worker.
func (s *EmailService) ProcessInviteEmailTask(ctx context.Context, task *InviteEmailTask) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Infof("[Email] Delivery disabled, skipping invitation %d", task.InvitationID)
		return nil
	}

	subject := "[DeployHub] You have been invited to a project"
	body := s.buildInviteBody(task)

	return s.sendEmail([]string{task.InviteeEmail}, subject, body)
}

func (s *EmailService) buildInviteBody(task *InviteEmailTask) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p>You have been invited to join a DeployHub project as <b>%s</b>.</p>", task.Role))

	link := fmt.Sprintf("%s/invitations?token=%s", strings.TrimRight(s.cfg.BaseURL, "/"), task.Token)
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\">Review the invitation</a></p>", link))

	if task.ExpiresAt != nil {
		sb.WriteString(fmt.Sprintf("<p>This invitation expires on %s.</p>", task.ExpiresAt.Format("2006-01-02 15:04 MST")))
	}

	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by DeployHub</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendEmailTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invitation notification to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
