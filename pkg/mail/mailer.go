package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/ace-portal/enquiry-api/pkg/config"
)

// Message is a composed outbound email.
type Message struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	HTML    string
}

// Mailer delivers composed messages.
type Mailer interface {
	Send(msg Message) error
	Verify() error
}

// SMTPMailer sends HTML mail over plain-auth SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) configured() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != ""
}

// Verify checks connectivity to the SMTP server. Called once at startup.
func (m *SMTPMailer) Verify() error {
	if !m.configured() {
		m.logger.Warn("smtp credentials not configured, mail will be logged instead of sent")
		return nil
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer client.Close() //nolint:errcheck
	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	return nil
}

// Send delivers the message. Without credentials it logs and succeeds, the
// same development fallback the rest of the stack uses.
func (m *SMTPMailer) Send(msg Message) error {
	if !m.configured() {
		m.logger.Sugar().Infow("mail not sent (smtp disabled)", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	from := m.cfg.Username
	fromHeader := from
	if m.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.FromName, from)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	// BCC recipients go on the envelope only, never in a header.
	rcpts := make([]string, 0, len(msg.To)+len(msg.CC)+len(msg.BCC))
	rcpts = append(rcpts, msg.To...)
	rcpts = append(rcpts, msg.CC...)
	rcpts = append(rcpts, msg.BCC...)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, from, rcpts, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
