// Package notify sends generated documents by email. Delivery is
// best-effort: callers log failures and carry on, a receipt is never lost
// because SMTP was down.
package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config holds SMTP settings. An empty Host disables the mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends MIME multipart mail with a single PDF attachment.
type Mailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	log  zerolog.Logger
}

// NewMailer builds a mailer from config.
func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, log: log}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

// SendDocument mails an HTML body with one PDF attachment.
func (m *Mailer) SendDocument(to, subject, htmlBody, filename string, attachment []byte) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer disabled: no smtp host configured")
	}
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	msg := m.buildMessage(to, subject, htmlBody, filename, attachment)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("document mailed")
	return nil
}

const boundary = "locadoc-mime-boundary"

func (m *Mailer) buildMessage(to, subject, htmlBody, filename string, attachment []byte) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&b, []byte(htmlBody))

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: application/pdf; name=%q\r\n", filename)
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", filename)
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&b, attachment)

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}

// writeBase64 encodes with the 76-column line wrap mail transports expect.
func writeBase64(b *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
}
