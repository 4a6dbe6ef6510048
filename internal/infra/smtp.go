package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/jdirocco/forno/internal/config"
)

// Mailer sends the DDT mails through plain SMTP.
type Mailer struct {
	from     string
	user     string
	password string
	host     string
	addr     string
}

// NewMailer builds the mailer; the company name becomes the display name of
// the From header.
func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPUser
	if cfg.CompanyName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.CompanyName, cfg.SMTPUser)
	}
	return &Mailer{
		from:     from,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		host:     cfg.SMTPHost,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendDocument mails the DDT to the shop, cc'ing the driver when known.
// An empty SMTP user skips authentication (local MailHog).
func (m *Mailer) SendDocument(to string, cc []string, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Cc = cc
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", pdfPath, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
