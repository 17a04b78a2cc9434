package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"

	"github.com/Njoroge/sokoni-api/config"
)

type EmailData struct {
	Name      string
	Message   string
	Code      string
	ActionURL string
	LogoURL   string
}

// Mailer is constructed once at startup and injected wherever mail is sent.
type Mailer struct {
	addr        string
	host        string
	from        string
	password    string
	templateDir string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		addr:        cfg.SMTPAddress,
		host:        cfg.SMTPHost,
		from:        cfg.FromEmail,
		password:    cfg.FromEmailPassword,
		templateDir: "templates",
	}
}

func (m *Mailer) Send(emailTo string, emailSubject string, data EmailData, templateName string) error {
	tmpl, err := template.ParseFiles(filepath.Join(m.templateDir, templateName))
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.from,
		emailSubject,
		body.String(),
	)

	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	if err := smtp.SendMail(m.addr, auth, m.from, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
