package sender

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	gopkgmail "gopkg.in/gomail.v2"

	"chatorder-service/config"
)

// EmailSender delivers operator alerts. Templates live on disk as
// <name>.html and <name>.txt pairs under the configured directory.
type EmailSender struct {
	cfg *config.Config
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Send(subject, tmplName string, data map[string]any) error {
	htmlBody, err := s.render(tmplName+".html", data)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.render(tmplName+".txt", data)
	if err != nil {
		return fmt.Errorf("render plain: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", s.cfg.SMTP.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	d := gopkgmail.NewDialer(s.cfg.SMTP.Host, s.cfg.SMTP.Port, s.cfg.SMTP.User, s.cfg.SMTP.Password)
	d.SSL = true
	return d.DialAndSend(m)
}

func (s *EmailSender) render(file string, data map[string]any) (string, error) {
	path := filepath.Join(s.cfg.SMTP.TMPLDir, file)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(file).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
