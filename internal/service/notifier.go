package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"lavarenta-backend/internal/config"
)

type emailNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailNotifier(cfg config.SMTPConfig) Notifier {
	return &emailNotifier{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *emailNotifier) send(m *gomail.Message) error {
	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailNotifier) SendOperatorBlocked(ctx context.Context, email, name, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Cuenta bloqueada - Lavarenta")

	body := fmt.Sprintf("Hola %s,\n\nTu cuenta ha sido bloqueada.\n\nMotivo: %s\n\nComunícate con la oficina para desbloquearla.\n\nLavarenta", name, reason)
	m.SetBody("text/plain", body)
	return s.send(m)
}

func (s *emailNotifier) SendTaskAssigned(ctx context.Context, email, kind string, date time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Nueva visita asignada - Lavarenta")

	body := fmt.Sprintf("Hola,\n\nSe te asignó una visita de tipo %s para el %s.\n\nLavarenta", kind, date.Format("02/01/2006"))
	m.SetBody("text/plain", body)
	return s.send(m)
}
