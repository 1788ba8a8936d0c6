package infra

import (
	"fmt"
	"net/smtp"

	"sistemaservicios/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends treasury notifications over SMTP through a circuit breaker.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker("smtp", DefaultConfigCB()),
	}
}

// Configurado is false when no SMTP host is set; callers skip sending.
func (m *Mailer) Configurado() bool { return m.host != "" }

// Disponible is false while the SMTP breaker is open.
func (m *Mailer) Disponible() bool { return m.cb.Estado() != CBAbierto }

// Enviar sends a plain-text message with an optional attachment.
func (m *Mailer) Enviar(to []string, subject, body, adjunto string) error {
	if len(to) == 0 {
		return fmt.Errorf("mailer: sin destinatarios")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	if adjunto != "" {
		if _, err := e.AttachFile(adjunto); err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", adjunto, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Ejecutar(func() error { return e.Send(m.addr, auth) })
}
