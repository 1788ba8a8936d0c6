package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

type EmailJobPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Adjunto string   `json:"adjunto,omitempty"`
}

// Enviador is satisfied by infra.Mailer.
type Enviador interface {
	Configurado() bool
	Enviar(to []string, subject, body, adjunto string) error
}

type EmailWorker struct {
	mailer Enviador
}

func NewEmailWorker(mailer Enviador) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Procesar(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// malformed payloads never succeed; drop instead of retrying
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.To) == 0 {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: sin destinatarios, se descarta")
		return nil
	}
	if !w.mailer.Configurado() {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: SMTP no configurado, se descarta")
		return nil
	}

	if err := w.mailer.Enviar(payload.To, payload.Subject, payload.Body, payload.Adjunto); err != nil {
		return fmt.Errorf("email_worker: enviar %q: %w", payload.Subject, err)
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: enviado")
	return nil
}
