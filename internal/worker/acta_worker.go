package worker

// acta_worker.go
// Renders the certificate of a caja mayor cash count and, when recipients
// are configured, queues an e-mail with the PDF attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ActaJobPayload struct {
	ConteoID string `json:"conteo_id"`
}

type buscadorConteos interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conteo, error)
}

type encoladorEmail interface {
	EncolarEmail(ctx context.Context, payload EmailJobPayload) error
}

type ActaWorker struct {
	conteos       buscadorConteos
	emails        encoladorEmail
	actasPath     string
	destinatarios []string
	generar       func(c *model.Conteo, storagePath string) (string, error)
}

func NewActaWorker(conteos buscadorConteos, emails encoladorEmail, actasPath string, destinatarios []string) *ActaWorker {
	return &ActaWorker{
		conteos:       conteos,
		emails:        emails,
		actasPath:     actasPath,
		destinatarios: destinatarios,
		generar:       infra.GenerarActaConteo,
	}
}

func (w *ActaWorker) Procesar(ctx context.Context, raw json.RawMessage) error {
	var payload ActaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("acta_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.ConteoID)
	if err != nil {
		log.Error().Str("conteo_id", payload.ConteoID).Msg("acta_worker: invalid conteo_id")
		return nil
	}

	conteo, err := w.conteos.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("acta_worker: cargar conteo %s: %w", id, err)
	}
	path, err := w.generar(conteo, w.actasPath)
	if err != nil {
		return err
	}
	log.Info().Str("conteo_id", id.String()).Str("pdf", path).Msg("acta_worker: acta generada")

	if len(w.destinatarios) == 0 || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		To:      w.destinatarios,
		Subject: fmt.Sprintf("Acta de conteo de caja mayor %s - %s", conteo.Moneda, conteo.Fecha.Format("02/01/2006")),
		Body: fmt.Sprintf("Total contado: %s\nSaldo según sistema: %s\nDiferencia: %s\n",
			conteo.Total.StringFixed(2), conteo.SaldoSistema.StringFixed(2), conteo.Diferencia.StringFixed(2)),
		Adjunto: path,
	}
	if err := w.emails.EncolarEmail(ctx, job); err != nil {
		// the PDF exists; a retry would only regenerate it
		log.Warn().Err(err).Str("conteo_id", id.String()).Msg("acta_worker: no se pudo encolar el email")
	}
	return nil
}
