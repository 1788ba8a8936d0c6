package worker

// auditoria_cron.go
// Background goroutine that periodically walks every currency chain of caja
// mayor and alerts by e-mail when a balance break shows up.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"

	"github.com/rs/zerolog/log"
)

type verificador interface {
	VerificarContinuidad(ctx context.Context, moneda model.Moneda) (*dto.ContinuidadResponse, error)
}

type AuditoriaConfig struct {
	Caja          verificador
	Emails        encoladorEmail
	Destinatarios []string
	Intervalo     time.Duration
}

// StartAuditoriaCron runs one audit per Intervalo until ctx is cancelled.
func StartAuditoriaCron(ctx context.Context, cfg AuditoriaConfig) {
	if cfg.Intervalo <= 0 {
		log.Info().Msg("auditoria_cron: deshabilitado")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()
		log.Info().Dur("intervalo", cfg.Intervalo).Msg("auditoria_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("auditoria_cron: shutting down")
				return
			case <-ticker.C:
				auditar(ctx, cfg)
			}
		}
	}()
}

// auditar returns the currencies with breaks.
func auditar(ctx context.Context, cfg AuditoriaConfig) []dto.ContinuidadResponse {
	var rotas []dto.ContinuidadResponse
	for _, m := range model.Monedas {
		res, err := cfg.Caja.VerificarContinuidad(ctx, m)
		if err != nil {
			log.Error().Err(err).Str("moneda", string(m)).Msg("auditoria_cron: verificación fallida")
			continue
		}
		if res.Consistente {
			log.Debug().Str("moneda", string(m)).Int("filas", res.FilasVerificadas).Msg("auditoria_cron: cadena consistente")
			continue
		}
		log.Error().
			Str("moneda", string(m)).
			Int("quiebres", len(res.Quiebres)).
			Int64("primer_movimiento", res.Quiebres[0].MovimientoID).
			Msg("auditoria_cron: quiebre de continuidad en caja mayor")
		rotas = append(rotas, *res)
	}

	if len(rotas) > 0 && len(cfg.Destinatarios) > 0 && cfg.Emails != nil {
		if err := cfg.Emails.EncolarEmail(ctx, alertaContinuidad(rotas, cfg.Destinatarios)); err != nil {
			log.Error().Err(err).Msg("auditoria_cron: no se pudo encolar la alerta")
		}
	}
	return rotas
}

func alertaContinuidad(rotas []dto.ContinuidadResponse, to []string) EmailJobPayload {
	var b strings.Builder
	b.WriteString("Se detectaron quiebres de continuidad en caja mayor.\n\n")
	for _, r := range rotas {
		fmt.Fprintf(&b, "%s: %d quiebre(s) en %d filas\n", r.Moneda, len(r.Quiebres), r.FilasVerificadas)
		for _, q := range r.Quiebres {
			fmt.Fprintf(&b, "  movimiento %d: esperado %s, encontrado %s (%s)\n",
				q.MovimientoID, q.Esperado.StringFixed(2), q.Encontrado.StringFixed(2), q.Motivo)
		}
	}
	return EmailJobPayload{
		To:      to,
		Subject: "ALERTA: quiebre de continuidad en caja mayor",
		Body:    b.String(),
	}
}
