package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	formatoFecha     = "2006-01-02"
	formatoTimestamp = "2006-01-02T15:04:05Z"
	limitePorDefecto = 20
	limiteMaximo     = 100
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ahora is replaced in tests.
var ahora = func() time.Time { return time.Now().UTC() }

func parseMoneda(code string) (model.Moneda, error) {
	m := model.Moneda(code)
	if !m.Valida() {
		return "", validacion(fmt.Sprintf("moneda inválida: %q", code))
	}
	return m, nil
}

// parseFecha returns the UTC midnight of a YYYY-MM-DD date, or def when s is empty.
func parseFecha(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(formatoFecha, s, time.UTC)
	if err != nil {
		return time.Time{}, validacion(fmt.Sprintf("fecha inválida %q, se espera AAAA-MM-DD", s))
	}
	return t, nil
}

// parseRango turns inclusive calendar dates into a half-open UTC interval.
// Empty bounds stay open.
func parseRango(desde, hasta string) (repository.Rango, error) {
	var r repository.Rango
	var err error
	if r.Desde, err = parseFecha(desde, time.Time{}); err != nil {
		return r, err
	}
	if hasta != "" {
		h, err := parseFecha(hasta, time.Time{})
		if err != nil {
			return r, err
		}
		r.Hasta = h.AddDate(0, 0, 1)
	}
	if !r.Desde.IsZero() && !r.Hasta.IsZero() && !r.Desde.Before(r.Hasta) {
		return r, validacion("el rango de fechas es inválido: desde es posterior a hasta")
	}
	return r, nil
}

func paginacion(page, limit int) repository.Paginacion {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > limiteMaximo {
		limit = limitePorDefecto
	}
	return repository.Paginacion{Page: page, Limit: limit}
}

// normalizarServicio stores service codes the way the catalog keys them, so
// report sums can compare with plain equality.
func normalizarServicio(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseUUID(s, campo string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, validacion(campo + " inválido")
	}
	return id, nil
}

// mapNotFound converts gorm.ErrRecordNotFound into a typed not-found error.
func mapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return noEncontrado(msg)
	}
	return err
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(formatoTimestamp)
	return &s
}
