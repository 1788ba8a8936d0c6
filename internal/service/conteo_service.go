package service

import (
	"context"
	"fmt"
	"strings"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EncoladorActas schedules the count certificate for async rendering.
type EncoladorActas interface {
	EncolarActaConteo(ctx context.Context, conteoID uuid.UUID) error
}

type ConteoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearConteoRequest) (*dto.ConteoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ConteoResponse, error)
	Listar(ctx context.Context, filter dto.ConteoFilter) (*dto.ConteoListResponse, error)
}

type conteoService struct {
	repo     repository.ConteoRepository
	cajaRepo repository.CajaMayorRepository
	caja     CajaMayorService
	actas    EncoladorActas
}

// NewConteoService accepts a nil encolador; certificates are then not generated.
func NewConteoService(repo repository.ConteoRepository, cajaRepo repository.CajaMayorRepository, caja CajaMayorService, actas EncoladorActas) ConteoService {
	return &conteoService{repo: repo, cajaRepo: cajaRepo, caja: caja, actas: actas}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// The system balance is read under the currency lock in the same transaction
// that writes the adjustment, so diferencia is exactly what the adjustment
// corrects.

func (s *conteoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearConteoRequest) (*dto.ConteoResponse, error) {
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	if len(req.Detalles) == 0 {
		return nil, validacion("el conteo debe tener al menos una denominación")
	}

	c := &model.Conteo{
		ID:            uuid.New(),
		Moneda:        moneda,
		Total:         decimal.Zero,
		Observaciones: req.Observaciones,
		UsuarioID:     usuarioID,
		Fecha:         ahora(),
	}
	vistas := make(map[string]bool, len(req.Detalles))
	for _, d := range req.Detalles {
		if !d.Denominacion.IsPositive() {
			return nil, validacion("las denominaciones deben ser mayores a cero")
		}
		if d.Cantidad < 0 {
			return nil, validacion("la cantidad no puede ser negativa")
		}
		clave := d.Denominacion.String()
		if vistas[clave] {
			return nil, validacion(fmt.Sprintf("denominación repetida: %s", clave))
		}
		vistas[clave] = true

		sub := d.Denominacion.Mul(decimal.NewFromInt(int64(d.Cantidad)))
		c.Detalles = append(c.Detalles, model.ConteoDetalle{
			ID:           uuid.New(),
			ConteoID:     c.ID,
			Denominacion: d.Denominacion,
			Cantidad:     d.Cantidad,
			Subtotal:     sub,
		})
		c.Total = c.Total.Add(sub)
	}

	var ajuste *model.MovimientoCajaMayor
	err = runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		saldo, err := s.caja.SaldoActual(ctx, tx, moneda)
		if err != nil {
			return err
		}
		c.SaldoSistema = saldo
		c.Diferencia = c.Total.Sub(saldo)

		if err := s.repo.Create(ctx, tx, c); err != nil {
			return err
		}
		if !req.GenerarAjuste || c.Diferencia.IsZero() {
			return nil
		}

		ajuste, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoAjusteConteo,
			OperacionID: "CONTEO-" + c.ID.String(),
			Moneda:      moneda,
			Monto:       c.Diferencia.Abs(),
			EsIngreso:   c.Diferencia.IsPositive(),
			Concepto:    conceptoAjuste(c),
			UsuarioID:   usuarioID,
			ConteoID:    &c.ID,
		})
		if err != nil {
			return err
		}
		c.AjusteGenerado = true
		c.MovimientoCajaMayorID = &ajuste.ID
		return s.repo.SetMovimiento(ctx, tx, c.ID, ajuste.ID)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, ajuste)

	if s.actas != nil {
		if err := s.actas.EncolarActaConteo(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("conteo_id", c.ID.String()).
				Msg("conteo: no se pudo encolar el acta")
		}
	}

	resp := conteoToResponse(c)
	return &resp, nil
}

func (s *conteoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ConteoResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "conteo no encontrado")
	}
	resp := conteoToResponse(c)
	return &resp, nil
}

func (s *conteoService) Listar(ctx context.Context, filter dto.ConteoFilter) (*dto.ConteoListResponse, error) {
	var moneda string
	if filter.Moneda != "" {
		m, err := parseMoneda(strings.ToUpper(filter.Moneda))
		if err != nil {
			return nil, err
		}
		moneda = string(m)
	}
	pag := paginacion(filter.Page, filter.Limit)
	conteos, total, err := s.repo.List(ctx, moneda, pag)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ConteoResponse, 0, len(conteos))
	for i := range conteos {
		data = append(data, conteoToResponse(&conteos[i]))
	}
	return &dto.ConteoListResponse{Data: data, Total: total, Page: pag.Page, Limit: pag.Limit}, nil
}

func conceptoAjuste(c *model.Conteo) string {
	signo := "faltante"
	if c.Diferencia.IsPositive() {
		signo = "sobrante"
	}
	return fmt.Sprintf("Ajuste por conteo (%s de %s %s)", signo, c.Diferencia.Abs().StringFixed(2), c.Moneda)
}

func conteoToResponse(c *model.Conteo) dto.ConteoResponse {
	detalles := make([]dto.DetalleConteoResponse, 0, len(c.Detalles))
	for _, d := range c.Detalles {
		detalles = append(detalles, dto.DetalleConteoResponse{
			Denominacion: d.Denominacion,
			Cantidad:     d.Cantidad,
			Subtotal:     d.Subtotal,
		})
	}
	return dto.ConteoResponse{
		ID:                    c.ID.String(),
		Moneda:                string(c.Moneda),
		Total:                 c.Total,
		SaldoSistema:          c.SaldoSistema,
		Diferencia:            c.Diferencia,
		Observaciones:         c.Observaciones,
		AjusteGenerado:        c.AjusteGenerado,
		MovimientoCajaMayorID: c.MovimientoCajaMayorID,
		UsuarioID:             c.UsuarioID.String(),
		Fecha:                 c.Fecha.UTC().Format(formatoTimestamp),
		Detalles:              detalles,
	}
}
