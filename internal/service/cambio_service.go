package service

import (
	"context"
	"fmt"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CambioService records currency exchanges done with caja mayor cash. Each
// exchange is two ledger rows, one per currency, written in one transaction.
type CambioService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarCambioRequest) (*dto.CambioResponse, error)
	Anular(ctx context.Context, id, usuarioID uuid.UUID) (*dto.CambioResponse, error)
	Listar(ctx context.Context, filter dto.CambioFilter) (*dto.CambioListResponse, error)
}

type cambioService struct {
	repo     repository.CambioRepository
	cajaRepo repository.CajaMayorRepository
	caja     CajaMayorService
}

func NewCambioService(repo repository.CambioRepository, cajaRepo repository.CajaMayorRepository, caja CajaMayorService) CambioService {
	return &cambioService{repo: repo, cajaRepo: cajaRepo, caja: caja}
}

func (s *cambioService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarCambioRequest) (*dto.CambioResponse, error) {
	origen, err := parseMoneda(req.MonedaOrigen)
	if err != nil {
		return nil, err
	}
	destino, err := parseMoneda(req.MonedaDestino)
	if err != nil {
		return nil, err
	}
	if origen == destino {
		return nil, validacion("la moneda de origen y destino deben ser distintas")
	}
	if !req.MontoOrigen.IsPositive() || !req.MontoDestino.IsPositive() || !req.Cotizacion.IsPositive() {
		return nil, validacion("montos y cotización deben ser mayores a cero")
	}

	c := &model.CambioMoneda{
		ID:            uuid.New(),
		MonedaOrigen:  origen,
		MontoOrigen:   req.MontoOrigen,
		MonedaDestino: destino,
		MontoDestino:  req.MontoDestino,
		Cotizacion:    req.Cotizacion,
		Observacion:   req.Observacion,
		UsuarioID:     usuarioID,
		Fecha:         ahora(),
	}
	concepto := fmt.Sprintf("Cambio %s %s → %s %s (cotización %s)",
		c.MontoOrigen.StringFixed(2), origen, c.MontoDestino.StringFixed(2), destino, c.Cotizacion.String())

	var egreso, ingreso *model.MovimientoCajaMayor
	err = runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, c); err != nil {
			return err
		}
		var err error
		egreso, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoCambio,
			OperacionID: c.ID.String(),
			Moneda:      origen,
			Monto:       c.MontoOrigen,
			EsIngreso:   false,
			Concepto:    concepto,
			UsuarioID:   usuarioID,
			CambioID:    &c.ID,
		})
		if err != nil {
			return err
		}
		ingreso, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoCambio,
			OperacionID: c.ID.String(),
			Moneda:      destino,
			Monto:       c.MontoDestino,
			EsIngreso:   true,
			Concepto:    concepto,
			UsuarioID:   usuarioID,
			CambioID:    &c.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, egreso, ingreso)

	resp := cambioToResponse(c)
	resp.MovimientoEgresoID = &egreso.ID
	resp.MovimientoIngresoID = &ingreso.ID
	return &resp, nil
}

// Anular reverses both legs of the exchange.
func (s *cambioService) Anular(ctx context.Context, id, usuarioID uuid.UUID) (*dto.CambioResponse, error) {
	var c *model.CambioMoneda
	var reversas []*model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		c, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "cambio no encontrado")
		}
		if c.Anulado {
			return conflicto("el cambio ya está anulado")
		}

		movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefCambio, c.ID)
		if err != nil {
			return err
		}
		for i := range movs {
			if movs[i].ReversaDeID != nil {
				continue
			}
			r, err := s.caja.Revertir(ctx, tx, &movs[i], model.TipoCambioAnulado, "Anulación de cambio "+c.ID.String(), usuarioID)
			if err != nil {
				return err
			}
			reversas = append(reversas, r)
		}

		c.Anulado = true
		return s.repo.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversas...)

	resp := cambioToResponse(c)
	return &resp, nil
}

func (s *cambioService) Listar(ctx context.Context, filter dto.CambioFilter) (*dto.CambioListResponse, error) {
	rango, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	pag := paginacion(filter.Page, filter.Limit)
	cambios, total, err := s.repo.List(ctx, rango, pag)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CambioResponse, 0, len(cambios))
	for i := range cambios {
		data = append(data, cambioToResponse(&cambios[i]))
	}
	return &dto.CambioListResponse{Data: data, Total: total, Page: pag.Page, Limit: pag.Limit}, nil
}

func cambioToResponse(c *model.CambioMoneda) dto.CambioResponse {
	return dto.CambioResponse{
		ID:            c.ID.String(),
		MonedaOrigen:  string(c.MonedaOrigen),
		MontoOrigen:   c.MontoOrigen,
		MonedaDestino: string(c.MonedaDestino),
		MontoDestino:  c.MontoDestino,
		Cotizacion:    c.Cotizacion,
		Observacion:   c.Observacion,
		Anulado:       c.Anulado,
		UsuarioID:     c.UsuarioID.String(),
		Fecha:         c.Fecha.UTC().Format(formatoTimestamp),
	}
}
