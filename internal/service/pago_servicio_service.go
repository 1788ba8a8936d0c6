package service

import (
	"context"
	"fmt"
	"strings"

	"sistemaservicios/internal/config"
	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PagoServicioService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPagoServicioRequest, rutaComprobante *string) (*dto.PagoServicioResponse, error)
	CambiarEstado(ctx context.Context, id, usuarioID uuid.UUID, req dto.CambiarEstadoPagoRequest) (*dto.PagoServicioResponse, error)
	Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.PagoServicioResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PagoServicioResponse, error)
	Listar(ctx context.Context, filter dto.PagoServicioFilter) (*dto.PagoServicioListResponse, error)
}

type pagoServicioService struct {
	repo      repository.PagoServicioRepository
	cajaRepo  repository.CajaMayorRepository
	caja      CajaMayorService
	servicios config.CatalogoServicios
}

func NewPagoServicioService(
	repo repository.PagoServicioRepository,
	cajaRepo repository.CajaMayorRepository,
	caja CajaMayorService,
	servicios config.CatalogoServicios,
) PagoServicioService {
	return &pagoServicioService{repo: repo, cajaRepo: cajaRepo, caja: caja, servicios: servicios}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *pagoServicioService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearPagoServicioRequest, rutaComprobante *string) (*dto.PagoServicioResponse, error) {
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	servicio := normalizarServicio(req.Servicio)
	if servicio == "" {
		return nil, validacion("servicio requerido")
	}
	if sv, ok := s.servicios.Buscar(servicio); ok && sv.Moneda != moneda {
		return nil, validacion(fmt.Sprintf("el servicio %s opera en %s", sv.Nombre, sv.Moneda))
	}

	pago := &model.PagoServicio{
		ID:              uuid.New(),
		Servicio:        servicio,
		Moneda:          moneda,
		Monto:           req.Monto,
		Referencia:      req.Referencia,
		Estado:          model.PagoPendiente,
		RutaComprobante: rutaComprobante,
		Observacion:     req.Observacion,
		UsuarioID:       usuarioID,
		Fecha:           ahora(),
	}

	var mov *model.MovimientoCajaMayor
	err = runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, pago); err != nil {
			return err
		}
		var err error
		mov, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:           model.TipoPagoServicio,
			OperacionID:    pago.ID.String(),
			Moneda:         moneda,
			Monto:          pago.Monto,
			EsIngreso:      false,
			Concepto:       conceptoPago(pago),
			UsuarioID:      usuarioID,
			PagoServicioID: &pago.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, mov)

	resp := pagoToResponse(pago)
	return &resp, nil
}

// ── CambiarEstado ─────────────────────────────────────────────────────────────
// PENDIENTE → PROCESADO | RECHAZADO. A rejected payment never left the
// business, so its egreso is reversed.

func (s *pagoServicioService) CambiarEstado(ctx context.Context, id, usuarioID uuid.UUID, req dto.CambiarEstadoPagoRequest) (*dto.PagoServicioResponse, error) {
	destino := model.EstadoPago(req.Estado)
	if destino != model.PagoProcesado && destino != model.PagoRechazado {
		return nil, validacion("estado inválido: use ANULAR para anular el pago")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if destino == model.PagoRechazado && motivo == "" {
		return nil, validacion("el motivo del rechazo es requerido")
	}

	var pago *model.PagoServicio
	var reversa *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		pago, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "pago de servicio no encontrado")
		}
		if !pago.Estado.PuedePasarA(destino) {
			return conflicto(fmt.Sprintf("no se puede pasar de %s a %s", pago.Estado, destino))
		}
		pago.Estado = destino
		if destino == model.PagoRechazado {
			pago.MotivoAnulacion = &motivo
			reversa, err = s.revertirPago(ctx, tx, pago, usuarioID, "Pago de servicio rechazado: "+motivo)
			if err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, pago)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversa)

	resp := pagoToResponse(pago)
	return &resp, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────

func (s *pagoServicioService) Anular(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.PagoServicioResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, validacion("el motivo de anulación es requerido")
	}

	var pago *model.PagoServicio
	var reversa *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		pago, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "pago de servicio no encontrado")
		}
		if pago.Estado == model.PagoAnulado {
			return conflicto("el pago ya está anulado")
		}
		if !pago.Estado.PuedePasarA(model.PagoAnulado) {
			return conflicto(fmt.Sprintf("no se puede anular un pago %s", pago.Estado))
		}
		reversa, err = s.revertirPago(ctx, tx, pago, usuarioID, "Anulación de pago de servicio: "+motivo)
		if err != nil {
			return err
		}
		pago.Estado = model.PagoAnulado
		pago.MotivoAnulacion = &motivo
		return s.repo.Update(ctx, tx, pago)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversa)

	resp := pagoToResponse(pago)
	return &resp, nil
}

func (s *pagoServicioService) revertirPago(ctx context.Context, tx *gorm.DB, pago *model.PagoServicio, usuarioID uuid.UUID, concepto string) (*model.MovimientoCajaMayor, error) {
	movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefPagoServicio, pago.ID)
	if err != nil {
		return nil, err
	}
	orig := originalVigente(movs)
	if orig == nil {
		log.Warn().Str("pago_servicio_id", pago.ID.String()).
			Msg("pago_servicio: sin movimiento de caja mayor que revertir")
		return nil, nil
	}
	return s.caja.Revertir(ctx, tx, orig, model.TipoPagoAnulado, concepto, usuarioID)
}

func (s *pagoServicioService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PagoServicioResponse, error) {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "pago de servicio no encontrado")
	}
	resp := pagoToResponse(pago)
	return &resp, nil
}

func (s *pagoServicioService) Listar(ctx context.Context, filter dto.PagoServicioFilter) (*dto.PagoServicioListResponse, error) {
	rango, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	f := repository.PagoServicioFilter{
		Servicio:   normalizarServicio(filter.Servicio),
		Estado:     strings.ToUpper(filter.Estado),
		Rango:      rango,
		Paginacion: paginacion(filter.Page, filter.Limit),
	}
	pagos, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PagoServicioResponse, 0, len(pagos))
	for i := range pagos {
		data = append(data, pagoToResponse(&pagos[i]))
	}
	return &dto.PagoServicioListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func conceptoPago(p *model.PagoServicio) string {
	c := "Pago de servicio " + p.Servicio
	if p.Referencia != "" {
		c += " ref. " + p.Referencia
	}
	return c
}

func pagoToResponse(p *model.PagoServicio) dto.PagoServicioResponse {
	return dto.PagoServicioResponse{
		ID:              p.ID.String(),
		Servicio:        p.Servicio,
		Moneda:          string(p.Moneda),
		Monto:           p.Monto,
		Referencia:      p.Referencia,
		Estado:          string(p.Estado),
		MotivoAnulacion: p.MotivoAnulacion,
		RutaComprobante: p.RutaComprobante,
		Observacion:     p.Observacion,
		UsuarioID:       p.UsuarioID.String(),
		Fecha:           p.Fecha.UTC().Format(formatoTimestamp),
	}
}
