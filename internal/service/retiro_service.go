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
	"gorm.io/gorm"
)

// RetiroService handles cash withdrawn from a register and carried to caja
// mayor. A retiro only touches the ledger once it is received.
type RetiroService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRetiroRequest) (*dto.RetiroResponse, error)
	Recibir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.RetiroResponse, error)
	Rechazar(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.RetiroResponse, error)
	Devolver(ctx context.Context, id, usuarioID uuid.UUID, req dto.DevolverRetiroRequest) (*dto.RetiroResponse, error)
	Listar(ctx context.Context, filter dto.RetiroFilter) (*dto.RetiroListResponse, error)
}

type retiroService struct {
	repo     repository.MovimientoRepository
	cajaRepo repository.CajaMayorRepository
	caja     CajaMayorService
}

func NewRetiroService(repo repository.MovimientoRepository, cajaRepo repository.CajaMayorRepository, caja CajaMayorService) RetiroService {
	return &retiroService{repo: repo, cajaRepo: cajaRepo, caja: caja}
}

func (s *retiroService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearRetiroRequest) (*dto.RetiroResponse, error) {
	cajaID, err := parseUUID(req.CajaID, "caja_id")
	if err != nil {
		return nil, err
	}
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	var servicio *string
	if req.Servicio != nil && strings.TrimSpace(*req.Servicio) != "" {
		sv := normalizarServicio(*req.Servicio)
		servicio = &sv
	}

	r := &model.Movimiento{
		ID:              uuid.New(),
		CajaID:          cajaID,
		TipoMovimiento:  model.TipoMovimientoEgreso,
		Moneda:          moneda,
		Monto:           req.Monto,
		Servicio:        servicio,
		Observacion:     req.Observacion,
		EstadoRecepcion: model.RecepcionPendiente,
		UsuarioID:       usuarioID,
		Fecha:           ahora(),
	}
	if err := s.repo.Create(ctx, nil, r); err != nil {
		return nil, err
	}
	resp := retiroToResponse(r)
	return &resp, nil
}

// ── Recibir ───────────────────────────────────────────────────────────────────

func (s *retiroService) Recibir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.RetiroResponse, error) {
	var r *model.Movimiento
	var mov *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		r, err = s.cargar(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.EstadoRecepcion.PuedePasarA(model.RecepcionRecibido) {
			return conflicto(fmt.Sprintf("no se puede recibir un retiro %s", r.EstadoRecepcion))
		}

		mov, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:         model.TipoRetiroRecibido,
			OperacionID:  r.ID.String(),
			Moneda:       r.Moneda,
			Monto:        r.Monto,
			EsIngreso:    true,
			Concepto:     conceptoRetiro(r),
			UsuarioID:    usuarioID,
			MovimientoID: &r.ID,
		})
		if err != nil {
			return err
		}

		t := ahora()
		r.EstadoRecepcion = model.RecepcionRecibido
		r.UsuarioRecepcionID = &usuarioID
		r.FechaRecepcion = &t
		return s.repo.Update(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, mov)

	resp := retiroToResponse(r)
	return &resp, nil
}

func (s *retiroService) Rechazar(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.RetiroResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, validacion("el motivo del rechazo es requerido")
	}

	var r *model.Movimiento
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		r, err = s.cargar(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.EstadoRecepcion.PuedePasarA(model.RecepcionRechazado) {
			return conflicto(fmt.Sprintf("no se puede rechazar un retiro %s", r.EstadoRecepcion))
		}
		t := ahora()
		r.EstadoRecepcion = model.RecepcionRechazado
		r.UsuarioRecepcionID = &usuarioID
		r.FechaRecepcion = &t
		r.MotivoRechazo = &motivo
		return s.repo.Update(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := retiroToResponse(r)
	return &resp, nil
}

// ── Devolver ──────────────────────────────────────────────────────────────────
// RECIBIDO → PENDIENTE. The receipt row is found by movimiento_id; a ledger id
// sent by the client is only a cross-check.

func (s *retiroService) Devolver(ctx context.Context, id, usuarioID uuid.UUID, req dto.DevolverRetiroRequest) (*dto.RetiroResponse, error) {
	var r *model.Movimiento
	var reversa *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		r, err = s.cargar(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.EstadoRecepcion != model.RecepcionRecibido {
			return conflicto(fmt.Sprintf("solo se puede devolver un retiro RECIBIDO, estado actual %s", r.EstadoRecepcion))
		}

		movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefMovimiento, r.ID)
		if err != nil {
			return err
		}
		orig := originalVigente(movs)
		if req.MovimientoCajaMayorID != nil && (orig == nil || orig.ID != *req.MovimientoCajaMayorID) {
			return validacion(fmt.Sprintf("el movimiento de caja mayor %d no corresponde a la recepción del retiro", *req.MovimientoCajaMayorID))
		}

		concepto := "Devolución de retiro " + r.ID.String()
		if m := strings.TrimSpace(req.Motivo); m != "" {
			concepto += ": " + m
		}
		if orig == nil {
			log.Warn().Str("retiro_id", r.ID.String()).
				Msg("retiro: recepción sin movimiento de caja mayor, se devuelve sin reversión")
		} else {
			reversa, err = s.caja.Revertir(ctx, tx, orig, model.TipoRetiroDevuelto, concepto, usuarioID)
			if err != nil {
				return err
			}
		}

		r.EstadoRecepcion = model.RecepcionPendiente
		r.UsuarioRecepcionID = nil
		r.FechaRecepcion = nil
		return s.repo.Update(ctx, tx, r)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversa)

	resp := retiroToResponse(r)
	return &resp, nil
}

func (s *retiroService) Listar(ctx context.Context, filter dto.RetiroFilter) (*dto.RetiroListResponse, error) {
	f := repository.RetiroFilter{
		Estado:     strings.ToUpper(filter.Estado),
		Paginacion: paginacion(filter.Page, filter.Limit),
	}
	if filter.CajaID != "" {
		id, err := parseUUID(filter.CajaID, "caja_id")
		if err != nil {
			return nil, err
		}
		f.CajaID = &id
	}
	if filter.Moneda != "" {
		m, err := parseMoneda(strings.ToUpper(filter.Moneda))
		if err != nil {
			return nil, err
		}
		f.Moneda = string(m)
	}

	retiros, total, err := s.repo.ListRetiros(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RetiroResponse, 0, len(retiros))
	for i := range retiros {
		data = append(data, retiroToResponse(&retiros[i]))
	}
	return &dto.RetiroListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// cargar locks the row and rejects register movements that are not withdrawals.
func (s *retiroService) cargar(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Movimiento, error) {
	r, err := s.repo.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, mapNotFound(err, "retiro no encontrado")
	}
	if r.TipoMovimiento != model.TipoMovimientoEgreso {
		return nil, noEncontrado("retiro no encontrado")
	}
	return r, nil
}

func conceptoRetiro(r *model.Movimiento) string {
	c := "Recepción de retiro de caja " + r.CajaID.String()
	if r.Servicio != nil {
		c += " (" + *r.Servicio + ")"
	}
	return c
}

func retiroToResponse(r *model.Movimiento) dto.RetiroResponse {
	return dto.RetiroResponse{
		ID:                 r.ID.String(),
		CajaID:             r.CajaID.String(),
		Moneda:             string(r.Moneda),
		Monto:              r.Monto,
		Servicio:           r.Servicio,
		Observacion:        r.Observacion,
		EstadoRecepcion:    string(r.EstadoRecepcion),
		UsuarioID:          r.UsuarioID.String(),
		UsuarioRecepcionID: uuidPtrString(r.UsuarioRecepcionID),
		FechaRecepcion:     timePtrString(r.FechaRecepcion),
		MotivoRechazo:      r.MotivoRechazo,
		Fecha:              r.Fecha.UTC().Format(formatoTimestamp),
	}
}
