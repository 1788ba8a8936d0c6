package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ValeService interface {
	Emitir(ctx context.Context, usuarioID uuid.UUID, req dto.EmitirValeRequest) (*dto.ValeResponse, error)
	Cobrar(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ValeResponse, error)
	Cancelar(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.ValeResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ValeResponse, error)
	Listar(ctx context.Context, filter dto.ValeFilter) (*dto.ValeListResponse, error)
}

type valeService struct {
	repo     repository.ValeRepository
	cajaRepo repository.CajaMayorRepository
	caja     CajaMayorService
}

func NewValeService(repo repository.ValeRepository, cajaRepo repository.CajaMayorRepository, caja CajaMayorService) ValeService {
	return &valeService{repo: repo, cajaRepo: cajaRepo, caja: caja}
}

func (s *valeService) Emitir(ctx context.Context, usuarioID uuid.UUID, req dto.EmitirValeRequest) (*dto.ValeResponse, error) {
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	v := &model.Vale{
		ID:           uuid.New(),
		Moneda:       moneda,
		Monto:        req.Monto,
		Persona:      strings.TrimSpace(req.Persona),
		Motivo:       strings.TrimSpace(req.Motivo),
		FechaEmision: ahora(),
		Estado:       model.ValePendiente,
		UsuarioID:    usuarioID,
	}
	if req.FechaVencimiento != nil && *req.FechaVencimiento != "" {
		f, err := parseFecha(*req.FechaVencimiento, v.FechaEmision)
		if err != nil {
			return nil, err
		}
		if f.Before(v.FechaEmision.Truncate(24 * time.Hour)) {
			return nil, validacion("la fecha de vencimiento no puede ser anterior a la emisión")
		}
		v.FechaVencimiento = &f
	}

	var mov *model.MovimientoCajaMayor
	err = runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		if v.Numero, err = s.repo.NextNumero(ctx, tx); err != nil {
			return fmt.Errorf("numerar vale: %w", err)
		}
		if err := s.repo.Create(ctx, tx, v); err != nil {
			return err
		}
		mov, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoVale,
			OperacionID: fmt.Sprintf("VALE-%d", v.Numero),
			Moneda:      moneda,
			Monto:       v.Monto,
			EsIngreso:   false,
			Concepto:    fmt.Sprintf("Vale N° %d a %s: %s", v.Numero, v.Persona, v.Motivo),
			UsuarioID:   usuarioID,
			ValeID:      &v.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, mov)

	resp := valeToResponse(v)
	return &resp, nil
}

func (s *valeService) Cobrar(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ValeResponse, error) {
	var v *model.Vale
	var mov *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		v, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "vale no encontrado")
		}
		if v.Estado != model.ValePendiente {
			return conflicto(fmt.Sprintf("el vale N° %d está %s", v.Numero, v.Estado))
		}
		mov, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoValeCobrado,
			OperacionID: fmt.Sprintf("VALE-%d", v.Numero),
			Moneda:      v.Moneda,
			Monto:       v.Monto,
			EsIngreso:   true,
			Concepto:    fmt.Sprintf("Cobro de vale N° %d de %s", v.Numero, v.Persona),
			UsuarioID:   usuarioID,
			ValeID:      &v.ID,
		})
		if err != nil {
			return err
		}
		v.Estado = model.ValeCobrado
		return s.repo.Update(ctx, tx, v)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, mov)

	resp := valeToResponse(v)
	return &resp, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Reverses the emission row and tags its concepto so listings show the
// cancellation next to the original.

func (s *valeService) Cancelar(ctx context.Context, id, usuarioID uuid.UUID, motivo string) (*dto.ValeResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, validacion("el motivo de cancelación es requerido")
	}

	var v *model.Vale
	var reversa *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		v, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "vale no encontrado")
		}
		if v.Estado == model.ValeCancelado {
			return conflicto(fmt.Sprintf("el vale N° %d ya está cancelado", v.Numero))
		}
		if v.Estado != model.ValePendiente {
			return conflicto(fmt.Sprintf("no se puede cancelar un vale %s", v.Estado))
		}

		movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefVale, v.ID)
		if err != nil {
			return err
		}
		orig := originalVigente(movs)
		if orig == nil {
			return conflicto(fmt.Sprintf("el vale N° %d no tiene movimiento de emisión en caja mayor", v.Numero))
		}
		reversa, err = s.caja.Revertir(ctx, tx, orig, model.TipoValeCancelado,
			fmt.Sprintf("Cancelación de vale N° %d: %s", v.Numero, motivo), usuarioID)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(orig.Concepto, model.PrefijoConceptoCancelado) {
			if err := s.cajaRepo.UpdateConcepto(ctx, tx, orig.ID, model.PrefijoConceptoCancelado+orig.Concepto); err != nil {
				return err
			}
		}

		v.Estado = model.ValeCancelado
		v.MotivoCancelacion = &motivo
		return s.repo.Update(ctx, tx, v)
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversa)

	resp := valeToResponse(v)
	return &resp, nil
}

func (s *valeService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ValeResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "vale no encontrado")
	}
	resp := valeToResponse(v)
	return &resp, nil
}

func (s *valeService) Listar(ctx context.Context, filter dto.ValeFilter) (*dto.ValeListResponse, error) {
	pag := paginacion(filter.Page, filter.Limit)
	vales, total, err := s.repo.List(ctx, strings.ToUpper(filter.Estado), pag)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ValeResponse, 0, len(vales))
	for i := range vales {
		data = append(data, valeToResponse(&vales[i]))
	}
	return &dto.ValeListResponse{Data: data, Total: total, Page: pag.Page, Limit: pag.Limit}, nil
}

func valeToResponse(v *model.Vale) dto.ValeResponse {
	resp := dto.ValeResponse{
		ID:                v.ID.String(),
		Numero:            v.Numero,
		Moneda:            string(v.Moneda),
		Monto:             v.Monto,
		Persona:           v.Persona,
		Motivo:            v.Motivo,
		FechaEmision:      v.FechaEmision.UTC().Format(formatoTimestamp),
		Estado:            string(v.Estado),
		MotivoCancelacion: v.MotivoCancelacion,
		UsuarioID:         v.UsuarioID.String(),
	}
	if v.FechaVencimiento != nil {
		f := v.FechaVencimiento.UTC().Format(formatoFecha)
		resp.FechaVencimiento = &f
	}
	return resp
}
