package service

import (
	"context"
	"fmt"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type DepositoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearDepositoRequest, rutaComprobante *string) (*dto.DepositoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarDepositoRequest) (*dto.DepositoResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID, req dto.CancelarDepositoRequest) (*dto.DepositoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DepositoResponse, error)
	Listar(ctx context.Context, filter dto.DepositoFilter) (*dto.DepositoListResponse, error)
	// RutaComprobante returns the stored upload path of the deposit receipt.
	RutaComprobante(ctx context.Context, id uuid.UUID) (string, error)
}

type depositoService struct {
	repo     repository.DepositoRepository
	cuentas  repository.CuentaBancariaRepository
	cajaRepo repository.CajaMayorRepository
	caja     CajaMayorService
}

func NewDepositoService(
	repo repository.DepositoRepository,
	cuentas repository.CuentaBancariaRepository,
	cajaRepo repository.CajaMayorRepository,
	caja CajaMayorService,
) DepositoService {
	return &depositoService{repo: repo, cuentas: cuentas, cajaRepo: cajaRepo, caja: caja}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// A deposit takes cash out of caja mayor: the deposit row and its egreso
// ledger row are written in one transaction.

func (s *depositoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearDepositoRequest, rutaComprobante *string) (*dto.DepositoResponse, error) {
	cuentaID, err := parseUUID(req.CuentaBancariaID, "cuenta_bancaria_id")
	if err != nil {
		return nil, err
	}
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	fecha, err := parseFecha(req.Fecha, ahora())
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	if model.ObservacionReservada(req.Observacion) {
		return nil, errObservacionReservada()
	}

	cuenta, err := s.cuentas.FindByID(ctx, cuentaID)
	if err != nil {
		return nil, mapNotFound(err, "cuenta bancaria no encontrada")
	}
	if !cuenta.Activa {
		return nil, validacion("la cuenta bancaria está inactiva")
	}
	if cuenta.Moneda != moneda {
		return nil, validacion(fmt.Sprintf("la cuenta bancaria opera en %s, no en %s", cuenta.Moneda, moneda))
	}

	dep := &model.DepositoBancario{
		ID:               uuid.New(),
		CuentaBancariaID: cuentaID,
		Moneda:           moneda,
		Monto:            req.Monto,
		NumeroBoleta:     req.NumeroBoleta,
		Fecha:            fecha,
		Observacion:      req.Observacion,
		RutaComprobante:  rutaComprobante,
		UsuarioID:        usuarioID,
	}

	var mov *model.MovimientoCajaMayor
	err = runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, dep); err != nil {
			return err
		}
		var err error
		mov, err = s.caja.Registrar(ctx, tx, Asiento{
			Tipo:        model.TipoDeposito,
			OperacionID: dep.ID.String(),
			Moneda:      moneda,
			Monto:       dep.Monto,
			EsIngreso:   false,
			Concepto:    conceptoDeposito(dep, cuenta),
			UsuarioID:   usuarioID,
			DepositoID:  &dep.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, mov)

	dep.CuentaBancaria = cuenta
	resp := depositoToResponse(dep)
	resp.MovimientoID = &mov.ID
	return &resp, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Amount, currency and account are immutable; boleta/observación/fecha can
// change and the ledger concept follows the boleta number.

func (s *depositoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarDepositoRequest) (*dto.DepositoResponse, error) {
	if req.Observacion != nil && model.ObservacionReservada(*req.Observacion) {
		return nil, errObservacionReservada()
	}
	var dep *model.DepositoBancario
	var cuenta *model.CuentaBancaria
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		dep, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "depósito bancario no encontrado")
		}
		if dep.EstaCancelado() {
			return conflicto("no se puede modificar un depósito cancelado")
		}
		if req.NumeroBoleta != nil {
			dep.NumeroBoleta = *req.NumeroBoleta
		}
		if req.Observacion != nil {
			dep.Observacion = *req.Observacion
		}
		if req.Fecha != nil {
			f, err := parseFecha(*req.Fecha, dep.Fecha)
			if err != nil {
				return err
			}
			dep.Fecha = f
		}
		if err := s.repo.Update(ctx, tx, dep); err != nil {
			return err
		}

		cuenta, err = s.cuentas.FindByID(ctx, dep.CuentaBancariaID)
		if err != nil {
			return mapNotFound(err, "cuenta bancaria no encontrada")
		}
		movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefDeposito, dep.ID)
		if err != nil {
			return err
		}
		if orig := originalVigente(movs); orig != nil {
			return s.cajaRepo.UpdateConcepto(ctx, tx, orig.ID, conceptoDeposito(dep, cuenta))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dep.CuentaBancaria = cuenta
	resp := depositoToResponse(dep)
	return &resp, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// The ledger row is located server-side by deposito_id. A movimiento_id sent
// by the client is only a cross-check, except for legacy deposits whose
// ledger row was written without the foreign key.

func (s *depositoService) Cancelar(ctx context.Context, id uuid.UUID, usuarioID uuid.UUID, req dto.CancelarDepositoRequest) (*dto.DepositoResponse, error) {
	var dep *model.DepositoBancario
	var reversa *model.MovimientoCajaMayor
	err := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		dep, err = s.repo.FindByIDTx(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "depósito bancario no encontrado")
		}
		if dep.EstaCancelado() {
			return conflicto("el depósito ya está cancelado")
		}

		orig, err := s.movimientoDeDeposito(ctx, tx, dep, req.MovimientoID)
		if err != nil {
			return err
		}

		dep.MarcarCancelado(req.Motivo)
		if err := s.repo.Update(ctx, tx, dep); err != nil {
			return err
		}

		if orig == nil {
			log.Warn().Str("deposito_id", dep.ID.String()).
				Msg("deposito: cancelado sin movimiento de caja mayor asociado")
			return nil
		}
		reversa, err = s.caja.Revertir(ctx, tx, orig, model.TipoDepositoAnulado,
			fmt.Sprintf("Cancelación de depósito boleta %s: %s", dep.NumeroBoleta, req.Motivo), usuarioID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.caja.Publicar(ctx, reversa)

	resp := depositoToResponse(dep)
	if reversa != nil {
		resp.MovimientoID = &reversa.ID
	}
	return &resp, nil
}

func (s *depositoService) movimientoDeDeposito(ctx context.Context, tx *gorm.DB, dep *model.DepositoBancario, sugerido *int64) (*model.MovimientoCajaMayor, error) {
	movs, err := s.cajaRepo.FindPorReferencia(ctx, tx, repository.RefDeposito, dep.ID)
	if err != nil {
		return nil, err
	}
	orig := originalVigente(movs)
	if orig != nil {
		if sugerido != nil && *sugerido != orig.ID {
			return nil, validacion(fmt.Sprintf("el movimiento %d no corresponde al depósito", *sugerido))
		}
		return orig, nil
	}
	if sugerido == nil {
		return nil, nil
	}

	m, err := s.cajaRepo.FindByID(ctx, tx, *sugerido)
	if err != nil {
		return nil, mapNotFound(err, "movimiento de caja mayor no encontrado")
	}
	ledger, _ := dep.Moneda.Ledger()
	if m.ReversaDeID != nil || m.EsIngreso || m.Moneda != ledger || !m.Monto.Equal(dep.Monto) ||
		(m.DepositoID != nil && *m.DepositoID != dep.ID) {
		return nil, validacion(fmt.Sprintf("el movimiento %d no corresponde al depósito", *sugerido))
	}
	return m, nil
}

func errObservacionReservada() error {
	return validacion(fmt.Sprintf("la observación no puede comenzar con %s; use la cancelación del depósito", model.PrefijoCancelado))
}

func (s *depositoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DepositoResponse, error) {
	dep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "depósito bancario no encontrado")
	}
	resp := depositoToResponse(dep)
	movs, err := s.cajaRepo.FindPorReferencia(ctx, nil, repository.RefDeposito, dep.ID)
	if err != nil {
		return nil, err
	}
	if orig := primerOriginal(movs); orig != nil {
		resp.MovimientoID = &orig.ID
	}
	return &resp, nil
}

func (s *depositoService) Listar(ctx context.Context, filter dto.DepositoFilter) (*dto.DepositoListResponse, error) {
	rango, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	f := repository.DepositoFilter{
		Rango:             rango,
		IncluirCancelados: filter.IncluirCancelados,
		Paginacion:        paginacion(filter.Page, filter.Limit),
	}
	if filter.CuentaBancariaID != "" {
		id, err := parseUUID(filter.CuentaBancariaID, "cuenta_bancaria_id")
		if err != nil {
			return nil, err
		}
		f.CuentaBancariaID = &id
	}
	if filter.Moneda != "" {
		m, err := parseMoneda(filter.Moneda)
		if err != nil {
			return nil, err
		}
		f.Moneda = string(m)
	}

	deps, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DepositoResponse, 0, len(deps))
	for i := range deps {
		data = append(data, depositoToResponse(&deps[i]))
	}
	return &dto.DepositoListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *depositoService) RutaComprobante(ctx context.Context, id uuid.UUID) (string, error) {
	dep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", mapNotFound(err, "depósito bancario no encontrado")
	}
	if dep.RutaComprobante == nil || *dep.RutaComprobante == "" {
		return "", noEncontrado("el depósito no tiene comprobante")
	}
	return *dep.RutaComprobante, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func conceptoDeposito(d *model.DepositoBancario, c *model.CuentaBancaria) string {
	return fmt.Sprintf("Depósito bancario boleta %s - %s cta. %s", d.NumeroBoleta, c.Banco, c.NumeroCuenta)
}

func depositoToResponse(d *model.DepositoBancario) dto.DepositoResponse {
	resp := dto.DepositoResponse{
		ID:               d.ID.String(),
		CuentaBancariaID: d.CuentaBancariaID.String(),
		Moneda:           string(d.Moneda),
		Monto:            d.Monto,
		NumeroBoleta:     d.NumeroBoleta,
		Fecha:            d.Fecha.UTC().Format(formatoFecha),
		Observacion:      d.Observacion,
		RutaComprobante:  d.RutaComprobante,
		Cancelado:        d.EstaCancelado(),
		UsuarioID:        d.UsuarioID.String(),
	}
	if d.CuentaBancaria != nil {
		resp.Banco = d.CuentaBancaria.Banco
		resp.NumeroCuenta = d.CuentaBancaria.NumeroCuenta
	}
	return resp
}
