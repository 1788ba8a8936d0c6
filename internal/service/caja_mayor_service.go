package service

import (
	"context"
	"fmt"
	"time"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EventoMovimientoRegistrado = "ledger.entry.appended"
	loteContinuidad            = 500
)

// Asiento describes one ledger append. Monto is always positive; EsIngreso
// carries the sign.
type Asiento struct {
	Tipo        string
	OperacionID string
	Moneda      model.Moneda
	Monto       decimal.Decimal
	EsIngreso   bool
	Concepto    string
	UsuarioID   uuid.UUID

	DepositoID     *uuid.UUID
	PagoServicioID *uuid.UUID
	MovimientoID   *uuid.UUID
	ValeID         *uuid.UUID
	CambioID       *uuid.UUID
	ConteoID       *uuid.UUID
	ReversaDeID    *int64
}

// PublicadorEventos delivers committed ledger events to other systems.
type PublicadorEventos interface {
	Publicar(ctx context.Context, clave string, evento any) error
}

type CajaMayorService interface {
	// Registrar appends a row inside tx. The caller owns the transaction so the
	// originating record and its ledger row commit or roll back together.
	Registrar(ctx context.Context, tx *gorm.DB, a Asiento) (*model.MovimientoCajaMayor, error)
	// Revertir appends the opposite row of original. A row can be reversed once
	// and reversal rows cannot themselves be reversed.
	Revertir(ctx context.Context, tx *gorm.DB, original *model.MovimientoCajaMayor, tipo, concepto string, usuarioID uuid.UUID) (*model.MovimientoCajaMayor, error)
	// SaldoActual reads the balance; inside a transaction it also takes the currency lock.
	SaldoActual(ctx context.Context, tx *gorm.DB, moneda model.Moneda) (decimal.Decimal, error)
	// Publicar emits events for rows that are already committed. Failures are logged.
	Publicar(ctx context.Context, movs ...*model.MovimientoCajaMayor)

	RegistrarManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaMayorResponse, error)
	ObtenerPorID(ctx context.Context, id int64) (*dto.MovimientoCajaMayorResponse, error)
	Listar(ctx context.Context, filter dto.CajaMayorFilter) (*dto.MovimientoCajaMayorListResponse, error)
	Saldos(ctx context.Context) ([]dto.SaldoResponse, error)
	VerificarContinuidad(ctx context.Context, moneda model.Moneda) (*dto.ContinuidadResponse, error)
}

type cajaMayorService struct {
	repo repository.CajaMayorRepository
	pub  PublicadorEventos
}

// NewCajaMayorService accepts a nil publisher; events are then skipped.
func NewCajaMayorService(repo repository.CajaMayorRepository, pub PublicadorEventos) CajaMayorService {
	return &cajaMayorService{repo: repo, pub: pub}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// lock currency → read last row → saldo_anterior ± monto → insert

func (s *cajaMayorService) Registrar(ctx context.Context, tx *gorm.DB, a Asiento) (*model.MovimientoCajaMayor, error) {
	if !a.Monto.IsPositive() {
		return nil, validacion("el monto debe ser mayor a cero")
	}
	ledger, err := a.Moneda.Ledger()
	if err != nil {
		return nil, validacion(fmt.Sprintf("moneda inválida: %q", a.Moneda))
	}

	if err := s.repo.BloquearMoneda(ctx, tx, ledger); err != nil {
		return nil, fmt.Errorf("bloquear caja mayor %s: %w", ledger, err)
	}
	ultimo, err := s.repo.Ultimo(ctx, tx, ledger)
	if err != nil {
		return nil, fmt.Errorf("leer último movimiento %s: %w", ledger, err)
	}
	saldoAnterior := decimal.Zero
	if ultimo != nil {
		saldoAnterior = ultimo.SaldoActual
	}

	mov := &model.MovimientoCajaMayor{
		Fecha:          ahora(),
		Tipo:           a.Tipo,
		OperacionID:    a.OperacionID,
		Moneda:         ledger,
		Monto:          a.Monto,
		EsIngreso:      a.EsIngreso,
		SaldoAnterior:  saldoAnterior,
		Concepto:       a.Concepto,
		UsuarioID:      a.UsuarioID,
		DepositoID:     a.DepositoID,
		PagoServicioID: a.PagoServicioID,
		MovimientoID:   a.MovimientoID,
		ValeID:         a.ValeID,
		CambioID:       a.CambioID,
		ConteoID:       a.ConteoID,
		ReversaDeID:    a.ReversaDeID,
	}
	mov.SaldoActual = saldoAnterior.Add(mov.Delta())

	if err := s.repo.Create(ctx, tx, mov); err != nil {
		return nil, fmt.Errorf("insertar movimiento de caja mayor: %w", err)
	}
	return mov, nil
}

// ── Revertir ──────────────────────────────────────────────────────────────────

func (s *cajaMayorService) Revertir(ctx context.Context, tx *gorm.DB, original *model.MovimientoCajaMayor, tipo, concepto string, usuarioID uuid.UUID) (*model.MovimientoCajaMayor, error) {
	if original.ReversaDeID != nil {
		return nil, conflicto(fmt.Sprintf("el movimiento %d es una reversión y no puede revertirse", original.ID))
	}
	moneda, err := model.MonedaDesdeLedger(original.Moneda)
	if err != nil {
		return nil, fmt.Errorf("movimiento %d con moneda desconocida %q", original.ID, original.Moneda)
	}
	// Lock before the existence check so two reversals of the same row serialise.
	if err := s.repo.BloquearMoneda(ctx, tx, original.Moneda); err != nil {
		return nil, fmt.Errorf("bloquear caja mayor %s: %w", original.Moneda, err)
	}
	revertido, err := s.repo.ExisteReversa(ctx, tx, original.ID)
	if err != nil {
		return nil, err
	}
	if revertido {
		return nil, conflicto(fmt.Sprintf("el movimiento %d ya fue revertido", original.ID))
	}

	id := original.ID
	return s.Registrar(ctx, tx, Asiento{
		Tipo:           tipo,
		OperacionID:    original.OperacionID,
		Moneda:         moneda,
		Monto:          original.Monto,
		EsIngreso:      !original.EsIngreso,
		Concepto:       concepto,
		UsuarioID:      usuarioID,
		DepositoID:     original.DepositoID,
		PagoServicioID: original.PagoServicioID,
		MovimientoID:   original.MovimientoID,
		ValeID:         original.ValeID,
		CambioID:       original.CambioID,
		ConteoID:       original.ConteoID,
		ReversaDeID:    &id,
	})
}

func (s *cajaMayorService) SaldoActual(ctx context.Context, tx *gorm.DB, moneda model.Moneda) (decimal.Decimal, error) {
	ledger, err := moneda.Ledger()
	if err != nil {
		return decimal.Zero, validacion(fmt.Sprintf("moneda inválida: %q", moneda))
	}
	if tx != nil {
		if err := s.repo.BloquearMoneda(ctx, tx, ledger); err != nil {
			return decimal.Zero, fmt.Errorf("bloquear caja mayor %s: %w", ledger, err)
		}
	}
	ultimo, err := s.repo.Ultimo(ctx, tx, ledger)
	if err != nil {
		return decimal.Zero, err
	}
	if ultimo == nil {
		return decimal.Zero, nil
	}
	return ultimo.SaldoActual, nil
}

func (s *cajaMayorService) Publicar(ctx context.Context, movs ...*model.MovimientoCajaMayor) {
	if s.pub == nil {
		return
	}
	for _, m := range movs {
		if m == nil {
			continue
		}
		evento := dto.EventoMovimientoCajaMayor{
			Evento:      EventoMovimientoRegistrado,
			Movimiento:  movimientoCajaMayorToResponse(m),
			PublicadoEn: ahora().Format(time.RFC3339),
		}
		if err := s.pub.Publicar(ctx, m.Moneda, evento); err != nil {
			log.Warn().Err(err).
				Int64("movimiento_id", m.ID).
				Str("moneda", m.Moneda).
				Msg("caja_mayor: no se pudo publicar el evento")
		}
	}
}

// ── RegistrarManual ───────────────────────────────────────────────────────────

func (s *cajaMayorService) RegistrarManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaMayorResponse, error) {
	moneda, err := parseMoneda(req.Moneda)
	if err != nil {
		return nil, err
	}
	a := Asiento{
		OperacionID: "MANUAL-" + uuid.NewString(),
		Moneda:      moneda,
		Monto:       req.Monto,
		EsIngreso:   req.Tipo == "ingreso",
		Concepto:    req.Concepto,
		UsuarioID:   usuarioID,
	}
	if a.EsIngreso {
		a.Tipo = model.TipoIngresoManual
	} else {
		a.Tipo = model.TipoEgresoManual
	}

	var mov *model.MovimientoCajaMayor
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.Registrar(ctx, tx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Publicar(ctx, mov)

	resp := movimientoCajaMayorToResponse(mov)
	return &resp, nil
}

func (s *cajaMayorService) ObtenerPorID(ctx context.Context, id int64) (*dto.MovimientoCajaMayorResponse, error) {
	mov, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err, "movimiento de caja mayor no encontrado")
	}
	resp := movimientoCajaMayorToResponse(mov)
	return &resp, nil
}

func (s *cajaMayorService) Listar(ctx context.Context, filter dto.CajaMayorFilter) (*dto.MovimientoCajaMayorListResponse, error) {
	rango, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	f := repository.CajaMayorFilter{
		Tipo:       filter.Tipo,
		Rango:      rango,
		Paginacion: paginacion(filter.Page, filter.Limit),
	}
	if filter.Moneda != "" {
		m, err := model.ParseMoneda(filter.Moneda)
		if err != nil {
			return nil, validacion(fmt.Sprintf("moneda inválida: %q", filter.Moneda))
		}
		f.Moneda, _ = m.Ledger()
	}

	movs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoCajaMayorResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimientoCajaMayorToResponse(&movs[i]))
	}
	return &dto.MovimientoCajaMayorListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *cajaMayorService) Saldos(ctx context.Context) ([]dto.SaldoResponse, error) {
	saldos := make([]dto.SaldoResponse, 0, len(model.Monedas))
	for _, m := range model.Monedas {
		ledger, _ := m.Ledger()
		ultimo, err := s.repo.Ultimo(ctx, nil, ledger)
		if err != nil {
			return nil, err
		}
		sr := dto.SaldoResponse{Moneda: string(m), MonedaLedger: ledger, Saldo: decimal.Zero}
		if ultimo != nil {
			id := ultimo.ID
			sr.Saldo = ultimo.SaldoActual
			sr.UltimoMovimientoID = &id
		}
		saldos = append(saldos, sr)
	}
	return saldos, nil
}

// ── VerificarContinuidad ──────────────────────────────────────────────────────
// Walks the whole chain of one currency in id order and reports every row
// whose saldo_anterior does not match the previous saldo_actual or whose
// saldo_actual is not saldo_anterior ± monto.

func (s *cajaMayorService) VerificarContinuidad(ctx context.Context, moneda model.Moneda) (*dto.ContinuidadResponse, error) {
	ledger, err := moneda.Ledger()
	if err != nil {
		return nil, validacion(fmt.Sprintf("moneda inválida: %q", moneda))
	}

	resp := &dto.ContinuidadResponse{Moneda: string(moneda), Quiebres: []dto.QuiebreContinuidad{}}
	previo := decimal.Zero
	var afterID int64
	for {
		movs, err := s.repo.ListDesde(ctx, ledger, afterID, loteContinuidad)
		if err != nil {
			return nil, err
		}
		for i := range movs {
			m := &movs[i]
			if !m.SaldoAnterior.Equal(previo) {
				resp.Quiebres = append(resp.Quiebres, dto.QuiebreContinuidad{
					MovimientoID: m.ID,
					Esperado:     previo,
					Encontrado:   m.SaldoAnterior,
					Motivo:       "saldo_anterior distinto del saldo_actual del movimiento previo",
				})
			}
			if !m.Consistente() {
				resp.Quiebres = append(resp.Quiebres, dto.QuiebreContinuidad{
					MovimientoID: m.ID,
					Esperado:     m.SaldoAnterior.Add(m.Delta()),
					Encontrado:   m.SaldoActual,
					Motivo:       "saldo_actual distinto de saldo_anterior ± monto",
				})
			}
			previo = m.SaldoActual
			afterID = m.ID
		}
		resp.FilasVerificadas += len(movs)
		if len(movs) < loteContinuidad {
			break
		}
	}
	resp.Consistente = len(resp.Quiebres) == 0
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// originalVigente returns the latest row of movs that is neither a reversal
// nor already reversed by another row of movs. movs is ordered by id.
func originalVigente(movs []model.MovimientoCajaMayor) *model.MovimientoCajaMayor {
	revertidos := make(map[int64]bool, len(movs))
	for _, m := range movs {
		if m.ReversaDeID != nil {
			revertidos[*m.ReversaDeID] = true
		}
	}
	for i := len(movs) - 1; i >= 0; i-- {
		if movs[i].ReversaDeID == nil && !revertidos[movs[i].ID] {
			return &movs[i]
		}
	}
	return nil
}

// primerOriginal returns the first row of movs that is not a reversal.
func primerOriginal(movs []model.MovimientoCajaMayor) *model.MovimientoCajaMayor {
	for i := range movs {
		if movs[i].ReversaDeID == nil {
			return &movs[i]
		}
	}
	return nil
}

func movimientoCajaMayorToResponse(m *model.MovimientoCajaMayor) dto.MovimientoCajaMayorResponse {
	codigo, _ := model.MonedaDesdeLedger(m.Moneda)
	return dto.MovimientoCajaMayorResponse{
		ID:             m.ID,
		Fecha:          m.Fecha.UTC().Format(formatoTimestamp),
		Tipo:           m.Tipo,
		OperacionID:    m.OperacionID,
		Moneda:         m.Moneda,
		MonedaCodigo:   string(codigo),
		Monto:          m.Monto,
		EsIngreso:      m.EsIngreso,
		SaldoAnterior:  m.SaldoAnterior,
		SaldoActual:    m.SaldoActual,
		Concepto:       m.Concepto,
		UsuarioID:      m.UsuarioID.String(),
		DepositoID:     uuidPtrString(m.DepositoID),
		PagoServicioID: uuidPtrString(m.PagoServicioID),
		MovimientoID:   uuidPtrString(m.MovimientoID),
		ValeID:         uuidPtrString(m.ValeID),
		CambioID:       uuidPtrString(m.CambioID),
		ConteoID:       uuidPtrString(m.ConteoID),
		ReversaDeID:    m.ReversaDeID,
	}
}
