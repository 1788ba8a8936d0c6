package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de caja mayor. The column is free text; these are the
// labels this service writes.
const (
	TipoDeposito        = "Deposito Bancario"
	TipoDepositoAnulado = "Deposito Bancario Cancelado"
	TipoPagoServicio    = "Pago de Servicio"
	TipoPagoAnulado     = "Pago de Servicio Anulado"
	TipoRetiroRecibido  = "Retiro Recibido"
	TipoRetiroDevuelto  = "Devolucion de Retiro"
	TipoVale            = "Vale"
	TipoValeCobrado     = "Vale Cobrado"
	TipoValeCancelado   = "Vale Cancelado"
	TipoCambio          = "Cambio de Moneda"
	TipoCambioAnulado   = "Cambio de Moneda Anulado"
	TipoAjusteConteo    = "Ajuste por Conteo"
	TipoIngresoManual   = "Ingreso Manual"
	TipoEgresoManual    = "Egreso Manual"
)

// MovimientoCajaMayor is one append-only row of the multi-currency ledger.
// Rows are never deleted; a reversal is a new opposite-signed row whose
// ReversaDeID points at the original.
type MovimientoCajaMayor struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	Fecha         time.Time       `gorm:"not null;index"`
	Tipo          string          `gorm:"type:varchar(60);not null"`
	OperacionID   string          `gorm:"type:varchar(64);not null;index"`
	Moneda        string          `gorm:"type:varchar(12);not null;index"`
	Monto         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EsIngreso     bool            `gorm:"not null"`
	SaldoAnterior decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SaldoActual   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Concepto      string          `gorm:"not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`

	DepositoID     *uuid.UUID `gorm:"type:uuid;index"`
	PagoServicioID *uuid.UUID `gorm:"type:uuid;index"`
	MovimientoID   *uuid.UUID `gorm:"type:uuid;index"`
	ValeID         *uuid.UUID `gorm:"type:uuid;index"`
	CambioID       *uuid.UUID `gorm:"type:uuid;index"`
	ConteoID       *uuid.UUID `gorm:"type:uuid;index"`
	// ReversaDeID is unique: a row can be reversed at most once.
	ReversaDeID *int64 `gorm:"uniqueIndex"`

	CreatedAt time.Time
}

func (MovimientoCajaMayor) TableName() string { return "caja_mayor_movimientos" }

// Delta returns the signed amount this row applied to the balance.
func (m *MovimientoCajaMayor) Delta() decimal.Decimal {
	if m.EsIngreso {
		return m.Monto
	}
	return m.Monto.Neg()
}

// Consistente reports whether saldo_actual = saldo_anterior ± monto.
func (m *MovimientoCajaMayor) Consistente() bool {
	return m.SaldoAnterior.Add(m.Delta()).Equal(m.SaldoActual)
}
