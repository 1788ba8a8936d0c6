package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPago: PENDIENTE → PROCESADO | ANULADO | RECHAZADO, PROCESADO → ANULADO.
// ANULADO and RECHAZADO are terminal.
type EstadoPago string

const (
	PagoPendiente EstadoPago = "PENDIENTE"
	PagoProcesado EstadoPago = "PROCESADO"
	PagoAnulado   EstadoPago = "ANULADO"
	PagoRechazado EstadoPago = "RECHAZADO"
)

var transicionesPago = map[EstadoPago][]EstadoPago{
	PagoPendiente: {PagoProcesado, PagoAnulado, PagoRechazado},
	PagoProcesado: {PagoAnulado},
}

func (e EstadoPago) PuedePasarA(destino EstadoPago) bool {
	for _, d := range transicionesPago[e] {
		if d == destino {
			return true
		}
	}
	return false
}

func (e EstadoPago) Terminal() bool { return len(transicionesPago[e]) == 0 }

// PagoServicio is a payment made through a third-party collection service
// (Wepa, Aquipago, utilities). Creating one is a cash outflow.
type PagoServicio struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Servicio        string          `gorm:"type:varchar(40);not null;index"`
	Moneda          Moneda          `gorm:"type:varchar(3);not null"`
	Monto           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Referencia      string          `gorm:"type:varchar(80)"`
	Estado          EstadoPago      `gorm:"type:varchar(12);not null;default:'PENDIENTE'"`
	MotivoAnulacion *string
	RutaComprobante *string
	Observacion     string
	UsuarioID       uuid.UUID `gorm:"type:uuid;not null"`
	Fecha           time.Time `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PagoServicio) TableName() string { return "pagos_servicios" }
