package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TipoMovimientoEgreso = "EGRESO"

// EstadoRecepcion tracks head-office receipt of a register withdrawal.
// PENDIENTE → RECIBIDO | RECHAZADO, RECIBIDO → PENDIENTE (devolución).
type EstadoRecepcion string

const (
	RecepcionPendiente EstadoRecepcion = "PENDIENTE"
	RecepcionRecibido  EstadoRecepcion = "RECIBIDO"
	RecepcionRechazado EstadoRecepcion = "RECHAZADO"
)

var transicionesRecepcion = map[EstadoRecepcion][]EstadoRecepcion{
	RecepcionPendiente: {RecepcionRecibido, RecepcionRechazado},
	RecepcionRecibido:  {RecepcionPendiente},
}

func (e EstadoRecepcion) PuedePasarA(destino EstadoRecepcion) bool {
	for _, d := range transicionesRecepcion[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// Movimiento is a register cash movement. Withdrawals (retiros) are the
// EGRESO rows; they only reach caja mayor once received.
type Movimiento struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	TipoMovimiento     string          `gorm:"type:varchar(10);not null"`
	Moneda             Moneda          `gorm:"type:varchar(3);not null"`
	Monto              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Servicio           *string         `gorm:"type:varchar(40);index"`
	Observacion        string
	EstadoRecepcion    EstadoRecepcion `gorm:"type:varchar(12);not null;default:'PENDIENTE'"`
	UsuarioID          uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioRecepcionID *uuid.UUID      `gorm:"type:uuid"`
	FechaRecepcion     *time.Time
	MotivoRechazo      *string
	Fecha              time.Time `gorm:"not null;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Movimiento) TableName() string { return "movimientos" }
