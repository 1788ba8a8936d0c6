package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoVale: PENDIENTE → COBRADO | CANCELADO.
type EstadoVale string

const (
	ValePendiente EstadoVale = "PENDIENTE"
	ValeCobrado   EstadoVale = "COBRADO"
	ValeCancelado EstadoVale = "CANCELADO"
)

// PrefijoConceptoCancelado tags the emission ledger row of a cancelled vale.
const PrefijoConceptoCancelado = "[CANCELADO] "

// Vale is an IOU paid out of caja mayor and later collected or cancelled.
type Vale struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero            int64           `gorm:"not null;uniqueIndex"`
	Moneda            Moneda          `gorm:"type:varchar(3);not null"`
	Monto             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Persona           string          `gorm:"type:varchar(120);not null"`
	Motivo            string          `gorm:"not null"`
	FechaEmision      time.Time       `gorm:"not null"`
	FechaVencimiento  *time.Time
	Estado            EstadoVale `gorm:"type:varchar(12);not null;default:'PENDIENTE'"`
	MotivoCancelacion *string
	UsuarioID         uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Vale) TableName() string { return "vales" }
