package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CambioMoneda is a currency exchange done with caja mayor funds: it takes
// MontoOrigen out of one currency and puts MontoDestino into another.
type CambioMoneda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MonedaOrigen  Moneda          `gorm:"type:varchar(3);not null"`
	MontoOrigen   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MonedaDestino Moneda          `gorm:"type:varchar(3);not null"`
	MontoDestino  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cotizacion    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Observacion   string
	Anulado       bool      `gorm:"not null;default:false"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	Fecha         time.Time `gorm:"not null;index"`
	CreatedAt     time.Time
}

func (CambioMoneda) TableName() string { return "cambios_moneda" }
