package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Conteo is a physical cash count of caja mayor for one currency.
// Diferencia = Total - SaldoSistema, always.
type Conteo struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Moneda                Moneda          `gorm:"type:varchar(3);not null;index"`
	Total                 decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SaldoSistema          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Diferencia            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Observaciones         *string
	AjusteGenerado        bool      `gorm:"not null;default:false"`
	MovimientoCajaMayorID *int64
	UsuarioID             uuid.UUID `gorm:"type:uuid;not null"`
	Fecha                 time.Time `gorm:"not null;index"`
	CreatedAt             time.Time

	Detalles []ConteoDetalle `gorm:"foreignKey:ConteoID"`
}

func (Conteo) TableName() string { return "conteos" }

type ConteoDetalle struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConteoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Denominacion decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cantidad     int             `gorm:"not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func (ConteoDetalle) TableName() string { return "conteo_detalles" }
