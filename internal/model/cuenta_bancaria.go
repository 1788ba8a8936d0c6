package model

import (
	"time"

	"github.com/google/uuid"
)

// CuentaBancaria is owned by the bank administration module; this service only reads it.
type CuentaBancaria struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Banco        string    `gorm:"type:varchar(80);not null"`
	NumeroCuenta string    `gorm:"type:varchar(40);not null;uniqueIndex"`
	Moneda       Moneda    `gorm:"type:varchar(3);not null"`
	Activa       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

func (CuentaBancaria) TableName() string { return "cuentas_bancarias" }
