package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrefijoCancelado marks a cancelled deposit in its Observacion field.
const PrefijoCancelado = "CANCELADO"

// DepositoBancario is a cash deposit from caja mayor into a bank account.
type DepositoBancario struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CuentaBancariaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Moneda           Moneda          `gorm:"type:varchar(3);not null"`
	Monto            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NumeroBoleta     string          `gorm:"type:varchar(40);not null"`
	Fecha            time.Time       `gorm:"not null;index"`
	Observacion      string
	RutaComprobante  *string
	UsuarioID        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	CuentaBancaria *CuentaBancaria `gorm:"foreignKey:CuentaBancariaID"`
}

func (DepositoBancario) TableName() string { return "depositos_bancarios" }

func (d *DepositoBancario) EstaCancelado() bool {
	return strings.HasPrefix(d.Observacion, PrefijoCancelado)
}

// ObservacionReservada reports whether a user-supplied observation would read
// as the cancellation tag. Only MarcarCancelado may write it.
func ObservacionReservada(obs string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(obs)), PrefijoCancelado)
}

// MarcarCancelado prefixes the observation with the cancellation tag.
func (d *DepositoBancario) MarcarCancelado(motivo string) {
	obs := PrefijoCancelado + " - " + strings.TrimSpace(motivo)
	if d.Observacion != "" {
		obs += " | " + d.Observacion
	}
	d.Observacion = obs
}
