package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearDepositoRequest struct {
	CuentaBancariaID string          `json:"cuenta_bancaria_id" validate:"required,uuid"`
	Moneda           string          `json:"moneda"             validate:"required,oneof=PYG USD BRL"`
	Monto            decimal.Decimal `json:"monto"              validate:"required,gt=0"`
	NumeroBoleta     string          `json:"numero_boleta"      validate:"required,max=40"`
	Fecha            string          `json:"fecha"              validate:"omitempty,datetime=2006-01-02"`
	Observacion      string          `json:"observacion"        validate:"max=500"`
}

type ActualizarDepositoRequest struct {
	NumeroBoleta *string `json:"numero_boleta" validate:"omitempty,min=1,max=40"`
	Observacion  *string `json:"observacion"   validate:"omitempty,max=500"`
	Fecha        *string `json:"fecha"         validate:"omitempty,datetime=2006-01-02"`
}

type CancelarDepositoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
	// MovimientoID is optional; when present it must match the deposit's ledger row.
	MovimientoID *int64 `json:"movimiento_id"`
}

type DepositoFilter struct {
	CuentaBancariaID  string
	Moneda            string
	Desde             string
	Hasta             string
	IncluirCancelados bool
	Page              int
	Limit             int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DepositoResponse struct {
	ID               string          `json:"id"`
	CuentaBancariaID string          `json:"cuenta_bancaria_id"`
	Banco            string          `json:"banco,omitempty"`
	NumeroCuenta     string          `json:"numero_cuenta,omitempty"`
	Moneda           string          `json:"moneda"`
	Monto            decimal.Decimal `json:"monto"`
	NumeroBoleta     string          `json:"numero_boleta"`
	Fecha            string          `json:"fecha"`
	Observacion      string          `json:"observacion"`
	RutaComprobante  *string         `json:"ruta_comprobante"`
	Cancelado        bool            `json:"cancelado"`
	UsuarioID        string          `json:"usuario_id"`
	MovimientoID     *int64          `json:"movimiento_id,omitempty"`
}

type DepositoListResponse struct {
	Data  []DepositoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
