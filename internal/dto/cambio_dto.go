package dto

import "github.com/shopspring/decimal"

type RegistrarCambioRequest struct {
	MonedaOrigen  string          `json:"moneda_origen"  validate:"required,oneof=PYG USD BRL"`
	MontoOrigen   decimal.Decimal `json:"monto_origen"   validate:"required,gt=0"`
	MonedaDestino string          `json:"moneda_destino" validate:"required,oneof=PYG USD BRL,nefield=MonedaOrigen"`
	MontoDestino  decimal.Decimal `json:"monto_destino"  validate:"required,gt=0"`
	Cotizacion    decimal.Decimal `json:"cotizacion"     validate:"required,gt=0"`
	Observacion   string          `json:"observacion"    validate:"max=500"`
}

type CambioResponse struct {
	ID                  string          `json:"id"`
	MonedaOrigen        string          `json:"moneda_origen"`
	MontoOrigen         decimal.Decimal `json:"monto_origen"`
	MonedaDestino       string          `json:"moneda_destino"`
	MontoDestino        decimal.Decimal `json:"monto_destino"`
	Cotizacion          decimal.Decimal `json:"cotizacion"`
	Observacion         string          `json:"observacion"`
	Anulado             bool            `json:"anulado"`
	UsuarioID           string          `json:"usuario_id"`
	Fecha               string          `json:"fecha"`
	MovimientoEgresoID  *int64          `json:"movimiento_egreso_id,omitempty"`
	MovimientoIngresoID *int64          `json:"movimiento_ingreso_id,omitempty"`
}

type CambioFilter struct {
	Desde string
	Hasta string
	Page  int
	Limit int
}

type CambioListResponse struct {
	Data  []CambioResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
