package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimientoManualRequest struct {
	Moneda   string          `json:"moneda"   validate:"required,oneof=PYG USD BRL"`
	Tipo     string          `json:"tipo"     validate:"required,oneof=ingreso egreso"`
	Monto    decimal.Decimal `json:"monto"    validate:"required,gt=0"`
	Concepto string          `json:"concepto" validate:"required,min=3"`
}

type CajaMayorFilter struct {
	Moneda string
	Tipo   string
	Desde  string
	Hasta  string
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoCajaMayorResponse struct {
	ID             int64           `json:"id"`
	Fecha          string          `json:"fecha"`
	Tipo           string          `json:"tipo"`
	OperacionID    string          `json:"operacion_id"`
	Moneda         string          `json:"moneda"`
	MonedaCodigo   string          `json:"moneda_codigo"`
	Monto          decimal.Decimal `json:"monto"`
	EsIngreso      bool            `json:"es_ingreso"`
	SaldoAnterior  decimal.Decimal `json:"saldo_anterior"`
	SaldoActual    decimal.Decimal `json:"saldo_actual"`
	Concepto       string          `json:"concepto"`
	UsuarioID      string          `json:"usuario_id"`
	DepositoID     *string         `json:"deposito_id,omitempty"`
	PagoServicioID *string         `json:"pago_servicio_id,omitempty"`
	MovimientoID   *string         `json:"movimiento_id,omitempty"`
	ValeID         *string         `json:"vale_id,omitempty"`
	CambioID       *string         `json:"cambio_id,omitempty"`
	ConteoID       *string         `json:"conteo_id,omitempty"`
	ReversaDeID    *int64          `json:"reversa_de_id,omitempty"`
}

type MovimientoCajaMayorListResponse struct {
	Data  []MovimientoCajaMayorResponse `json:"data"`
	Total int64                         `json:"total"`
	Page  int                           `json:"page"`
	Limit int                           `json:"limit"`
}

type SaldoResponse struct {
	Moneda             string          `json:"moneda"`
	MonedaLedger       string          `json:"moneda_ledger"`
	Saldo              decimal.Decimal `json:"saldo"`
	UltimoMovimientoID *int64          `json:"ultimo_movimiento_id"`
}

type QuiebreContinuidad struct {
	MovimientoID int64           `json:"movimiento_id"`
	Esperado     decimal.Decimal `json:"esperado"`
	Encontrado   decimal.Decimal `json:"encontrado"`
	Motivo       string          `json:"motivo"`
}

type ContinuidadResponse struct {
	Moneda           string               `json:"moneda"`
	FilasVerificadas int                  `json:"filas_verificadas"`
	Consistente      bool                 `json:"consistente"`
	Quiebres         []QuiebreContinuidad `json:"quiebres"`
}

// EventoMovimientoCajaMayor is published after a ledger row is committed.
type EventoMovimientoCajaMayor struct {
	Evento      string                      `json:"evento"`
	Movimiento  MovimientoCajaMayorResponse `json:"movimiento"`
	PublicadoEn string                      `json:"publicado_en"`
}
