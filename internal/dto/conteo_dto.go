package dto

import "github.com/shopspring/decimal"

type DetalleConteoRequest struct {
	Denominacion decimal.Decimal `json:"denominacion" validate:"required,gt=0"`
	Cantidad     int             `json:"cantidad"     validate:"min=0"`
}

type CrearConteoRequest struct {
	Moneda        string                 `json:"moneda"         validate:"required,oneof=PYG USD BRL"`
	Detalles      []DetalleConteoRequest `json:"detalles"       validate:"required,min=1,dive"`
	Observaciones *string                `json:"observaciones"  validate:"omitempty,max=500"`
	GenerarAjuste bool                   `json:"generar_ajuste"`
}

type DetalleConteoResponse struct {
	Denominacion decimal.Decimal `json:"denominacion"`
	Cantidad     int             `json:"cantidad"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ConteoResponse struct {
	ID                    string                  `json:"id"`
	Moneda                string                  `json:"moneda"`
	Total                 decimal.Decimal         `json:"total"`
	SaldoSistema          decimal.Decimal         `json:"saldo_sistema"`
	Diferencia            decimal.Decimal         `json:"diferencia"`
	Observaciones         *string                 `json:"observaciones"`
	AjusteGenerado        bool                    `json:"ajuste_generado"`
	MovimientoCajaMayorID *int64                  `json:"movimiento_caja_mayor_id"`
	UsuarioID             string                  `json:"usuario_id"`
	Fecha                 string                  `json:"fecha"`
	Detalles              []DetalleConteoResponse `json:"detalles"`
}

type ConteoFilter struct {
	Moneda string
	Page   int
	Limit  int
}

type ConteoListResponse struct {
	Data  []ConteoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
