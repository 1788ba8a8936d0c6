package dto

import "github.com/shopspring/decimal"

type EmitirValeRequest struct {
	Moneda           string          `json:"moneda"            validate:"required,oneof=PYG USD BRL"`
	Monto            decimal.Decimal `json:"monto"             validate:"required,gt=0"`
	Persona          string          `json:"persona"           validate:"required,min=2,max=120"`
	Motivo           string          `json:"motivo"            validate:"required,min=3"`
	FechaVencimiento *string         `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type CancelarValeRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ValeResponse struct {
	ID                string          `json:"id"`
	Numero            int64           `json:"numero"`
	Moneda            string          `json:"moneda"`
	Monto             decimal.Decimal `json:"monto"`
	Persona           string          `json:"persona"`
	Motivo            string          `json:"motivo"`
	FechaEmision      string          `json:"fecha_emision"`
	FechaVencimiento  *string         `json:"fecha_vencimiento"`
	Estado            string          `json:"estado"`
	MotivoCancelacion *string         `json:"motivo_cancelacion"`
	UsuarioID         string          `json:"usuario_id"`
}

type ValeFilter struct {
	Estado string
	Page   int
	Limit  int
}

type ValeListResponse struct {
	Data  []ValeResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
