package dto

import "github.com/shopspring/decimal"

type CrearRetiroRequest struct {
	CajaID      string          `json:"caja_id"     validate:"required,uuid"`
	Moneda      string          `json:"moneda"      validate:"required,oneof=PYG USD BRL"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Servicio    *string         `json:"servicio"    validate:"omitempty,max=40"`
	Observacion string          `json:"observacion" validate:"max=500"`
}

type RechazarRetiroRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type DevolverRetiroRequest struct {
	// MovimientoCajaMayorID is optional; when present it must be the receipt row of this retiro.
	MovimientoCajaMayorID *int64 `json:"movimiento_caja_mayor_id"`
	Motivo                string `json:"motivo"`
}

type RetiroFilter struct {
	CajaID string
	Estado string
	Moneda string
	Page   int
	Limit  int
}

type RetiroResponse struct {
	ID                 string          `json:"id"`
	CajaID             string          `json:"caja_id"`
	Moneda             string          `json:"moneda"`
	Monto              decimal.Decimal `json:"monto"`
	Servicio           *string         `json:"servicio"`
	Observacion        string          `json:"observacion"`
	EstadoRecepcion    string          `json:"estado_recepcion"`
	UsuarioID          string          `json:"usuario_id"`
	UsuarioRecepcionID *string         `json:"usuario_recepcion_id"`
	FechaRecepcion     *string         `json:"fecha_recepcion"`
	MotivoRechazo      *string         `json:"motivo_rechazo"`
	Fecha              string          `json:"fecha"`
}

type RetiroListResponse struct {
	Data  []RetiroResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
