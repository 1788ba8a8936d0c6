package dto

import "github.com/shopspring/decimal"

type CrearPagoServicioRequest struct {
	Servicio    string          `json:"servicio"    validate:"required,max=40"`
	Moneda      string          `json:"moneda"      validate:"required,oneof=PYG USD BRL"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Referencia  string          `json:"referencia"  validate:"max=80"`
	Observacion string          `json:"observacion" validate:"max=500"`
}

type CambiarEstadoPagoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=PROCESADO RECHAZADO"`
	Motivo string `json:"motivo"`
}

type AnularPagoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type PagoServicioFilter struct {
	Servicio string
	Estado   string
	Desde    string
	Hasta    string
	Page     int
	Limit    int
}

type PagoServicioResponse struct {
	ID              string          `json:"id"`
	Servicio        string          `json:"servicio"`
	Moneda          string          `json:"moneda"`
	Monto           decimal.Decimal `json:"monto"`
	Referencia      string          `json:"referencia"`
	Estado          string          `json:"estado"`
	MotivoAnulacion *string         `json:"motivo_anulacion"`
	RutaComprobante *string         `json:"ruta_comprobante"`
	Observacion     string          `json:"observacion"`
	UsuarioID       string          `json:"usuario_id"`
	Fecha           string          `json:"fecha"`
}

type PagoServicioListResponse struct {
	Data  []PagoServicioResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
