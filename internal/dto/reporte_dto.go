package dto

import "github.com/shopspring/decimal"

type BalanceServicioResponse struct {
	Servicio         string          `json:"servicio"`
	Nombre           string          `json:"nombre"`
	Moneda           string          `json:"moneda"`
	CuentaBancariaID string          `json:"cuenta_bancaria_id"`
	Desde            string          `json:"desde"`
	Hasta            string          `json:"hasta"`
	TotalPagos       decimal.Decimal `json:"total_pagos"`
	TotalRetiros     decimal.Decimal `json:"total_retiros"`
	TotalDepositos   decimal.Decimal `json:"total_depositos"`
	TotalADepositar  decimal.Decimal `json:"total_a_depositar"`
}

type BalanceMonedaResponse struct {
	Moneda              string          `json:"moneda"`
	SaldoActual         decimal.Decimal `json:"saldo_actual"`
	TotalIngresos       decimal.Decimal `json:"total_ingresos"`
	TotalEgresos        decimal.Decimal `json:"total_egresos"`
	CantidadMovimientos int64           `json:"cantidad_movimientos"`
}

type BalanceResponse struct {
	Desde   string                  `json:"desde"`
	Hasta   string                  `json:"hasta"`
	Monedas []BalanceMonedaResponse `json:"monedas"`
}
