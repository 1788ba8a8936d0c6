package model

import (
	"errors"
	"strings"
)

// Moneda is the domain currency code used by every record outside the ledger.
type Moneda string

const (
	MonedaPYG Moneda = "PYG"
	MonedaUSD Moneda = "USD"
	MonedaBRL Moneda = "BRL"
)

// Ledger vocabulary stored in caja_mayor_movimientos.moneda.
const (
	LedgerGuaranies = "guaranies"
	LedgerDolares   = "dolares"
	LedgerReales    = "reales"
)

// Monedas lists the supported currencies in display order.
var Monedas = []Moneda{MonedaPYG, MonedaUSD, MonedaBRL}

var ErrMonedaInvalida = errors.New("moneda inválida")

var monedaLedger = map[Moneda]string{
	MonedaPYG: LedgerGuaranies,
	MonedaUSD: LedgerDolares,
	MonedaBRL: LedgerReales,
}

// Ledger maps the domain code to the ledger vocabulary.
func (m Moneda) Ledger() (string, error) {
	v, ok := monedaLedger[m]
	if !ok {
		return "", ErrMonedaInvalida
	}
	return v, nil
}

func (m Moneda) Valida() bool {
	_, ok := monedaLedger[m]
	return ok
}

// MonedaDesdeLedger is the inverse of Moneda.Ledger.
func MonedaDesdeLedger(s string) (Moneda, error) {
	for code, ledger := range monedaLedger {
		if ledger == s {
			return code, nil
		}
	}
	return "", ErrMonedaInvalida
}

// ParseMoneda accepts either a domain code ("pyg", "USD") or a ledger name ("reales").
func ParseMoneda(s string) (Moneda, error) {
	m := Moneda(strings.ToUpper(strings.TrimSpace(s)))
	if m.Valida() {
		return m, nil
	}
	return MonedaDesdeLedger(strings.ToLower(strings.TrimSpace(s)))
}
