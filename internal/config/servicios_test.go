package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sistemaservicios/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogoYAML = `
servicios:
  - codigo: WENO-GS
    nombre: Wepa Guaraníes
    moneda: PYG
    cuenta_bancaria_id: 7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10
  - codigo: wepa-usd
    moneda: USD
    cuenta_bancaria_id: 2b9e4d10-6a3c-4e8f-8d21-5c7b9a0f1e33
`

func TestParseServicios(t *testing.T) {
	cat, err := ParseServicios([]byte(catalogoYAML))
	require.NoError(t, err)
	require.Len(t, cat, 2)

	sv, ok := cat.Buscar(" Weno-GS ")
	require.True(t, ok)
	assert.Equal(t, "weno-gs", sv.Codigo)
	assert.Equal(t, model.MonedaPYG, sv.Moneda)
	assert.Equal(t, "7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10", sv.CuentaBancariaID.String())

	usd, ok := cat.Buscar("wepa-usd")
	require.True(t, ok)
	assert.Equal(t, "wepa-usd", usd.Nombre, "sin nombre se usa el código")

	_, ok = cat.Buscar("aquipago")
	assert.False(t, ok)
}

func TestParseServicios_Errores(t *testing.T) {
	casos := map[string]string{
		"moneda inválida": `
servicios:
  - codigo: x
    moneda: EUR
    cuenta_bancaria_id: 7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10
`,
		"sin cuenta": `
servicios:
  - codigo: x
    moneda: PYG
`,
		"sin código": `
servicios:
  - moneda: PYG
    cuenta_bancaria_id: 7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10
`,
		"repetido": `
servicios:
  - codigo: x
    moneda: PYG
    cuenta_bancaria_id: 7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10
  - codigo: X
    moneda: PYG
    cuenta_bancaria_id: 7f1c2a4e-3b7d-4f61-9b55-0d3c5a1e2f10
`,
	}
	for nombre, raw := range casos {
		_, err := ParseServicios([]byte(raw))
		assert.Error(t, err, nombre)
	}
}

func TestCargarServicios(t *testing.T) {
	dir := t.TempDir()

	cat, err := CargarServicios(filepath.Join(dir, "no-existe.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cat)

	path := filepath.Join(dir, "servicios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogoYAML), 0o644))
	cat, err = CargarServicios(path)
	require.NoError(t, err)
	assert.Len(t, cat, 2)
}

func TestConfig_Listas(t *testing.T) {
	cfg := &Config{KafkaBrokers: "kafka-1:9092, kafka-2:9092,", ActaDestinatarios: ""}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.Nil(t, cfg.Destinatarios())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("WORKER_POOL_SIZE", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.WorkerPoolSize)
	assert.Equal(t, "caja-mayor.movimientos", cfg.KafkaTopic)
	assert.Equal(t, "1h0m0s", cfg.AuditoriaIntervalo.String())
	assert.Equal(t, 5*time.Minute, cfg.DLQReintentoIntervalo)
	assert.Equal(t, 3, cfg.DLQMaxReencolados)
}
