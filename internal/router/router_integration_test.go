//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"sistemaservicios/internal/config"
	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/middleware"
	"sistemaservicios/internal/model"
	"sistemaservicios/internal/router"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func token(t *testing.T, rol string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID: uuid.NewString(),
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server    *httptest.Server
	db        *gorm.DB
	tesorero  string
	operador  string
	cuenta    model.CuentaBancaria
	servicios config.CatalogoServicios
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("caja_test"),
		tcPostgres.WithUsername("caja"),
		tcPostgres.WithPassword("caja"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           8000,
		Env:            "test",
		JWTSecret:      jwtSecret,
		DatabaseURL:    pgURL,
		RedisURL:       rdURL,
		WorkerPoolSize: 1,
		UploadsPath:    t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	cuenta := model.CuentaBancaria{ID: uuid.New(), Banco: "Banco Continental", NumeroCuenta: "1-234567", Moneda: model.MonedaPYG, Activa: true}
	require.NoError(t, db.Create(&cuenta).Error)

	servicios := config.CatalogoServicios{
		"weno-gs": {Codigo: "weno-gs", Nombre: "Wepa Guaraníes", Moneda: model.MonedaPYG, CuentaBancariaID: cuenta.ID},
	}

	r := router.New(cfg, db, rdb, router.Deps{Servicios: servicios})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server:    srv,
		db:        db,
		tesorero:  token(t, middleware.RolTesorero),
		operador:  token(t, middleware.RolOperador),
		cuenta:    cuenta,
		servicios: servicios,
	}
}

type movimiento struct {
	ID            int64           `json:"id"`
	Moneda        string          `json:"moneda"`
	EsIngreso     bool            `json:"es_ingreso"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	SaldoActual   decimal.Decimal `json:"saldo_actual"`
	ReversaDeID   *int64          `json:"reversa_de_id"`
}

func (e *testEnv) saldo(t *testing.T, moneda string) decimal.Decimal {
	t.Helper()
	resp := do(t, e.server, "GET", "/api/caja_mayor_movimientos/saldos", nil, e.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saldos []struct {
		Moneda string          `json:"moneda"`
		Saldo  decimal.Decimal `json:"saldo"`
	}
	decodeJSON(t, resp, &saldos)
	for _, s := range saldos {
		if s.Moneda == moneda {
			return s.Saldo
		}
	}
	t.Fatalf("moneda %s no listada", moneda)
	return decimal.Zero
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_DepositoYCancelacion(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/api/depositos-bancarios", jsonBody(t, map[string]any{
		"cuenta_bancaria_id": env.cuenta.ID.String(),
		"moneda":             "PYG",
		"monto":              "1000000",
		"numero_boleta":      "B-001",
	}), env.tesorero)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var dep struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &dep)
	assert.True(t, env.saldo(t, "PYG").Equal(decimal.NewFromInt(-1000000)))

	resp = do(t, env.server, "POST", "/api/depositos-bancarios/"+dep.ID+"/cancelar",
		jsonBody(t, map[string]any{"motivo": "boleta rechazada"}), env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, env.saldo(t, "PYG").IsZero())

	resp = do(t, env.server, "POST", "/api/depositos-bancarios/"+dep.ID+"/cancelar",
		jsonBody(t, map[string]any{"motivo": "otra vez"}), env.tesorero)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/api/caja_mayor_movimientos?moneda=guaranies", nil, env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lista struct {
		Data  []movimiento `json:"data"`
		Total int64        `json:"total"`
	}
	decodeJSON(t, resp, &lista)
	require.Equal(t, int64(2), lista.Total)
	require.NotNil(t, lista.Data[0].ReversaDeID)
	assert.Equal(t, lista.Data[1].ID, *lista.Data[0].ReversaDeID)
}

func TestE2E_AppendsConcurrentesMantienenLaCadena(t *testing.T) {
	env := setupTestEnv(t)
	const n = 20

	var wg sync.WaitGroup
	codigos := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tipo := "ingreso"
			if i%3 == 0 {
				tipo = "egreso"
			}
			body, _ := json.Marshal(map[string]any{
				"moneda": "USD", "tipo": tipo, "monto": "10", "concepto": "carga concurrente",
			})
			req, _ := http.NewRequest("POST", env.server.URL+"/api/caja_mayor_movimientos", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.tesorero)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			codigos[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()
	for i, c := range codigos {
		require.Equal(t, http.StatusCreated, c, "request %d", i)
	}

	resp := do(t, env.server, "GET", "/api/caja_mayor_movimientos/verificar/dolares", nil, env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cont struct {
		Consistente      bool `json:"consistente"`
		FilasVerificadas int  `json:"filas_verificadas"`
	}
	decodeJSON(t, resp, &cont)
	assert.True(t, cont.Consistente)
	assert.Equal(t, n, cont.FilasVerificadas)

	// 7 egresos (i = 0,3,...,18) and 13 ingresos of 10
	assert.True(t, env.saldo(t, "USD").Equal(decimal.NewFromInt(60)))
}

func TestE2E_RetiroRecibidoYDevuelto(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/api/retiros", jsonBody(t, map[string]any{
		"caja_id": uuid.NewString(), "moneda": "PYG", "monto": "300000", "servicio": "weno-gs",
	}), env.operador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var retiro struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &retiro)
	assert.True(t, env.saldo(t, "PYG").IsZero(), "un retiro pendiente no toca caja mayor")

	resp = do(t, env.server, "POST", "/api/retiros/"+retiro.ID+"/recibir", nil, env.operador)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/api/retiros/"+retiro.ID+"/recibir", nil, env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, env.saldo(t, "PYG").Equal(decimal.NewFromInt(300000)))

	resp = do(t, env.server, "POST", "/api/retiros/"+retiro.ID+"/devolver", nil, env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var devuelto struct {
		EstadoRecepcion string `json:"estado_recepcion"`
	}
	decodeJSON(t, resp, &devuelto)
	assert.Equal(t, "PENDIENTE", devuelto.EstadoRecepcion)
	assert.True(t, env.saldo(t, "PYG").IsZero())
}

func TestE2E_BalanceServicio(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/api/pagos-servicios", jsonBody(t, map[string]any{
		"servicio": "weno-gs", "moneda": "PYG", "monto": "500000",
	}), env.operador)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/api/depositos-bancarios", jsonBody(t, map[string]any{
		"cuenta_bancaria_id": env.cuenta.ID.String(), "moneda": "PYG", "monto": "200000", "numero_boleta": "B-9",
	}), env.tesorero)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/api/weno-gs", nil, env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal struct {
		TotalPagos      decimal.Decimal `json:"total_pagos"`
		TotalDepositos  decimal.Decimal `json:"total_depositos"`
		TotalADepositar decimal.Decimal `json:"total_a_depositar"`
	}
	decodeJSON(t, resp, &bal)
	assert.True(t, bal.TotalPagos.Equal(decimal.NewFromInt(500000)))
	assert.True(t, bal.TotalDepositos.Equal(decimal.NewFromInt(200000)))
	assert.True(t, bal.TotalADepositar.Equal(decimal.NewFromInt(300000)))

	resp = do(t, env.server, "GET", "/api/aquipago", nil, env.tesorero)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_ValeCancelado(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/api/vales", jsonBody(t, map[string]any{
		"moneda": "BRL", "monto": "150", "persona": "Juan Pérez", "motivo": "adelanto de sueldo",
	}), env.tesorero)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var vale struct {
		ID     string `json:"id"`
		Numero int64  `json:"numero"`
	}
	decodeJSON(t, resp, &vale)
	assert.Equal(t, int64(1), vale.Numero)

	resp = do(t, env.server, "POST", "/api/vales/"+vale.ID+"/cancelar",
		jsonBody(t, map[string]any{"motivo": "no se entregó"}), env.tesorero)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, env.saldo(t, "BRL").IsZero())

	var concepto string
	require.NoError(t, env.db.Raw(
		`SELECT concepto FROM caja_mayor_movimientos WHERE vale_id = ? AND reversa_de_id IS NULL`, vale.ID,
	).Scan(&concepto).Error)
	assert.Contains(t, concepto, model.PrefijoConceptoCancelado)
}

func TestE2E_HealthYAutenticacion(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	decodeJSON(t, resp, &health)
	assert.Equal(t, "disabled", health["kafka"])

	resp = do(t, env.server, "GET", "/api/caja_mayor_movimientos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/api/vales", nil, env.operador)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
