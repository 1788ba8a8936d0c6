package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sistemaservicios/internal/dto"
	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCajaMayor() (*fakeCajaRepo, *fakePublicador, CajaMayorService) {
	repo := newFakeCajaRepo()
	pub := &fakePublicador{}
	return repo, pub, NewCajaMayorService(repo, pub)
}

func asiento(moneda model.Moneda, monto string, ingreso bool) Asiento {
	return Asiento{
		Tipo:        model.TipoIngresoManual,
		OperacionID: uuid.NewString(),
		Moneda:      moneda,
		Monto:       dec(monto),
		EsIngreso:   ingreso,
		Concepto:    "prueba",
		UsuarioID:   uuid.New(),
	}
}

func TestRegistrar_PrimerMovimientoPartiendoDeCero(t *testing.T) {
	repo, _, svc := newCajaMayor()

	mov, err := svc.Registrar(context.Background(), nil, asiento(model.MonedaPYG, "1000000", true))
	require.NoError(t, err)

	assert.Equal(t, "guaranies", mov.Moneda)
	assert.True(t, mov.SaldoAnterior.IsZero())
	assert.True(t, mov.SaldoActual.Equal(dec("1000000")))
	assert.Equal(t, 1, repo.bloqueos["guaranies"], "cada alta toma el lock de su moneda")
}

func TestRegistrar_EncadenaSaldoAnterior(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()

	_, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "1000000", true))
	require.NoError(t, err)
	dep, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "500000", false))
	require.NoError(t, err)

	assert.True(t, dep.SaldoAnterior.Equal(dec("1000000")))
	assert.True(t, dep.SaldoActual.Equal(dec("500000")))
	assert.True(t, dep.Consistente())
}

func TestRegistrar_MonedasIndependientes(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()

	_, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "700000", true))
	require.NoError(t, err)
	usd, err := svc.Registrar(ctx, nil, asiento(model.MonedaUSD, "150", true))
	require.NoError(t, err)

	assert.Equal(t, "dolares", usd.Moneda)
	assert.True(t, usd.SaldoAnterior.IsZero(), "la cadena de dólares no ve el saldo en guaraníes")
	assert.True(t, usd.SaldoActual.Equal(dec("150")))
}

func TestRegistrar_PermiteSaldoNegativo(t *testing.T) {
	_, _, svc := newCajaMayor()

	mov, err := svc.Registrar(context.Background(), nil, asiento(model.MonedaBRL, "80", false))
	require.NoError(t, err)
	assert.True(t, mov.SaldoActual.Equal(dec("-80")))
}

func TestRegistrar_RechazaMontoNoPositivo(t *testing.T) {
	repo, _, svc := newCajaMayor()

	for _, monto := range []string{"0", "-10"} {
		_, err := svc.Registrar(context.Background(), nil, asiento(model.MonedaPYG, monto, true))
		assert.ErrorIs(t, err, ErrValidacion, monto)
	}
	assert.Empty(t, repo.rows)
}

func TestRegistrar_RechazaMonedaDesconocida(t *testing.T) {
	_, _, svc := newCajaMayor()

	_, err := svc.Registrar(context.Background(), nil, asiento(model.Moneda("EUR"), "10", true))
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestRegistrar_PropagaErrorDeInsercion(t *testing.T) {
	repo, _, svc := newCajaMayor()
	repo.createErr = errors.New("db caída")

	_, err := svc.Registrar(context.Background(), nil, asiento(model.MonedaPYG, "10", true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db caída")
}

func TestRevertir_AsientoOpuestoConReferencia(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()

	_, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "1000000", true))
	require.NoError(t, err)
	depID := uuid.New()
	a := asiento(model.MonedaPYG, "300000", false)
	a.DepositoID = &depID
	orig, err := svc.Registrar(ctx, nil, a)
	require.NoError(t, err)

	rev, err := svc.Revertir(ctx, nil, orig, model.TipoDepositoAnulado, "cancelación", uuid.New())
	require.NoError(t, err)

	assert.True(t, rev.EsIngreso)
	assert.True(t, rev.Monto.Equal(orig.Monto))
	require.NotNil(t, rev.ReversaDeID)
	assert.Equal(t, orig.ID, *rev.ReversaDeID)
	assert.Equal(t, &depID, rev.DepositoID)
	assert.Equal(t, orig.OperacionID, rev.OperacionID)
	assert.True(t, rev.SaldoActual.Equal(dec("1000000")))
}

func TestRevertir_SoloUnaVez(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()

	orig, err := svc.Registrar(ctx, nil, asiento(model.MonedaUSD, "100", false))
	require.NoError(t, err)

	_, err = svc.Revertir(ctx, nil, orig, model.TipoEgresoManual, "primera", uuid.New())
	require.NoError(t, err)

	_, err = svc.Revertir(ctx, nil, orig, model.TipoEgresoManual, "segunda", uuid.New())
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestRevertir_NoRevierteUnaReversion(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()

	orig, err := svc.Registrar(ctx, nil, asiento(model.MonedaUSD, "100", true))
	require.NoError(t, err)
	rev, err := svc.Revertir(ctx, nil, orig, model.TipoEgresoManual, "reversa", uuid.New())
	require.NoError(t, err)

	_, err = svc.Revertir(ctx, nil, rev, model.TipoIngresoManual, "reversa de reversa", uuid.New())
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestSaldoActual_SinMovimientosEsCero(t *testing.T) {
	_, _, svc := newCajaMayor()

	saldo, err := svc.SaldoActual(context.Background(), nil, model.MonedaBRL)
	require.NoError(t, err)
	assert.True(t, saldo.IsZero())
}

func TestSaldos_TodasLasMonedas(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()
	_, err := svc.Registrar(ctx, nil, asiento(model.MonedaUSD, "250", true))
	require.NoError(t, err)

	saldos, err := svc.Saldos(ctx)
	require.NoError(t, err)
	require.Len(t, saldos, 3)

	assert.Equal(t, "PYG", saldos[0].Moneda)
	assert.True(t, saldos[0].Saldo.IsZero())
	assert.Nil(t, saldos[0].UltimoMovimientoID)
	assert.Equal(t, "dolares", saldos[1].MonedaLedger)
	assert.True(t, saldos[1].Saldo.Equal(dec("250")))
	assert.NotNil(t, saldos[1].UltimoMovimientoID)
}

func TestRegistrarManual_PublicaEventoPorMoneda(t *testing.T) {
	repo, pub, svc := newCajaMayor()
	defer fijarAhora(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))()

	resp, err := svc.RegistrarManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		Moneda: "PYG", Tipo: "egreso", Monto: dec("25000"), Concepto: "compra de insumos",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TipoEgresoManual, resp.Tipo)
	assert.Equal(t, "PYG", resp.MonedaCodigo)
	assert.Equal(t, "2026-03-10T12:00:00Z", resp.Fecha)
	assert.False(t, resp.EsIngreso)
	assert.True(t, resp.SaldoActual.Equal(dec("-25000")))
	assert.Equal(t, []string{"guaranies"}, pub.claves)
	assert.Len(t, repo.rows, 1)
}

func TestPublicar_ErrorDelBrokerNoSePropaga(t *testing.T) {
	_, pub, svc := newCajaMayor()
	pub.err = errors.New("broker no disponible")

	resp, err := svc.RegistrarManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		Moneda: "USD", Tipo: "ingreso", Monto: dec("10"), Concepto: "aporte",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
}

func TestObtenerPorID_NoEncontrado(t *testing.T) {
	_, _, svc := newCajaMayor()

	_, err := svc.ObtenerPorID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestListar_FiltraPorMonedaEnCualquierVocabulario(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()
	_, _ = svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "10", true))
	_, _ = svc.Registrar(ctx, nil, asiento(model.MonedaBRL, "20", true))

	for _, moneda := range []string{"BRL", "reales"} {
		resp, err := svc.Listar(ctx, dto.CajaMayorFilter{Moneda: moneda})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1, moneda)
		assert.Equal(t, "reales", resp.Data[0].Moneda)
	}

	_, err := svc.Listar(ctx, dto.CajaMayorFilter{Moneda: "EUR"})
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestListar_RangoInvertido(t *testing.T) {
	_, _, svc := newCajaMayor()

	_, err := svc.Listar(context.Background(), dto.CajaMayorFilter{Desde: "2026-02-10", Hasta: "2026-02-01"})
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestVerificarContinuidad_CadenaSana(t *testing.T) {
	_, _, svc := newCajaMayor()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "1000", i%2 == 0))
		require.NoError(t, err)
	}

	res, err := svc.VerificarContinuidad(ctx, model.MonedaPYG)
	require.NoError(t, err)
	assert.True(t, res.Consistente)
	assert.Equal(t, 5, res.FilasVerificadas)
	assert.Empty(t, res.Quiebres)
}

func TestVerificarContinuidad_DetectaQuiebre(t *testing.T) {
	repo, _, svc := newCajaMayor()
	ctx := context.Background()
	_, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "1000", true))
	require.NoError(t, err)
	segundo, err := svc.Registrar(ctx, nil, asiento(model.MonedaPYG, "200", false))
	require.NoError(t, err)

	// tamper with the stored chain
	for i := range repo.rows {
		if repo.rows[i].ID == segundo.ID {
			repo.rows[i].SaldoAnterior = dec("900")
		}
	}

	res, err := svc.VerificarContinuidad(ctx, model.MonedaPYG)
	require.NoError(t, err)
	assert.False(t, res.Consistente)
	require.Len(t, res.Quiebres, 2)
	assert.Equal(t, segundo.ID, res.Quiebres[0].MovimientoID)
	assert.True(t, res.Quiebres[0].Esperado.Equal(dec("1000")))
	assert.True(t, res.Quiebres[0].Encontrado.Equal(dec("900")))
}

func TestOriginalVigente_SaltaLosYaRevertidos(t *testing.T) {
	uno := int64(1)
	movs := []model.MovimientoCajaMayor{
		{ID: 1},
		{ID: 2, ReversaDeID: &uno},
		{ID: 3},
	}
	require.NotNil(t, originalVigente(movs))
	assert.Equal(t, int64(3), originalVigente(movs).ID)
	assert.Equal(t, int64(1), primerOriginal(movs).ID)

	tres := int64(3)
	movs = append(movs, model.MovimientoCajaMayor{ID: 4, ReversaDeID: &tres})
	assert.Nil(t, originalVigente(movs))
	assert.Nil(t, originalVigente(nil))
}
