package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"sistemaservicios/internal/model"
	"sistemaservicios/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory CajaMayorRepository ────────────────────────────────────────────

type fakeCajaRepo struct {
	mu        sync.Mutex
	rows      []model.MovimientoCajaMayor
	nextID    int64
	bloqueos  map[string]int
	createErr error
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{nextID: 1, bloqueos: map[string]int{}}
}

func (r *fakeCajaRepo) BloquearMoneda(_ context.Context, _ *gorm.DB, moneda string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bloqueos[moneda]++
	return nil
}

func (r *fakeCajaRepo) Ultimo(_ context.Context, _ *gorm.DB, moneda string) (*model.MovimientoCajaMayor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].Moneda == moneda {
			m := r.rows[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeCajaRepo) Create(_ context.Context, _ *gorm.DB, m *model.MovimientoCajaMayor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if m.ReversaDeID != nil {
		for _, row := range r.rows {
			if row.ReversaDeID != nil && *row.ReversaDeID == *m.ReversaDeID {
				return errors.New("duplicate key value violates unique constraint \"uq_caja_mayor_reversa\"")
			}
		}
	}
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Now()
	r.rows = append(r.rows, *m)
	return nil
}

func (r *fakeCajaRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*model.MovimientoCajaMayor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			m := row
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func referenciaDe(m *model.MovimientoCajaMayor, ref repository.Referencia) *uuid.UUID {
	switch ref {
	case repository.RefDeposito:
		return m.DepositoID
	case repository.RefPagoServicio:
		return m.PagoServicioID
	case repository.RefMovimiento:
		return m.MovimientoID
	case repository.RefVale:
		return m.ValeID
	case repository.RefCambio:
		return m.CambioID
	case repository.RefConteo:
		return m.ConteoID
	}
	return nil
}

func (r *fakeCajaRepo) FindPorReferencia(_ context.Context, _ *gorm.DB, ref repository.Referencia, id uuid.UUID) ([]model.MovimientoCajaMayor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoCajaMayor
	for i := range r.rows {
		if v := referenciaDe(&r.rows[i], ref); v != nil && *v == id {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ExisteReversa(_ context.Context, _ *gorm.DB, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ReversaDeID != nil && *row.ReversaDeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCajaRepo) UpdateConcepto(_ context.Context, _ *gorm.DB, id int64, concepto string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Concepto = concepto
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) List(_ context.Context, f repository.CajaMayorFilter) ([]model.MovimientoCajaMayor, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoCajaMayor
	for _, row := range r.rows {
		if f.Moneda != "" && row.Moneda != f.Moneda {
			continue
		}
		if f.Tipo != "" && row.Tipo != f.Tipo {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeCajaRepo) ListDesde(_ context.Context, moneda string, afterID int64, limit int) ([]model.MovimientoCajaMayor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoCajaMayor
	for _, row := range r.rows {
		if row.Moneda == moneda && row.ID > afterID {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) Totales(_ context.Context, moneda string, _ repository.Rango) (repository.TotalesCajaMayor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := repository.TotalesCajaMayor{Ingresos: decimal.Zero, Egresos: decimal.Zero}
	for _, row := range r.rows {
		if row.Moneda != moneda {
			continue
		}
		if row.EsIngreso {
			t.Ingresos = t.Ingresos.Add(row.Monto)
		} else {
			t.Egresos = t.Egresos.Add(row.Monto)
		}
		t.Cantidad++
	}
	return t, nil
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

// porMoneda returns the rows of one ledger currency in id order.
func (r *fakeCajaRepo) porMoneda(ledger string) []model.MovimientoCajaMayor {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoCajaMayor
	for _, row := range r.rows {
		if row.Moneda == ledger {
			out = append(out, row)
		}
	}
	return out
}

// ── Event publisher ──────────────────────────────────────────────────────────

type fakePublicador struct {
	mu     sync.Mutex
	claves []string
	err    error
}

func (p *fakePublicador) Publicar(_ context.Context, clave string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claves = append(p.claves, clave)
	return p.err
}

// ── Deposits and bank accounts ───────────────────────────────────────────────

type fakeDepositoRepo struct {
	items map[uuid.UUID]*model.DepositoBancario
}

func newFakeDepositoRepo() *fakeDepositoRepo {
	return &fakeDepositoRepo{items: map[uuid.UUID]*model.DepositoBancario{}}
}

func (r *fakeDepositoRepo) Create(_ context.Context, _ *gorm.DB, d *model.DepositoBancario) error {
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *fakeDepositoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.DepositoBancario, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDepositoRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.DepositoBancario, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeDepositoRepo) Update(_ context.Context, _ *gorm.DB, d *model.DepositoBancario) error {
	cp := *d
	cp.CuentaBancaria = nil
	r.items[d.ID] = &cp
	return nil
}

func (r *fakeDepositoRepo) List(_ context.Context, f repository.DepositoFilter) ([]model.DepositoBancario, int64, error) {
	var out []model.DepositoBancario
	for _, d := range r.items {
		if !f.IncluirCancelados && d.EstaCancelado() {
			continue
		}
		if f.CuentaBancariaID != nil && d.CuentaBancariaID != *f.CuentaBancariaID {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDepositoRepo) SumNoCancelados(_ context.Context, cuentaID uuid.UUID, rango repository.Rango) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range r.items {
		if d.CuentaBancariaID == cuentaID && !d.EstaCancelado() && enRango(d.Fecha, rango) {
			total = total.Add(d.Monto)
		}
	}
	return total, nil
}

type fakeCuentaRepo struct {
	items map[uuid.UUID]*model.CuentaBancaria
}

func newFakeCuentaRepo(cuentas ...model.CuentaBancaria) *fakeCuentaRepo {
	r := &fakeCuentaRepo{items: map[uuid.UUID]*model.CuentaBancaria{}}
	for i := range cuentas {
		c := cuentas[i]
		r.items[c.ID] = &c
	}
	return r
}

func (r *fakeCuentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CuentaBancaria, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCuentaRepo) ListActivas(_ context.Context) ([]model.CuentaBancaria, error) {
	var out []model.CuentaBancaria
	for _, c := range r.items {
		if c.Activa {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ── Service payments ─────────────────────────────────────────────────────────

type fakePagoRepo struct {
	items map[uuid.UUID]*model.PagoServicio
}

func newFakePagoRepo() *fakePagoRepo {
	return &fakePagoRepo{items: map[uuid.UUID]*model.PagoServicio{}}
}

func (r *fakePagoRepo) Create(_ context.Context, _ *gorm.DB, p *model.PagoServicio) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PagoServicio, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePagoRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.PagoServicio, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePagoRepo) Update(_ context.Context, _ *gorm.DB, p *model.PagoServicio) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePagoRepo) List(_ context.Context, f repository.PagoServicioFilter) ([]model.PagoServicio, int64, error) {
	var out []model.PagoServicio
	for _, p := range r.items {
		if f.Servicio != "" && p.Servicio != f.Servicio {
			continue
		}
		if f.Estado != "" && string(p.Estado) != f.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePagoRepo) SumPorServicio(_ context.Context, servicio string, estados []model.EstadoPago, rango repository.Rango) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.items {
		if p.Servicio != servicio || !enRango(p.Fecha, rango) {
			continue
		}
		for _, e := range estados {
			if p.Estado == e {
				total = total.Add(p.Monto)
				break
			}
		}
	}
	return total, nil
}

// ── Register movements (retiros) ─────────────────────────────────────────────

type fakeMovimientoRepo struct {
	items map[uuid.UUID]*model.Movimiento
}

func newFakeMovimientoRepo() *fakeMovimientoRepo {
	return &fakeMovimientoRepo{items: map[uuid.UUID]*model.Movimiento{}}
}

func (r *fakeMovimientoRepo) Create(_ context.Context, _ *gorm.DB, m *model.Movimiento) error {
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *fakeMovimientoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Movimiento, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMovimientoRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Movimiento, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeMovimientoRepo) Update(_ context.Context, _ *gorm.DB, m *model.Movimiento) error {
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *fakeMovimientoRepo) ListRetiros(_ context.Context, f repository.RetiroFilter) ([]model.Movimiento, int64, error) {
	var out []model.Movimiento
	for _, m := range r.items {
		if m.TipoMovimiento != model.TipoMovimientoEgreso {
			continue
		}
		if f.Estado != "" && string(m.EstadoRecepcion) != f.Estado {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMovimientoRepo) SumRetirosPorServicio(_ context.Context, servicio string, rango repository.Rango) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.items {
		if m.TipoMovimiento == model.TipoMovimientoEgreso && m.Servicio != nil &&
			*m.Servicio == servicio && m.EstadoRecepcion != model.RecepcionRechazado &&
			enRango(m.Fecha, rango) {
			total = total.Add(m.Monto)
		}
	}
	return total, nil
}

// ── Vales ────────────────────────────────────────────────────────────────────

type fakeValeRepo struct {
	items  map[uuid.UUID]*model.Vale
	numero int64
}

func newFakeValeRepo() *fakeValeRepo {
	return &fakeValeRepo{items: map[uuid.UUID]*model.Vale{}}
}

func (r *fakeValeRepo) NextNumero(_ context.Context, _ *gorm.DB) (int64, error) {
	r.numero++
	return r.numero, nil
}

func (r *fakeValeRepo) Create(_ context.Context, _ *gorm.DB, v *model.Vale) error {
	cp := *v
	r.items[v.ID] = &cp
	return nil
}

func (r *fakeValeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vale, error) {
	v, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeValeRepo) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Vale, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeValeRepo) Update(_ context.Context, _ *gorm.DB, v *model.Vale) error {
	cp := *v
	r.items[v.ID] = &cp
	return nil
}

func (r *fakeValeRepo) List(_ context.Context, estado string, _ repository.Paginacion) ([]model.Vale, int64, error) {
	var out []model.Vale
	for _, v := range r.items {
		if estado == "" || string(v.Estado) == estado {
			out = append(out, *v)
		}
	}
	return out, int64(len(out)), nil
}

// ── Currency exchanges ───────────────────────────────────────────────────────

type fakeCambioRepo struct {
	items map[uuid.UUID]*model.CambioMoneda
}

func newFakeCambioRepo() *fakeCambioRepo {
	return &fakeCambioRepo{items: map[uuid.UUID]*model.CambioMoneda{}}
}

func (r *fakeCambioRepo) Create(_ context.Context, _ *gorm.DB, c *model.CambioMoneda) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCambioRepo) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.CambioMoneda, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCambioRepo) Update(_ context.Context, _ *gorm.DB, c *model.CambioMoneda) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCambioRepo) List(_ context.Context, _ repository.Rango, _ repository.Paginacion) ([]model.CambioMoneda, int64, error) {
	var out []model.CambioMoneda
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// ── Cash counts ──────────────────────────────────────────────────────────────

type fakeConteoRepo struct {
	items map[uuid.UUID]*model.Conteo
}

func newFakeConteoRepo() *fakeConteoRepo {
	return &fakeConteoRepo{items: map[uuid.UUID]*model.Conteo{}}
}

func (r *fakeConteoRepo) Create(_ context.Context, _ *gorm.DB, c *model.Conteo) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeConteoRepo) SetMovimiento(_ context.Context, _ *gorm.DB, id uuid.UUID, movimientoID int64) error {
	c, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.MovimientoCajaMayorID = &movimientoID
	c.AjusteGenerado = true
	return nil
}

func (r *fakeConteoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Conteo, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConteoRepo) List(_ context.Context, moneda string, _ repository.Paginacion) ([]model.Conteo, int64, error) {
	var out []model.Conteo
	for _, c := range r.items {
		if moneda == "" || string(c.Moneda) == moneda {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

type fakeActas struct {
	encolados []uuid.UUID
	err       error
}

func (f *fakeActas) EncolarActaConteo(_ context.Context, id uuid.UUID) error {
	f.encolados = append(f.encolados, id)
	return f.err
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func enRango(t time.Time, r repository.Rango) bool {
	if !r.Desde.IsZero() && t.Before(r.Desde) {
		return false
	}
	if !r.Hasta.IsZero() && !t.Before(r.Hasta) {
		return false
	}
	return true
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fijarAhora pins the service clock and returns a restore func.
func fijarAhora(t time.Time) func() {
	prev := ahora
	ahora = func() time.Time { return t }
	return func() { ahora = prev }
}
