package repository

import (
	"context"
	"errors"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Referencia names the foreign key that links a ledger row to its origin.
type Referencia string

const (
	RefDeposito     Referencia = "deposito_id"
	RefPagoServicio Referencia = "pago_servicio_id"
	RefMovimiento   Referencia = "movimiento_id"
	RefVale         Referencia = "vale_id"
	RefCambio       Referencia = "cambio_id"
	RefConteo       Referencia = "conteo_id"
)

type CajaMayorFilter struct {
	Moneda string // ledger vocabulary
	Tipo   string
	Rango  Rango
	Paginacion
}

type TotalesCajaMayor struct {
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
	Cantidad int64
}

type CajaMayorRepository interface {
	// BloquearMoneda serialises ledger appends for one currency until tx ends.
	BloquearMoneda(ctx context.Context, tx *gorm.DB, moneda string) error
	// Ultimo returns the most recent row for moneda, or nil when there is none.
	Ultimo(ctx context.Context, tx *gorm.DB, moneda string) (*model.MovimientoCajaMayor, error)
	Create(ctx context.Context, tx *gorm.DB, m *model.MovimientoCajaMayor) error
	FindByID(ctx context.Context, tx *gorm.DB, id int64) (*model.MovimientoCajaMayor, error)
	FindPorReferencia(ctx context.Context, tx *gorm.DB, ref Referencia, id uuid.UUID) ([]model.MovimientoCajaMayor, error)
	ExisteReversa(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	UpdateConcepto(ctx context.Context, tx *gorm.DB, id int64, concepto string) error
	List(ctx context.Context, filter CajaMayorFilter) ([]model.MovimientoCajaMayor, int64, error)
	// ListDesde pages through one currency's chain in id order, starting after afterID.
	ListDesde(ctx context.Context, moneda string, afterID int64, limit int) ([]model.MovimientoCajaMayor, error)
	Totales(ctx context.Context, moneda string, rango Rango) (TotalesCajaMayor, error)
	DB() *gorm.DB
}

type cajaMayorRepo struct{ db *gorm.DB }

func NewCajaMayorRepository(db *gorm.DB) CajaMayorRepository { return &cajaMayorRepo{db: db} }

func (r *cajaMayorRepo) DB() *gorm.DB { return r.db }

func (r *cajaMayorRepo) BloquearMoneda(ctx context.Context, tx *gorm.DB, moneda string) error {
	if tx == nil {
		return errors.New("BloquearMoneda requiere una transacción")
	}
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "caja_mayor:"+moneda).Error
}

func (r *cajaMayorRepo) Ultimo(ctx context.Context, tx *gorm.DB, moneda string) (*model.MovimientoCajaMayor, error) {
	var m model.MovimientoCajaMayor
	err := conn(r.db, tx).WithContext(ctx).
		Where("moneda = ?", moneda).
		Order("id DESC").
		Limit(1).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *cajaMayorRepo) Create(ctx context.Context, tx *gorm.DB, m *model.MovimientoCajaMayor) error {
	return conn(r.db, tx).WithContext(ctx).Create(m).Error
}

func (r *cajaMayorRepo) FindByID(ctx context.Context, tx *gorm.DB, id int64) (*model.MovimientoCajaMayor, error) {
	var m model.MovimientoCajaMayor
	err := conn(r.db, tx).WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *cajaMayorRepo) FindPorReferencia(ctx context.Context, tx *gorm.DB, ref Referencia, id uuid.UUID) ([]model.MovimientoCajaMayor, error) {
	switch ref {
	case RefDeposito, RefPagoServicio, RefMovimiento, RefVale, RefCambio, RefConteo:
	default:
		return nil, errors.New("referencia desconocida: " + string(ref))
	}
	var movs []model.MovimientoCajaMayor
	err := conn(r.db, tx).WithContext(ctx).
		Where(string(ref)+" = ?", id).
		Order("id ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaMayorRepo) ExisteReversa(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.MovimientoCajaMayor{}).
		Where("reversa_de_id = ?", id).
		Count(&n).Error
	return n > 0, err
}

func (r *cajaMayorRepo) UpdateConcepto(ctx context.Context, tx *gorm.DB, id int64, concepto string) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&model.MovimientoCajaMayor{}).
		Where("id = ?", id).
		Update("concepto", concepto).Error
}

func (r *cajaMayorRepo) List(ctx context.Context, filter CajaMayorFilter) ([]model.MovimientoCajaMayor, int64, error) {
	var movs []model.MovimientoCajaMayor
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoCajaMayor{})
	if filter.Moneda != "" {
		q = q.Where("moneda = ?", filter.Moneda)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	q = filter.Rango.aplicar(q, "fecha")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").
		Offset(filter.offset()).Limit(filter.Limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *cajaMayorRepo) ListDesde(ctx context.Context, moneda string, afterID int64, limit int) ([]model.MovimientoCajaMayor, error) {
	var movs []model.MovimientoCajaMayor
	err := r.db.WithContext(ctx).
		Where("moneda = ? AND id > ?", moneda, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&movs).Error
	return movs, err
}

func (r *cajaMayorRepo) Totales(ctx context.Context, moneda string, rango Rango) (TotalesCajaMayor, error) {
	var row struct {
		Ingresos decimal.Decimal
		Egresos  decimal.Decimal
		Cantidad int64
	}
	q := r.db.WithContext(ctx).Model(&model.MovimientoCajaMayor{}).
		Select(`COALESCE(SUM(CASE WHEN es_ingreso THEN monto ELSE 0 END), 0) AS ingresos,
		        COALESCE(SUM(CASE WHEN NOT es_ingreso THEN monto ELSE 0 END), 0) AS egresos,
		        COUNT(*) AS cantidad`).
		Where("moneda = ?", moneda)
	q = rango.aplicar(q, "fecha")
	if err := q.Scan(&row).Error; err != nil {
		return TotalesCajaMayor{}, err
	}
	return TotalesCajaMayor{Ingresos: row.Ingresos, Egresos: row.Egresos, Cantidad: row.Cantidad}, nil
}
