package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RetiroFilter struct {
	CajaID *uuid.UUID
	Estado string
	Moneda string
	Paginacion
}

// MovimientoRepository persists register movements; the service only uses
// the EGRESO rows (retiros).
type MovimientoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Movimiento, error)
	Update(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error
	ListRetiros(ctx context.Context, filter RetiroFilter) ([]model.Movimiento, int64, error)
	SumRetirosPorServicio(ctx context.Context, servicio string, rango Rango) (decimal.Decimal, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) Create(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error {
	return conn(r.db, tx).WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Movimiento, error) {
	var m model.Movimiento
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *movimientoRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Movimiento, error) {
	var m model.Movimiento
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	return &m, err
}

func (r *movimientoRepo) Update(ctx context.Context, tx *gorm.DB, m *model.Movimiento) error {
	return conn(r.db, tx).WithContext(ctx).Save(m).Error
}

func (r *movimientoRepo) ListRetiros(ctx context.Context, filter RetiroFilter) ([]model.Movimiento, int64, error) {
	var movs []model.Movimiento
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Where("tipo_movimiento = ?", model.TipoMovimientoEgreso)
	if filter.CajaID != nil {
		q = q.Where("caja_id = ?", *filter.CajaID)
	}
	if filter.Estado != "" {
		q = q.Where("estado_recepcion = ?", filter.Estado)
	}
	if filter.Moneda != "" {
		q = q.Where("moneda = ?", filter.Moneda)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").
		Offset(filter.offset()).Limit(filter.Limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *movimientoRepo) SumRetirosPorServicio(ctx context.Context, servicio string, rango Rango) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).Model(&model.Movimiento{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("tipo_movimiento = ? AND servicio = ? AND estado_recepcion <> ?",
			model.TipoMovimientoEgreso, servicio, model.RecepcionRechazado)
	q = rango.aplicar(q, "fecha")
	err := q.Row().Scan(&total)
	return total, err
}
