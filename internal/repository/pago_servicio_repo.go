package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PagoServicioFilter struct {
	Servicio string
	Estado   string
	Rango    Rango
	Paginacion
}

type PagoServicioRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.PagoServicio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PagoServicio, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PagoServicio, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.PagoServicio) error
	List(ctx context.Context, filter PagoServicioFilter) ([]model.PagoServicio, int64, error)
	SumPorServicio(ctx context.Context, servicio string, estados []model.EstadoPago, rango Rango) (decimal.Decimal, error)
}

type pagoServicioRepo struct{ db *gorm.DB }

func NewPagoServicioRepository(db *gorm.DB) PagoServicioRepository {
	return &pagoServicioRepo{db: db}
}

func (r *pagoServicioRepo) Create(ctx context.Context, tx *gorm.DB, p *model.PagoServicio) error {
	return conn(r.db, tx).WithContext(ctx).Create(p).Error
}

func (r *pagoServicioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PagoServicio, error) {
	var p model.PagoServicio
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoServicioRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PagoServicio, error) {
	var p model.PagoServicio
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoServicioRepo) Update(ctx context.Context, tx *gorm.DB, p *model.PagoServicio) error {
	return conn(r.db, tx).WithContext(ctx).Save(p).Error
}

func (r *pagoServicioRepo) List(ctx context.Context, filter PagoServicioFilter) ([]model.PagoServicio, int64, error) {
	var pagos []model.PagoServicio
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PagoServicio{})
	if filter.Servicio != "" {
		q = q.Where("servicio = ?", filter.Servicio)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	q = filter.Rango.aplicar(q, "fecha")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").
		Offset(filter.offset()).Limit(filter.Limit).
		Find(&pagos).Error
	return pagos, total, err
}

func (r *pagoServicioRepo) SumPorServicio(ctx context.Context, servicio string, estados []model.EstadoPago, rango Rango) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).Model(&model.PagoServicio{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("servicio = ? AND estado IN ?", servicio, estados)
	q = rango.aplicar(q, "fecha")
	err := q.Row().Scan(&total)
	return total, err
}
