package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepositoFilter struct {
	CuentaBancariaID  *uuid.UUID
	Moneda            string
	Rango             Rango
	IncluirCancelados bool
	Paginacion
}

type DepositoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.DepositoBancario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DepositoBancario, error)
	// FindByIDTx locks the row for the remainder of tx.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DepositoBancario, error)
	Update(ctx context.Context, tx *gorm.DB, d *model.DepositoBancario) error
	List(ctx context.Context, filter DepositoFilter) ([]model.DepositoBancario, int64, error)
	SumNoCancelados(ctx context.Context, cuentaID uuid.UUID, rango Rango) (decimal.Decimal, error)
}

type depositoRepo struct{ db *gorm.DB }

func NewDepositoRepository(db *gorm.DB) DepositoRepository { return &depositoRepo{db: db} }

func (r *depositoRepo) Create(ctx context.Context, tx *gorm.DB, d *model.DepositoBancario) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *depositoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DepositoBancario, error) {
	var d model.DepositoBancario
	err := r.db.WithContext(ctx).Preload("CuentaBancaria").First(&d, "id = ?", id).Error
	return &d, err
}

func (r *depositoRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DepositoBancario, error) {
	var d model.DepositoBancario
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *depositoRepo) Update(ctx context.Context, tx *gorm.DB, d *model.DepositoBancario) error {
	return conn(r.db, tx).WithContext(ctx).Omit(clause.Associations).Save(d).Error
}

func (r *depositoRepo) List(ctx context.Context, filter DepositoFilter) ([]model.DepositoBancario, int64, error) {
	var deps []model.DepositoBancario
	var total int64

	q := r.db.WithContext(ctx).Model(&model.DepositoBancario{})
	if filter.CuentaBancariaID != nil {
		q = q.Where("cuenta_bancaria_id = ?", *filter.CuentaBancariaID)
	}
	if filter.Moneda != "" {
		q = q.Where("moneda = ?", filter.Moneda)
	}
	if !filter.IncluirCancelados {
		q = q.Where("observacion NOT LIKE ?", model.PrefijoCancelado+"%")
	}
	q = filter.Rango.aplicar(q, "fecha")

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("CuentaBancaria").
		Order("fecha DESC, created_at DESC").
		Offset(filter.offset()).Limit(filter.Limit).
		Find(&deps).Error
	return deps, total, err
}

func (r *depositoRepo) SumNoCancelados(ctx context.Context, cuentaID uuid.UUID, rango Rango) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).Model(&model.DepositoBancario{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("cuenta_bancaria_id = ? AND observacion NOT LIKE ?", cuentaID, model.PrefijoCancelado+"%")
	q = rango.aplicar(q, "fecha")
	err := q.Row().Scan(&total)
	return total, err
}
