package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CambioRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.CambioMoneda) error
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CambioMoneda, error)
	Update(ctx context.Context, tx *gorm.DB, c *model.CambioMoneda) error
	List(ctx context.Context, rango Rango, pag Paginacion) ([]model.CambioMoneda, int64, error)
}

type cambioRepo struct{ db *gorm.DB }

func NewCambioRepository(db *gorm.DB) CambioRepository { return &cambioRepo{db: db} }

func (r *cambioRepo) Create(ctx context.Context, tx *gorm.DB, c *model.CambioMoneda) error {
	return conn(r.db, tx).WithContext(ctx).Create(c).Error
}

func (r *cambioRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CambioMoneda, error) {
	var c model.CambioMoneda
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cambioRepo) Update(ctx context.Context, tx *gorm.DB, c *model.CambioMoneda) error {
	return conn(r.db, tx).WithContext(ctx).Save(c).Error
}

func (r *cambioRepo) List(ctx context.Context, rango Rango, pag Paginacion) ([]model.CambioMoneda, int64, error) {
	var cambios []model.CambioMoneda
	var total int64

	q := rango.aplicar(r.db.WithContext(ctx).Model(&model.CambioMoneda{}), "fecha")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").Offset(pag.offset()).Limit(pag.Limit).Find(&cambios).Error
	return cambios, total, err
}
