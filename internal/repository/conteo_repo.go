package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConteoRepository interface {
	// Create inserts the conteo and its detalles.
	Create(ctx context.Context, tx *gorm.DB, c *model.Conteo) error
	// SetMovimiento links the adjustment ledger row once it exists.
	SetMovimiento(ctx context.Context, tx *gorm.DB, id uuid.UUID, movimientoID int64) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conteo, error)
	List(ctx context.Context, moneda string, pag Paginacion) ([]model.Conteo, int64, error)
}

type conteoRepo struct{ db *gorm.DB }

func NewConteoRepository(db *gorm.DB) ConteoRepository { return &conteoRepo{db: db} }

func (r *conteoRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Conteo) error {
	return conn(r.db, tx).WithContext(ctx).Create(c).Error
}

func (r *conteoRepo) SetMovimiento(ctx context.Context, tx *gorm.DB, id uuid.UUID, movimientoID int64) error {
	return conn(r.db, tx).WithContext(ctx).Model(&model.Conteo{}).
		Where("id = ?", id).
		Updates(map[string]any{"movimiento_caja_mayor_id": movimientoID, "ajuste_generado": true}).Error
}

func (r *conteoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Conteo, error) {
	var c model.Conteo
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("denominacion DESC") }).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *conteoRepo) List(ctx context.Context, moneda string, pag Paginacion) ([]model.Conteo, int64, error) {
	var conteos []model.Conteo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Conteo{})
	if moneda != "" {
		q = q.Where("moneda = ?", moneda)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").Offset(pag.offset()).Limit(pag.Limit).Find(&conteos).Error
	return conteos, total, err
}
