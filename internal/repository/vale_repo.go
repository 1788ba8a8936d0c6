package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ValeRepository interface {
	NextNumero(ctx context.Context, tx *gorm.DB) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, v *model.Vale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vale, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error)
	Update(ctx context.Context, tx *gorm.DB, v *model.Vale) error
	List(ctx context.Context, estado string, pag Paginacion) ([]model.Vale, int64, error)
}

type valeRepo struct{ db *gorm.DB }

func NewValeRepository(db *gorm.DB) ValeRepository { return &valeRepo{db: db} }

func (r *valeRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := conn(r.db, tx).WithContext(ctx).Raw("SELECT nextval('vales_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *valeRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Vale) error {
	return conn(r.db, tx).WithContext(ctx).Create(v).Error
}

func (r *valeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vale, error) {
	var v model.Vale
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *valeRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Vale, error) {
	var v model.Vale
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *valeRepo) Update(ctx context.Context, tx *gorm.DB, v *model.Vale) error {
	return conn(r.db, tx).WithContext(ctx).Save(v).Error
}

func (r *valeRepo) List(ctx context.Context, estado string, pag Paginacion) ([]model.Vale, int64, error) {
	var vales []model.Vale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Vale{})
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("numero DESC").Offset(pag.offset()).Limit(pag.Limit).Find(&vales).Error
	return vales, total, err
}
