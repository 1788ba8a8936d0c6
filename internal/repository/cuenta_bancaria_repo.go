package repository

import (
	"context"

	"sistemaservicios/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CuentaBancariaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaBancaria, error)
	ListActivas(ctx context.Context) ([]model.CuentaBancaria, error)
}

type cuentaBancariaRepo struct{ db *gorm.DB }

func NewCuentaBancariaRepository(db *gorm.DB) CuentaBancariaRepository {
	return &cuentaBancariaRepo{db: db}
}

func (r *cuentaBancariaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaBancaria, error) {
	var c model.CuentaBancaria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cuentaBancariaRepo) ListActivas(ctx context.Context) ([]model.CuentaBancaria, error) {
	var cuentas []model.CuentaBancaria
	err := r.db.WithContext(ctx).Where("activa = true").Order("banco ASC").Find(&cuentas).Error
	return cuentas, err
}
