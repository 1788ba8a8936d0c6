package repository

import (
	"time"

	"gorm.io/gorm"
)

// Rango is a half-open UTC interval [Desde, Hasta). A zero bound is open.
type Rango struct {
	Desde time.Time
	Hasta time.Time
}

func (r Rango) aplicar(q *gorm.DB, columna string) *gorm.DB {
	if !r.Desde.IsZero() {
		q = q.Where(columna+" >= ?", r.Desde)
	}
	if !r.Hasta.IsZero() {
		q = q.Where(columna+" < ?", r.Hasta)
	}
	return q
}

// Paginacion is 1-based.
type Paginacion struct {
	Page  int
	Limit int
}

func (p Paginacion) offset() int { return (p.Page - 1) * p.Limit }

// conn returns tx when the caller is inside a transaction, db otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
