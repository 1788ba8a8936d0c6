package infra

import (
	"fmt"

	"sistemaservicios/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection and applies the idempotent patches
// that the SQL migrations in migrations/ do not cover on older databases.
// Schema itself is owned by the migrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// applySchemaPatches runs DDL that GORM tags cannot express: the vale number
// sequence, the partial unique index that allows one reversal per ledger row
// and the chain index used by every append. Each statement is idempotent.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"vales_numero_seq", `CREATE SEQUENCE IF NOT EXISTS vales_numero_seq START 1`},
		{"uq_caja_mayor_reversa", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'caja_mayor_movimientos')
    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_caja_mayor_reversa') THEN
    CREATE UNIQUE INDEX uq_caja_mayor_reversa
        ON caja_mayor_movimientos (reversa_de_id)
        WHERE reversa_de_id IS NOT NULL;
  END IF;
END $$`},
		{"idx_caja_mayor_moneda_id", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'caja_mayor_movimientos')
    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_caja_mayor_moneda_id') THEN
    CREATE INDEX idx_caja_mayor_moneda_id
        ON caja_mayor_movimientos (moneda, id DESC);
  END IF;
END $$`},
		// deposits cancelled before the prefix convention stored it lower case
		{"normalizar depositos cancelados", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'depositos_bancarios') THEN
    UPDATE depositos_bancarios
       SET observacion = 'CANCELADO' || substr(observacion, 10)
     WHERE observacion LIKE 'cancelado%';
  END IF;
END $$`},
		// service codes were stored as typed before they were lower-cased on write
		{"normalizar codigos de servicio", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'pagos_servicios') THEN
    UPDATE pagos_servicios SET servicio = lower(trim(servicio)) WHERE servicio <> lower(trim(servicio));
  END IF;
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'movimientos') THEN
    UPDATE movimientos SET servicio = lower(trim(servicio)) WHERE servicio <> lower(trim(servicio));
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// RunMigrations creates the schema from the models and applies the patches.
// Used by integration tests, which have no migrate CLI.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&model.CuentaBancaria{},
		&model.DepositoBancario{},
		&model.PagoServicio{},
		&model.Movimiento{},
		&model.Vale{},
		&model.CambioMoneda{},
		&model.Conteo{},
		&model.ConteoDetalle{},
		&model.MovimientoCajaMayor{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}
