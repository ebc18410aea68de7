package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visit_status') THEN
			CREATE TYPE visit_status AS ENUM ('PENDING', 'COMPLETED', 'CANCELED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('ACTIVE', 'EXPIRED', 'TERMINATED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visit_cadence') THEN
			CREATE TYPE visit_cadence AS ENUM ('WEEKLY', 'MONTHLY', 'QUARTERLY', 'ONE_OFF');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		emirate VARCHAR(64) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		unit_number VARCHAR(64),
		property_type VARCHAR(32) NOT NULL DEFAULT 'RESIDENTIAL',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS technicians (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		role VARCHAR(64) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		color VARCHAR(16) NOT NULL DEFAULT '#3b82f6'
	);`,
	`CREATE SEQUENCE IF NOT EXISTS contract_number_seq;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_number VARCHAR(64) NOT NULL,
		client_id UUID NOT NULL REFERENCES clients(id),
		type VARCHAR(32) NOT NULL,
		cadence visit_cadence NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		visits_included INTEGER NOT NULL,
		price NUMERIC(18,2) NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		status contract_status NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_contract_window CHECK (start_date <= end_date),
		CONSTRAINT chk_contract_visits CHECK (visits_included >= 1)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE TABLE IF NOT EXISTS visits (
		id BIGSERIAL PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		client_id UUID NOT NULL REFERENCES clients(id),
		technician_id UUID REFERENCES technicians(id),
		date DATE NOT NULL,
		status visit_status NOT NULL DEFAULT 'PENDING',
		pest_type TEXT,
		chemicals TEXT,
		notes TEXT,
		completed_at TIMESTAMPTZ,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`SELECT setval('visits_id_seq', 1000, true) WHERE (SELECT last_value FROM visits_id_seq) < 1000;`,
	`CREATE INDEX IF NOT EXISTS idx_visits_contract_id ON visits (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_date ON visits (date);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_technician_pending ON visits (technician_id, date) WHERE status = 'PENDING';`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
