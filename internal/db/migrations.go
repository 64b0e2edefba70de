package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('active', 'expired');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'occurrence_status') THEN
			CREATE TYPE occurrence_status AS ENUM ('pending', 'scheduled', 'done', 'canceled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'task_status') THEN
			CREATE TYPE task_status AS ENUM ('pending', 'completed', 'canceled');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'service_type') THEN
			CREATE TYPE service_type AS ENUM ('contract', 'on_call');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS technicians (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS product_catalog (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		model VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS customer_products (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		customer_id UUID NOT NULL REFERENCES customers(id),
		product_id UUID NOT NULL REFERENCES product_catalog(id),
		serial_number VARCHAR(128),
		installation_location TEXT,
		installed_at DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		customer_product_id UUID NOT NULL REFERENCES customer_products(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		interval_months INT NOT NULL CHECK (interval_months > 0),
		total_service INT NOT NULL CHECK (total_service > 0),
		services_used INT NOT NULL DEFAULT 0,
		status contract_status NOT NULL DEFAULT 'active',
		contract_url TEXT,
		notes TEXT,
		price NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS schedule_occurrences (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID REFERENCES contracts(id) ON DELETE CASCADE,
		customer_product_id UUID NOT NULL REFERENCES customer_products(id),
		expected_date TIMESTAMPTZ NOT NULL,
		interval_months INT NOT NULL DEFAULT 0,
		source_type VARCHAR(16) NOT NULL DEFAULT 'contract',
		status occurrence_status NOT NULL DEFAULT 'pending',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		occurrence_id UUID REFERENCES schedule_occurrences(id),
		customer_id UUID NOT NULL REFERENCES customers(id),
		customer_product_id UUID NOT NULL REFERENCES customer_products(id),
		technician_id UUID REFERENCES technicians(id),
		task_date TIMESTAMPTZ NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status task_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS service_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		task_id UUID REFERENCES tasks(id),
		occurrence_id UUID REFERENCES schedule_occurrences(id),
		customer_product_id UUID NOT NULL REFERENCES customer_products(id),
		technician_id UUID NOT NULL REFERENCES technicians(id),
		service_date TIMESTAMPTZ NOT NULL,
		service_type service_type NOT NULL DEFAULT 'on_call',
		work_description TEXT NOT NULL,
		service_price NUMERIC(18,2) NOT NULL DEFAULT 0,
		technician_fee NUMERIC(18,2),
		evidence JSONB,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_occurrences_contract_id ON schedule_occurrences (contract_id) WHERE contract_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_occurrences_status ON schedule_occurrences (status);`,
	`CREATE INDEX IF NOT EXISTS idx_occurrences_expected_date ON schedule_occurrences (expected_date);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_task_date ON tasks (task_date);`,
	`CREATE INDEX IF NOT EXISTS idx_service_logs_service_date ON service_logs (service_date);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_service_logs_task_id ON service_logs (task_id) WHERE task_id IS NOT NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_service_logs_occurrence_id ON service_logs (occurrence_id) WHERE occurrence_id IS NOT NULL;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
