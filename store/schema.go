package store

import (
	"context"

	"github.com/policydesk/backoffice/core/logger"
)

// schemaStatements is executed in order on startup. Everything is
// idempotent; there is no migration tooling, the service owns its
// schema the same way it owns its routes.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS policies (
	id BIGSERIAL PRIMARY KEY,
	plan TEXT NOT NULL,
	plan_code TEXT NOT NULL,
	policy_office TEXT NOT NULL,
	policy_office_code TEXT NOT NULL,
	policy_class TEXT NOT NULL,
	policy_class_code TEXT NOT NULL,
	policy_number TEXT NOT NULL,
	policy_date DATE NOT NULL,
	policy_no TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	dob DATE NOT NULL,
	gender TEXT NOT NULL,
	address TEXT NOT NULL,
	mobile TEXT NOT NULL,
	email TEXT NOT NULL,
	passport TEXT NOT NULL,
	destination TEXT NOT NULL,
	travel_date_from DATE NOT NULL,
	travel_days INTEGER NOT NULL,
	travel_date_to DATE NOT NULL,
	country_of_residence TEXT NOT NULL,
	limit_of_cover DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL,
	premium DOUBLE PRECISION NOT NULL,
	vat DOUBLE PRECISION NOT NULL,
	total DOUBLE PRECISION NOT NULL,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS policies_number_year
	ON policies (policy_number, (EXTRACT(YEAR FROM policy_date)))
	WHERE NOT is_deleted;`,

	`CREATE TABLE IF NOT EXISTS receipts (
	id BIGSERIAL PRIMARY KEY,
	mr_office TEXT NOT NULL,
	mr_office_code TEXT NOT NULL,
	mr_class TEXT NOT NULL,
	mr_class_code TEXT NOT NULL,
	mr_number TEXT NOT NULL,
	mr_date DATE NOT NULL,
	mr_no TEXT NOT NULL,
	received_from TEXT NOT NULL,
	mop TEXT NOT NULL,
	cheque_no TEXT,
	cheque_date DATE,
	bank TEXT,
	bank_branch TEXT,
	policy_office TEXT NOT NULL,
	policy_office_code TEXT NOT NULL,
	policy_class TEXT NOT NULL,
	policy_class_code TEXT NOT NULL,
	policy_number TEXT NOT NULL,
	policy_date DATE NOT NULL,
	coins TEXT NOT NULL,
	policy_no TEXT NOT NULL,
	premium DOUBLE PRECISION NOT NULL,
	vat DOUBLE PRECISION,
	total DOUBLE PRECISION NOT NULL,
	stamp DOUBLE PRECISION,
	coinsnet DOUBLE PRECISION,
	note TEXT,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS receipts_mr_number_year
	ON receipts (mr_number, (EXTRACT(YEAR FROM mr_date)))
	WHERE NOT is_deleted;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS receipts_policy_number_year
	ON receipts (policy_number, (EXTRACT(YEAR FROM policy_date)))
	WHERE NOT is_deleted;`,

	`CREATE TABLE IF NOT EXISTS records (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,

	`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_user_id
	ON users (user_id)
	WHERE NOT is_deleted;`,
}

// Init creates the tables and unique indexes if they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	rlog := logger.FromContext(ctx)
	for _, statement := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			rlog.WithError(err).Error("schema statement failed")
			return err
		}
	}
	rlog.Debug("database schema is up to date")
	return nil
}
