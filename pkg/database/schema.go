package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates every table the deck tracker needs. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Schema is the full DDL for the deck store.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    sap_id TEXT NOT NULL UNIQUE,
    user_name TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'FACULTY' CHECK (role IN ('ADMIN', 'MODERATOR', 'FACULTY')),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

CREATE TABLE IF NOT EXISTS schools (
    id TEXT PRIMARY KEY,
    school_name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- packet_number is deliberately not unique: duplicate sheet rows import as
-- distinct decks told apart by qr_code_string.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    exam_date BIGINT NOT NULL,
    program_name TEXT NOT NULL,
    course_code TEXT NOT NULL,
    course_name TEXT NOT NULL,
    school TEXT NOT NULL,
    semester TEXT NOT NULL DEFAULT '',
    room_number TEXT NOT NULL DEFAULT '',
    packet_number TEXT NOT NULL DEFAULT '',
    rack_number TEXT NOT NULL DEFAULT '',
    student_count INTEGER NOT NULL DEFAULT 0 CHECK (student_count >= 0),
    cohort TEXT NOT NULL DEFAULT '',
    shift_of_exam TEXT NOT NULL CHECK (shift_of_exam IN ('MORNING', 'EVENING')),
    evaluator_id TEXT NOT NULL REFERENCES users(id),
    number_of_answer_sheets INTEGER NOT NULL DEFAULT 0 CHECK (number_of_answer_sheets >= 0),
    status_of_deck TEXT NOT NULL DEFAULT 'PENDING' CHECK (status_of_deck IN ('PENDING', 'PICKED_UP', 'DROPPED')),
    qr_code_string TEXT NOT NULL UNIQUE,
    pick_up_timestamp BIGINT,
    drop_timestamp BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_decks_status ON decks(status_of_deck);
CREATE INDEX IF NOT EXISTS idx_decks_evaluator ON decks(evaluator_id);
CREATE INDEX IF NOT EXISTS idx_decks_exam_date ON decks(exam_date);

CREATE TABLE IF NOT EXISTS email_templates (
    id TEXT PRIMARY KEY,
    template_name TEXT NOT NULL,
    category TEXT NOT NULL UNIQUE CHECK (category IN ('PICKED_UP', 'DROPPED', 'REMINDER', 'ASSIGNED')),
    subject TEXT NOT NULL,
    html TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS smtp_settings (
    id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    email_address TEXT NOT NULL,
    email_password TEXT NOT NULL,
    smtp_host TEXT NOT NULL,
    smtp_port INTEGER NOT NULL,
    smtp_secure BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT,
    action TEXT NOT NULL,
    resource TEXT NOT NULL,
    resource_id TEXT,
    new_values JSONB,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at);
`
