package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates the core tables and the uniqueness indexes that back the
// invariants: one open workday per employee, one active shift per vehicle,
// one payroll per (employee, year, month), one line per concept code.
// driver is "pgx" or "sqlite3"; the only dialect difference is the id
// column.
func Migrate(db *sql.DB, driver string) error {
	id := "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	if driver == "sqlite3" {
		id = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workdays (
			id {{id}},
			employee_id TEXT NOT NULL,
			work_date TIMESTAMP NOT NULL,
			clock_in TIMESTAMP NOT NULL,
			clock_out TIMESTAMP,
			hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_workdays_open
			ON workdays (employee_id) WHERE clock_out IS NULL`,
		`CREATE INDEX IF NOT EXISTS ix_workdays_employee_date
			ON workdays (employee_id, work_date)`,

		`CREATE TABLE IF NOT EXISTS vehicle_shifts (
			id {{id}},
			workday_id BIGINT NOT NULL REFERENCES workdays (id),
			vehicle_id TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			start_odometer BIGINT NOT NULL,
			end_odometer BIGINT,
			trip_count INTEGER NOT NULL DEFAULT 0,
			unload_count INTEGER NOT NULL DEFAULT 0,
			fuel_liters DOUBLE PRECISION NOT NULL DEFAULT 0,
			conflict_evidence_uri TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicle_shifts_active
			ON vehicle_shifts (vehicle_id) WHERE end_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS ix_vehicle_shifts_vehicle_start
			ON vehicle_shifts (vehicle_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS ix_vehicle_shifts_workday
			ON vehicle_shifts (workday_id)`,

		`CREATE TABLE IF NOT EXISTS payrolls (
			id {{id}},
			employee_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			total TEXT NOT NULL DEFAULT '0',
			email_status TEXT NOT NULL DEFAULT 'PENDING',
			email_retry_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE (employee_id, year, month)
		)`,

		`CREATE TABLE IF NOT EXISTS payroll_lines (
			id {{id}},
			payroll_id BIGINT NOT NULL REFERENCES payrolls (id),
			concept_code TEXT NOT NULL,
			concept_label TEXT NOT NULL DEFAULT '',
			quantity TEXT NOT NULL DEFAULT '0',
			rate TEXT NOT NULL DEFAULT '0',
			amount TEXT NOT NULL DEFAULT '0',
			notes TEXT NOT NULL DEFAULT '',
			is_manual_override BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (payroll_id, concept_code)
		)`,
	}

	for _, stmt := range stmts {
		stmt = strings.ReplaceAll(stmt, "{{id}}", id)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
