package database

import (
	"database/sql"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/config"
	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// NewInstrumentedConnection creates a database connection wrapped with
// OpenTelemetry instrumentation; otelsql intercepts queries and creates
// spans for each of them.
func NewInstrumentedConnection(cfg config.Config) (*sql.DB, error) {
	attr := semconv.DBSystemPostgreSQL
	if cfg.DBDriver == "sqlite3" {
		attr = semconv.DBSystemSqlite
	}

	db, err := otelsql.Open(cfg.DBDriver, dsn(cfg),
		otelsql.WithAttributes(attr),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
