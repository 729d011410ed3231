package database

import (
	"database/sql"
	"fmt"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"  // Register pgx driver
	_ "github.com/mattn/go-sqlite3"     // Register sqlite3 driver
)

// NewConnection creates and verifies a database connection pool for the
// configured driver. Production runs on PostgreSQL (pgx); local dev and
// tests run the same SQL on SQLite.
func NewConnection(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.DBDriver, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if cfg.DBDriver == "sqlite3" {
		// SQLite allows a single writer; serialize access through one
		// connection so the uniqueness checks behave like Postgres.
		db.SetMaxOpenConns(1)
	}

	// Ping the database to verify the connection is alive
	return db, db.Ping()
}

func dsn(cfg config.Config) string {
	if cfg.DBDriver == "sqlite3" {
		return cfg.SQLitePath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
