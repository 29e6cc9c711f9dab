package database

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/nramdhani/student-tracker/pkg/config"
)

// Open connects to the configured relational store. A postgres:// URL targets
// PostgreSQL; otherwise a local SQLite file is used so the tracker runs with
// zero infrastructure.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn := resolve(cfg)

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func resolve(cfg config.DatabaseConfig) (driver, dsn string) {
	url := strings.TrimSpace(cfg.URL)
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url
	}

	path := cfg.SQLitePath
	if path == "" {
		path = "students.db"
	}
	// foreign_keys is off by default in SQLite and must be set on every
	// pooled connection; the DSN pragma covers that. The grade cascade
	// depends on it.
	return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)"
}
