// Package database owns the sqlite connection and schema migrations.
package database

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	once sync.Once
)

// Config holds database configuration.
type Config struct {
	Path string
}

// Init initializes the database connection and applies migrations.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err = os.MkdirAll(dir, 0o755); err != nil {
				return
			}
		}

		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			return
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)

		// WAL mode for better concurrency
		if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return
		}
		if _, err = db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return
		}

		if err = db.Ping(); err != nil {
			return
		}

		if err = Migrate(db); err != nil {
			return
		}

		log.Printf("[Database] initialized: %s", cfg.Path)
	})

	return err
}

// GetDB returns the database instance.
func GetDB() *sql.DB {
	if db == nil {
		log.Fatal("[Database] not initialized, call Init() first")
	}
	return db
}

// Close closes the database connection.
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
