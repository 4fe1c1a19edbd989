package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one schema change. Migrations ship with the binary and are
// applied in version order.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_trials",
		SQL: `
			CREATE TABLE IF NOT EXISTS trials (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				frame_rate REAL NOT NULL,
				analog_rate REAL NOT NULL,
				frame_count INTEGER NOT NULL,
				body_mass REAL,
				forceplate_count INTEGER NOT NULL DEFAULT 0,
				payload_json TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_gait_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS gait_events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trial_id INTEGER NOT NULL REFERENCES trials(id) ON DELETE CASCADE,
				side TEXT NOT NULL,
				kind TEXT NOT NULL,
				frame INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_gait_events_trial ON gait_events(trial_id)
		`,
	},
	{
		Version: 3,
		Name:    "create_plate_results",
		SQL: `
			CREATE TABLE IF NOT EXISTS plate_results (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trial_id INTEGER NOT NULL REFERENCES trials(id) ON DELETE CASCADE,
				plate_index INTEGER NOT NULL,
				outcome TEXT NOT NULL,
				side TEXT,
				strike_frame INTEGER,
				toeoff_frame INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_plate_results_trial ON plate_results(trial_id)
		`,
	},
	{
		Version: 4,
		Name:    "create_step_widths",
		SQL: `
			CREATE TABLE IF NOT EXISTS step_widths (
				trial_id INTEGER PRIMARY KEY REFERENCES trials(id) ON DELETE CASCADE,
				left_mm REAL,
				right_mm REAL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
}

// Migrate applies all pending migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := map[int]bool{}
	rows, err := db.Query("SELECT version FROM migrations")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec(
			"INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		log.Printf("[Database] applied migration %d: %s", m.Version, m.Name)
	}
	return nil
}
