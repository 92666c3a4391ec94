// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for subjects and measurements; reading fields are columns.
package storage

import (
	"fmt"
	"strings"

	"github.com/harperreed/bodycomp/internal/models"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// readingColumns lists the measurement columns holding reading fields,
// in models.AllFields order. Column names equal field names.
var readingColumns = func() []string {
	cols := make([]string, len(models.AllFields))
	for i, f := range models.AllFields {
		cols[i] = string(f)
	}
	return cols
}()

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	var readingDefs strings.Builder
	for _, c := range readingColumns {
		fmt.Fprintf(&readingDefs, "\t\t%s REAL,\n", c)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		gender TEXT NOT NULL,
		protein_profile TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		measured_on TEXT NOT NULL,
		dose REAL,
		status TEXT,
` + readingDefs.String() + `		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_subject ON measurements(subject_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_order ON measurements(subject_id, week_number, measured_on);
	`

	current, err := d.schemaVersion()
	if err != nil {
		return err
	}
	if current > schemaVersion {
		return fmt.Errorf("database %s has schema version %d, newer than this build supports (%d)",
			d.path, current, schemaVersion)
	}

	if _, err := d.db.Exec(schema); err != nil {
		return err
	}
	if current < schemaVersion {
		if _, err := d.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}

func (d *DB) schemaVersion() (int, error) {
	var v int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
