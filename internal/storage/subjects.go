// ABOUTME: Subject CRUD operations for SQLite storage.
// ABOUTME: Subjects resolve by exact name or by ID prefix.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const subjectColumns = `id, name, gender, protein_profile, description, created_at`

// CreateSubject stores a new subject in the database.
func (d *DB) CreateSubject(s *models.Subject) error {
	if err := s.Normalize(); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	query := `INSERT INTO subjects (` + subjectColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query,
		s.ID.String(),
		s.Name,
		string(s.Gender),
		string(s.ProteinProfile),
		s.Description,
		s.CreatedAt.Format(time.RFC3339),
	)
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("create subject %q: %w", s.Name, ErrDuplicateName)
	}
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// GetSubject retrieves a subject by exact name or ID prefix.
func (d *DB) GetSubject(nameOrID string) (*models.Subject, error) {
	row := d.db.QueryRow(`SELECT `+subjectColumns+` FROM subjects WHERE name = ? COLLATE NOCASE`, nameOrID)
	s, err := scanSubject(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id, err := d.resolveID("subjects", nameOrID)
	if err != nil {
		return nil, err
	}
	return scanSubject(d.db.QueryRow(`SELECT `+subjectColumns+` FROM subjects WHERE id = ?`, id))
}

// ListSubjects returns all subjects ordered by name.
func (d *DB) ListSubjects() ([]*models.Subject, error) {
	rows, err := d.db.Query(`SELECT ` + subjectColumns + ` FROM subjects ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*models.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// DeleteSubject removes a subject and, by cascade, its measurements.
func (d *DB) DeleteSubject(idOrPrefix string) error {
	id, err := d.resolveID("subjects", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM subjects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

// resolveID finds the full ID in table from a prefix.
func (d *DB) resolveID(table, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	// table is always a package constant, never user input
	rows, err := d.db.Query(`SELECT id FROM `+table+` WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return matches[0], nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*models.Subject, error) {
	var s models.Subject
	var idStr, gender, profile, createdAt string
	var description sql.NullString

	err := row.Scan(&idStr, &s.Name, &gender, &profile, &description, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan subject: %w", err)
	}

	s.ID, _ = uuid.Parse(idStr)
	s.Gender = models.Gender(gender)
	s.ProteinProfile = models.ProteinProfile(profile)
	if err := s.Normalize(); err != nil {
		return nil, fmt.Errorf("scan subject %s: %w", s.Name, err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if description.Valid {
		s.Description = &description.String
	}
	return &s, nil
}
