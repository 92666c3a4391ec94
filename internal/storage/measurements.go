// ABOUTME: Measurement CRUD operations for SQLite storage.
// ABOUTME: Orders by week number then date; assigns week numbers on insert.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
)

// DateLayout is the storage format of measurement dates.
const DateLayout = "2006-01-02"

var measurementColumns = `id, subject_id, week_number, measured_on, dose, status, ` +
	strings.Join(readingColumns, ", ") + `, created_at`

// CreateMeasurement stores a new measurement. A zero WeekNumber becomes
// the subject's measurement count plus one.
func (d *DB) CreateMeasurement(m *models.Measurement) error {
	if m.WeekNumber <= 0 {
		count, err := d.CountMeasurements(m.SubjectID)
		if err != nil {
			return fmt.Errorf("create measurement: %w", err)
		}
		m.WeekNumber = count + 1
	}

	args := []any{
		m.ID.String(),
		m.SubjectID.String(),
		m.WeekNumber,
		m.MeasuredOn.Format(DateLayout),
		m.Dose,
		m.Status,
	}
	for _, f := range models.AllFields {
		args = append(args, m.Reading.Get(f))
	}
	args = append(args, m.CreatedAt.Format(time.RFC3339))

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := `INSERT INTO measurements (` + measurementColumns + `) VALUES (` + placeholders + `)`
	if _, err := d.db.Exec(query, args...); err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID or ID prefix.
func (d *DB) GetMeasurement(idOrPrefix string) (*models.Measurement, error) {
	id, err := d.resolveID("measurements", idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := d.db.QueryRow(`SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id)
	return scanMeasurement(row)
}

// ListMeasurements retrieves measurements, optionally for one subject.
func (d *DB) ListMeasurements(subjectID uuid.UUID, limit int) ([]*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM measurements`
	var args []any

	if subjectID != uuid.Nil {
		query += ` WHERE subject_id = ?`
		args = append(args, subjectID.String())
	}
	// Newest first so LIMIT keeps the most recent rows; reversed below.
	query += ` ORDER BY week_number DESC, measured_on DESC, created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var out []*models.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountMeasurements returns how many measurements a subject has.
func (d *DB) CountMeasurements(subjectID uuid.UUID) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM measurements WHERE subject_id = ?`, subjectID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}

// GetLatestMeasurement returns the subject's highest-week measurement.
func (d *DB) GetLatestMeasurement(subjectID uuid.UUID) (*models.Measurement, error) {
	ms, err := d.ListMeasurements(subjectID, 1)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: no measurements for subject %s", ErrNotFound, subjectID.String()[:8])
	}
	return ms[0], nil
}

// DeleteMeasurement removes a measurement by ID or prefix.
func (d *DB) DeleteMeasurement(idOrPrefix string) error {
	id, err := d.resolveID("measurements", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM measurements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

func scanMeasurement(row rowScanner) (*models.Measurement, error) {
	var m models.Measurement
	var idStr, subjectStr, measuredOn, createdAt string
	var dose sql.NullFloat64
	var status sql.NullString
	values := make([]sql.NullFloat64, len(models.AllFields))

	dest := []any{&idStr, &subjectStr, &m.WeekNumber, &measuredOn, &dose, &status}
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &createdAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan measurement: %w", err)
	}

	m.ID, _ = uuid.Parse(idStr)
	m.SubjectID, _ = uuid.Parse(subjectStr)
	m.MeasuredOn, _ = time.Parse(DateLayout, measuredOn)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if dose.Valid {
		m.Dose = &dose.Float64
	}
	if status.Valid {
		m.Status = &status.String
	}
	for i, f := range models.AllFields {
		if values[i].Valid {
			m.Reading.Set(f, &values[i].Float64)
		}
	}
	return &m, nil
}
