// ABOUTME: Repository interface for body-composition data storage.
// ABOUTME: Defines contract for subjects and measurements CRUD operations.
package storage

import (
	"errors"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
)

// ErrNotFound is returned when a subject or measurement does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when a subject name is already taken.
// Names compare case-insensitively.
var ErrDuplicateName = errors.New("name already exists")

// Repository defines the storage interface for body-composition data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Subject operations
	CreateSubject(s *models.Subject) error
	// GetSubject resolves a subject by exact name (case-insensitive) or ID prefix.
	GetSubject(nameOrID string) (*models.Subject, error)
	ListSubjects() ([]*models.Subject, error)
	DeleteSubject(idOrPrefix string) error

	// Measurement operations
	// CreateMeasurement assigns WeekNumber = count+1 when it is zero.
	CreateMeasurement(m *models.Measurement) error
	GetMeasurement(idOrPrefix string) (*models.Measurement, error)
	// ListMeasurements returns measurements ordered by week number then date.
	// uuid.Nil lists every subject. A positive limit keeps the most recent ones.
	ListMeasurements(subjectID uuid.UUID, limit int) ([]*models.Measurement, error)
	CountMeasurements(subjectID uuid.UUID) (int, error)
	GetLatestMeasurement(subjectID uuid.UUID) (*models.Measurement, error)
	DeleteMeasurement(idOrPrefix string) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}
