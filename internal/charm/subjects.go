// ABOUTME: Subject CRUD operations for Charm KV storage.
// ABOUTME: Enforces case-insensitive unique names client-side.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/storage"
)

// CreateSubject stores a new subject in the KV store.
func (c *Client) CreateSubject(s *models.Subject) error {
	if err := s.Normalize(); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	existing, err := c.ListSubjects()
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	if findByName(existing, s.Name) != nil {
		return fmt.Errorf("create subject %q: %w", s.Name, storage.ErrDuplicateName)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal subject: %w", err)
	}
	return c.set(SubjectPrefix+s.ID.String(), data)
}

// GetSubject retrieves a subject by exact name or ID prefix.
func (c *Client) GetSubject(nameOrID string) (*models.Subject, error) {
	subjects, err := c.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	if s := findByName(subjects, nameOrID); s != nil {
		return s, nil
	}

	data, err := c.getByIDPrefix(SubjectPrefix, nameOrID)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	s, err := decodeSubject(data)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return s, nil
}

// ListSubjects returns all subjects ordered by name.
func (c *Client) ListSubjects() ([]*models.Subject, error) {
	allData, err := c.listByPrefix(SubjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	var subjects []*models.Subject
	for _, data := range allData {
		s, err := decodeSubject(data)
		if err != nil {
			continue // Skip invalid entries
		}
		subjects = append(subjects, s)
	}
	sortSubjects(subjects)
	return subjects, nil
}

// DeleteSubject removes a subject together with its measurements.
func (c *Client) DeleteSubject(idOrPrefix string) error {
	e, err := c.resolve(SubjectPrefix, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	s, err := unmarshalJSON[models.Subject](e.value)
	if err != nil {
		return fmt.Errorf("unmarshal subject: %w", err)
	}

	measurements, err := c.ListMeasurements(s.ID, 0)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	keys := []string{e.key}
	for _, m := range measurements {
		keys = append(keys, MeasurementPrefix+m.ID.String())
	}
	return c.deleteKeys(keys...)
}

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	return storage.CollectData(c)
}

// ImportData imports data from an export file.
func (c *Client) ImportData(data *storage.ExportData) error {
	return storage.RestoreData(c, data)
}

// decodeSubject unmarshals a stored subject and rejects enum values the
// scoring code cannot use. Records may come from another device.
func decodeSubject(data []byte) (*models.Subject, error) {
	s, err := unmarshalJSON[models.Subject](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal subject: %w", err)
	}
	if err := s.Normalize(); err != nil {
		return nil, fmt.Errorf("subject %s: %w", s.Name, err)
	}
	return s, nil
}

func findByName(subjects []*models.Subject, name string) *models.Subject {
	for _, s := range subjects {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

func sortSubjects(subjects []*models.Subject) {
	sort.Slice(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
}
