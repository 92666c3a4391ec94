// ABOUTME: Measurement CRUD operations for Charm KV storage.
// ABOUTME: Uses type-prefixed keys and client-side filtering and ordering.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/storage"
)

// CreateMeasurement stores a new measurement in the KV store.
// A zero WeekNumber becomes the subject's measurement count plus one.
func (c *Client) CreateMeasurement(m *models.Measurement) error {
	if m.WeekNumber <= 0 {
		count, err := c.CountMeasurements(m.SubjectID)
		if err != nil {
			return fmt.Errorf("create measurement: %w", err)
		}
		m.WeekNumber = count + 1
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal measurement: %w", err)
	}
	return c.set(MeasurementPrefix+m.ID.String(), data)
}

// GetMeasurement retrieves a measurement by ID or ID prefix.
func (c *Client) GetMeasurement(idOrPrefix string) (*models.Measurement, error) {
	data, err := c.getByIDPrefix(MeasurementPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get measurement: %w", err)
	}

	m, err := unmarshalJSON[models.Measurement](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal measurement: %w", err)
	}
	return m, nil
}

// ListMeasurements retrieves measurements ordered by week then date.
// uuid.Nil lists every subject; a positive limit keeps the most recent.
func (c *Client) ListMeasurements(subjectID uuid.UUID, limit int) ([]*models.Measurement, error) {
	allData, err := c.listByPrefix(MeasurementPrefix)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}

	var measurements []*models.Measurement
	for _, data := range allData {
		m, err := unmarshalJSON[models.Measurement](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if subjectID != uuid.Nil && m.SubjectID != subjectID {
			continue
		}
		measurements = append(measurements, m)
	}

	sortMeasurements(measurements)
	return mostRecent(measurements, limit), nil
}

// CountMeasurements returns how many measurements a subject has.
func (c *Client) CountMeasurements(subjectID uuid.UUID) (int, error) {
	ms, err := c.ListMeasurements(subjectID, 0)
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

// GetLatestMeasurement returns the subject's highest-week measurement.
func (c *Client) GetLatestMeasurement(subjectID uuid.UUID) (*models.Measurement, error) {
	ms, err := c.ListMeasurements(subjectID, 1)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: no measurements for subject %s", storage.ErrNotFound, subjectID.String()[:8])
	}
	return ms[0], nil
}

// DeleteMeasurement removes a measurement by ID or prefix.
func (c *Client) DeleteMeasurement(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(MeasurementPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return nil
}

// sortMeasurements orders by week number, then date, then creation time.
func sortMeasurements(ms []*models.Measurement) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.WeekNumber != b.WeekNumber {
			return a.WeekNumber < b.WeekNumber
		}
		if !a.MeasuredOn.Equal(b.MeasuredOn) {
			return a.MeasuredOn.Before(b.MeasuredOn)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// mostRecent keeps the last limit entries of an ordered slice.
func mostRecent(ms []*models.Measurement, limit int) []*models.Measurement {
	if limit > 0 && len(ms) > limit {
		return ms[len(ms)-limit:]
	}
	return ms
}
