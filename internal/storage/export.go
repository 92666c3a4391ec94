// ABOUTME: Export and import functionality for body-composition data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats for any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format.
type ExportData struct {
	Version      string                `json:"version" yaml:"version"`
	ExportedAt   time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool         string                `json:"tool" yaml:"tool"`
	Subjects     []*models.Subject     `json:"subjects" yaml:"subjects"`
	Measurements []*models.Measurement `json:"measurements" yaml:"measurements"`
}

// reader is the read side of Repository used by exports.
type reader interface {
	ListSubjects() ([]*models.Subject, error)
	ListMeasurements(subjectID uuid.UUID, limit int) ([]*models.Measurement, error)
}

// writer is the write side of Repository used by imports.
type writer interface {
	CreateSubject(s *models.Subject) error
	CreateMeasurement(m *models.Measurement) error
}

// CollectData gathers every subject and measurement from r.
func CollectData(r reader) (*ExportData, error) {
	subjects, err := r.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	var measurements []*models.Measurement
	for _, s := range subjects {
		ms, err := r.ListMeasurements(s.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("list measurements for %s: %w", s.Name, err)
		}
		measurements = append(measurements, ms...)
	}

	return &ExportData{
		Version:      ExportVersion,
		ExportedAt:   time.Now(),
		Tool:         "bodycomp",
		Subjects:     subjects,
		Measurements: measurements,
	}, nil
}

// RestoreData writes subjects then measurements into w.
// Week numbers present in data are preserved. Subjects with an unknown
// gender or protein profile are rejected, and out-of-range reading values
// are dropped.
func RestoreData(w writer, data *ExportData) error {
	for _, s := range data.Subjects {
		if err := s.Normalize(); err != nil {
			return fmt.Errorf("import subject %s: %w", s.Name, err)
		}
		if err := w.CreateSubject(s); err != nil {
			return fmt.Errorf("import subject %s: %w", s.Name, err)
		}
	}
	for _, m := range data.Measurements {
		m.Reading = m.Reading.Sanitized()
		if err := w.CreateMeasurement(m); err != nil {
			return fmt.Errorf("import measurement %s: %w", m.ID.String()[:8], err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return CollectData(d)
}

// ImportData imports data from an export file.
func (d *DB) ImportData(data *ExportData) error {
	return RestoreData(d, data)
}

// ExportJSON exports all data in r as JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data in r as YAML, measurements grouped by subject name.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(data.Subjects))
	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Subjects:   make([]yamlSubject, 0, len(data.Subjects)),
	}
	index := make(map[uuid.UUID]int, len(data.Subjects))
	for _, s := range data.Subjects {
		names[s.ID] = s.Name
		index[s.ID] = len(out.Subjects)
		ys := yamlSubject{
			ID:             s.ID.String()[:8],
			Name:           s.Name,
			Gender:         string(s.Gender),
			ProteinProfile: string(s.ProteinProfile),
		}
		if s.Description != nil {
			ys.Description = *s.Description
		}
		out.Subjects = append(out.Subjects, ys)
	}

	for _, m := range data.Measurements {
		i, ok := index[m.SubjectID]
		if !ok {
			continue
		}
		ym := yamlMeasurement{
			ID:      m.ID.String()[:8],
			Week:    m.WeekNumber,
			Date:    m.MeasuredOn.Format(DateLayout),
			Dose:    m.Dose,
			Reading: m.Reading,
		}
		if m.Status != nil {
			ym.Status = *m.Status
		}
		out.Subjects[i].Measurements = append(out.Subjects[i].Measurements, ym)
	}

	return yaml.Marshal(out)
}

type yamlExport struct {
	Version    string        `yaml:"version"`
	ExportedAt string        `yaml:"exported_at"`
	Tool       string        `yaml:"tool"`
	Subjects   []yamlSubject `yaml:"subjects"`
}

type yamlSubject struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Gender         string            `yaml:"gender"`
	ProteinProfile string            `yaml:"protein_profile"`
	Description    string            `yaml:"description,omitempty"`
	Measurements   []yamlMeasurement `yaml:"measurements,omitempty"`
}

type yamlMeasurement struct {
	ID             string   `yaml:"id"`
	Week           int      `yaml:"week"`
	Date           string   `yaml:"date"`
	Dose           *float64 `yaml:"dose,omitempty"`
	Status         string   `yaml:"status,omitempty"`
	models.Reading `yaml:",inline"`
}

// markdownColumns are the reading fields shown in Markdown tables.
var markdownColumns = []models.Field{
	models.FieldWeight,
	models.FieldBMI,
	models.FieldBodyFatPercent,
	models.FieldMuscleRatePercent,
	models.FieldVisceralFat,
	models.FieldBodyWaterPercent,
	models.FieldProteinPercent,
}

// ExportMarkdown exports measurements as Markdown, one table per subject.
// A non-nil since drops measurements taken before it.
func ExportMarkdown(r Repository, subjectID uuid.UUID, since *time.Time) (string, error) {
	data, err := r.GetAllData()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Body Composition Export - %s\n\n", now.Format(DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, s := range data.Subjects {
		if subjectID != uuid.Nil && s.ID != subjectID {
			continue
		}

		sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", s.Name, s.Gender))
		sb.WriteString("| Week | Date |")
		for _, f := range markdownColumns {
			sb.WriteString(fmt.Sprintf(" %s |", f))
		}
		sb.WriteString("\n|------|------|")
		for range markdownColumns {
			sb.WriteString("------|")
		}
		sb.WriteString("\n")

		for _, m := range data.Measurements {
			if m.SubjectID != s.ID {
				continue
			}
			if since != nil && m.MeasuredOn.Before(*since) {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %d | %s |", m.WeekNumber, m.MeasuredOn.Format(DateLayout)))
			for _, f := range markdownColumns {
				if v := m.Reading.Get(f); v != nil {
					sb.WriteString(fmt.Sprintf(" %.1f |", *v))
				} else {
					sb.WriteString(" - |")
				}
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes into r.
func ImportJSON(r Repository, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return r.ImportData(&exportData)
}
