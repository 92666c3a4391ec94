// ABOUTME: Assembles per-subject dashboards from storage and the scoring core.
// ABOUTME: Shared by the CLI, HTTP API, and MCP server so all three agree.
package report

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
)

// Card is the current picture of one subject.
type Card struct {
	Subject *models.Subject     `json:"subject"`
	Latest  *models.Measurement `json:"latest,omitempty"`
	// Evaluation scores the latest measurement; nil without measurements.
	Evaluation *scoring.Evaluation  `json:"evaluation,omitempty"`
	Protein    *scoring.Intake      `json:"protein,omitempty"`
	Guide      scoring.ProteinGuide `json:"protein_guide"`
}

// Source is the storage the report reads from.
type Source interface {
	GetSubject(nameOrID string) (*models.Subject, error)
	ListMeasurements(subjectID uuid.UUID, limit int) ([]*models.Measurement, error)
	GetLatestMeasurement(subjectID uuid.UUID) (*models.Measurement, error)
}

// BuildCard loads a subject and scores their latest measurement.
// A subject without measurements gets a card with no evaluation.
func BuildCard(src Source, subjectKey string, ev *scoring.Evaluator) (*Card, error) {
	s, err := src.GetSubject(subjectKey)
	if err != nil {
		return nil, err
	}

	card := &Card{Subject: s}
	card.Guide, _ = scoring.Guide(s.ProteinProfile)

	latest, err := src.GetLatestMeasurement(s.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return card, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest measurement: %w", err)
	}

	card.Latest = latest
	eval := ev.Evaluate(latest.Reading, s.Gender)
	card.Evaluation = &eval
	if latest.Reading.Weight != nil && *latest.Reading.Weight > 0 {
		intake := scoring.ProteinRange(*latest.Reading.Weight, s.ProteinProfile)
		card.Protein = &intake
	}
	return card, nil
}

// TrendPoint is one measurement with its overall score.
type TrendPoint struct {
	Measurement *models.Measurement  `json:"measurement"`
	Overall     scoring.OverallScore `json:"overall"`
}

// Trend scores every stored measurement of a subject, oldest first.
// A positive limit keeps only the most recent points.
func Trend(src Source, s *models.Subject, ev *scoring.Evaluator, limit int) ([]TrendPoint, error) {
	ms, err := src.ListMeasurements(s.ID, limit)
	if err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, len(ms))
	for _, m := range ms {
		points = append(points, TrendPoint{
			Measurement: m,
			Overall:     ev.Evaluate(m.Reading, s.Gender).Overall,
		})
	}
	return points, nil
}

// ProteinFor computes protein guidance for a subject. A zero weightKg
// falls back to the latest recorded weight.
func ProteinFor(src Source, s *models.Subject, weightKg float64) (scoring.Intake, float64, error) {
	if weightKg <= 0 {
		latest, err := src.GetLatestMeasurement(s.ID)
		if err != nil {
			return scoring.Intake{}, 0, fmt.Errorf("no weight given and %w", err)
		}
		if latest.Reading.Weight == nil || *latest.Reading.Weight <= 0 {
			return scoring.Intake{}, 0, fmt.Errorf("latest measurement has no weight")
		}
		weightKg = *latest.Reading.Weight
	}
	return scoring.ProteinRange(weightKg, s.ProteinProfile), weightKg, nil
}
