// ABOUTME: Tests for subject cards, trends, and protein lookups.
// ABOUTME: Runs against a temporary SQLite database.
package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
)

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "bodycomp.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func idealReading(weight float64) models.Reading {
	return models.Reading{
		Weight:            models.Float(weight),
		BMI:               models.Float(22),
		BodyFatPercent:    models.Float(15),
		MuscleRatePercent: models.Float(35),
		VisceralFat:       models.Float(5),
		BodyWaterPercent:  models.Float(55),
		ProteinPercent:    models.Float(18),
	}
}

func TestBuildCard(t *testing.T) {
	db := setupTestDB(t)
	s := models.NewSubject("Reneer", models.GenderMale)
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	// No measurements yet.
	card, err := BuildCard(db, "reneer", scoring.NewEvaluator(scoring.WorstCase))
	if err != nil {
		t.Fatalf("BuildCard failed: %v", err)
	}
	if card.Evaluation != nil || card.Latest != nil || card.Protein != nil {
		t.Errorf("expected empty card, got %+v", card)
	}
	if card.Guide.MinPerKg != 1.5 {
		t.Errorf("Guide.MinPerKg = %v, want 1.5", card.Guide.MinPerKg)
	}

	if err := db.CreateMeasurement(models.NewMeasurement(s.ID, idealReading(70))); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	card, err = BuildCard(db, s.ID.String()[:8], scoring.NewEvaluator(scoring.WorstCase))
	if err != nil {
		t.Fatalf("BuildCard failed: %v", err)
	}
	if card.Evaluation == nil || card.Evaluation.Overall.Score != 100 {
		t.Fatalf("expected perfect score, got %+v", card.Evaluation)
	}
	if card.Evaluation.Overall.Tier != scoring.TierHealthy {
		t.Errorf("Tier = %v, want healthy", card.Evaluation.Overall.Tier)
	}
	want := scoring.Intake{Min: 105, Max: 140, Recommended: 123}
	if card.Protein == nil || *card.Protein != want {
		t.Errorf("Protein = %+v, want %+v", card.Protein, want)
	}
}

func TestBuildCardUnknownSubject(t *testing.T) {
	db := setupTestDB(t)
	_, err := BuildCard(db, "nobody", scoring.NewEvaluator(""))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTrend(t *testing.T) {
	db := setupTestDB(t)
	s := models.NewSubject("Ana", models.GenderFemale)
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	readings := []models.Reading{
		{},
		{BMI: models.Float(22)},
	}
	for _, r := range readings {
		if err := db.CreateMeasurement(models.NewMeasurement(s.ID, r)); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	points, err := Trend(db, s, scoring.NewEvaluator(scoring.WorstCase), 0)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Overall.Score != 0 {
		t.Errorf("empty reading should score 0, got %d", points[0].Overall.Score)
	}
	// One of six axes at 100 under worst case: round(100/6) = 17.
	if points[1].Overall.Score != 17 {
		t.Errorf("score = %d, want 17", points[1].Overall.Score)
	}

	points, err = Trend(db, s, scoring.NewEvaluator(scoring.Exclude), 0)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if points[1].Overall.Score != 100 {
		t.Errorf("exclude policy score = %d, want 100", points[1].Overall.Score)
	}
}

func TestProteinFor(t *testing.T) {
	db := setupTestDB(t)
	s := models.NewSubject("Ana", models.GenderFemale)
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	if _, _, err := ProteinFor(db, s, 0); err == nil {
		t.Error("expected error without weight or measurements")
	}

	intake, w, err := ProteinFor(db, s, 60)
	if err != nil {
		t.Fatalf("ProteinFor failed: %v", err)
	}
	if w != 60 || intake != (scoring.Intake{Min: 72, Max: 90, Recommended: 81}) {
		t.Errorf("ProteinFor(60) = %+v at %v", intake, w)
	}

	if err := db.CreateMeasurement(models.NewMeasurement(s.ID, models.Reading{Weight: models.Float(60)})); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
	intake, w, err = ProteinFor(db, s, 0)
	if err != nil {
		t.Fatalf("ProteinFor from latest failed: %v", err)
	}
	if w != 60 || intake.Recommended != 81 {
		t.Errorf("ProteinFor(latest) = %+v at %v", intake, w)
	}
}

func TestBuildCardAfterImportWithLooseEnums(t *testing.T) {
	db := setupTestDB(t)
	data := []byte(`{"version": "1.0", "subjects": [{"id": "8f0c2f4e-0d7a-4f1e-9a55-0d2f6b1a7c11", "name": "Ana",
		"gender": "Female", "protein_profile": "", "created_at": "2025-01-06T00:00:00Z"}],
		"measurements": [{"id": "1b7e5c2a-3f4d-4e8a-b6c9-2a1d0e9f8b77", "subject_id": "8f0c2f4e-0d7a-4f1e-9a55-0d2f6b1a7c11",
		"week_number": 1, "measurement_date": "2025-01-06T00:00:00Z", "created_at": "2025-01-06T00:00:00Z",
		"reading": {"weight": 64, "bmi": 23, "body_fat_percent": 26}}]}`)
	if err := storage.ImportJSON(db, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	card, err := BuildCard(db, "Ana", scoring.NewEvaluator(scoring.WorstCase))
	if err != nil {
		t.Fatalf("BuildCard failed: %v", err)
	}
	if card.Subject.Gender != models.GenderFemale {
		t.Errorf("Gender = %q, want female", card.Subject.Gender)
	}
	if card.Subject.ProteinProfile != models.ProteinSedentary {
		t.Errorf("ProteinProfile = %q, want sedentary", card.Subject.ProteinProfile)
	}
	if card.Evaluation == nil || card.Protein == nil {
		t.Fatal("expected evaluation and protein range on the card")
	}
	if card.Protein.Min <= 0 || card.Protein.Max < card.Protein.Min {
		t.Errorf("unexpected protein range: %+v", *card.Protein)
	}
}

