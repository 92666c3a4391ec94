// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Verifies subject and measurement CRUD, week numbering, and ordering.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
)

func TestCreateAndGetSubject(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewSubject("Reneer", models.GenderMale).WithDescription("week 1 start")
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	for _, key := range []string{"Reneer", "reneer", s.ID.String(), s.ID.String()[:8]} {
		got, err := db.GetSubject(key)
		if err != nil {
			t.Fatalf("GetSubject(%q) failed: %v", key, err)
		}
		if got.ID != s.ID {
			t.Errorf("GetSubject(%q) ID = %v, want %v", key, got.ID, s.ID)
		}
		if got.Gender != models.GenderMale {
			t.Errorf("Gender = %v, want male", got.Gender)
		}
		if got.ProteinProfile != models.ProteinActive {
			t.Errorf("ProteinProfile = %v, want active", got.ProteinProfile)
		}
		if got.Description == nil || *got.Description != "week 1 start" {
			t.Errorf("Description = %v, want 'week 1 start'", got.Description)
		}
	}
}

func TestGetSubjectNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSubject("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateSubjectName(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateSubject(models.NewSubject("Ana", models.GenderFemale)); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	err := db.CreateSubject(models.NewSubject("ana", models.GenderFemale))
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName for a name differing only in case, got %v", err)
	}

	// A repeated ID is not a name conflict.
	s := models.NewSubject("Bo", models.GenderMale)
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	s.Name = "Cy"
	if err := db.CreateSubject(s); err == nil || errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected a non-duplicate-name error for a repeated ID, got %v", err)
	}
}

func TestListSubjectsOrderedByName(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{"zoe", "Ana", "marco"} {
		if err := db.CreateSubject(models.NewSubject(name, models.GenderFemale)); err != nil {
			t.Fatalf("CreateSubject failed: %v", err)
		}
	}

	subjects, err := db.ListSubjects()
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	want := []string{"Ana", "marco", "zoe"}
	if len(subjects) != len(want) {
		t.Fatalf("expected %d subjects, got %d", len(want), len(subjects))
	}
	for i, s := range subjects {
		if s.Name != want[i] {
			t.Errorf("subjects[%d] = %s, want %s", i, s.Name, want[i])
		}
	}
}

func TestDeleteSubjectCascades(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSubject(t, db, "Reneer", models.GenderMale)

	m := models.NewMeasurement(s.ID, models.Reading{Weight: models.Float(90)})
	if err := db.CreateMeasurement(m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	if err := db.DeleteSubject(s.ID.String()[:8]); err != nil {
		t.Fatalf("DeleteSubject failed: %v", err)
	}

	if _, err := db.GetMeasurement(m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected measurement to be deleted with subject, got %v", err)
	}
}

func TestCreateAndGetMeasurement(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSubject(t, db, "Reneer", models.GenderMale)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m := models.NewMeasurement(s.ID, models.Reading{
		Weight:         models.Float(92.4),
		BodyFatPercent: models.Float(27.1),
		VisceralFat:    models.Float(12),
	}).WithDate(date).WithDose(2.5).WithStatus("mild nausea")

	if err := db.CreateMeasurement(m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	got, err := db.GetMeasurement(m.ID.String()[:8])
	if err != nil {
		t.Fatalf("GetMeasurement failed: %v", err)
	}

	if got.WeekNumber != 1 {
		t.Errorf("WeekNumber = %d, want 1", got.WeekNumber)
	}
	if !got.MeasuredOn.Equal(date) {
		t.Errorf("MeasuredOn = %v, want %v", got.MeasuredOn, date)
	}
	if got.Dose == nil || *got.Dose != 2.5 {
		t.Errorf("Dose = %v, want 2.5", got.Dose)
	}
	if got.Status == nil || *got.Status != "mild nausea" {
		t.Errorf("Status = %v, want 'mild nausea'", got.Status)
	}
	if got.Reading.Weight == nil || *got.Reading.Weight != 92.4 {
		t.Errorf("Weight = %v, want 92.4", got.Reading.Weight)
	}
	if got.Reading.VisceralFat == nil || *got.Reading.VisceralFat != 12 {
		t.Errorf("VisceralFat = %v, want 12", got.Reading.VisceralFat)
	}
	if got.Reading.BMI != nil {
		t.Errorf("BMI should be absent, got %v", *got.Reading.BMI)
	}
	if got.Reading.Count() != 3 {
		t.Errorf("Count = %d, want 3", got.Reading.Count())
	}
}

func TestWeekNumbering(t *testing.T) {
	db := setupTestDB(t)
	reneer := createTestSubject(t, db, "Reneer", models.GenderMale)
	ana := createTestSubject(t, db, "Ana", models.GenderFemale)

	for i := 0; i < 3; i++ {
		m := models.NewMeasurement(reneer.ID, models.Reading{Weight: models.Float(90 - float64(i))})
		if err := db.CreateMeasurement(m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
		if m.WeekNumber != i+1 {
			t.Errorf("measurement %d got week %d, want %d", i, m.WeekNumber, i+1)
		}
	}

	// Week numbers count per subject.
	m := models.NewMeasurement(ana.ID, models.Reading{Weight: models.Float(70)})
	if err := db.CreateMeasurement(m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
	if m.WeekNumber != 1 {
		t.Errorf("first measurement for Ana got week %d, want 1", m.WeekNumber)
	}

	// Explicit week numbers are kept.
	explicit := models.NewMeasurement(ana.ID, models.Reading{}).WithWeek(7)
	if err := db.CreateMeasurement(explicit); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
	if explicit.WeekNumber != 7 {
		t.Errorf("explicit week changed to %d", explicit.WeekNumber)
	}
}

func TestListMeasurementsOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSubject(t, db, "Reneer", models.GenderMale)

	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	// Insert out of order with explicit weeks.
	for _, week := range []int{3, 1, 4, 2} {
		m := models.NewMeasurement(s.ID, models.Reading{Weight: models.Float(100 - float64(week))}).
			WithWeek(week).
			WithDate(base.AddDate(0, 0, 7*(week-1)))
		if err := db.CreateMeasurement(m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	all, err := db.ListMeasurements(s.ID, 0)
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 measurements, got %d", len(all))
	}
	for i, m := range all {
		if m.WeekNumber != i+1 {
			t.Errorf("all[%d].WeekNumber = %d, want %d", i, m.WeekNumber, i+1)
		}
	}

	recent, err := db.ListMeasurements(s.ID, 2)
	if err != nil {
		t.Fatalf("ListMeasurements with limit failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(recent))
	}
	if recent[0].WeekNumber != 3 || recent[1].WeekNumber != 4 {
		t.Errorf("expected weeks [3 4], got [%d %d]", recent[0].WeekNumber, recent[1].WeekNumber)
	}

	latest, err := db.GetLatestMeasurement(s.ID)
	if err != nil {
		t.Fatalf("GetLatestMeasurement failed: %v", err)
	}
	if latest.WeekNumber != 4 {
		t.Errorf("latest week = %d, want 4", latest.WeekNumber)
	}

	count, err := db.CountMeasurements(s.ID)
	if err != nil {
		t.Fatalf("CountMeasurements failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestListMeasurementsAllSubjects(t *testing.T) {
	db := setupTestDB(t)
	a := createTestSubject(t, db, "A", models.GenderMale)
	b := createTestSubject(t, db, "B", models.GenderFemale)

	for _, id := range []uuid.UUID{a.ID, b.ID, b.ID} {
		if err := db.CreateMeasurement(models.NewMeasurement(id, models.Reading{})); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}

	all, err := db.ListMeasurements(uuid.Nil, 0)
	if err != nil {
		t.Fatalf("ListMeasurements failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 measurements, got %d", len(all))
	}
}

func TestGetLatestMeasurementEmpty(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSubject(t, db, "Reneer", models.GenderMale)

	_, err := db.GetLatestMeasurement(s.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMeasurement(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSubject(t, db, "Reneer", models.GenderMale)

	m := models.NewMeasurement(s.ID, models.Reading{Weight: models.Float(88)})
	if err := db.CreateMeasurement(m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	if err := db.DeleteMeasurement(m.ID.String()[:8]); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}

	if _, err := db.GetMeasurement(m.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := db.DeleteMeasurement("deadbeef"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting missing id, got %v", err)
	}
}

func TestResolveIDEmptyPrefix(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.resolveID("measurements", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty prefix, got %v", err)
	}
}

func TestDBPermissions(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "bodycomp.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	// Force a write so the file exists
	if err := db.CreateSubject(models.NewSubject("x", models.GenderMale)); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	dbPath := PathIn(t.TempDir())

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if v, err := db.schemaVersion(); err != nil || v != schemaVersion {
		t.Fatalf("schemaVersion() = %d, %v; want %d", v, err, schemaVersion)
	}
	if _, err := db.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	db.Close()

	if _, err := Open(dbPath); err == nil {
		t.Error("expected Open to refuse a newer schema")
	}
}

func TestGetSubjectRejectsUnknownStoredGender(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.db.Exec(`INSERT INTO subjects (`+subjectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), "Dee", "robot", "active", nil, time.Now().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert raw subject: %v", err)
	}

	if _, err := db.GetSubject("dee"); err == nil {
		t.Error("expected GetSubject to reject an unknown gender")
	}
	if _, err := db.ListSubjects(); err == nil {
		t.Error("expected ListSubjects to reject an unknown gender")
	}
}

func TestCreateSubjectNormalizesEnums(t *testing.T) {
	db := setupTestDB(t)

	s := &models.Subject{ID: uuid.New(), Name: "Eve", Gender: "F", CreatedAt: time.Now()}
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	got, err := db.GetSubject("eve")
	if err != nil {
		t.Fatalf("GetSubject failed: %v", err)
	}
	if got.Gender != models.GenderFemale || got.ProteinProfile != models.ProteinSedentary {
		t.Errorf("got gender=%q profile=%q, want female/sedentary", got.Gender, got.ProteinProfile)
	}

	bad := &models.Subject{ID: uuid.New(), Name: "Fay", Gender: "robot", CreatedAt: time.Now()}
	if err := db.CreateSubject(bad); err == nil {
		t.Error("expected CreateSubject to reject an unknown gender")
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bodycomp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "bodycomp.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestSubject(t *testing.T, db *DB, name string, g models.Gender) *models.Subject {
	t.Helper()

	s := models.NewSubject(name, g)
	if err := db.CreateSubject(s); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	return s
}
