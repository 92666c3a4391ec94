// ABOUTME: Unit tests for Charm-based subject and measurement storage.
// ABOUTME: Covers key layout, prefix resolution, and client-side ordering.
package charm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/storage"
)

func TestKeyPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		expected string
	}{
		{"Subject", SubjectPrefix, "subject:"},
		{"Measurement", MeasurementPrefix, "measurement:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prefix != tt.expected {
				t.Errorf("Expected %s = %q, got %q", tt.name, tt.expected, tt.prefix)
			}
		})
	}

	// A subject key must never be mistaken for a measurement key.
	if strings.HasPrefix(MeasurementPrefix, SubjectPrefix) || strings.HasPrefix(SubjectPrefix, MeasurementPrefix) {
		t.Error("prefixes overlap")
	}
}

func TestSingle(t *testing.T) {
	_, err := single(nil, "abc")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := single([]entry{{key: "subject:abc"}}, "abc")
	if err != nil || got.key != "subject:abc" {
		t.Errorf("single match: got %v, %v", got, err)
	}

	_, err = single([]entry{{key: "a"}, {key: "b"}}, "abc")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
}

func TestDecodeSubject(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantGender  models.Gender
		wantProfile models.ProteinProfile
		wantErr     bool
	}{
		{"canonical", `{"name":"Reneer","gender":"male","protein_profile":"active"}`, models.GenderMale, models.ProteinActive, false},
		{"loose enums from another device", `{"name":"Ana","gender":"Female","protein_profile":""}`, models.GenderFemale, models.ProteinSedentary, false},
		{"unknown gender", `{"name":"Bo","gender":"robot","protein_profile":"active"}`, "", "", true},
		{"unknown profile", `{"name":"Cy","gender":"male","protein_profile":"bulk"}`, "", "", true},
		{"not json", `{`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := decodeSubject([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Errorf("decodeSubject(%s) expected error", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeSubject(%s) unexpected error: %v", tt.data, err)
			}
			if s.Gender != tt.wantGender || s.ProteinProfile != tt.wantProfile {
				t.Errorf("got %q/%q, want %q/%q", s.Gender, s.ProteinProfile, tt.wantGender, tt.wantProfile)
			}
		})
	}
}

func TestFindByName(t *testing.T) {
	subjects := []*models.Subject{
		models.NewSubject("Reneer", models.GenderMale),
		models.NewSubject("Ana Paula", models.GenderFemale),
	}

	if s := findByName(subjects, "ana paula"); s == nil || s.Name != "Ana Paula" {
		t.Errorf("case-insensitive lookup failed: %v", s)
	}
	if s := findByName(subjects, "nobody"); s != nil {
		t.Errorf("expected nil, got %v", s)
	}
}

func TestSortSubjects(t *testing.T) {
	subjects := []*models.Subject{
		models.NewSubject("zoe", models.GenderFemale),
		models.NewSubject("Ana", models.GenderFemale),
		models.NewSubject("marco", models.GenderMale),
	}
	sortSubjects(subjects)

	want := []string{"Ana", "marco", "zoe"}
	for i, s := range subjects {
		if s.Name != want[i] {
			t.Errorf("subjects[%d] = %s, want %s", i, s.Name, want[i])
		}
	}
}

func TestSortMeasurementsAndLimit(t *testing.T) {
	id := uuid.New()
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	var ms []*models.Measurement
	for _, week := range []int{3, 1, 4, 2} {
		ms = append(ms, models.NewMeasurement(id, models.Reading{}).
			WithWeek(week).
			WithDate(base.AddDate(0, 0, 7*week)))
	}
	// Same week, earlier date sorts first.
	ms = append(ms, models.NewMeasurement(id, models.Reading{}).WithWeek(2).WithDate(base))

	sortMeasurements(ms)

	wantWeeks := []int{1, 2, 2, 3, 4}
	for i, m := range ms {
		if m.WeekNumber != wantWeeks[i] {
			t.Errorf("ms[%d].WeekNumber = %d, want %d", i, m.WeekNumber, wantWeeks[i])
		}
	}
	if !ms[1].MeasuredOn.Equal(base) {
		t.Errorf("expected earlier date first within week 2, got %v", ms[1].MeasuredOn)
	}

	recent := mostRecent(ms, 2)
	if len(recent) != 2 || recent[0].WeekNumber != 3 || recent[1].WeekNumber != 4 {
		t.Errorf("mostRecent(2) = weeks %d,%d", recent[0].WeekNumber, recent[1].WeekNumber)
	}
	if len(mostRecent(ms, 0)) != 5 {
		t.Error("limit 0 should keep everything")
	}
	if len(mostRecent(ms, 10)) != 5 {
		t.Error("limit above length should keep everything")
	}
}
