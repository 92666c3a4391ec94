// ABOUTME: Tests for Measurement model and Field enum.
// ABOUTME: Validates field units, reading get/set/merge, and constructor.
package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestFieldUnits(t *testing.T) {
	tests := []struct {
		field    Field
		wantUnit string
	}{
		{FieldWeight, "kg"},
		{FieldBodyFatPercent, "%"},
		{FieldVisceralFat, "level"},
		{FieldBMR, "kcal"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got := FieldUnits[tt.field]
			if got != tt.wantUnit {
				t.Errorf("FieldUnits[%s] = %s, want %s", tt.field, got, tt.wantUnit)
			}
		})
	}
}

func TestAllFieldsHaveUnits(t *testing.T) {
	for _, f := range AllFields {
		if _, ok := FieldUnits[f]; !ok {
			t.Errorf("Field %s has no unit defined", f)
		}
	}
}

func TestIsValidField(t *testing.T) {
	if !IsValidField("body_water_percent") {
		t.Error("expected body_water_percent to be valid")
	}
	if IsValidField("heart_rate") {
		t.Error("expected heart_rate to be invalid")
	}
}

func TestReadingGetSet(t *testing.T) {
	var r Reading
	for _, f := range AllFields {
		if r.Get(f) != nil {
			t.Fatalf("expected %s to start absent", f)
		}
		r.Set(f, Float(1.5))
		got := r.Get(f)
		if got == nil || *got != 1.5 {
			t.Errorf("Get(%s) = %v, want 1.5", f, got)
		}
	}
	if r.Count() != len(AllFields) {
		t.Errorf("Count() = %d, want %d", r.Count(), len(AllFields))
	}

	r.Set(FieldWeight, nil)
	if r.Weight != nil {
		t.Error("expected Set(nil) to clear weight")
	}
}

func TestReadingGetReturnsCopy(t *testing.T) {
	r := Reading{Weight: Float(80)}
	v := r.Get(FieldWeight)
	*v = 10
	if *r.Weight != 80 {
		t.Errorf("mutating Get result changed reading: %v", *r.Weight)
	}
}

func TestReadingUnknownField(t *testing.T) {
	var r Reading
	r.Set(Field("nope"), Float(1))
	if r.Get(Field("nope")) != nil {
		t.Error("expected unknown field to be ignored")
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestReadingMerge(t *testing.T) {
	draft := Reading{Weight: Float(82), BMI: Float(27.1)}
	extracted := Reading{BMI: Float(27.4), VisceralFat: Float(11)}

	got := draft.Merge(extracted)

	if got.Weight == nil || *got.Weight != 82 {
		t.Errorf("weight = %v, want kept 82", got.Weight)
	}
	if got.BMI == nil || *got.BMI != 27.4 {
		t.Errorf("bmi = %v, want overridden 27.4", got.BMI)
	}
	if got.VisceralFat == nil || *got.VisceralFat != 11 {
		t.Errorf("visceral_fat = %v, want 11", got.VisceralFat)
	}
	if *draft.BMI != 27.1 {
		t.Error("Merge mutated the receiver")
	}
}

func TestNewMeasurement(t *testing.T) {
	subjectID := uuid.New()
	m := NewMeasurement(subjectID, Reading{Weight: Float(70)}).
		WithWeek(3).
		WithDose(2.5).
		WithStatus("maintenance")

	if m.ID == uuid.Nil {
		t.Error("expected UUID to be set")
	}
	if m.SubjectID != subjectID {
		t.Errorf("SubjectID = %v, want %v", m.SubjectID, subjectID)
	}
	if m.WeekNumber != 3 {
		t.Errorf("WeekNumber = %d, want 3", m.WeekNumber)
	}
	if m.Dose == nil || *m.Dose != 2.5 {
		t.Errorf("Dose = %v, want 2.5", m.Dose)
	}
	if m.Status == nil || *m.Status != "maintenance" {
		t.Errorf("Status = %v, want maintenance", m.Status)
	}
	if m.MeasuredOn.IsZero() {
		t.Error("expected MeasuredOn to be set")
	}
}

func TestReadingFromValues(t *testing.T) {
	r, err := ReadingFromValues(map[string]float64{"weight": 82.5, "visceral_fat": 9})
	if err != nil {
		t.Fatalf("ReadingFromValues failed: %v", err)
	}
	if r.Count() != 2 || *r.Weight != 82.5 || *r.VisceralFat != 9 {
		t.Errorf("unexpected reading: %+v", r.Values())
	}

	values := r.Values()
	if len(values) != 2 || values["weight"] != 82.5 {
		t.Errorf("Values() = %v", values)
	}

	if _, err := ReadingFromValues(map[string]float64{"height": 180}); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestReadingSanitized(t *testing.T) {
	r := Reading{
		Weight:           Float(80),
		BMI:              Float(math.NaN()),
		BodyFatPercent:   Float(101),
		VisceralFat:      Float(-1),
		BMR:              Float(math.Inf(1)),
		BodyWaterPercent: Float(100),
	}.Sanitized()

	if r.Weight == nil || *r.Weight != 80 {
		t.Errorf("Weight = %v, want 80", r.Weight)
	}
	if r.BodyWaterPercent == nil || *r.BodyWaterPercent != 100 {
		t.Errorf("BodyWaterPercent = %v, want 100", r.BodyWaterPercent)
	}
	for _, f := range []Field{FieldBMI, FieldBodyFatPercent, FieldVisceralFat, FieldBMR} {
		if v := r.Get(f); v != nil {
			t.Errorf("%s = %v, want dropped", f, *v)
		}
	}
}
