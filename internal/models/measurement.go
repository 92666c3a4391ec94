// ABOUTME: Measurement model and Field enum for bioimpedance readings.
// ABOUTME: Every reading field is optional; absent means not measured.
package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Field names one numeric field of a bioimpedance report.
type Field string

const (
	// Core body composition
	FieldWeight            Field = "weight"
	FieldBMI               Field = "bmi"
	FieldBodyFatPercent    Field = "body_fat_percent"
	FieldMuscleRatePercent Field = "muscle_rate_percent"
	FieldVisceralFat       Field = "visceral_fat"
	FieldBodyWaterPercent  Field = "body_water_percent"
	FieldProteinPercent    Field = "protein_percent"
	FieldBoneMass          Field = "bone_mass"
	FieldBMR               Field = "bmr"

	// Extended report fields
	FieldFatMass                Field = "fat_mass"
	FieldLeanMass               Field = "lean_mass"
	FieldMuscleMass             Field = "muscle_mass"
	FieldSkeletalMusclePercent  Field = "skeletal_muscle_percent"
	FieldProteinMass            Field = "protein_mass"
	FieldMoistureContent        Field = "moisture_content"
	FieldSubcutaneousFatPercent Field = "subcutaneous_fat_percent"
	FieldMetabolicAge           Field = "metabolic_age"
	FieldWHR                    Field = "whr"
)

// AllFields returns every reading field in report order.
var AllFields = []Field{
	FieldWeight, FieldBMI, FieldBodyFatPercent, FieldFatMass, FieldLeanMass,
	FieldMuscleMass, FieldMuscleRatePercent, FieldSkeletalMusclePercent,
	FieldBoneMass, FieldProteinMass, FieldProteinPercent, FieldBodyWaterPercent,
	FieldMoistureContent, FieldSubcutaneousFatPercent, FieldVisceralFat,
	FieldBMR, FieldMetabolicAge, FieldWHR,
}

// FieldUnits maps fields to their display units.
var FieldUnits = map[Field]string{
	FieldWeight:                 "kg",
	FieldBMI:                    "kg/m²",
	FieldBodyFatPercent:         "%",
	FieldFatMass:                "kg",
	FieldLeanMass:               "kg",
	FieldMuscleMass:             "kg",
	FieldMuscleRatePercent:      "%",
	FieldSkeletalMusclePercent:  "%",
	FieldBoneMass:               "kg",
	FieldProteinMass:            "kg",
	FieldProteinPercent:         "%",
	FieldBodyWaterPercent:       "%",
	FieldMoistureContent:        "kg",
	FieldSubcutaneousFatPercent: "%",
	FieldVisceralFat:            "level",
	FieldBMR:                    "kcal",
	FieldMetabolicAge:           "years",
	FieldWHR:                    "ratio",
}

// IsValidField checks if a string names a reading field.
func IsValidField(s string) bool {
	for _, f := range AllFields {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Reading is a snapshot of report values. Nil means not measured.
type Reading struct {
	Weight                 *float64 `json:"weight" yaml:"weight,omitempty"`
	BMI                    *float64 `json:"bmi" yaml:"bmi,omitempty"`
	BodyFatPercent         *float64 `json:"body_fat_percent" yaml:"body_fat_percent,omitempty"`
	FatMass                *float64 `json:"fat_mass" yaml:"fat_mass,omitempty"`
	LeanMass               *float64 `json:"lean_mass" yaml:"lean_mass,omitempty"`
	MuscleMass             *float64 `json:"muscle_mass" yaml:"muscle_mass,omitempty"`
	MuscleRatePercent      *float64 `json:"muscle_rate_percent" yaml:"muscle_rate_percent,omitempty"`
	SkeletalMusclePercent  *float64 `json:"skeletal_muscle_percent" yaml:"skeletal_muscle_percent,omitempty"`
	BoneMass               *float64 `json:"bone_mass" yaml:"bone_mass,omitempty"`
	ProteinMass            *float64 `json:"protein_mass" yaml:"protein_mass,omitempty"`
	ProteinPercent         *float64 `json:"protein_percent" yaml:"protein_percent,omitempty"`
	BodyWaterPercent       *float64 `json:"body_water_percent" yaml:"body_water_percent,omitempty"`
	MoistureContent        *float64 `json:"moisture_content" yaml:"moisture_content,omitempty"`
	SubcutaneousFatPercent *float64 `json:"subcutaneous_fat_percent" yaml:"subcutaneous_fat_percent,omitempty"`
	VisceralFat            *float64 `json:"visceral_fat" yaml:"visceral_fat,omitempty"`
	BMR                    *float64 `json:"bmr" yaml:"bmr,omitempty"`
	MetabolicAge           *float64 `json:"metabolic_age" yaml:"metabolic_age,omitempty"`
	WHR                    *float64 `json:"whr" yaml:"whr,omitempty"`
}

// slot returns the address of the pointer backing a field.
func (r *Reading) slot(f Field) **float64 {
	switch f {
	case FieldWeight:
		return &r.Weight
	case FieldBMI:
		return &r.BMI
	case FieldBodyFatPercent:
		return &r.BodyFatPercent
	case FieldFatMass:
		return &r.FatMass
	case FieldLeanMass:
		return &r.LeanMass
	case FieldMuscleMass:
		return &r.MuscleMass
	case FieldMuscleRatePercent:
		return &r.MuscleRatePercent
	case FieldSkeletalMusclePercent:
		return &r.SkeletalMusclePercent
	case FieldBoneMass:
		return &r.BoneMass
	case FieldProteinMass:
		return &r.ProteinMass
	case FieldProteinPercent:
		return &r.ProteinPercent
	case FieldBodyWaterPercent:
		return &r.BodyWaterPercent
	case FieldMoistureContent:
		return &r.MoistureContent
	case FieldSubcutaneousFatPercent:
		return &r.SubcutaneousFatPercent
	case FieldVisceralFat:
		return &r.VisceralFat
	case FieldBMR:
		return &r.BMR
	case FieldMetabolicAge:
		return &r.MetabolicAge
	case FieldWHR:
		return &r.WHR
	}
	return nil
}

// Get returns the value of a field, or nil if absent or unknown.
func (r Reading) Get(f Field) *float64 {
	p := r.slot(f)
	if p == nil || *p == nil {
		return nil
	}
	v := **p
	return &v
}

// Set stores a copy of v in the field. A nil v clears it.
// Unknown fields are ignored.
func (r *Reading) Set(f Field, v *float64) {
	p := r.slot(f)
	if p == nil {
		return
	}
	if v == nil {
		*p = nil
		return
	}
	c := *v
	*p = &c
}

// Merge returns r with every field present in other copied over it.
// Fields absent from other keep their value in r.
func (r Reading) Merge(other Reading) Reading {
	out := r
	for _, f := range AllFields {
		if v := other.Get(f); v != nil {
			out.Set(f, v)
		}
	}
	return out
}

// Count returns how many fields are present.
func (r Reading) Count() int {
	n := 0
	for _, f := range AllFields {
		if r.Get(f) != nil {
			n++
		}
	}
	return n
}

// ReadingFromValues builds a Reading from field-name keyed values.
// Unknown field names are an error.
func ReadingFromValues(values map[string]float64) (Reading, error) {
	var r Reading
	for name, v := range values {
		if !IsValidField(name) {
			return Reading{}, fmt.Errorf("unknown field: %s", name)
		}
		r.Set(Field(name), &v)
	}
	return r, nil
}

// Values returns the present fields keyed by name.
func (r Reading) Values() map[string]float64 {
	out := make(map[string]float64)
	for _, f := range AllFields {
		if v := r.Get(f); v != nil {
			out[string(f)] = *v
		}
	}
	return out
}

// Sanitized returns r without non-finite or negative values, and without
// percentages above 100.
func (r Reading) Sanitized() Reading {
	for _, f := range AllFields {
		v := r.Get(f)
		if v == nil {
			continue
		}
		bad := math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0
		if FieldUnits[f] == "%" && *v > 100 {
			bad = true
		}
		if bad {
			r.Set(f, nil)
		}
	}
	return r
}

// Float returns a pointer to v, for building readings inline.
func Float(v float64) *float64 {
	return &v
}

// Measurement is one bioimpedance snapshot for a subject.
type Measurement struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	SubjectID  uuid.UUID `json:"subject_id" yaml:"subject_id"`
	WeekNumber int       `json:"week_number" yaml:"week_number"`
	MeasuredOn time.Time `json:"measurement_date" yaml:"measurement_date"`
	// Dose is the medication dose in mg for the week, if tracked.
	Dose      *float64  `json:"dose,omitempty" yaml:"dose,omitempty"`
	Status    *string   `json:"status,omitempty" yaml:"status,omitempty"`
	Reading   Reading   `json:"reading" yaml:"reading"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewMeasurement creates a Measurement dated today. WeekNumber 0 means
// "assign on insert".
func NewMeasurement(subjectID uuid.UUID, r Reading) *Measurement {
	now := time.Now()
	return &Measurement{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		MeasuredOn: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Reading:    r,
		CreatedAt:  now,
	}
}

// WithWeek sets an explicit week number.
func (m *Measurement) WithWeek(week int) *Measurement {
	m.WeekNumber = week
	return m
}

// WithDate sets the measurement date.
func (m *Measurement) WithDate(t time.Time) *Measurement {
	m.MeasuredOn = t
	return m
}

// WithDose sets the medication dose.
func (m *Measurement) WithDose(mg float64) *Measurement {
	m.Dose = &mg
	return m
}

// WithStatus sets a free-form status note.
func (m *Measurement) WithStatus(status string) *Measurement {
	m.Status = &status
	return m
}
