// ABOUTME: Subject model for tracked individuals.
// ABOUTME: Defines Gender and ProteinProfile enums used by reference bands and protein guidance.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender selects gender-specific reference bands.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AllGenders lists the supported genders.
var AllGenders = []Gender{GenderMale, GenderFemale}

// ParseGender accepts "male"/"female" and the short forms "m"/"f".
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("unknown gender: %q (use male or female)", s)
	}
}

// IsMale reports whether the gender is male.
func (g Gender) IsMale() bool {
	return g == GenderMale
}

// ProteinProfile selects the per-kilogram protein multiplier pair.
type ProteinProfile string

const (
	// ProteinActive is the higher-multiplier profile (light training).
	ProteinActive ProteinProfile = "active"
	// ProteinSedentary is the lower-multiplier profile (no training).
	ProteinSedentary ProteinProfile = "sedentary"
)

// ParseProteinProfile accepts profile names plus the "a"/"b" aliases.
func ParseProteinProfile(s string) (ProteinProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "a":
		return ProteinActive, nil
	case "sedentary", "b":
		return ProteinSedentary, nil
	default:
		return "", fmt.Errorf("unknown protein profile: %q (use active or sedentary)", s)
	}
}

// DefaultProteinProfile picks a profile when none is given.
// Men default to the active profile, women to the sedentary one.
func DefaultProteinProfile(g Gender) ProteinProfile {
	if g.IsMale() {
		return ProteinActive
	}
	return ProteinSedentary
}

// Subject is a tracked individual.
type Subject struct {
	ID             uuid.UUID      `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Gender         Gender         `json:"gender" yaml:"gender"`
	ProteinProfile ProteinProfile `json:"protein_profile" yaml:"protein_profile"`
	// Description carries free-form context (age, height, medication)
	// passed to the narrative model.
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// NewSubject creates a Subject with generated UUID and default protein profile.
func NewSubject(name string, gender Gender) *Subject {
	return &Subject{
		ID:             uuid.New(),
		Name:           name,
		Gender:         gender,
		ProteinProfile: DefaultProteinProfile(gender),
		CreatedAt:      time.Now(),
	}
}

// WithProteinProfile overrides the default protein profile.
func (s *Subject) WithProteinProfile(p ProteinProfile) *Subject {
	s.ProteinProfile = p
	return s
}

// WithDescription sets the subject description.
func (s *Subject) WithDescription(d string) *Subject {
	s.Description = &d
	return s
}

// Normalize canonicalizes Gender and ProteinProfile in place. Case and
// short forms are accepted, an empty profile gets the gender default, and
// anything else is an error.
func (s *Subject) Normalize() error {
	g, err := ParseGender(string(s.Gender))
	if err != nil {
		return err
	}
	s.Gender = g
	if strings.TrimSpace(string(s.ProteinProfile)) == "" {
		s.ProteinProfile = DefaultProteinProfile(g)
		return nil
	}
	p, err := ParseProteinProfile(string(s.ProteinProfile))
	if err != nil {
		return err
	}
	s.ProteinProfile = p
	return nil
}
