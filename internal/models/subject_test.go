// ABOUTME: Tests for Subject model, Gender, and ProteinProfile parsing.
// ABOUTME: Covers aliases, defaults, and builder methods.
package models

import "testing"

func TestParseGender(t *testing.T) {
	tests := []struct {
		input   string
		want    Gender
		wantErr bool
	}{
		{"male", GenderMale, false},
		{"M", GenderMale, false},
		{" female ", GenderFemale, false},
		{"f", GenderFemale, false},
		{"other", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGender(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseGender(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGender(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseGender(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseProteinProfile(t *testing.T) {
	tests := []struct {
		input   string
		want    ProteinProfile
		wantErr bool
	}{
		{"active", ProteinActive, false},
		{"A", ProteinActive, false},
		{"sedentary", ProteinSedentary, false},
		{"b", ProteinSedentary, false},
		{"c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProteinProfile(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProteinProfile(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseProteinProfile(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewSubjectDefaults(t *testing.T) {
	man := NewSubject("Reneer", GenderMale)
	if man.ProteinProfile != ProteinActive {
		t.Errorf("male default profile = %s, want active", man.ProteinProfile)
	}

	woman := NewSubject("Ana", GenderFemale).WithDescription("no training")
	if woman.ProteinProfile != ProteinSedentary {
		t.Errorf("female default profile = %s, want sedentary", woman.ProteinProfile)
	}
	if woman.Description == nil || *woman.Description != "no training" {
		t.Errorf("Description = %v", woman.Description)
	}

	woman.WithProteinProfile(ProteinActive)
	if woman.ProteinProfile != ProteinActive {
		t.Error("WithProteinProfile did not override")
	}
}

func TestSubjectNormalize(t *testing.T) {
	tests := []struct {
		name        string
		gender      Gender
		profile     ProteinProfile
		wantGender  Gender
		wantProfile ProteinProfile
		wantErr     bool
	}{
		{"canonical", GenderMale, ProteinSedentary, GenderMale, ProteinSedentary, false},
		{"capitalized gender, empty profile", "Female", "", GenderFemale, ProteinSedentary, false},
		{"short forms", "m", "b", GenderMale, ProteinSedentary, false},
		{"empty profile defaults for men", "MALE", " ", GenderMale, ProteinActive, false},
		{"unknown gender", "robot", ProteinActive, "", "", true},
		{"empty gender", "", ProteinActive, "", "", true},
		{"unknown profile", GenderFemale, "bulk", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Subject{Name: "x", Gender: tt.gender, ProteinProfile: tt.profile}
			err := s.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Normalize() expected error for gender=%q profile=%q", tt.gender, tt.profile)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() unexpected error: %v", err)
			}
			if s.Gender != tt.wantGender || s.ProteinProfile != tt.wantProfile {
				t.Errorf("Normalize() = %q/%q, want %q/%q", s.Gender, s.ProteinProfile, tt.wantGender, tt.wantProfile)
			}
		})
	}
}
