// ABOUTME: Tests for protein intake guidance.
// ABOUTME: Checks rounding for both profiles and guide lookup.
package scoring

import (
	"testing"

	"github.com/harperreed/bodycomp/internal/models"
)

func TestProteinRange(t *testing.T) {
	tests := []struct {
		name    string
		weight  float64
		profile models.ProteinProfile
		want    Intake
	}{
		{"active 70kg", 70, models.ProteinActive, Intake{Min: 105, Max: 140, Recommended: 123}},
		{"sedentary 60kg", 60, models.ProteinSedentary, Intake{Min: 72, Max: 90, Recommended: 81}},
		{"active fractional", 82.3, models.ProteinActive, Intake{Min: 123, Max: 165, Recommended: 144}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProteinRange(tt.weight, tt.profile)
			if got != tt.want {
				t.Errorf("ProteinRange(%v, %s) = %+v, want %+v", tt.weight, tt.profile, got, tt.want)
			}
			if got.Min > got.Recommended || got.Recommended > got.Max {
				t.Errorf("recommended outside range: %+v", got)
			}
		})
	}
}

func TestProteinRangeUnknownProfilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown profile")
		}
	}()
	ProteinRange(70, models.ProteinProfile("bulk"))
}

func TestGuide(t *testing.T) {
	g, ok := Guide(models.ProteinSedentary)
	if !ok {
		t.Fatal("expected sedentary guide")
	}
	if g.MinPerKg != 1.2 || g.MaxPerKg != 1.5 {
		t.Errorf("sedentary multipliers = %v-%v", g.MinPerKg, g.MaxPerKg)
	}
	if _, ok := Guide(models.ProteinProfile("x")); ok {
		t.Error("expected no guide for unknown profile")
	}
}
