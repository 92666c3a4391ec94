// ABOUTME: Daily protein intake guidance from body weight.
// ABOUTME: Multipliers per protein profile live in one table.
package scoring

import (
	"fmt"
	"math"

	"github.com/harperreed/bodycomp/internal/models"
)

// ProteinGuide describes one protein profile.
type ProteinGuide struct {
	MinPerKg    float64 `json:"min_g_per_kg"`
	MaxPerKg    float64 `json:"max_g_per_kg"`
	Description string  `json:"description"`
	Rationale   string  `json:"rationale"`
}

var proteinGuides = map[models.ProteinProfile]ProteinGuide{
	models.ProteinActive: {
		MinPerKg:    1.5,
		MaxPerKg:    2.0,
		Description: "Light training (2-3x/week) on GLP-1 therapy",
		Rationale:   "1.5 to 2.0 g/kg/day to preserve muscle mass",
	},
	models.ProteinSedentary: {
		MinPerKg:    1.2,
		MaxPerKg:    1.5,
		Description: "No training on GLP-1 therapy",
		Rationale:   "1.2 to 1.5 g/kg/day to avoid lean mass loss",
	},
}

// Guide returns the guide for a profile.
func Guide(p models.ProteinProfile) (ProteinGuide, bool) {
	g, ok := proteinGuides[p]
	return g, ok
}

// Intake is a daily protein range in grams.
type Intake struct {
	Min         int `json:"min"`
	Max         int `json:"max"`
	Recommended int `json:"recommended"`
}

// ProteinRange computes the daily protein range for a body weight in kg.
// Weight is assumed positive. It panics on a profile missing from the table.
func ProteinRange(weightKg float64, p models.ProteinProfile) Intake {
	g, ok := proteinGuides[p]
	if !ok {
		panic(fmt.Sprintf("scoring: unknown protein profile %q", p))
	}
	return Intake{
		Min:         int(math.Round(weightKg * g.MinPerKg)),
		Max:         int(math.Round(weightKg * g.MaxPerKg)),
		Recommended: int(math.Round(weightKg * ((g.MinPerKg + g.MaxPerKg) / 2))),
	}
}
