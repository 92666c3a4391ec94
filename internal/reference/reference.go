// ABOUTME: Gender-specific ideal bands for scored body-composition metrics.
// ABOUTME: The band table is the single source of truth for reference ranges.
package reference

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/models"
)

// Metric identifies a metric that has a reference band.
type Metric string

const (
	MetricBMI              Metric = "bmi"
	MetricBodyFatPercent   Metric = "body_fat_percent"
	MetricMusclePercent    Metric = "muscle_rate_percent"
	MetricVisceralFat      Metric = "visceral_fat"
	MetricBodyWaterPercent Metric = "body_water_percent"
	MetricProteinPercent   Metric = "protein_percent"
	MetricBoneMass         Metric = "bone_mass"
)

// AllMetrics lists every metric in the table.
var AllMetrics = []Metric{
	MetricBMI, MetricBodyFatPercent, MetricMusclePercent, MetricVisceralFat,
	MetricBodyWaterPercent, MetricProteinPercent, MetricBoneMass,
}

// Field returns the reading field the metric is read from.
func (m Metric) Field() models.Field {
	return models.Field(m)
}

// Band is an inclusive ideal range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("%g-%g", b.Min, b.Max)
}

// entry holds either one shared band or one band per gender.
type entry struct {
	shared   *Band
	byGender map[models.Gender]Band
}

func shared(min, max float64) entry {
	return entry{shared: &Band{Min: min, Max: max}}
}

func split(male, female Band) entry {
	return entry{byGender: map[models.Gender]Band{
		models.GenderMale:   male,
		models.GenderFemale: female,
	}}
}

var table = map[Metric]entry{
	MetricBMI:              shared(18.5, 24.9),
	MetricBodyFatPercent:   split(Band{10, 20}, Band{18, 28}),
	MetricMusclePercent:    split(Band{33, 39}, Band{24, 30}),
	MetricVisceralFat:      shared(1, 9),
	MetricBodyWaterPercent: shared(50, 65),
	MetricProteinPercent:   shared(16, 20),
	MetricBoneMass:         split(Band{2.5, 3.5}, Band{1.8, 2.5}),
}

// Resolve returns the ideal band for a metric and gender.
// It panics on a metric missing from the table.
func Resolve(metric Metric, gender models.Gender) Band {
	e, ok := table[metric]
	if !ok {
		panic(fmt.Sprintf("reference: unknown metric %q", metric))
	}
	if e.shared != nil {
		return *e.shared
	}
	b, ok := e.byGender[gender]
	if !ok {
		panic(fmt.Sprintf("reference: metric %q has no band for gender %q", metric, gender))
	}
	return b
}

// IsGenderSplit reports whether a metric has separate male and female bands.
func IsGenderSplit(metric Metric) bool {
	e, ok := table[metric]
	return ok && e.shared == nil
}

// Status is the position of a value relative to its band.
type Status string

const (
	StatusLow   Status = "low"
	StatusIdeal Status = "ideal"
	StatusHigh  Status = "high"
)

// Classify places v below, inside or above the band.
func Classify(v float64, b Band) Status {
	switch {
	case v < b.Min:
		return StatusLow
	case v > b.Max:
		return StatusHigh
	default:
		return StatusIdeal
	}
}
