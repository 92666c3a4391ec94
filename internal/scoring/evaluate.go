// ABOUTME: Evaluates a reading against reference bands into per-metric and overall scores.
// ABOUTME: Defines the six scored axes and the missing-metric policy.
package scoring

import (
	"fmt"
	"math"
	"strconv"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/reference"
)

// MissingMetricPolicy decides how unmeasured metrics enter the overall score.
type MissingMetricPolicy string

const (
	// WorstCase scores a missing metric as 0 and keeps it in the average.
	WorstCase MissingMetricPolicy = "worst_case"
	// Exclude drops missing metrics from the average.
	Exclude MissingMetricPolicy = "exclude"
)

// ParseMissingMetricPolicy parses a policy name. Empty means WorstCase.
func ParseMissingMetricPolicy(s string) (MissingMetricPolicy, error) {
	switch MissingMetricPolicy(s) {
	case "", WorstCase:
		return WorstCase, nil
	case Exclude:
		return Exclude, nil
	default:
		return "", fmt.Errorf("unknown missing metric policy: %q (use worst_case or exclude)", s)
	}
}

// Axis is one scored metric with its risk ceiling and display rules.
type Axis struct {
	Name     string
	Metric   reference.Metric
	RiskMax  float64
	Decimals int
	Percent  bool
	// UpperOnly shows the ideal band as "<max".
	UpperOnly bool
}

// Axes are the scored metrics in display order.
var Axes = []Axis{
	{Name: "BMI", Metric: reference.MetricBMI, RiskMax: 35, Decimals: 1},
	{Name: "Body Fat %", Metric: reference.MetricBodyFatPercent, RiskMax: 40, Decimals: 1, Percent: true},
	{Name: "Muscle %", Metric: reference.MetricMusclePercent, RiskMax: 50, Decimals: 1, Percent: true},
	{Name: "Visceral Fat", Metric: reference.MetricVisceralFat, RiskMax: 20, Decimals: 0, UpperOnly: true},
	{Name: "Water %", Metric: reference.MetricBodyWaterPercent, RiskMax: 75, Decimals: 1, Percent: true},
	{Name: "Protein %", Metric: reference.MetricProteinPercent, RiskMax: 25, Decimals: 1, Percent: true},
}

// NormalizedMetric is the score of one axis.
type NormalizedMetric struct {
	Name   string           `json:"name"`
	Metric reference.Metric `json:"metric"`
	Score  float64          `json:"score"`
	// Measured is false when the reading had no value for the metric.
	Measured     bool   `json:"measured"`
	RawDisplay   string `json:"raw_display"`
	IdealDisplay string `json:"ideal_display"`
}

// OverallScore is the aggregated score and its tier.
type OverallScore struct {
	Score int    `json:"score"`
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Evaluation is the result of scoring one reading.
type Evaluation struct {
	PerMetric []NormalizedMetric `json:"per_metric"`
	Overall   OverallScore       `json:"overall"`
}

// Evaluator scores readings under a missing-metric policy.
type Evaluator struct {
	Policy MissingMetricPolicy
}

// NewEvaluator creates an Evaluator. An empty policy means WorstCase.
func NewEvaluator(policy MissingMetricPolicy) *Evaluator {
	if policy == "" {
		policy = WorstCase
	}
	return &Evaluator{Policy: policy}
}

// Evaluate scores a reading with the WorstCase policy.
func Evaluate(r models.Reading, gender models.Gender) Evaluation {
	return NewEvaluator(WorstCase).Evaluate(r, gender)
}

// Evaluate scores every axis and aggregates the result.
func (e *Evaluator) Evaluate(r models.Reading, gender models.Gender) Evaluation {
	perMetric := make([]NormalizedMetric, 0, len(Axes))
	scores := make([]float64, 0, len(Axes))

	for _, axis := range Axes {
		band := reference.Resolve(axis.Metric, gender)
		value := r.Get(axis.Metric.Field())
		if !measured(value) {
			value = nil
		}
		score := Normalize(value, band, axis.RiskMax)

		perMetric = append(perMetric, NormalizedMetric{
			Name:         axis.Name,
			Metric:       axis.Metric,
			Score:        score,
			Measured:     value != nil,
			RawDisplay:   axis.formatValue(value),
			IdealDisplay: axis.formatBand(band),
		})

		if value == nil && e.Policy == Exclude {
			continue
		}
		scores = append(scores, score)
	}

	return Evaluation{
		PerMetric: perMetric,
		Overall:   Overall(Aggregate(scores)),
	}
}

// Aggregate returns the rounded mean of scores, or 0 for none.
func Aggregate(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(sum / float64(len(scores))))
}

// Overall builds an OverallScore from an aggregated score.
func Overall(score int) OverallScore {
	tier := Classify(float64(score))
	return OverallScore{
		Score: score,
		Tier:  tier,
		Label: tier.Label(),
		Color: tier.Color(),
	}
}

func (a Axis) formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	s := strconv.FormatFloat(*v, 'f', a.Decimals, 64)
	if a.Percent {
		s += "%"
	}
	return s
}

func (a Axis) formatBand(b reference.Band) string {
	if a.UpperOnly {
		return fmt.Sprintf("<%g", b.Max)
	}
	s := fmt.Sprintf("%g-%g", b.Min, b.Max)
	if a.Percent {
		s += "%"
	}
	return s
}
