// ABOUTME: Narrative insights from a text model for readings and subject comparisons.
// ABOUTME: Builds per-subject progress summaries from stored measurements.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/bodycomp/internal/models"
)

// Narrator asks a text model for human-readable analysis.
type Narrator struct {
	client Completer
	model  string
}

// NewNarrator creates a narrator using model on client.
func NewNarrator(client Completer, model string) *Narrator {
	return &Narrator{client: client, model: model}
}

const insightsPrompt = `You are a nutritionist specialised in bioimpedance analysis.

Analyse the data and give personalised insights covering:
1. Overall assessment: BMI status and obesity classification
2. Body composition: the fat to muscle relationship
3. Metabolic health: basal metabolic rate and metabolic age
4. Visceral fat: cardiovascular risk from the level
5. Practical recommendations: two or three specific actions

Be objective and practical. At most four short paragraphs.`

// MeasurementInsights returns a narrative analysis of one reading.
func (n *Narrator) MeasurementInsights(ctx context.Context, subject *models.Subject, r models.Reading) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal reading: %w", err)
	}

	user := fmt.Sprintf("Analyse this bioimpedance data for %s and give relevant insights:\n%s",
		describe(subject), data)

	text, err := n.client.Complete(ctx, n.model, []Message{
		SystemMessage(insightsPrompt),
		UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("measurement insights: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func describe(s *models.Subject) string {
	d := fmt.Sprintf("%s (%s)", s.Name, s.Gender)
	if s.Description != nil && *s.Description != "" {
		d += ", " + *s.Description
	}
	return d
}

// SubjectSummary is the progress snapshot sent for comparisons.
type SubjectSummary struct {
	Name          string   `json:"name"`
	Gender        string   `json:"gender"`
	Weight        *float64 `json:"weight"`
	InitialWeight *float64 `json:"initial_weight"`
	WeightChange  *float64 `json:"weight_change"`
	BodyFat       *float64 `json:"body_fat_percent"`
	Muscle        *float64 `json:"muscle_rate_percent"`
	VisceralFat   *float64 `json:"visceral_fat"`
	BMI           *float64 `json:"bmi"`
	BMR           *float64 `json:"bmr"`
	Measurements  int      `json:"measurements"`
}

// BuildSummary summarises ms, which must be ordered oldest first.
// Current values come from the latest measurement; the initial weight is
// the first recorded weight.
func BuildSummary(s *models.Subject, ms []*models.Measurement) SubjectSummary {
	sum := SubjectSummary{
		Name:         s.Name,
		Gender:       string(s.Gender),
		Measurements: len(ms),
	}
	if len(ms) == 0 {
		return sum
	}

	latest := ms[len(ms)-1].Reading
	sum.Weight = latest.Weight
	sum.BodyFat = latest.BodyFatPercent
	sum.Muscle = latest.MuscleRatePercent
	sum.VisceralFat = latest.VisceralFat
	sum.BMI = latest.BMI
	sum.BMR = latest.BMR

	for _, m := range ms {
		if m.Reading.Weight != nil {
			sum.InitialWeight = m.Reading.Weight
			break
		}
	}
	if sum.Weight != nil && sum.InitialWeight != nil {
		change := roundTenth(*sum.Weight - *sum.InitialWeight)
		sum.WeightChange = &change
	}
	return sum
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

const comparisonSystemPrompt = "You are a nutritionist and personal trainer specialised in bioimpedance analysis " +
	"and GLP-1 (tirzepatide) weight-loss protocols. Give precise, motivating, evidence-based analysis."

// CompareSubjects returns a comparative narrative across subjects.
func (n *Narrator) CompareSubjects(ctx context.Context, summaries []SubjectSummary) (string, error) {
	if len(summaries) == 0 {
		return "", fmt.Errorf("compare subjects: no subjects")
	}

	var b strings.Builder
	b.WriteString("Analyse the bioimpedance data of these patients on a GLP-1 protocol and give personalised insights.\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "DATA FOR %s (%s):\n", strings.ToUpper(s.Name), s.Gender)
		fmt.Fprintf(&b, "- Weight: %s kg (initial: %s kg, change: %s kg)\n",
			fmtOpt(s.Weight), fmtOpt(s.InitialWeight), fmtOpt(s.WeightChange))
		fmt.Fprintf(&b, "- Body fat: %s%%\n", fmtOpt(s.BodyFat))
		fmt.Fprintf(&b, "- Muscle rate: %s%%\n", fmtOpt(s.Muscle))
		fmt.Fprintf(&b, "- Visceral fat: %s\n", fmtOpt(s.VisceralFat))
		fmt.Fprintf(&b, "- BMI: %s\n", fmtOpt(s.BMI))
		fmt.Fprintf(&b, "- BMR: %s kcal\n", fmtOpt(s.BMR))
		fmt.Fprintf(&b, "- Measurements: %d\n\n", s.Measurements)
	}
	b.WriteString(`Give a structured comparison with:
1. Overall summary of everyone's progress
2. For each person, one strength and one area to improve
3. What the comparison reveals about the different profiles
4. One shared recommendation

Be concise and focus on actionable insights.`)

	text, err := n.client.Complete(ctx, n.model, []Message{
		SystemMessage(comparisonSystemPrompt),
		UserMessage(b.String()),
	})
	if err != nil {
		return "", fmt.Errorf("compare subjects: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}
