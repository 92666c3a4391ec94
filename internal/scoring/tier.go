// ABOUTME: Qualitative tiers for overall wellness scores.
// ABOUTME: Thresholds, labels and colors are each defined exactly once.
package scoring

// Tier is the three-way classification of an overall score.
type Tier string

const (
	TierHealthy   Tier = "healthy"
	TierAttention Tier = "attention"
	TierRisk      Tier = "risk"
)

// Score cut points. A score at a threshold belongs to the higher tier.
const (
	HealthyThreshold   = 80.0
	AttentionThreshold = 60.0
)

// Classify maps a score to its tier.
func Classify(score float64) Tier {
	switch {
	case score >= HealthyThreshold:
		return TierHealthy
	case score >= AttentionThreshold:
		return TierAttention
	default:
		return TierRisk
	}
}

// Label returns the display label of the tier.
func (t Tier) Label() string {
	switch t {
	case TierHealthy:
		return "Healthy"
	case TierAttention:
		return "Attention"
	default:
		return "Risk"
	}
}

// Color returns the display color of the tier as a hex string.
func (t Tier) Color() string {
	switch t {
	case TierHealthy:
		return "#10b981" // emerald
	case TierAttention:
		return "#f59e0b" // amber
	default:
		return "#f43f5e" // rose
	}
}
