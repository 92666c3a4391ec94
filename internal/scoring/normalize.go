// ABOUTME: Maps a raw metric value onto a 0-100 wellness score.
// ABOUTME: Flat 100 inside the ideal band, linear ramps below and above it.
package scoring

import (
	"math"

	"github.com/harperreed/bodycomp/internal/reference"
)

// Normalize scores value against its ideal band and risk ceiling.
//
//   - nil or non-finite value: 0 (treated as unmeasured)
//   - inside band: 100
//   - below band: linear from 0 at zero to 100 at band.Min
//   - above band: linear from 100 at band.Max to 0 at riskMax, 0 beyond
//
// The result is not rounded.
func Normalize(value *float64, band reference.Band, riskMax float64) float64 {
	if !measured(value) {
		return 0
	}
	v := *value

	if band.Contains(v) {
		return 100
	}

	if v < band.Min {
		if band.Min <= 0 {
			return 0
		}
		return clamp(v/band.Min, 0, 1) * 100
	}

	span := riskMax - band.Max
	if span <= 0 {
		return 0
	}
	return clamp((riskMax-v)/span, 0, 1) * 100
}

func measured(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
