// ABOUTME: Shared parsing and output helpers for CLI commands.
// ABOUTME: Handles field=value arguments, dates, padding, and tier colors.
package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/scoring"
)

var faint = color.New(color.Faint)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseValues reads field=value arguments into a Reading.
// Decimal commas are accepted.
func parseValues(args []string) (models.Reading, error) {
	values := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return models.Reading{}, fmt.Errorf("expected field=value, got %q", arg)
		}
		name = strings.TrimSpace(strings.ToLower(name))
		v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(raw), ",", ".", 1), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Reading{}, fmt.Errorf("invalid value for %s: %s", name, raw)
		}
		values[name] = v
	}
	r, err := models.ReadingFromValues(values)
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w\nValid fields: %s", err, fieldList())
	}
	return r, nil
}

func fieldList() string {
	names := make([]string, len(models.AllFields))
	for i, f := range models.AllFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func tierColor(t scoring.Tier) *color.Color {
	switch t {
	case scoring.TierHealthy:
		return color.New(color.FgGreen, color.Bold)
	case scoring.TierAttention:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// scoreBar renders a 0-100 score as a 20-cell bar.
func scoreBar(score float64) string {
	cells := int(score/5 + 0.5)
	if cells > 20 {
		cells = 20
	}
	if cells < 0 {
		cells = 0
	}
	return strings.Repeat("█", cells) + faint.Sprint(strings.Repeat("░", 20-cells))
}

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", *v, unit)
}

func shortID(s fmt.Stringer) string {
	return s.String()[:8]
}
