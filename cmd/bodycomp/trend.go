// ABOUTME: CLI command for showing a subject's score over time.
// ABOUTME: Prints one line per week with weight change since the first week.
package main

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/report"
	"github.com/spf13/cobra"
)

var trendLimit int

var trendCmd = &cobra.Command{
	Use:     "trend <subject>",
	Aliases: []string{"progress"},
	Short:   "Show score and weight per week",
	Long: `Show every measurement of a subject with its overall score, oldest first.

EXAMPLES:

  bodycomp trend reneer
  bodycomp trend ana -n 8       # Last 8 weeks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := repo.GetSubject(args[0])
		if err != nil {
			return fmt.Errorf("subject not found: %s", args[0])
		}

		points, err := report.Trend(repo, subject, evaluator, trendLimit)
		if err != nil {
			return fmt.Errorf("failed to build trend: %w", err)
		}
		if len(points) == 0 {
			fmt.Printf("No measurements for %s.\n", subject.Name)
			return nil
		}

		var first *float64
		for _, p := range points {
			m := p.Measurement
			delta := ""
			if w := m.Reading.Weight; w != nil {
				if first == nil {
					first = w
				} else {
					delta = faint.Sprintf("%+.1f kg", *w-*first)
				}
			}
			fmt.Printf("%s %s %s %s %s %s\n",
				padRight(fmt.Sprintf("wk%d", m.WeekNumber), 5),
				faint.Sprint(m.MeasuredOn.Format("2006-01-02")),
				padRight(formatValue(m.Reading.Weight, "kg"), 9),
				scoreBar(float64(p.Overall.Score)),
				tierColor(p.Overall.Tier).Sprintf("%3d", p.Overall.Score),
				delta)
		}
		return nil
	},
}

func init() {
	trendCmd.Flags().IntVarP(&trendLimit, "limit", "n", 0, "only the most recent N weeks")
	rootCmd.AddCommand(trendCmd)
}
