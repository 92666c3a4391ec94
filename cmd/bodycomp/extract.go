// ABOUTME: CLI command for reading a report photo through the vision model.
// ABOUTME: Merges extracted values over an optional draft and can save the result.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractSave bool
	extractWeek int
)

var extractCmd = &cobra.Command{
	Use:     "extract <subject> <image> [field=value]...",
	Aliases: []string{"scan"},
	Short:   "Read a report photo with the AI gateway",
	Long: `Extract body composition values from a photo of a bioimpedance report.

Values typed after the image form a draft. Extracted values replace draft
values only where the model found them, so you can pre-fill anything the
photo cuts off.

Requires gateway.api_key in the config file or BODYCOMP_GATEWAY_API_KEY.

EXAMPLES:

  bodycomp extract reneer report.jpg                 # Preview only
  bodycomp extract reneer report.jpg --save          # Store as next week
  bodycomp extract ana scan.png whr=0.86 --save`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := repo.GetSubject(args[0])
		if err != nil {
			return fmt.Errorf("subject not found: %s", args[0])
		}

		draft, err := parseValues(args[2:])
		if err != nil {
			return err
		}

		image, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		svc, err := aiService()
		if err != nil {
			return err
		}

		fmt.Println(faint.Sprint("Reading report..."))
		analysis, err := svc.Analyze(cmd.Context(), subject, image)
		if errors.Is(err, ai.ErrMalformedExtraction) {
			color.Yellow("⚠ Could not parse the model's reply; keeping the draft only")
			logger.Debug("malformed extraction", zap.Error(err))
			analysis = &ai.Analysis{Extraction: &ai.Extraction{}}
		} else if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		reading := ai.DeriveMissing(ai.Sanitize(draft.Merge(analysis.Extraction.Reading)))
		printReading(reading)

		if analysis.Insights != "" {
			fmt.Println()
			fmt.Println(analysis.Insights)
		}

		if !extractSave {
			fmt.Println()
			fmt.Println(faint.Sprint("Not saved. Re-run with --save to store it."))
			return nil
		}
		if reading.Count() == 0 {
			return fmt.Errorf("nothing to save: no values extracted")
		}

		m := models.NewMeasurement(subject.ID, reading).WithWeek(extractWeek)
		if d := analysis.Extraction.MeasuredOn; d != nil {
			m.WithDate(*d)
		}
		if err := repo.CreateMeasurement(m); err != nil {
			return fmt.Errorf("failed to save measurement: %w", err)
		}
		fmt.Println()
		color.Green("✓ Saved week %d for %s", m.WeekNumber, subject.Name)
		return nil
	},
}

func printReading(r models.Reading) {
	if r.Count() == 0 {
		fmt.Println(faint.Sprint("  No values found."))
		return
	}
	for _, f := range models.AllFields {
		if v := r.Get(f); v != nil {
			fmt.Printf("  %s %g %s\n", padRight(string(f), 26), *v, faint.Sprint(models.FieldUnits[f]))
		}
	}
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "store the result as a measurement")
	extractCmd.Flags().IntVar(&extractWeek, "week", 0, "week number when saving (default: next week)")
	rootCmd.AddCommand(extractCmd)
}
