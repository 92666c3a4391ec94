// ABOUTME: CLI command for recording a body composition measurement.
// ABOUTME: Takes field=value pairs and assigns the next week number by default.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/spf13/cobra"
)

var (
	addWeek   int
	addDate   string
	addDose   float64
	addStatus string
)

var addCmd = &cobra.Command{
	Use:     "add <subject> <field=value>...",
	Aliases: []string{"a"},
	Short:   "Record a measurement",
	Long: `Record a body composition measurement for a subject.

Values are given as field=value pairs. Any field left out is stored as
not measured. Decimal commas are accepted (body_fat_percent=31,5).

FIELDS:

  weight, bmi, body_fat_percent, fat_mass, lean_mass, muscle_mass,
  muscle_rate_percent, skeletal_muscle_percent, bone_mass, protein_mass,
  protein_percent, body_water_percent, moisture_content,
  subcutaneous_fat_percent, visceral_fat, bmr, metabolic_age, whr

Without --week the measurement becomes the subject's next week.

EXAMPLES:

  bodycomp add reneer weight=102.4 bmi=31.2 body_fat_percent=31.5
  bodycomp add ana weight=71 visceral_fat=7 --date 2025-01-06 --dose 2.5
  bodycomp add ana weight=70.2 --week 3 --status "nausea on day 2"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := repo.GetSubject(args[0])
		if err != nil {
			return fmt.Errorf("subject not found: %s", args[0])
		}

		reading, err := parseValues(args[1:])
		if err != nil {
			return err
		}

		m := models.NewMeasurement(subject.ID, ai.Sanitize(reading))
		if addWeek < 0 {
			return fmt.Errorf("week must be positive")
		}
		m.WithWeek(addWeek)
		if addDate != "" {
			t, err := parseTime(addDate)
			if err != nil {
				return fmt.Errorf("invalid date: %s", addDate)
			}
			m.WithDate(t)
		}
		if cmd.Flags().Changed("dose") {
			m.WithDose(addDose)
		}
		if addStatus != "" {
			m.WithStatus(addStatus)
		}

		if err := repo.CreateMeasurement(m); err != nil {
			return fmt.Errorf("failed to create measurement: %w", err)
		}

		color.Green("✓ Added week %d for %s", m.WeekNumber, subject.Name)
		fmt.Printf("  %s %s, %d fields\n",
			faint.Sprint(shortID(m.ID)),
			m.MeasuredOn.Format("2006-01-02"),
			m.Reading.Count())

		eval := evaluator.Evaluate(m.Reading, subject.Gender)
		fmt.Printf("  Score %s\n", tierColor(eval.Overall.Tier).Sprintf("%d %s", eval.Overall.Score, eval.Overall.Label))
		return nil
	},
}

func init() {
	addCmd.Flags().IntVar(&addWeek, "week", 0, "week number (default: next week)")
	addCmd.Flags().StringVar(&addDate, "date", "", "measurement date (YYYY-MM-DD, default today)")
	addCmd.Flags().Float64Var(&addDose, "dose", 0, "medication dose in mg")
	addCmd.Flags().StringVar(&addStatus, "status", "", "free-form status note")
	rootCmd.AddCommand(addCmd)
}
