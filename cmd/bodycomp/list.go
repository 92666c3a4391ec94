// ABOUTME: CLI command for listing measurements.
// ABOUTME: Shows one subject's history or every subject's when none is given.
package main

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "list [subject]",
	Aliases: []string{"ls", "l"},
	Short:   "List measurements",
	Long: `List recorded measurements, oldest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  WEEK  WEIGHT  FAT%  VISCERAL  SCORE

  The ID is an 8-character prefix you can use with 'bodycomp delete'.

EXAMPLES:

  bodycomp list                 # Every subject, last 20 each
  bodycomp list reneer          # One subject
  bodycomp list ana -n 0        # Full history`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var subjects []*models.Subject
		if len(args) == 1 {
			s, err := repo.GetSubject(args[0])
			if err != nil {
				return fmt.Errorf("subject not found: %s", args[0])
			}
			subjects = append(subjects, s)
		} else {
			var err error
			subjects, err = repo.ListSubjects()
			if err != nil {
				return fmt.Errorf("failed to list subjects: %w", err)
			}
		}

		if len(subjects) == 0 {
			fmt.Println("No subjects found.")
			return nil
		}

		for i, s := range subjects {
			if i > 0 {
				fmt.Println()
			}
			if err := printMeasurements(s); err != nil {
				return err
			}
		}
		return nil
	},
}

func printMeasurements(s *models.Subject) error {
	ms, err := repo.ListMeasurements(s.ID, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list measurements: %w", err)
	}

	fmt.Printf("%s %s\n", s.Name, faint.Sprintf("(%s)", s.Gender))
	if len(ms) == 0 {
		fmt.Println(faint.Sprint("  No measurements."))
		return nil
	}

	for _, m := range ms {
		overall := evaluator.Evaluate(m.Reading, s.Gender).Overall
		fmt.Printf("  %s %s %s %s %s %s %s\n",
			faint.Sprint(shortID(m.ID)),
			faint.Sprint(m.MeasuredOn.Format("2006-01-02")),
			padRight(fmt.Sprintf("wk%d", m.WeekNumber), 5),
			padRight(formatValue(m.Reading.Weight, "kg"), 9),
			padRight(formatValue(m.Reading.BodyFatPercent, "%"), 7),
			padRight(formatValue(m.Reading.VisceralFat, "vf"), 7),
			tierColor(overall.Tier).Sprintf("%3d", overall.Score))
	}
	return nil
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max measurements per subject (0 for all)")
	rootCmd.AddCommand(listCmd)
}
