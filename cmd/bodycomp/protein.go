// ABOUTME: CLI command for daily protein guidance.
// ABOUTME: Uses a subject's latest weight or an explicit --weight and --profile.
package main

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/report"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	proteinWeight  float64
	proteinProfile string
)

var proteinCmd = &cobra.Command{
	Use:   "protein [subject]",
	Short: "Show the daily protein range",
	Long: `Show the daily protein range in grams.

With a subject, their protein profile is used and the weight defaults to
their latest measurement. Without one, pass --weight and --profile.

EXAMPLES:

  bodycomp protein reneer
  bodycomp protein ana --weight 68
  bodycomp protein --weight 80 --profile sedentary`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			intake  scoring.Intake
			weight  float64
			profile models.ProteinProfile
		)

		if len(args) == 1 {
			subject, err := repo.GetSubject(args[0])
			if err != nil {
				return fmt.Errorf("subject not found: %s", args[0])
			}
			profile = subject.ProteinProfile
			intake, weight, err = report.ProteinFor(repo, subject, proteinWeight)
			if err != nil {
				return fmt.Errorf("%w (pass --weight)", err)
			}
		} else {
			if proteinWeight <= 0 {
				return fmt.Errorf("--weight is required without a subject")
			}
			p, err := models.ParseProteinProfile(proteinProfile)
			if err != nil {
				return err
			}
			profile, weight = p, proteinWeight
			intake = scoring.ProteinRange(weight, profile)
		}

		guide, _ := scoring.Guide(profile)
		fmt.Printf("%.1f kg, %s profile\n", weight, profile)
		fmt.Printf("  Range        %d-%d g/day\n", intake.Min, intake.Max)
		fmt.Printf("  Recommended  %d g/day\n", intake.Recommended)
		fmt.Println(faint.Sprintf("  %s", guide.Rationale))
		return nil
	},
}

func init() {
	proteinCmd.Flags().Float64VarP(&proteinWeight, "weight", "w", 0, "body weight in kg")
	proteinCmd.Flags().StringVarP(&proteinProfile, "profile", "p", "active", "protein profile without a subject: active or sedentary")
	rootCmd.AddCommand(proteinCmd)
}
