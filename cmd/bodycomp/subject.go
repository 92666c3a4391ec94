// ABOUTME: CLI commands for managing tracked subjects.
// ABOUTME: Supports add, list, and delete with measurement counts.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/spf13/cobra"
)

var (
	subjectGender      string
	subjectProfile     string
	subjectDescription string
)

var subjectCmd = &cobra.Command{
	Use:     "subject",
	Aliases: []string{"subjects", "who"},
	Short:   "Manage tracked people",
	Long: `Manage the people whose measurements you track.

Each subject has a gender, which selects the reference bands used for
scoring, and a protein profile that drives the daily protein target:

  active      1.5-2.0 g/kg/day (light training, default for men)
  sedentary   1.2-1.5 g/kg/day (no training, default for women)

EXAMPLES:

  bodycomp subject add Reneer --gender male
  bodycomp subject add Ana --gender female --profile active \
      --description "41y, 1.65m, tirzepatide"
  bodycomp subject list
  bodycomp subject delete ana`,
}

var subjectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, err := models.ParseGender(subjectGender)
		if err != nil {
			return err
		}

		s := models.NewSubject(args[0], gender)
		if subjectProfile != "" {
			p, err := models.ParseProteinProfile(subjectProfile)
			if err != nil {
				return err
			}
			s.WithProteinProfile(p)
		}
		if subjectDescription != "" {
			s.WithDescription(subjectDescription)
		}

		if err := repo.CreateSubject(s); err != nil {
			return fmt.Errorf("failed to create subject: %w", err)
		}

		color.Green("✓ Added %s", s.Name)
		fmt.Printf("  %s %s, %s protein profile\n", faint.Sprint(shortID(s.ID)), s.Gender, s.ProteinProfile)
		return nil
	},
}

var subjectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := repo.ListSubjects()
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		if len(subjects) == 0 {
			fmt.Println("No subjects yet. Add one with 'bodycomp subject add <name> --gender male|female'.")
			return nil
		}

		for _, s := range subjects {
			n, err := repo.CountMeasurements(s.ID)
			if err != nil {
				return fmt.Errorf("failed to count measurements: %w", err)
			}
			desc := ""
			if s.Description != nil && *s.Description != "" {
				desc = faint.Sprintf(" (%s)", truncate(*s.Description, 40))
			}
			fmt.Printf("%s %s %s %s %d measurements%s\n",
				faint.Sprint(shortID(s.ID)),
				padRight(s.Name, 16),
				padRight(string(s.Gender), 7),
				padRight(string(s.ProteinProfile), 10),
				n,
				desc)
		}
		return nil
	},
}

var subjectDeleteCmd = &cobra.Command{
	Use:     "delete <name-or-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subject and all their measurements",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := repo.GetSubject(args[0])
		if err != nil {
			return fmt.Errorf("subject not found: %s", args[0])
		}
		if err := repo.DeleteSubject(s.ID.String()); err != nil {
			return fmt.Errorf("failed to delete subject: %w", err)
		}
		color.Yellow("✗ Deleted %s", s.Name)
		return nil
	},
}

func init() {
	subjectAddCmd.Flags().StringVarP(&subjectGender, "gender", "g", "", "male or female (required)")
	subjectAddCmd.Flags().StringVarP(&subjectProfile, "profile", "p", "", "protein profile: active or sedentary")
	subjectAddCmd.Flags().StringVarP(&subjectDescription, "description", "d", "", "free-form context for AI insights")
	_ = subjectAddCmd.MarkFlagRequired("gender")

	subjectCmd.AddCommand(subjectAddCmd)
	subjectCmd.AddCommand(subjectListCmd)
	subjectCmd.AddCommand(subjectDeleteCmd)
	rootCmd.AddCommand(subjectCmd)
}
