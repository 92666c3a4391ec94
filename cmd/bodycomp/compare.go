// ABOUTME: CLI command for a narrative comparison across all subjects.
// ABOUTME: Summarizes each subject's progress and asks the text model to compare.
package main

import (
	"fmt"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare progress across subjects with the AI gateway",
	Long: `Summarize first and latest measurements of every subject and ask the
text model for a comparative narrative.

Requires gateway.api_key in the config file or BODYCOMP_GATEWAY_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := repo.ListSubjects()
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		if len(subjects) == 0 {
			return fmt.Errorf("no subjects to compare")
		}

		summaries := make([]ai.SubjectSummary, 0, len(subjects))
		for _, s := range subjects {
			ms, err := repo.ListMeasurements(s.ID, 0)
			if err != nil {
				return fmt.Errorf("failed to list measurements: %w", err)
			}
			summaries = append(summaries, ai.BuildSummary(s, ms))
		}

		svc, err := aiService()
		if err != nil {
			return err
		}

		fmt.Println(faint.Sprint("Comparing..."))
		text, err := svc.Narrator.CompareSubjects(cmd.Context(), summaries)
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}
		fmt.Println()
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
