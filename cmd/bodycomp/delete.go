// ABOUTME: CLI command for deleting measurements.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a measurement",
	Long: `Delete a measurement by its ID or ID prefix.

The ID prefix is shown in the first column of 'bodycomp list' output.
Week numbers of later measurements are left unchanged.

EXAMPLES:

  bodycomp delete abc12345      # Delete by 8-char prefix
  bodycomp rm abc1              # Short prefix (if unique)

To remove a person with all their measurements use 'bodycomp subject delete'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := repo.GetMeasurement(args[0])
		if err != nil {
			return fmt.Errorf("measurement not found: %s", args[0])
		}

		if err := repo.DeleteMeasurement(m.ID.String()); err != nil {
			return fmt.Errorf("failed to delete measurement: %w", err)
		}

		color.Yellow("✗ Deleted week %d", m.WeekNumber)
		fmt.Printf("  %s %s\n", faint.Sprint(shortID(m.ID)), m.MeasuredOn.Format("2006-01-02"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
