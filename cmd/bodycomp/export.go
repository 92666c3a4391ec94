// ABOUTME: CLI commands for exporting and importing bodycomp data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportSubject string
	exportSince   string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export subjects and measurements",
	Long: `Export all data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   One table per subject (for sharing with a clinician)

OPTIONS:

  --output, -o    Write to file instead of stdout
  --subject, -s   Only this subject (markdown only)
  --since         Only measurements on or after this date (markdown only)

EXAMPLES:

  bodycomp export json -o backup.json
  bodycomp export yaml
  bodycomp export markdown --subject ana --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)

		switch format := args[0]; format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown", "md":
			subjectID := uuid.Nil
			if exportSubject != "" {
				s, err := repo.GetSubject(exportSubject)
				if err != nil {
					return fmt.Errorf("subject not found: %s", exportSubject)
				}
				subjectID = s.ID
			}
			var since *time.Time
			if exportSince != "" {
				t, err := time.Parse(storage.DateLayout, exportSince)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(repo, subjectID, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
			return nil
		}
		fmt.Println(string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON export",
	Long: `Import subjects and measurements from a JSON file written by
'bodycomp export json'. Records with IDs that already exist cause an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := storage.ImportJSON(repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		color.Green("✓ Imported from %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportSubject, "subject", "s", "", "only this subject (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only measurements since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
