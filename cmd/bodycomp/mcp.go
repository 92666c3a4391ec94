// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "bodycomp": {
        "command": "bodycomp",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_subject         Add a tracked person
  list_subjects       List subjects
  delete_subject      Delete a subject and their measurements
  add_measurement     Record field values for a subject
  list_measurements   List a subject's measurements
  delete_measurement  Delete a measurement by ID
  evaluate            Score values without saving
  subject_card        Latest score and protein target
  trend               Score per week
  protein_range       Daily protein range
  extract_report      Read a report photo (AI gateway required)
  compare_subjects    Narrative comparison (AI gateway required)

AVAILABLE RESOURCES:

  bodycomp://subjects                  Subjects with measurement counts
  bodycomp://summary                   Latest score per subject
  bodycomp://subjects/{subject}/card   One subject's card`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := aiService()
		if errors.Is(err, ai.ErrNotConfigured) {
			svc = nil
		} else if err != nil {
			return err
		}

		server, err := mcp.NewServer(repo, mcp.Options{
			Evaluator: evaluator,
			AI:        svc,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
