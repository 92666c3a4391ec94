// ABOUTME: MCP server setup for the body composition tracker.
// ABOUTME: Wraps the MCP server with storage, the scoring evaluator, and optional AI.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Options configures optional collaborators of the MCP server.
type Options struct {
	Evaluator *scoring.Evaluator
	// AI enables extract_report and compare_subjects when set.
	AI     *ai.Service
	Logger *zap.Logger
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	evaluator *scoring.Evaluator
	ai        *ai.Service
	logger    *zap.Logger
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts Options) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if opts.Evaluator == nil {
		opts.Evaluator = scoring.NewEvaluator(scoring.WorstCase)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "bodycomp",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		evaluator: opts.Evaluator,
		ai:        opts.AI,
		logger:    opts.Logger.Named("mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
