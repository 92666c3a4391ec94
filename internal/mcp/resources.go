// ABOUTME: MCP resource implementations for the body composition tracker.
// ABOUTME: Provides bodycomp://subjects, bodycomp://summary, and per-subject card resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	subjectsURI     = "bodycomp://subjects"
	summaryURI      = "bodycomp://summary"
	cardURIPrefix   = "bodycomp://subjects/"
	cardURISuffix   = "/card"
	cardURITemplate = cardURIPrefix + "{subject}" + cardURISuffix
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         subjectsURI,
		Name:        "Subjects",
		Description: "Every tracked subject with their measurement count",
		MIMEType:    "application/json",
	}, s.handleSubjectsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Body Composition Summary",
		Description: "Latest score, tier, and progress for every subject",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: cardURITemplate,
		Name:        "Subject Card",
		Description: "Evaluation of a subject's latest measurement with protein guidance",
		MIMEType:    "application/json",
	}, s.handleCardResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleSubjectsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	type entry struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Gender       string `json:"gender"`
		Profile      string `json:"protein_profile"`
		Measurements int    `json:"measurements"`
	}
	entries := make([]entry, 0, len(subjects))
	for _, subj := range subjects {
		n, err := s.repo.CountMeasurements(subj.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count measurements: %w", err)
		}
		entries = append(entries, entry{
			ID:           subj.ID.String(),
			Name:         subj.Name,
			Gender:       string(subj.Gender),
			Profile:      string(subj.ProteinProfile),
			Measurements: n,
		})
	}

	return jsonResource(subjectsURI, map[string]any{
		"subjects": entries,
		"count":    len(entries),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	type entry struct {
		ai.SubjectSummary
		Score *int   `json:"score,omitempty"`
		Tier  string `json:"tier,omitempty"`
		Week  int    `json:"latest_week,omitempty"`
	}
	entries := make([]entry, 0, len(subjects))
	for _, subj := range subjects {
		ms, err := s.repo.ListMeasurements(subj.ID, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list measurements: %w", err)
		}
		e := entry{SubjectSummary: ai.BuildSummary(subj, ms)}
		if len(ms) > 0 {
			latest := ms[len(ms)-1]
			overall := s.evaluator.Evaluate(latest.Reading, subj.Gender).Overall
			e.Score = &overall.Score
			e.Tier = string(overall.Tier)
			e.Week = latest.WeekNumber
		}
		entries = append(entries, e)
	}

	return jsonResource(summaryURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"subjects":     entries,
	})
}

func (s *Server) handleCardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	key, ok := strings.CutPrefix(uri, cardURIPrefix)
	if ok {
		key, ok = strings.CutSuffix(key, cardURISuffix)
	}
	if !ok || key == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	card, err := report.BuildCard(s.repo, key, s.evaluator)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return jsonResource(uri, card)
}
