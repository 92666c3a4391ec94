// ABOUTME: Bundles extraction and narration over one gateway client.
// ABOUTME: Shared by the CLI, HTTP server, and MCP server.
package ai

import (
	"context"

	"github.com/harperreed/bodycomp/internal/models"
	"go.uber.org/zap"
)

// Service is the AI surface the rest of bodycomp uses.
type Service struct {
	Extractor Extractor
	Narrator  *Narrator
	// Log receives gateway failures that do not fail the call. Nil is quiet.
	Log *zap.Logger
}

// NewService creates a gateway client and wires both models to it.
func NewService(opts Options, visionModel, textModel string) (*Service, error) {
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Extractor: NewVisionExtractor(client, visionModel),
		Narrator:  NewNarrator(client, textModel),
		Log:       log.Named("ai"),
	}, nil
}

// Analysis is an extraction plus its narrative.
type Analysis struct {
	Extraction *Extraction `json:"data"`
	Insights   string      `json:"insights"`
}

// Analyze extracts a reading from image and, when anything was found,
// asks for insights about it. An insights failure leaves Insights empty
// rather than failing the extraction.
func (s *Service) Analyze(ctx context.Context, subject *models.Subject, image []byte) (*Analysis, error) {
	ex, err := s.Extractor.Extract(ctx, image)
	if err != nil {
		return &Analysis{Extraction: ex}, err
	}

	out := &Analysis{Extraction: ex}
	if ex.Reading.Count() == 0 {
		return out, nil
	}
	insights, err := s.Narrator.MeasurementInsights(ctx, subject, ex.Reading)
	if err != nil {
		s.logger().Warn("measurement insights failed",
			zap.String("subject", subject.Name),
			zap.Error(err))
		return out, nil
	}
	out.Insights = insights
	return out, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
