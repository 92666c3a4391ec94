// ABOUTME: MCP tool implementations for subjects, measurements, and scoring.
// ABOUTME: extract_report and compare_subjects need a configured AI gateway.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/report"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_subject",
		Description: "Register a person whose body composition is tracked",
	}, s.handleAddSubject)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_subjects",
		Description: "List all tracked subjects",
	}, s.handleListSubjects)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_subject",
		Description: "Delete a subject and all their measurements",
	}, s.handleDeleteSubject)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_measurement",
		Description: "Record a bioimpedance measurement for a subject",
	}, s.handleAddMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_measurements",
		Description: "List a subject's measurements, oldest first",
	}, s.handleListMeasurements)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_measurement",
		Description: "Delete a measurement by ID or ID prefix",
	}, s.handleDeleteMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "evaluate",
		Description: "Score a set of report values against the healthy reference bands",
	}, s.handleEvaluate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "subject_card",
		Description: "Score a subject's latest measurement and show protein guidance",
	}, s.handleSubjectCard)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "trend",
		Description: "Overall score of every measurement of a subject",
	}, s.handleTrend)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "protein_range",
		Description: "Daily protein intake range in grams for a body weight",
	}, s.handleProteinRange)

	if s.ai != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "extract_report",
			Description: "Read values from a photo of a body-composition report",
		}, s.handleExtractReport)

		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "compare_subjects",
			Description: "Comparative narrative across every subject's progress",
		}, s.handleCompareSubjects)
	}
}

// Tool input/output types

type addSubjectInput struct {
	Name           string `json:"name" jsonschema:"Subject name, unique"`
	Gender         string `json:"gender" jsonschema:"male or female"`
	ProteinProfile string `json:"protein_profile,omitempty" jsonschema:"active or sedentary; defaults by gender"`
	Description    string `json:"description,omitempty" jsonschema:"Free-form context such as age, height or medication"`
}

type subjectOutput struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	ProteinProfile string `json:"protein_profile"`
	Message        string `json:"message"`
}

type subjectInput struct {
	Subject string `json:"subject" jsonschema:"Subject name or ID prefix"`
}

type addMeasurementInput struct {
	Subject         string             `json:"subject" jsonschema:"Subject name or ID prefix"`
	Values          map[string]float64 `json:"values" jsonschema:"Report values keyed by field name (weight, bmi, body_fat_percent, muscle_rate_percent, visceral_fat, body_water_percent, protein_percent, ...)"`
	WeekNumber      int                `json:"week_number,omitempty" jsonschema:"Protocol week; defaults to the next week"`
	MeasurementDate string             `json:"measurement_date,omitempty" jsonschema:"Date as YYYY-MM-DD; defaults to today"`
	Dose            float64            `json:"dose,omitempty" jsonschema:"Medication dose in mg"`
	Status          string             `json:"status,omitempty" jsonschema:"Free-form status note"`
}

type measurementOutput struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	WeekNumber int    `json:"week_number"`
	Date       string `json:"measurement_date"`
	Fields     int    `json:"fields"`
	Message    string `json:"message"`
}

type listMeasurementsInput struct {
	Subject string `json:"subject" jsonschema:"Subject name or ID prefix"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Keep only the most recent N (default all)"`
}

type deleteMeasurementInput struct {
	ID string `json:"id" jsonschema:"Measurement ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type evaluateInput struct {
	Gender string             `json:"gender" jsonschema:"male or female"`
	Values map[string]float64 `json:"values" jsonschema:"Report values keyed by field name"`
	Policy string             `json:"policy,omitempty" jsonschema:"Missing metric policy: worst_case (default) or exclude"`
}

type cardInput struct {
	Subject string `json:"subject" jsonschema:"Subject name or ID prefix"`
	Policy  string `json:"policy,omitempty" jsonschema:"Missing metric policy: worst_case (default) or exclude"`
}

type trendInput struct {
	Subject string `json:"subject" jsonschema:"Subject name or ID prefix"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Keep only the most recent N (default all)"`
	Policy  string `json:"policy,omitempty" jsonschema:"Missing metric policy: worst_case (default) or exclude"`
}

type proteinInput struct {
	Subject  string  `json:"subject,omitempty" jsonschema:"Subject name or ID prefix; supplies the profile and latest weight"`
	WeightKg float64 `json:"weight_kg,omitempty" jsonschema:"Body weight in kg; defaults to the subject's latest weight"`
	Profile  string  `json:"profile,omitempty" jsonschema:"active or sedentary, used without a subject"`
}

type proteinOutput struct {
	WeightKg    float64 `json:"weight_kg"`
	Profile     string  `json:"profile"`
	Min         int     `json:"min_grams"`
	Max         int     `json:"max_grams"`
	Recommended int     `json:"recommended_grams"`
	Message     string  `json:"message"`
}

type extractInput struct {
	Subject   string `json:"subject" jsonschema:"Subject name or ID prefix"`
	ImagePath string `json:"image_path" jsonschema:"Path to a PNG or JPEG photo of the report"`
	Save      bool   `json:"save,omitempty" jsonschema:"Store the extracted values as a new measurement"`
}

type compareInput struct{}

// Tool handlers

func (s *Server) handleAddSubject(ctx context.Context, req *mcp.CallToolRequest, input addSubjectInput) (*mcp.CallToolResult, subjectOutput, error) {
	if input.Name == "" {
		return nil, subjectOutput{}, fmt.Errorf("name is required")
	}
	gender, err := models.ParseGender(input.Gender)
	if err != nil {
		return nil, subjectOutput{}, err
	}

	subject := models.NewSubject(input.Name, gender)
	if input.ProteinProfile != "" {
		p, err := models.ParseProteinProfile(input.ProteinProfile)
		if err != nil {
			return nil, subjectOutput{}, err
		}
		subject.WithProteinProfile(p)
	}
	if input.Description != "" {
		subject.WithDescription(input.Description)
	}

	if err := s.repo.CreateSubject(subject); err != nil {
		return nil, subjectOutput{}, fmt.Errorf("failed to create subject: %w", err)
	}

	return nil, subjectOutput{
		ID:             subject.ID.String()[:8],
		Name:           subject.Name,
		Gender:         string(subject.Gender),
		ProteinProfile: string(subject.ProteinProfile),
		Message:        fmt.Sprintf("Added subject %s (ID: %s)", subject.Name, subject.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListSubjects(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, map[string]any{"message": "No subjects found."}, nil
	}
	return nil, subjects, nil
}

func (s *Server) handleDeleteSubject(ctx context.Context, req *mcp.CallToolRequest, input subjectInput) (*mcp.CallToolResult, simpleOutput, error) {
	subject, err := s.repo.GetSubject(input.Subject)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("subject not found: %s", input.Subject)
	}
	if err := s.repo.DeleteSubject(subject.ID.String()); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete subject: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted subject %s and their measurements", subject.Name),
	}, nil
}

func (s *Server) handleAddMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addMeasurementInput) (*mcp.CallToolResult, measurementOutput, error) {
	subject, err := s.repo.GetSubject(input.Subject)
	if err != nil {
		return nil, measurementOutput{}, fmt.Errorf("subject not found: %s", input.Subject)
	}

	reading, err := models.ReadingFromValues(input.Values)
	if err != nil {
		return nil, measurementOutput{}, err
	}

	m := models.NewMeasurement(subject.ID, ai.Sanitize(reading))
	if input.WeekNumber > 0 {
		m.WithWeek(input.WeekNumber)
	}
	if input.MeasurementDate != "" {
		d, err := time.Parse(storage.DateLayout, input.MeasurementDate)
		if err != nil {
			return nil, measurementOutput{}, fmt.Errorf("invalid measurement_date %q (use YYYY-MM-DD)", input.MeasurementDate)
		}
		m.WithDate(d)
	}
	if input.Dose > 0 {
		m.WithDose(input.Dose)
	}
	if input.Status != "" {
		m.WithStatus(input.Status)
	}

	if err := s.repo.CreateMeasurement(m); err != nil {
		return nil, measurementOutput{}, fmt.Errorf("failed to create measurement: %w", err)
	}

	return nil, measurementOutput{
		ID:         m.ID.String()[:8],
		Subject:    subject.Name,
		WeekNumber: m.WeekNumber,
		Date:       m.MeasuredOn.Format(storage.DateLayout),
		Fields:     m.Reading.Count(),
		Message: fmt.Sprintf("Added week %d measurement for %s with %d values (ID: %s)",
			m.WeekNumber, subject.Name, m.Reading.Count(), m.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListMeasurements(ctx context.Context, req *mcp.CallToolRequest, input listMeasurementsInput) (*mcp.CallToolResult, any, error) {
	subject, err := s.repo.GetSubject(input.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("subject not found: %s", input.Subject)
	}

	ms, err := s.repo.ListMeasurements(subject.ID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	if len(ms) == 0 {
		return nil, map[string]any{"message": "No measurements found."}, nil
	}
	return nil, ms, nil
}

func (s *Server) handleDeleteMeasurement(ctx context.Context, req *mcp.CallToolRequest, input deleteMeasurementInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteMeasurement(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete measurement: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted measurement: %s", input.ID),
	}, nil
}

func (s *Server) evaluatorFor(policy string) (*scoring.Evaluator, error) {
	if policy == "" {
		return s.evaluator, nil
	}
	p, err := scoring.ParseMissingMetricPolicy(policy)
	if err != nil {
		return nil, err
	}
	return scoring.NewEvaluator(p), nil
}

func (s *Server) handleEvaluate(ctx context.Context, req *mcp.CallToolRequest, input evaluateInput) (*mcp.CallToolResult, any, error) {
	gender, err := models.ParseGender(input.Gender)
	if err != nil {
		return nil, nil, err
	}
	reading, err := models.ReadingFromValues(input.Values)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.evaluatorFor(input.Policy)
	if err != nil {
		return nil, nil, err
	}
	return nil, ev.Evaluate(reading, gender), nil
}

func (s *Server) handleSubjectCard(ctx context.Context, req *mcp.CallToolRequest, input cardInput) (*mcp.CallToolResult, any, error) {
	ev, err := s.evaluatorFor(input.Policy)
	if err != nil {
		return nil, nil, err
	}
	card, err := report.BuildCard(s.repo, input.Subject, ev)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("subject not found: %s", input.Subject)
	}
	if err != nil {
		return nil, nil, err
	}
	return nil, card, nil
}

func (s *Server) handleTrend(ctx context.Context, req *mcp.CallToolRequest, input trendInput) (*mcp.CallToolResult, any, error) {
	subject, err := s.repo.GetSubject(input.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("subject not found: %s", input.Subject)
	}
	ev, err := s.evaluatorFor(input.Policy)
	if err != nil {
		return nil, nil, err
	}
	points, err := report.Trend(s.repo, subject, ev, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trend: %w", err)
	}
	if len(points) == 0 {
		return nil, map[string]any{"message": "No measurements found."}, nil
	}
	return nil, points, nil
}

func (s *Server) handleProteinRange(ctx context.Context, req *mcp.CallToolRequest, input proteinInput) (*mcp.CallToolResult, proteinOutput, error) {
	var (
		intake  scoring.Intake
		weight  = input.WeightKg
		profile models.ProteinProfile
	)

	switch {
	case input.Subject != "":
		subject, err := s.repo.GetSubject(input.Subject)
		if err != nil {
			return nil, proteinOutput{}, fmt.Errorf("subject not found: %s", input.Subject)
		}
		intake, weight, err = report.ProteinFor(s.repo, subject, input.WeightKg)
		if err != nil {
			return nil, proteinOutput{}, err
		}
		profile = subject.ProteinProfile
	case input.WeightKg > 0:
		p, err := models.ParseProteinProfile(input.Profile)
		if err != nil {
			return nil, proteinOutput{}, err
		}
		profile = p
		intake = scoring.ProteinRange(weight, profile)
	default:
		return nil, proteinOutput{}, fmt.Errorf("give a subject or a positive weight_kg")
	}

	return nil, proteinOutput{
		WeightKg:    weight,
		Profile:     string(profile),
		Min:         intake.Min,
		Max:         intake.Max,
		Recommended: intake.Recommended,
		Message: fmt.Sprintf("%d-%d g/day at %.1f kg (recommended %d g)",
			intake.Min, intake.Max, weight, intake.Recommended),
	}, nil
}

func (s *Server) handleExtractReport(ctx context.Context, req *mcp.CallToolRequest, input extractInput) (*mcp.CallToolResult, any, error) {
	subject, err := s.repo.GetSubject(input.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("subject not found: %s", input.Subject)
	}

	info, err := os.Stat(input.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read image: %w", err)
	}
	if info.Size() > ai.MaxImageBytes {
		return nil, nil, ai.ErrImageTooLarge
	}
	image, err := os.ReadFile(input.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read image: %w", err)
	}

	analysis, err := s.ai.Analyze(ctx, subject, image)
	if errors.Is(err, ai.ErrMalformedExtraction) {
		s.logger.Warn("malformed extraction", zap.String("subject", subject.Name), zap.Error(err))
		return nil, map[string]any{"message": "No values could be read from the report.", "data": models.Reading{}}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}

	result := map[string]any{
		"data":     analysis.Extraction.Reading,
		"insights": analysis.Insights,
	}
	if d := analysis.Extraction.MeasuredOn; d != nil {
		result["measurement_date"] = d.Format(storage.DateLayout)
	}

	if input.Save && analysis.Extraction.Reading.Count() > 0 {
		m := models.NewMeasurement(subject.ID, analysis.Extraction.Reading)
		if d := analysis.Extraction.MeasuredOn; d != nil {
			m.WithDate(*d)
		}
		if err := s.repo.CreateMeasurement(m); err != nil {
			return nil, nil, fmt.Errorf("failed to save measurement: %w", err)
		}
		result["saved_id"] = m.ID.String()[:8]
		result["week_number"] = m.WeekNumber
	}
	return nil, result, nil
}

func (s *Server) handleCompareSubjects(ctx context.Context, req *mcp.CallToolRequest, input compareInput) (*mcp.CallToolResult, any, error) {
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, nil, fmt.Errorf("no subjects to compare")
	}

	summaries := make([]ai.SubjectSummary, 0, len(subjects))
	for _, subj := range subjects {
		ms, err := s.repo.ListMeasurements(subj.ID, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list measurements: %w", err)
		}
		summaries = append(summaries, ai.BuildSummary(subj, ms))
	}

	text, err := s.ai.Narrator.CompareSubjects(ctx, summaries)
	if err != nil {
		return nil, nil, fmt.Errorf("comparison failed: %w", err)
	}
	return nil, map[string]any{"summaries": summaries, "insights": text}, nil
}
