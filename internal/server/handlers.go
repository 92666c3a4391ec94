// ABOUTME: Request handlers for subjects, measurements, scoring, and AI routes.
// ABOUTME: Errors are returned as echo.HTTPError values.
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/models"
	"github.com/harperreed/bodycomp/internal/report"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	AI     bool   `json:"ai"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", AI: s.ai != nil})
}

// CreateSubjectRequest is the body of POST /api/v1/subjects.
type CreateSubjectRequest struct {
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	ProteinProfile string `json:"protein_profile,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (s *Server) handleListSubjects(c echo.Context) error {
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return storageError(err)
	}
	if subjects == nil {
		subjects = []*models.Subject{}
	}
	return c.JSON(http.StatusOK, subjects)
}

func (s *Server) handleCreateSubject(c echo.Context) error {
	var req CreateSubjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subject := models.NewSubject(req.Name, gender)
	if req.ProteinProfile != "" {
		p, err := models.ParseProteinProfile(req.ProteinProfile)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		subject.WithProteinProfile(p)
	}
	if req.Description != "" {
		subject.WithDescription(req.Description)
	}

	err = s.repo.CreateSubject(subject)
	if errors.Is(err, storage.ErrDuplicateName) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return storageError(err)
	}
	s.logger.Info("created subject", zap.String("name", subject.Name), zap.String("id", subject.ID.String()))
	return c.JSON(http.StatusCreated, subject)
}

func (s *Server) handleGetSubject(c echo.Context) error {
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, subject)
}

func (s *Server) handleDeleteSubject(c echo.Context) error {
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}
	if err := s.repo.DeleteSubject(subject.ID.String()); err != nil {
		return storageError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateMeasurementRequest is the body of POST .../measurements.
// Zero WeekNumber means next week; empty MeasurementDate means today.
type CreateMeasurementRequest struct {
	WeekNumber      int            `json:"week_number,omitempty"`
	MeasurementDate string         `json:"measurement_date,omitempty"`
	Dose            *float64       `json:"dose,omitempty"`
	Status          *string        `json:"status,omitempty"`
	Reading         models.Reading `json:"reading"`
}

func (s *Server) handleListMeasurements(c echo.Context) error {
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	ms, err := s.repo.ListMeasurements(subject.ID, limit)
	if err != nil {
		return storageError(err)
	}
	if ms == nil {
		ms = []*models.Measurement{}
	}
	return c.JSON(http.StatusOK, ms)
}

func (s *Server) handleCreateMeasurement(c echo.Context) error {
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}

	var req CreateMeasurementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := buildMeasurement(subject.ID, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.repo.CreateMeasurement(m); err != nil {
		return storageError(err)
	}
	s.metrics.MeasurementsCreated.Inc()
	s.logger.Info("created measurement",
		zap.String("subject", subject.Name),
		zap.Int("week", m.WeekNumber),
		zap.Int("fields", m.Reading.Count()))
	return c.JSON(http.StatusCreated, m)
}

func buildMeasurement(subjectID uuid.UUID, req CreateMeasurementRequest) (*models.Measurement, error) {
	m := models.NewMeasurement(subjectID, ai.Sanitize(req.Reading))
	if req.WeekNumber < 0 {
		return nil, errors.New("week_number must be positive")
	}
	m.WithWeek(req.WeekNumber)
	if req.MeasurementDate != "" {
		d, err := time.Parse(storage.DateLayout, req.MeasurementDate)
		if err != nil {
			return nil, errors.New("measurement_date must be YYYY-MM-DD")
		}
		m.WithDate(d)
	}
	m.Dose = req.Dose
	m.Status = req.Status
	return m, nil
}

func (s *Server) handleDeleteMeasurement(c echo.Context) error {
	if err := s.repo.DeleteMeasurement(c.Param("id")); err != nil {
		return storageError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCard(c echo.Context) error {
	ev, err := s.evaluatorFor(c)
	if err != nil {
		return err
	}
	card, err := report.BuildCard(s.repo, c.Param("subject"), ev)
	if err != nil {
		return storageError(err)
	}
	if card.Evaluation != nil {
		s.metrics.EvaluationsTotal.WithLabelValues(string(card.Evaluation.Overall.Tier)).Inc()
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) handleTrend(c echo.Context) error {
	ev, err := s.evaluatorFor(c)
	if err != nil {
		return err
	}
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	points, err := report.Trend(s.repo, subject, ev, limit)
	if err != nil {
		return storageError(err)
	}
	return c.JSON(http.StatusOK, points)
}

// ProteinResponse is the body of GET .../protein.
type ProteinResponse struct {
	WeightKg float64              `json:"weight_kg"`
	Profile  string               `json:"profile"`
	Intake   scoring.Intake       `json:"intake"`
	Guide    scoring.ProteinGuide `json:"guide"`
}

func (s *Server) handleProtein(c echo.Context) error {
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}

	var weight float64
	if w := c.QueryParam("weight"); w != "" {
		weight, err = strconv.ParseFloat(w, 64)
		if err != nil || weight <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "weight must be a positive number")
		}
	}

	intake, used, err := report.ProteinFor(s.repo, subject, weight)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	guide, _ := scoring.Guide(subject.ProteinProfile)
	return c.JSON(http.StatusOK, ProteinResponse{
		WeightKg: used,
		Profile:  string(subject.ProteinProfile),
		Intake:   intake,
		Guide:    guide,
	})
}

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Gender  string         `json:"gender"`
	Reading models.Reading `json:"reading"`
}

func (s *Server) handleEvaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	evaluator, err := s.evaluatorFor(c)
	if err != nil {
		return err
	}
	ev := evaluator.Evaluate(req.Reading, gender)
	s.metrics.EvaluationsTotal.WithLabelValues(string(ev.Overall.Tier)).Inc()
	return c.JSON(http.StatusOK, ev)
}

// evaluatorFor honors a ?policy= override. An unknown policy is a 400.
func (s *Server) evaluatorFor(c echo.Context) (*scoring.Evaluator, error) {
	raw := c.QueryParam("policy")
	if raw == "" {
		return s.evaluator, nil
	}
	p, err := scoring.ParseMissingMetricPolicy(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return scoring.NewEvaluator(p), nil
}

// ExtractResponse is the body of POST .../extract.
type ExtractResponse struct {
	Data     models.Reading      `json:"data"`
	Date     string              `json:"measurement_date,omitempty"`
	Insights string              `json:"insights"`
	Warning  string              `json:"warning,omitempty"`
	Saved    *models.Measurement `json:"saved,omitempty"`
}

func (s *Server) handleExtract(c echo.Context) error {
	if s.ai == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ai.ErrNotConfigured.Error())
	}
	subject, err := s.repo.GetSubject(c.Param("subject"))
	if err != nil {
		return storageError(err)
	}

	image, err := readUpload(c)
	if err != nil {
		return err
	}

	analysis, err := s.ai.Analyze(c.Request().Context(), subject, image)
	resp := ExtractResponse{}
	switch {
	case errors.Is(err, ai.ErrMalformedExtraction):
		s.metrics.ExtractionsTotal.WithLabelValues("malformed").Inc()
		resp.Warning = "could not read values from the report"
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, ai.ErrImageTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ai.ErrEmptyImage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrUnsupportedImage):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		s.metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("extraction failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	s.metrics.ExtractionsTotal.WithLabelValues("ok").Inc()

	resp.Data = analysis.Extraction.Reading
	resp.Insights = analysis.Insights
	if d := analysis.Extraction.MeasuredOn; d != nil {
		resp.Date = d.Format(storage.DateLayout)
	}

	if c.FormValue("save") == "true" && resp.Data.Count() > 0 {
		m := models.NewMeasurement(subject.ID, resp.Data)
		if d := analysis.Extraction.MeasuredOn; d != nil {
			m.WithDate(*d)
		}
		if err := s.repo.CreateMeasurement(m); err != nil {
			return storageError(err)
		}
		s.metrics.MeasurementsCreated.Inc()
		resp.Saved = m
	}
	return c.JSON(http.StatusOK, resp)
}

func readUpload(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "multipart field \"image\" is required")
	}
	if fh.Size > ai.MaxImageBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, ai.ErrImageTooLarge.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, ai.MaxImageBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return data, nil
}

// ComparisonResponse is the body of GET /api/v1/insights/comparison.
type ComparisonResponse struct {
	Summaries []ai.SubjectSummary `json:"summaries"`
	Insights  string              `json:"insights"`
}

func (s *Server) handleComparison(c echo.Context) error {
	if s.ai == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ai.ErrNotConfigured.Error())
	}
	subjects, err := s.repo.ListSubjects()
	if err != nil {
		return storageError(err)
	}
	if len(subjects) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no subjects to compare")
	}

	summaries := make([]ai.SubjectSummary, 0, len(subjects))
	for _, subj := range subjects {
		ms, err := s.repo.ListMeasurements(subj.ID, 0)
		if err != nil {
			return storageError(err)
		}
		summaries = append(summaries, ai.BuildSummary(subj, ms))
	}

	text, err := s.ai.Narrator.CompareSubjects(c.Request().Context(), summaries)
	if err != nil {
		s.logger.Warn("comparison failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, ComparisonResponse{Summaries: summaries, Insights: text})
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
