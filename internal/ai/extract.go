// ABOUTME: Vision-model extraction of bioimpedance readings from report images.
// ABOUTME: Parses tolerant JSON, drops implausible values, derives percentages from masses.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/bodycomp/internal/models"
)

// MaxImageBytes is the largest report image accepted for extraction.
const MaxImageBytes = 10 << 20

var (
	// ErrMalformedExtraction means the model reply was not a JSON object.
	// The accompanying Extraction is empty, never nil.
	ErrMalformedExtraction = errors.New("malformed extraction response")

	// ErrImageTooLarge is returned for images over MaxImageBytes.
	ErrImageTooLarge = fmt.Errorf("image exceeds %d MB limit", MaxImageBytes>>20)

	// ErrEmptyImage is returned for zero-length uploads.
	ErrEmptyImage = errors.New("image is empty")

	// ErrUnsupportedImage is returned when the upload does not sniff as an image.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Completer is the part of Client the extractor and narrator need.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// Extraction is a partial reading pulled from a report.
type Extraction struct {
	Reading models.Reading `json:"reading"`
	// MeasuredOn is the report's test date, when the model found one.
	MeasuredOn *time.Time `json:"measurement_date,omitempty"`
}

// Extractor turns a report image into a partial reading.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (*Extraction, error)
}

// VisionExtractor extracts readings with a vision-capable chat model.
type VisionExtractor struct {
	client Completer
	model  string
}

// NewVisionExtractor creates an extractor using model on client.
func NewVisionExtractor(client Completer, model string) *VisionExtractor {
	return &VisionExtractor{client: client, model: model}
}

var _ Extractor = (*VisionExtractor)(nil)

const extractionPrompt = `You extract bioimpedance data from photos of Fitdays (or similar) body-composition reports.

A Fitdays report has sections such as "Body composition analysis" (weight, fat mass, bone mass,
protein mass, body water, muscle mass, skeletal muscle), "Obesity analysis" (BMI, body fat rate),
"Body score", "Weight control" and "Other indicators" (visceral fat grade, basal metabolic rate,
fat-free body weight, subcutaneous fat, SMI, body age, WHR).

Reply with ONLY a JSON object, no markdown, with these keys:
{
  "measurement_date": "YYYY-MM-DD" (the report's test time if shown),
  "weight": kg,
  "bmi": kg/m2,
  "body_fat_percent": %,
  "fat_mass": kg,
  "lean_mass": fat-free body weight in kg,
  "muscle_mass": kg,
  "muscle_rate_percent": % (muscle_mass / weight * 100 if not printed),
  "skeletal_muscle_percent": %,
  "bone_mass": kg,
  "protein_mass": kg,
  "protein_percent": % (protein_mass / weight * 100 if not printed),
  "body_water_percent": %,
  "moisture_content": kg,
  "subcutaneous_fat_percent": %,
  "visceral_fat": grade,
  "bmr": kcal,
  "metabolic_age": years,
  "whr": waist/hip ratio
}

Rules:
- Values are printed like "102.0 (54.0-73.1)"; take only the first number.
- Use null for anything not found.`

const extractionUserText = "Extract the bioimpedance data from this report:"

// Extract sends image to the vision model and parses its reply.
// Malformed replies return an empty Extraction with ErrMalformedExtraction.
func (e *VisionExtractor) Extract(ctx context.Context, image []byte) (*Extraction, error) {
	dataURL, err := ImageDataURL(image)
	if err != nil {
		return nil, err
	}

	reply, err := e.client.Complete(ctx, e.model, []Message{
		SystemMessage(extractionPrompt),
		UserImageMessage(extractionUserText, dataURL),
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return ParseExtraction(reply)
}

// ImageDataURL validates image size and encodes it as a data URL.
func ImageDataURL(image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if len(image) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w %q", ErrUnsupportedImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image), nil
}

var fencePattern = regexp.MustCompile("```(?:json)?")

// StripFences removes markdown code fences around a model reply.
func StripFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

var leadingNumber = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?`)

// ParseExtraction parses a model reply into an Extraction.
// Unknown keys are ignored; numbers may arrive as JSON numbers or strings.
func ParseExtraction(reply string) (*Extraction, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(StripFences(reply)), &raw); err != nil {
		return &Extraction{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	out := &Extraction{}
	for _, f := range models.AllFields {
		if v, ok := toFloat(raw[string(f)]); ok {
			out.Reading.Set(f, &v)
		}
	}
	if s, ok := raw["measurement_date"].(string); ok {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
			out.MeasuredOn = &t
		}
	}

	out.Reading = Sanitize(out.Reading)
	out.Reading = DeriveMissing(out.Reading)
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(x))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		return f, err == nil
	}
	return 0, false
}

// Sanitize drops non-finite or negative values, and percentages above 100.
func Sanitize(r models.Reading) models.Reading {
	return r.Sanitized()
}

// DeriveMissing fills muscle_rate_percent and protein_percent from their
// masses and weight when the report did not print them.
func DeriveMissing(r models.Reading) models.Reading {
	if r.Weight == nil || *r.Weight <= 0 {
		return r
	}
	w := *r.Weight
	if r.MuscleRatePercent == nil && r.MuscleMass != nil {
		r.MuscleRatePercent = percentOf(*r.MuscleMass, w)
	}
	if r.ProteinPercent == nil && r.ProteinMass != nil {
		r.ProteinPercent = percentOf(*r.ProteinMass, w)
	}
	return r
}

func percentOf(part, whole float64) *float64 {
	p := math.Round(part/whole*1000) / 10
	if p > 100 {
		return nil
	}
	return &p
}
