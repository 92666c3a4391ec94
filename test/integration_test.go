// ABOUTME: Integration tests for bodycomp CLI.
// ABOUTME: Builds the binary and runs a full subject-to-export workflow.
package test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "bodycomp")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/bodycomp")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	dataDir := t.TempDir()
	configDir := t.TempDir()

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = append(os.Environ(),
			"BODYCOMP_DATA_DIR="+dataDir,
			"BODYCOMP_BACKEND=sqlite",
			"BODYCOMP_GATEWAY_API_KEY=",
			"BODYCOMP_LOG_LEVEL=error",
			"XDG_CONFIG_HOME="+configDir,
		)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	output, err := run("subject", "add", "Reneer", "--gender", "male")
	if err != nil {
		t.Fatalf("Failed to add subject: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added Reneer") {
		t.Errorf("Expected 'Added Reneer' in output, got: %s", output)
	}

	output, err = run("add", "reneer", "weight=104", "bmi=31.2", "body_fat_percent=32", "--date", "2025-01-06")
	if err != nil {
		t.Fatalf("Failed to add measurement: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added week 1") {
		t.Errorf("Expected 'Added week 1' in output, got: %s", output)
	}

	output, err = run("add", "reneer", "weight=102.5", "bmi=30.7", "body_fat_percent=31", "visceral_fat=13")
	if err != nil {
		t.Fatalf("Failed to add second measurement: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added week 2") {
		t.Errorf("Expected 'Added week 2' in output, got: %s", output)
	}

	output, err = run("list", "reneer")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "wk1") || !strings.Contains(output, "wk2") {
		t.Errorf("Expected both weeks in list output, got: %s", output)
	}

	output, err = run("card", "reneer")
	if err != nil {
		t.Fatalf("Failed to show card: %v\n%s", err, output)
	}
	for _, want := range []string{"Week 2", "Overall", "Protein", "154-205 g/day"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in card output, got: %s", want, output)
		}
	}

	output, err = run("evaluate", "--gender", "male", "bmi=22", "--policy", "exclude")
	if err != nil {
		t.Fatalf("Failed to evaluate: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Healthy") {
		t.Errorf("Expected 'Healthy' for an ideal BMI under exclude, got: %s", output)
	}

	output, err = run("extract", "reneer", "missing.png")
	if err == nil {
		t.Errorf("Expected extract to fail without an image, got: %s", output)
	}

	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	var exported struct {
		Subjects     []json.RawMessage `json:"subjects"`
		Measurements []json.RawMessage `json:"measurements"`
	}
	if err := json.Unmarshal([]byte(output), &exported); err != nil {
		t.Fatalf("Export is not valid JSON: %v\n%s", err, output)
	}
	if len(exported.Subjects) != 1 || len(exported.Measurements) != 2 {
		t.Errorf("Expected 1 subject and 2 measurements, got %d and %d",
			len(exported.Subjects), len(exported.Measurements))
	}
}
