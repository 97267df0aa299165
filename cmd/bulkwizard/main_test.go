package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/shivamuserology/bulk-change/internal/config"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestDemoHappyPath(t *testing.T) {
	var buf bytes.Buffer
	err := runDemo(&buf, demoOptions{Outcome: "happy_path", Permission: "full_access", Employees: 5})
	if err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Step 1", "Selected 5 employees", "Step 7", "Execution finished: success", "Logged: Updated 5 employees"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDemoPartialFailure(t *testing.T) {
	var buf bytes.Buffer
	err := runDemo(&buf, demoOptions{Outcome: "partial_failure", Permission: "full_access", Employees: 12})
	if err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	if !strings.Contains(buf.String(), "Succeeded 10, failed 2") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestDemoBlockedByValidation(t *testing.T) {
	var buf bytes.Buffer
	err := runDemo(&buf, demoOptions{Outcome: "with_errors", Permission: "full_access", Employees: 5})
	if err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Validation blocked") {
		t.Errorf("expected validation to block:\n%s", out)
	}
	if strings.Contains(out, "Step 6") {
		t.Error("demo should stop before execution")
	}
}

func TestDemoRejectsUnknownScenario(t *testing.T) {
	if err := runDemo(&bytes.Buffer{}, demoOptions{Outcome: "nope", Permission: "full_access"}); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestPrintSteps(t *testing.T) {
	var buf bytes.Buffer
	if err := printSteps(&buf, false); err != nil {
		t.Fatalf("printSteps: %v", err)
	}
	if !strings.Contains(buf.String(), "7. Post-Execution") {
		t.Errorf("steps output:\n%s", buf.String())
	}

	buf.Reset()
	if err := printSteps(&buf, true); err != nil {
		t.Fatalf("printSteps dot: %v", err)
	}
	if !strings.Contains(buf.String(), "digraph") {
		t.Errorf("dot output:\n%s", buf.String())
	}
}

func TestPrintSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := printSchema(&buf, "full_access"); err != nil {
		t.Fatalf("printSchema: %v", err)
	}
	if !strings.Contains(buf.String(), "Job Title") {
		t.Errorf("schema output:\n%s", buf.String())
	}
	if err := printSchema(&buf, "bogus"); err == nil {
		t.Error("expected error for unknown permission scenario")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var buf bytes.Buffer
	if err := writeDefaultConfig(&buf, path, false); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	cfg, _, err := config.LoadFrom(path, func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != config.DefaultConfig().Server.Port {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if err := writeDefaultConfig(&buf, path, false); err == nil {
		t.Error("expected error when config exists")
	}
	if err := writeDefaultConfig(&buf, path, true); err != nil {
		t.Errorf("force overwrite: %v", err)
	}
}
