package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/valuecalc/internal/config"
	"github.com/iwvelando/valuecalc/internal/engine"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/mathutil"
	"github.com/iwvelando/valuecalc/pkg/output"
	"github.com/iwvelando/valuecalc/pkg/testutil"
)

const (
	tcoWorkbook     = "../../test/tco_workbook.yaml"
	coolingWorkbook = "../../test/cooling_workbook.yaml"
)

// runCLI executes the root command and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig points the service at baseURL and keeps logs quiet.
func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "service:\n  baseURL: " + baseURL + "\n  timeout: 5s\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func newEngineServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(constants.CalculatePath, engine.New(nil).Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", cfg: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "warning alias", cfg: config.LoggingConfig{Level: "warning"}},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = logger.Sync()
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "valuecalc.log")
	logger, err := initializeLogger(config.LoggingConfig{Level: "info", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestSelfURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://127.0.0.1:8080",
		"0.0.0.0:9000":   "http://127.0.0.1:9000",
		"localhost:8080": "http://localhost:8080",
		"[::]:8080":      "http://127.0.0.1:8080",
	}
	for in, want := range tests {
		if got := selfURL(in); got != want {
			t.Errorf("selfURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssembleCommand(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	out, err := runCLI(t, "--config", cfg, "assemble", tcoWorkbook, "--set", "x=20")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	var payload struct {
		Inputs map[string]float64 `json:"inputs"`
		Target []string           `json:"target"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not a payload: %v\n%s", err, out)
	}
	if payload.Inputs["x"] != 20 || payload.Inputs["y"] != 15 || payload.Inputs["a"] != 2 {
		t.Errorf("unexpected inputs %v", payload.Inputs)
	}
	if len(payload.Target) != 3 || payload.Target[2] != "TCO" {
		t.Errorf("unexpected target %v", payload.Target)
	}
}

func TestAssembleCommandRejectsBadSet(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	if _, err := runCLI(t, "--config", cfg, "assemble", tcoWorkbook, "--set", "novalue"); err == nil {
		t.Fatal("expected error for malformed --set")
	}
}

func TestCalculateCommand(t *testing.T) {
	srv := newEngineServer(t)
	cfg := writeConfig(t, srv.URL)

	out, err := runCLI(t, "--config", cfg, "--output-format", "json", "calculate", tcoWorkbook)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}

	var reports []output.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("output is not JSON reports: %v\n%s", err, out)
	}
	report := testutil.FindReport(reports, "Cooling TCO")
	if value, ok := testutil.RowValue(report, "TCO"); !ok || value != 50 {
		t.Errorf("expected TCO 50, got %+v", reports)
	}
}

func TestCalculateCommandServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	_, err := runCLI(t, "--config", cfg, "calculate", tcoWorkbook)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected a 500 status error, got %v", err)
	}
}

func TestCalculateCommandLocalEngine(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	out, err := runCLI(t, "--config", cfg, "--output-format", "csv", "calculate", tcoWorkbook, "--local-engine", "--set", "y=5")
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	// a*x + a*y = 2*10 + 2*5
	if !strings.Contains(out, "TCO,EUR,30.00") {
		t.Errorf("unexpected csv output:\n%s", out)
	}
}

func TestCompareCommand(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	xlsxPath := filepath.Join(t.TempDir(), "comparison.xlsx")

	out, err := runCLI(t, "--config", cfg, "--output-format", "csv", "compare", coolingWorkbook, "--local-engine", "--xlsx", xlsxPath)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	for _, want := range []string{"value (air)", "value (immersion)", "420480.00", "275940.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if info, err := os.Stat(xlsxPath); err != nil || info.Size() == 0 {
		t.Errorf("xlsx not written: %v", err)
	}
}

func TestCompareCommandJSON(t *testing.T) {
	srv := newEngineServer(t)
	cfg := writeConfig(t, srv.URL)

	out, err := runCLI(t, "--config", cfg, "--output-format", "json", "compare", coolingWorkbook)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	var reports []output.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("output is not JSON reports: %v\n%s", err, out)
	}

	expected := map[string]float64{"air": 420480, "immersion": 275940}
	for name, want := range expected {
		got, ok := testutil.RowValue(testutil.FindReport(reports, name), "Annual Energy Cost")
		if !ok || !mathutil.WithinTolerance(got, want, 1e-6) {
			t.Errorf("%s: Annual Energy Cost = %v, expected %v", name, got, want)
		}
	}
}

func TestCompareCommandSetReachesVariants(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")

	out, err := runCLI(t, "--config", cfg, "--output-format", "csv", "compare", coolingWorkbook, "--local-engine", "--set", "it-load=200")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	// Both variants declare it-load: 100 of their own.
	for _, want := range []string{"840960.00", "551880.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompareCommandWithoutVariants(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	if _, err := runCLI(t, "--config", cfg, "compare", tcoWorkbook, "--local-engine"); err == nil {
		t.Fatal("expected error for a workbook without variants")
	}
}

func TestValidateCommand(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")

	out, err := runCLI(t, "--config", cfg, "validate", tcoWorkbook)
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Cooling TCO: ok") {
		t.Errorf("unexpected output:\n%s", out)
	}

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	content := `solution:
  name: Broken
  parameters:
    - id: x
      name: x
      provided_by: user
  calculations:
    - id: c
      name: c
      formula: x*2
`
	if err := os.WriteFile(broken, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "--config", cfg, "validate", broken)
	if err == nil {
		t.Fatalf("expected validation failure:\n%s", out)
	}
	if !strings.Contains(out, "Broken: invalid") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")
	if _, err := runCLI(t, "--config", cfg, "--output-format", "yaml", "assemble", tcoWorkbook); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	if _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "assemble", tcoWorkbook); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}
