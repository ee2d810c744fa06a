package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/valuecalc/pkg/constants"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: filepath.Join("..", "..", "config.yaml.example"),
		},
		{
			name:       "Defaults only",
			configPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Service.BaseURL != constants.DefaultServiceBaseURL {
		t.Errorf("BaseURL = %q, expected %q", conf.Service.BaseURL, constants.DefaultServiceBaseURL)
	}
	if conf.Service.Timeout != constants.DefaultServiceTimeoutSeconds*time.Second {
		t.Errorf("Timeout = %v, expected %ds", conf.Service.Timeout, constants.DefaultServiceTimeoutSeconds)
	}
	if conf.Store.Path != constants.DefaultStorePath {
		t.Errorf("Store.Path = %q, expected %q", conf.Store.Path, constants.DefaultStorePath)
	}
}

func TestLoadConfigurationFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
service:
  baseURL: http://calc.internal:9000/
  timeout: 5s
store:
  path: /var/lib/valuecalc.db
logging:
  level: debug
  format: console
output:
  format: csv
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Service.BaseURL != "http://calc.internal:9000" {
		t.Errorf("BaseURL = %q, expected trailing slash trimmed", conf.Service.BaseURL)
	}
	if conf.Service.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, expected 5s", conf.Service.Timeout)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("Logging = %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("Output.Format = %q, expected csv", conf.Output.Format)
	}

	t.Setenv("VALUECALC_SERVICE_BASEURL", "http://override:8000")
	t.Setenv("VALUECALC_SERVICE_TIMEOUT", "45s")
	conf, err = LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Service.BaseURL != "http://override:8000" {
		t.Errorf("BaseURL = %q, expected environment override", conf.Service.BaseURL)
	}
	if conf.Service.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, expected 45s", conf.Service.Timeout)
	}
}

func TestLoadConfigurationDotEnv(t *testing.T) {
	const key = "VALUECALC_STORE_PATH"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s already set in the environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	writeFile(t, dir, ".env", key+"=/tmp/from-dotenv.db\n")
	path := writeFile(t, dir, "config.yaml", "store:\n  path: from-file.db\n")

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Store.Path != "/tmp/from-dotenv.db" {
		t.Errorf("Store.Path = %q, expected value from .env", conf.Store.Path)
	}
}

func TestLoadConfigurationInvalidOutputFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "output:\n  format: xml\n")
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		conf     Configuration
		contains []string
	}{
		{
			name: "healthy",
			conf: Configuration{
				Service: ServiceConfig{BaseURL: "http://localhost:8000", Timeout: time.Second},
				Store:   StoreConfig{Path: "x.db"},
			},
		},
		{
			name:     "relative url and no timeout",
			conf:     Configuration{Service: ServiceConfig{BaseURL: "localhost"}, Store: StoreConfig{Path: "x.db"}},
			contains: []string{"not an absolute URL", "timeout is disabled"},
		},
		{
			name:     "everything missing",
			conf:     Configuration{Service: ServiceConfig{Timeout: -1}},
			contains: []string{"base URL is empty", "timeout is negative", "Store path is empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			if len(warnings) != len(tt.contains) {
				t.Fatalf("expected %d warnings, got %v", len(tt.contains), warnings)
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("warnings %v missing %q", warnings, want)
				}
			}
		})
	}
}
