package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Download.Delay != 500*time.Millisecond {
		t.Errorf("Expected default download delay to be 500ms, got %v", config.Download.Delay)
	}

	if config.Output.JSONFile != "degree_structure.json" {
		t.Errorf("Expected default json file to be degree_structure.json, got %s", config.Output.JSONFile)
	}

	if config.Output.PDFDir != "pdfs" {
		t.Errorf("Expected default pdf dir to be pdfs, got %s", config.Output.PDFDir)
	}

	if config.Extractor.PDFMarker != "PDFGuiaPublica" {
		t.Errorf("Expected default pdf marker to be PDFGuiaPublica, got %s", config.Extractor.PDFMarker)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DEGREESCRAPER_USER_AGENT", "test-agent")
	t.Setenv("DEGREESCRAPER_TIMEOUT", "5s")
	t.Setenv("DEGREESCRAPER_MAX_RETRIES", "4")
	t.Setenv("DEGREESCRAPER_OUTPUT", "out/plan.json")
	t.Setenv("DEGREESCRAPER_PDF_DIR", "/tmp/guides")
	t.Setenv("DEGREESCRAPER_DOWNLOAD_DELAY", "1s")
	t.Setenv("DEGREESCRAPER_DOWNLOAD_ENABLED", "false")
	t.Setenv("DEGREESCRAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.HTTP.UserAgent != "test-agent" {
		t.Errorf("Expected user agent to be test-agent, got %s", config.HTTP.UserAgent)
	}
	if config.HTTP.Timeout != 5*time.Second {
		t.Errorf("Expected timeout to be 5s, got %v", config.HTTP.Timeout)
	}
	if config.Retry.MaxAttempts != 4 {
		t.Errorf("Expected max attempts to be 4, got %d", config.Retry.MaxAttempts)
	}
	if config.Output.JSONFile != "out/plan.json" {
		t.Errorf("Expected json file to be out/plan.json, got %s", config.Output.JSONFile)
	}
	if config.Output.PDFDir != "/tmp/guides" {
		t.Errorf("Expected pdf dir to be /tmp/guides, got %s", config.Output.PDFDir)
	}
	if config.Download.Delay != time.Second {
		t.Errorf("Expected download delay to be 1s, got %v", config.Download.Delay)
	}
	if config.Download.Enabled {
		t.Error("Expected downloads to be disabled")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("DEGREESCRAPER_DOWNLOAD_DELAY", "soon")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected an error for an unparsable duration")
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
http:
  user_agent: "yaml-agent"
  timeout: 12s
extractor:
  year_tokens: ["YEAR"]
  semester_tokens: ["TERM", "ANNUAL"]
output:
  json_file: "plan.json"
  pdf_dir: "guides"
download:
  enabled: true
  delay: 250ms
logging:
  level: "info"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.HTTP.UserAgent != "yaml-agent" {
		t.Errorf("Expected user agent to be yaml-agent, got %s", config.HTTP.UserAgent)
	}
	if config.HTTP.Timeout != 12*time.Second {
		t.Errorf("Expected timeout to be 12s, got %v", config.HTTP.Timeout)
	}
	if len(config.Extractor.YearTokens) != 1 || config.Extractor.YearTokens[0] != "YEAR" {
		t.Errorf("Expected year tokens to be [YEAR], got %v", config.Extractor.YearTokens)
	}
	if len(config.Extractor.SemesterTokens) != 2 {
		t.Errorf("Expected two semester tokens, got %v", config.Extractor.SemesterTokens)
	}
	if config.Download.Delay != 250*time.Millisecond {
		t.Errorf("Expected delay to be 250ms, got %v", config.Download.Delay)
	}
	// Values absent from the file keep their defaults
	if config.Extractor.PDFMarker != "PDFGuiaPublica" {
		t.Errorf("Expected pdf marker default to survive, got %s", config.Extractor.PDFMarker)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "http timeout must be positive"},
		{"no attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "max attempts must be at least 1"},
		{"no year tokens", func(c *Config) { c.Extractor.YearTokens = nil }, "at least one year token is required"},
		{"json without extension", func(c *Config) { c.Output.JSONFile = "structure" }, "json output file needs an extension"},
		{"negative delay", func(c *Config) { c.Download.Delay = -time.Second }, "download delay cannot be negative"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"output":      "custom.json",
		"pdf-dir":     "custom-pdfs",
		"delay":       2 * time.Second,
		"timeout":     time.Minute,
		"max-retries": 5,
		"skip-pdfs":   true,
		"log-level":   "debug",
	})

	if config.Output.JSONFile != "custom.json" {
		t.Errorf("Expected json file custom.json, got %s", config.Output.JSONFile)
	}
	if config.Output.PDFDir != "custom-pdfs" {
		t.Errorf("Expected pdf dir custom-pdfs, got %s", config.Output.PDFDir)
	}
	if config.Download.Delay != 2*time.Second {
		t.Errorf("Expected delay 2s, got %v", config.Download.Delay)
	}
	if config.HTTP.Timeout != time.Minute {
		t.Errorf("Expected timeout 1m, got %v", config.HTTP.Timeout)
	}
	if config.Retry.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", config.Retry.MaxAttempts)
	}
	if config.Download.Enabled {
		t.Error("Expected downloads to be disabled by skip-pdfs")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Output.PDFDir = "saved-pdfs"
	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.Output.PDFDir != "saved-pdfs" {
		t.Errorf("Expected pdf dir saved-pdfs, got %s", reloaded.Output.PDFDir)
	}
	if reloaded.Download.Delay != config.Download.Delay {
		t.Errorf("Expected delay %v, got %v", config.Download.Delay, reloaded.Download.Delay)
	}
}

func TestValidateCatalogURL(t *testing.T) {
	u, err := ValidateCatalogURL("https://www.uned.es/universidad/inicio/estudios/grados/grado-en-matematicas.html")
	if err != nil {
		t.Fatalf("Expected valid URL, got %v", err)
	}
	if u.Host != "www.uned.es" {
		t.Errorf("Expected host www.uned.es, got %s", u.Host)
	}

	for _, bad := range []string{"", "ftp://example.com/x", "/relative/path", "https://"} {
		if _, err := ValidateCatalogURL(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
