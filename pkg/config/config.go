package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the degree scraper
type Config struct {
	// HTTP session settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Retry policy for outbound requests
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Catalog page parsing settings
	Extractor ExtractorConfig `yaml:"extractor" json:"extractor"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HTTPConfig holds the HTTP session configuration
type HTTPConfig struct {
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// ExtractorConfig holds the selectors and heading vocabulary used on catalog pages
type ExtractorConfig struct {
	TableSelector  string   `yaml:"table_selector" json:"table_selector"`
	TitleSelector  string   `yaml:"title_selector" json:"title_selector"`
	YearTokens     []string `yaml:"year_tokens" json:"year_tokens"`
	SemesterTokens []string `yaml:"semester_tokens" json:"semester_tokens"`
	PDFMarker      string   `yaml:"pdf_marker" json:"pdf_marker"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	JSONFile string `yaml:"json_file" json:"json_file"`
	PDFDir   string `yaml:"pdf_dir" json:"pdf_dir"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Delay   time.Duration `yaml:"delay" json:"delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 0, // 0 means no cap
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    10 * time.Second,
			Multiplier:  2.0,
		},
		Extractor: ExtractorConfig{
			TableSelector:  "table.tabla_estandar",
			TitleSelector:  "h1#nombreTitulacion",
			YearTokens:     []string{"CURSO", "CUARTO", "TERCER", "SEGUNDO", "PRIMER"},
			SemesterTokens: []string{"SEMESTRE", "ANUALES"},
			PDFMarker:      "PDFGuiaPublica",
		},
		Output: OutputConfig{
			JSONFile: "degree_structure.json",
			PDFDir:   "pdfs",
		},
		Download: DownloadConfig{
			Enabled: true,
			Delay:   500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("DEGREESCRAPER_USER_AGENT"); userAgent != "" {
		c.HTTP.UserAgent = userAgent
	}
	if timeout := os.Getenv("DEGREESCRAPER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid DEGREESCRAPER_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}

	if attempts := os.Getenv("DEGREESCRAPER_MAX_RETRIES"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid DEGREESCRAPER_MAX_RETRIES: %w", err)
		}
		c.Retry.MaxAttempts = val
	}

	// Output locations
	if jsonFile := os.Getenv("DEGREESCRAPER_OUTPUT"); jsonFile != "" {
		c.Output.JSONFile = jsonFile
	}
	if pdfDir := os.Getenv("DEGREESCRAPER_PDF_DIR"); pdfDir != "" {
		c.Output.PDFDir = pdfDir
	}

	if delay := os.Getenv("DEGREESCRAPER_DOWNLOAD_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid DEGREESCRAPER_DOWNLOAD_DELAY: %w", err)
		}
		c.Download.Delay = d
	}
	if enabled := os.Getenv("DEGREESCRAPER_DOWNLOAD_ENABLED"); enabled != "" {
		c.Download.Enabled = strings.ToLower(enabled) == "true"
	}

	if logLevel := os.Getenv("DEGREESCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".degreescraper.yaml",
		".degreescraper.yml",
		filepath.Join(home, ".config", "degreescraper", "config.yaml"),
		filepath.Join(home, ".config", "degreescraper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.HTTP.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second cannot be negative"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.Retry.MaxAttempts > 10 {
		errs = append(errs, errors.New("max attempts should not exceed 10"))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("retry delays cannot be negative"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	if c.Extractor.TableSelector == "" {
		errs = append(errs, errors.New("table selector is required"))
	}
	if c.Extractor.TitleSelector == "" {
		errs = append(errs, errors.New("title selector is required"))
	}
	if len(c.Extractor.YearTokens) == 0 {
		errs = append(errs, errors.New("at least one year token is required"))
	}
	if len(c.Extractor.SemesterTokens) == 0 {
		errs = append(errs, errors.New("at least one semester token is required"))
	}
	if c.Extractor.PDFMarker == "" {
		errs = append(errs, errors.New("pdf marker is required"))
	}

	if c.Output.JSONFile == "" {
		errs = append(errs, errors.New("json output file is required"))
	} else if filepath.Ext(c.Output.JSONFile) == "" {
		errs = append(errs, errors.New("json output file needs an extension"))
	}
	if c.Output.PDFDir == "" {
		errs = append(errs, errors.New("pdf directory is required"))
	}

	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.JSONFile = output
	}
	if pdfDir, ok := flags["pdf-dir"].(string); ok && pdfDir != "" {
		c.Output.PDFDir = pdfDir
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Download.Delay = delay
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if attempts, ok := flags["max-retries"].(int); ok && attempts > 0 {
		c.Retry.MaxAttempts = attempts
	}
	if skip, ok := flags["skip-pdfs"].(bool); ok && skip {
		c.Download.Enabled = false
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".degreescraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ValidateCatalogURL checks that the catalog URL is absolute http(s)
func ValidateCatalogURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid catalog URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid catalog URL %q: missing host", raw)
	}
	return u, nil
}
