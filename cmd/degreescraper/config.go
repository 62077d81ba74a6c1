package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"degreescraper/pkg/config"
	"degreescraper/pkg/ui"
)

const defaultConfigPath = ".degreescraper.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage degreescraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (DEGREESCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.degreescraper.yaml' in the current directory
unless a different path is given with --config.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# degreescraper configuration file
#
# Every option can also be set through environment variables prefixed with
# DEGREESCRAPER_, for example DEGREESCRAPER_PDF_DIR or DEGREESCRAPER_DOWNLOAD_DELAY.

http:
  # Browser-like User-Agent sent with every request
  user_agent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
  # Per-request timeout
  timeout: 30s
  # Cap on outbound requests per second (0 disables the cap)
  requests_per_second: 0

retry:
  # Attempts per request, including the first one
  max_attempts: 3
  base_delay: 1s
  max_delay: 10s
  multiplier: 2.0

extractor:
  # CSS selectors for the subject tables and the degree title
  table_selector: "table.tabla_estandar"
  title_selector: "h1#nombreTitulacion"
  # Heading rows containing one of these tokens start a year (th cells)
  year_tokens: ["CURSO", "CUARTO", "TERCER", "SEGUNDO", "PRIMER"]
  # or a semester (td cells)
  semester_tokens: ["SEMESTRE", "ANUALES"]
  # Only links containing this marker are treated as guide PDFs
  pdf_marker: "PDFGuiaPublica"

output:
  # The text report is written next to it with a .txt extension
  json_file: "degree_structure.json"
  pdf_dir: "pdfs"

download:
  enabled: true
  # Pause between consecutive PDF downloads
  delay: 500ms

logging:
  # debug, info, warn, error or disabled
  level: "warn"
  # Optional log file, appended to
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(cmd.OutOrStdout(), "  rm %s\n", configPath)
		return errReported
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Adjust the selectors and heading tokens for your catalog")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'degreescraper config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Start with 'degreescraper <DEGREE_URL>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (DEGREESCRAPER_*)")
	fmt.Fprintln(out, "3. .env files")
	if configFile != "" {
		fmt.Fprintf(out, "4. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "4. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ui.PrintSuccess("Configuration is valid")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  JSON output: %s\n", cfg.Output.JSONFile)
	fmt.Fprintf(out, "  PDF directory: %s\n", cfg.Output.PDFDir)
	fmt.Fprintf(out, "  Downloads enabled: %t\n", cfg.Download.Enabled)
	fmt.Fprintf(out, "  Download delay: %s\n", cfg.Download.Delay)
	fmt.Fprintf(out, "  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
