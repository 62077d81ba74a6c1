package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"degreescraper/pkg/config"
	"degreescraper/pkg/logger"
	"degreescraper/pkg/scraper"
	"degreescraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool

	// Run flags
	outputFile string
	pdfDir     string
	delay      time.Duration
	timeout    time.Duration
	maxRetries int
	skipPDFs   bool
)

const usageLine = "Usage: degreescraper <DEGREE_URL>"

var errReported = errors.New("already reported")

// rootCmd scrapes one degree catalog page
var rootCmd = &cobra.Command{
	Use:   "degreescraper [flags] <DEGREE_URL>",
	Short: "Extract a degree's curriculum and download its subject guides",
	Long: `degreescraper reads a university degree catalog page and extracts its
curriculum (years, semesters and subjects) into degree_structure.json and a
human readable degree_structure.txt. The guide PDF linked from each subject
is downloaded into the PDF directory, one at a time with a pause in between.`,
	Example: `  # Scrape a degree with default settings
  degreescraper https://www.uned.es/universidad/inicio/estudios/grados/grado-en-matematicas.html

  # Only write the reports
  degreescraper --skip-pdfs <DEGREE_URL>

  # Custom locations and a slower pace
  degreescraper -o out/plan.json --pdf-dir out/guides --delay 2s <DEGREE_URL>`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
	},
	RunE: runScrape,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			ui.PrintError("Error", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .degreescraper.yaml or ~/.config/degreescraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "JSON output file (default degree_structure.json)")
	rootCmd.Flags().StringVar(&pdfDir, "pdf-dir", "", "directory for guide PDFs (default pdfs)")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "pause between PDF downloads (default 500ms)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	rootCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "attempts per HTTP request (default 3)")
	rootCmd.Flags().BoolVar(&skipPDFs, "skip-pdfs", false, "write the reports without downloading PDFs")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// changedFlags collects the flags set on the command line into the map
// understood by config.MergeCommandLineFlags
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}

	set("output", outputFile)
	set("pdf-dir", pdfDir)
	set("delay", delay)
	set("timeout", timeout)
	set("max-retries", maxRetries)
	set("skip-pdfs", skipPDFs)
	set("log-level", logLevel)
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		ui.PrintError(usageLine)
		return errReported
	}
	catalogURL := strings.TrimSpace(args[0])

	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	// one log file may hold many runs
	log := logger.GetLogger().WithField("run_id", uuid.NewString())
	log.WithFields(map[string]interface{}{
		"version": version,
		"url":     catalogURL,
	}).Info("degreescraper starting")

	printer := ui.Default()
	printer.Info("Degree page", catalogURL)

	s, err := scraper.New(cfg, log, printer)
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}

	result, err := s.Run(cmd.Context(), catalogURL)
	if err != nil {
		log.WithError(err).WithField("url", catalogURL).Error("Scrape failed")
		if errors.Is(err, context.Canceled) {
			printer.Warning("Interrupted")
		}
		return err
	}

	if !printer.Quiet() {
		fmt.Fprintln(printer.Writer())
		ui.RenderSummary(printer.Writer(), result.Summary())
	}
	return nil
}
