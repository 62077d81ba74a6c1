// Package scraper runs the catalog pipeline: fetch the degree page, extract
// its structure, write the reports and download the guide PDFs.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"degreescraper/internal/downloader"
	"degreescraper/pkg/config"
	"degreescraper/pkg/extractor"
	"degreescraper/pkg/logger"
	"degreescraper/pkg/models"
	"degreescraper/pkg/ratelimit"
	"degreescraper/pkg/report"
	"degreescraper/pkg/session"
	"degreescraper/pkg/storage"
	"degreescraper/pkg/ui"
)

// Result describes a finished run
type Result struct {
	Structure   *models.DegreeStructure
	Diagnostics extractor.Diagnostics
	Report      report.Summary
	JSONPath    string
	TextPath    string
	// Downloads is nil when the download stage was skipped
	Downloads *Downloads
	Elapsed   time.Duration
}

// Downloads describes the download stage of a run
type Downloads struct {
	downloader.Summary
	Dir     string
	Bytes   int64
	Elapsed time.Duration
	// Files is the number of distinct files written. It is lower than
	// Downloaded when two subjects map to the same file name.
	Files int
}

// Summary converts the result into the table shown at the end of a run
func (r *Result) Summary() ui.RunSummary {
	s := ui.RunSummary{
		DegreeTitle:     r.Structure.DegreeTitle,
		Years:           len(r.Structure.Years),
		Semesters:       r.Structure.TotalSemesters(),
		Subjects:        r.Report.TotalSubjects,
		TotalCredits:    r.Report.TotalCredits,
		UnparsedCredits: r.Report.UnparsedCredits,
		GuideLinks:      r.Structure.PDFCount(),
		JSONPath:        r.JSONPath,
		TextPath:        r.TextPath,
		Elapsed:         r.Elapsed,
	}
	if r.Downloads != nil {
		s.DownloadsRun = true
		s.Downloaded = r.Downloads.Downloaded
		s.Failed = r.Downloads.Failed
		s.PDFDir = r.Downloads.Dir
		s.Bytes = r.Downloads.Bytes
		s.DownloadTime = r.Downloads.Elapsed
	}
	return s
}

// Scraper orchestrates a single catalog run
type Scraper struct {
	config    *config.Config
	session   *session.Client
	extractor *extractor.Extractor
	printer   *ui.Printer
	logger    logger.Logger
}

// New creates a scraper and the HTTP session it owns
func New(cfg *config.Config, log logger.Logger, printer *ui.Printer) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if printer == nil {
		printer = ui.Default()
	}

	client, err := session.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create http session: %w", err)
	}

	return &Scraper{
		config:    cfg,
		session:   client,
		extractor: extractor.New(cfg.Extractor, log),
		printer:   printer,
		logger:    log.WithField("component", "scraper"),
	}, nil
}

// Run executes the whole pipeline against catalogURL. Failing to fetch the
// page or to write the reports aborts the run; individual PDF failures do not.
func (s *Scraper) Run(ctx context.Context, catalogURL string) (*Result, error) {
	start := time.Now()

	s.printer.Line("Extracting degree structure...")
	extracted, err := s.Extract(ctx, catalogURL)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Structure:   extracted.Structure,
		Diagnostics: extracted.Diagnostics,
		JSONPath:    s.config.Output.JSONFile,
		TextPath:    report.TextPath(s.config.Output.JSONFile),
	}

	s.printer.Line("Generating reports...")
	sum, err := s.GenerateReports(result.Structure)
	if err != nil {
		return nil, err
	}
	result.Report = sum

	if s.config.Download.Enabled {
		s.printer.Line("Downloading PDFs...")
		downloads, err := s.DownloadPDFs(ctx, result.Structure)
		result.Downloads = downloads
		if err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}
	} else {
		s.printer.Warning("Skipping PDF downloads")
	}

	result.Elapsed = time.Since(start)
	s.logger.InfoWithFields("run finished", map[string]interface{}{
		"subjects": result.Report.TotalSubjects,
		"credits":  result.Report.TotalCredits,
		"elapsed":  result.Elapsed,
	})
	s.printer.Success("✓ Process completed!")
	return result, nil
}

// Extract fetches the catalog page and builds the degree structure
func (s *Scraper) Extract(ctx context.Context, catalogURL string) (*extractor.Result, error) {
	if _, err := config.ValidateCatalogURL(catalogURL); err != nil {
		return nil, err
	}

	base, err := session.BaseURL(catalogURL)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("fetching catalog page", map[string]interface{}{
		"url": catalogURL,
	})
	page, err := s.session.FetchPage(ctx, catalogURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", catalogURL).Error("Failed to fetch catalog page")
		return nil, fmt.Errorf("failed to fetch catalog page: %w", err)
	}

	return s.ExtractPage(page, base)
}

// ExtractPage builds the degree structure from an already fetched page
func (s *Scraper) ExtractPage(page []byte, base *url.URL) (*extractor.Result, error) {
	res, err := s.extractor.Extract(bytes.NewReader(page), base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog page: %w", err)
	}
	if res.Diagnostics.UnresolvedLinks > 0 {
		s.printer.Warning(fmt.Sprintf("%d guide links could not be resolved", res.Diagnostics.UnresolvedLinks))
	}
	return res, nil
}

// GenerateReports writes the JSON document and the text report
func (s *Scraper) GenerateReports(structure *models.DegreeStructure) (report.Summary, error) {
	sum, err := report.Generate(s.config.Output.JSONFile, structure)
	if err != nil {
		s.logger.WithError(err).Error("Failed to write reports")
		return sum, fmt.Errorf("failed to generate reports: %w", err)
	}

	if sum.UnparsedCredits > 0 {
		s.logger.WarnWithFields("credits left out of the total", map[string]interface{}{
			"unparsed": sum.UnparsedCredits,
		})
	}
	s.logger.InfoWithFields("reports written", map[string]interface{}{
		"json":     s.config.Output.JSONFile,
		"text":     report.TextPath(s.config.Output.JSONFile),
		"subjects": sum.TotalSubjects,
	})
	return sum, nil
}

// DownloadPDFs fetches every linked guide into the PDF directory, pausing
// between consecutive downloads. On cancellation the partial outcome is
// returned with the error.
func (s *Scraper) DownloadPDFs(ctx context.Context, structure *models.DegreeStructure) (*Downloads, error) {
	store, err := storage.NewManager(s.config.Output.PDFDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare pdf directory: %w", err)
	}

	jobs := downloader.JobsFromStructure(structure)
	progress := ui.NewDownloadProgress(s.printer, len(jobs))

	d := downloader.New(s.session, store, ratelimit.NewFixedDelay(s.config.Download.Delay), s.logger)
	d.OnProgress(func(result downloader.DownloadResult, downloaded, _ int) {
		if result.Success {
			progress.Downloaded(result.Job.Filename, result.Size, downloaded)
			return
		}
		progress.Failed(result.Job.Filename, result.Error)
	})

	summary, runErr := d.Run(ctx, jobs)
	out := &Downloads{
		Summary: summary,
		Dir:     store.OutputDir(),
		Bytes:   progress.Bytes(),
		Elapsed: progress.Elapsed(),
		Files:   store.SavedCount(),
	}
	if runErr != nil {
		return out, runErr
	}

	progress.Complete(summary.Downloaded)
	if overwritten := out.Downloaded - out.Files; overwritten > 0 {
		s.logger.WarnWithFields("guides written to an existing file name", map[string]interface{}{
			"downloaded": out.Downloaded,
			"files":      out.Files,
		})
		s.printer.Warning(fmt.Sprintf("%d downloads overwrote a guide with the same file name", overwritten))
	}
	return out, nil
}
