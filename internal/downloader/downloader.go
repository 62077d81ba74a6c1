// Package downloader fetches guide PDFs one at a time and stores them.
package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"degreescraper/pkg/logger"
	"degreescraper/pkg/models"
	"degreescraper/pkg/ratelimit"
	"degreescraper/pkg/storage"
)

// DownloadJob represents a single guide PDF to fetch
type DownloadJob struct {
	URL      string
	Code     string
	Filename string
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	Error    error
	Path     string
	Size     int
	Duration time.Duration
}

// Summary counts the outcome of a batch
type Summary struct {
	Total      int
	Downloaded int
	Failed     int
	Results    []DownloadResult
}

// PDFFetcher retrieves the bytes behind a URL
type PDFFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// PDFStorage persists a downloaded file
type PDFStorage interface {
	Save(r io.Reader, filename string) (string, error)
}

// ProgressFunc is called after every job with the running success count
type ProgressFunc func(result DownloadResult, downloaded, total int)

// Downloader runs a batch of download jobs sequentially
type Downloader struct {
	fetcher  PDFFetcher
	storage  PDFStorage
	limiter  ratelimit.Limiter
	logger   logger.Logger
	progress ProgressFunc
}

// New creates a downloader. The limiter is waited on before every job.
func New(fetcher PDFFetcher, store PDFStorage, limiter ratelimit.Limiter, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Downloader{
		fetcher: fetcher,
		storage: store,
		limiter: limiter,
		logger:  log.WithField("component", "downloader"),
	}
}

// OnProgress registers a callback invoked after every job
func (d *Downloader) OnProgress(fn ProgressFunc) {
	d.progress = fn
}

// JobsFromStructure returns one job per subject that links a guide PDF,
// in document order
func JobsFromStructure(s *models.DegreeStructure) []DownloadJob {
	var jobs []DownloadJob
	_ = s.Walk(func(_ *models.Year, _ *models.Semester, subj *models.Subject) error {
		if subj.HasPDF() {
			jobs = append(jobs, DownloadJob{
				URL:      *subj.PDFURL,
				Code:     subj.Code,
				Filename: storage.PDFFilename(subj.Code, subj.Name),
			})
		}
		return nil
	})
	return jobs
}

// Run processes the jobs in order. A failing job is recorded and the batch
// moves on. The returned error is non-nil only when ctx is cancelled, in
// which case the summary covers the jobs attempted so far.
func (d *Downloader) Run(ctx context.Context, jobs []DownloadJob) (Summary, error) {
	summary := Summary{Total: len(jobs)}

	logger.LogComponentStart(d.logger, "downloader", map[string]interface{}{
		"jobs": len(jobs),
	})

	for _, job := range jobs {
		if err := d.limiter.Wait(ctx); err != nil {
			return summary, fmt.Errorf("download batch interrupted: %w", err)
		}

		result := d.process(ctx, job)
		if ctx.Err() != nil && !result.Success {
			return summary, fmt.Errorf("download batch interrupted: %w", ctx.Err())
		}

		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.Downloaded++
		} else {
			summary.Failed++
		}

		if d.progress != nil {
			d.progress(result, summary.Downloaded, summary.Total)
		}
	}

	d.logger.InfoWithFields("download batch finished", map[string]interface{}{
		"total":      summary.Total,
		"downloaded": summary.Downloaded,
		"failed":     summary.Failed,
	})
	return summary, nil
}

// process handles a single download job
func (d *Downloader) process(ctx context.Context, job DownloadJob) DownloadResult {
	start := time.Now()
	result := DownloadResult{Job: job}

	d.logger.DebugWithFields("downloading guide", map[string]interface{}{
		"subject_code": job.Code,
		"url":          job.URL,
	})

	data, err := d.fetcher.Download(ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(d.logger, job.Code, job.Filename, result.Error)
		return result
	}
	result.Size = len(data)

	path, err := d.storage.Save(bytes.NewReader(data), job.Filename)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(d.logger, job.Code, job.Filename, result.Error)
		return result
	}

	result.Success = true
	result.Path = path
	result.Duration = time.Since(start)
	logger.LogDownload(d.logger, job.Code, job.Filename, nil)
	return result
}
