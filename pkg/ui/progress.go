package ui

import (
	"fmt"
	"time"
)

// DownloadProgress prints one line per finished download
type DownloadProgress struct {
	printer   *Printer
	total     int
	bytes     int64
	errors    int
	startTime time.Time
}

// NewDownloadProgress announces a batch of total downloads
func NewDownloadProgress(p *Printer, total int) *DownloadProgress {
	p.Line(fmt.Sprintf("Downloading %d PDFs...", total))
	return &DownloadProgress{printer: p, total: total, startTime: time.Now()}
}

// Downloaded reports a saved file. downloaded is the running success count.
func (d *DownloadProgress) Downloaded(filename string, size int, downloaded int) {
	d.bytes += int64(size)
	d.printer.Line(fmt.Sprintf("%s Downloaded: %s (%d/%d)", d.printer.paint(Green, "✓"), filename, downloaded, d.total))
}

// Failed reports a download that could not be fetched or saved
func (d *DownloadProgress) Failed(filename string, err error) {
	d.errors++
	d.printer.Line(fmt.Sprintf("%s Error downloading %s: %v", d.printer.paint(Red, "✗"), filename, err))
}

// Complete prints the closing line of the batch
func (d *DownloadProgress) Complete(downloaded int) {
	d.printer.Line(fmt.Sprintf("Download completed: %d/%d PDFs", downloaded, d.total))
}

// Bytes returns the number of bytes saved so far
func (d *DownloadProgress) Bytes() int64 {
	return d.bytes
}

// Elapsed returns the time since the batch started
func (d *DownloadProgress) Elapsed() time.Duration {
	return time.Since(d.startTime)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatBytes formats bytes in a human-readable way
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
