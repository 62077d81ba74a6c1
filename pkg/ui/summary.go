package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RunSummary is what the summary table shows at the end of a run
type RunSummary struct {
	DegreeTitle     string
	Years           int
	Semesters       int
	Subjects        int
	TotalCredits    int
	UnparsedCredits int
	GuideLinks      int
	Downloaded      int
	Failed          int
	DownloadsRun    bool
	Bytes           int64
	DownloadTime    time.Duration
	JSONPath        string
	TextPath        string
	PDFDir          string
	Elapsed         time.Duration
}

// RenderSummary writes the run summary as a table
func RenderSummary(w io.Writer, s RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Item", "Value"})

	title := s.DegreeTitle
	if title == "" {
		title = "(no title found)"
	}
	t.AppendRow(table.Row{"Degree", title})
	t.AppendRow(table.Row{"Years", s.Years})
	t.AppendRow(table.Row{"Semesters", s.Semesters})
	t.AppendRow(table.Row{"Subjects", s.Subjects})
	t.AppendRow(table.Row{"Credits", s.TotalCredits})
	if s.UnparsedCredits > 0 {
		t.AppendRow(table.Row{"Unparsed credits", s.UnparsedCredits})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Guide links", s.GuideLinks})
	if s.DownloadsRun {
		t.AppendRow(table.Row{"Downloaded", fmt.Sprintf("%d/%d (%s)", s.Downloaded, s.GuideLinks, FormatBytes(s.Bytes))})
		if s.Failed > 0 {
			t.AppendRow(table.Row{"Failed", s.Failed})
		}
		t.AppendRow(table.Row{"Download time", FormatDuration(s.DownloadTime)})
		t.AppendRow(table.Row{"PDF directory", s.PDFDir})
	} else {
		t.AppendRow(table.Row{"Downloaded", "skipped"})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"JSON report", s.JSONPath})
	t.AppendRow(table.Row{"Text report", s.TextPath})
	t.AppendRow(table.Row{"Elapsed", FormatDuration(s.Elapsed)})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
