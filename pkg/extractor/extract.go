// Package extractor turns a degree catalog page into a DegreeStructure.
//
// Parsing is split in two: the page is reduced to a flat sequence of Rows
// with goquery, and the rows are folded into the structure by Step, which
// knows nothing about HTML.
package extractor

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"degreescraper/pkg/config"
	errs "degreescraper/pkg/errors"
	"degreescraper/pkg/logger"
	"degreescraper/pkg/models"
)

// Result is an extracted structure together with its diagnostics
type Result struct {
	Structure   *models.DegreeStructure
	Diagnostics Diagnostics
}

// Extractor reads catalog pages
type Extractor struct {
	tableSelector string
	titleSelector string
	vocab         Vocabulary
	marker        string
	logger        logger.Logger
}

// New creates an extractor from the extractor settings
func New(cfg config.ExtractorConfig, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		tableSelector: cfg.TableSelector,
		titleSelector: cfg.TitleSelector,
		vocab:         VocabularyFromConfig(cfg),
		marker:        cfg.PDFMarker,
		logger:        log.WithField("component", "extractor"),
	}
}

// Step folds one row using this extractor's vocabulary and guide marker.
// Relative guide links are resolved against base.
func (e *Extractor) Step(acc Accumulator, row Row, base *url.URL) Accumulator {
	return e.rules(base).Step(acc, row)
}

func (e *Extractor) rules(base *url.URL) rules {
	return rules{vocab: e.vocab, marker: e.marker, base: base}
}

// Extract parses the page and builds the structure. A page without a title
// or without subject tables gives an empty structure, not an error.
func (e *Extractor) Extract(r io.Reader, base *url.URL) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "", "failed to parse catalog page: %v", err)
	}

	title := strings.TrimSpace(doc.Find(e.titleSelector).First().Text())
	acc := NewAccumulator(title)
	step := e.rules(base)

	doc.Find(e.tableSelector).Each(func(_ int, table *goquery.Selection) {
		acc = acc.StartTable()
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			acc = step.Step(acc, RowFromSelection(tr))
		})
	})

	if title == "" {
		e.logger.Warn("degree title not found")
	}
	if acc.Diagnostics.Tables == 0 {
		e.logger.WarnWithFields("no subject tables found", map[string]interface{}{
			"selector": e.tableSelector,
		})
	}

	fields := acc.Diagnostics.Fields()
	fields["years"] = len(acc.Structure.Years)
	fields["subjects"] = acc.Structure.TotalSubjects()
	e.logger.InfoWithFields("extraction finished", fields)

	return &Result{Structure: acc.Structure, Diagnostics: acc.Diagnostics}, nil
}

// RowFromSelection reduces a tr element to a Row
func RowFromSelection(tr *goquery.Selection) Row {
	var row Row
	tr.Find("th").Each(func(_ int, th *goquery.Selection) {
		row.Headers = append(row.Headers, strings.TrimSpace(th.Text()))
	})
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		cell := Cell{Text: strings.TrimSpace(td.Text())}
		if href, ok := td.Find("a").First().Attr("href"); ok {
			cell.Href = href
			cell.HasLink = true
		}
		row.Cells = append(row.Cells, cell)
	})
	return row
}
