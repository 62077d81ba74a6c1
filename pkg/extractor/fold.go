package extractor

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"degreescraper/pkg/models"
)

// minCodeLength is the shortest code that is not accepted; codes must be longer
const minCodeLength = 3

// Cell is a td cell reduced to its text and first link
type Cell struct {
	Text    string
	Href    string
	HasLink bool
}

// Row is a tr element reduced to the texts of its th cells and its td cells
type Row struct {
	Headers []string
	Cells   []Cell
}

// Diagnostics counts what the fold did with each row
type Diagnostics struct {
	Tables          int `json:"tables"`
	RowsScanned     int `json:"rows_scanned"`
	RowsIgnored     int `json:"rows_ignored"`
	TooFewCells     int `json:"too_few_cells"`
	ShortCodes      int `json:"short_codes"`
	OrphanSemesters int `json:"orphan_semesters"`
	UnresolvedLinks int `json:"unresolved_links"`
}

// Rejected is the number of rows read as subjects but discarded
func (d Diagnostics) Rejected() int {
	return d.TooFewCells + d.ShortCodes
}

// Fields returns the counters as log fields
func (d Diagnostics) Fields() map[string]interface{} {
	return map[string]interface{}{
		"tables":            d.Tables,
		"rows_scanned":      d.RowsScanned,
		"rows_ignored":      d.RowsIgnored,
		"subjects_rejected": d.Rejected(),
		"orphan_semesters":  d.OrphanSemesters,
		"unresolved_links":  d.UnresolvedLinks,
	}
}

// Accumulator is the state carried across rows: the structure built so far
// and cursors to the open year and semester (-1 when none).
type Accumulator struct {
	Structure   *models.DegreeStructure
	Diagnostics Diagnostics

	year     int
	semester int
}

// NewAccumulator starts a fold for a degree with the given title
func NewAccumulator(title string) Accumulator {
	return Accumulator{
		Structure: models.NewDegreeStructure(title),
		year:      -1,
		semester:  -1,
	}
}

// StartTable closes any open year and semester. Headings never carry over
// from one table to the next.
func (a Accumulator) StartTable() Accumulator {
	a.year = -1
	a.semester = -1
	a.Diagnostics.Tables++
	return a
}

// rules holds what Step needs besides the row itself
type rules struct {
	vocab  Vocabulary
	marker string
	base   *url.URL
}

// Step folds one row into the accumulator. The first matching rule wins:
// a year heading opens a year, a semester heading under an open year opens
// a semester, any other row under an open semester is read as a subject,
// and everything else is ignored.
func (r rules) Step(acc Accumulator, row Row) Accumulator {
	acc.Diagnostics.RowsScanned++
	kind, label := r.vocab.ClassifyRow(row)

	if kind == YearHeading {
		acc.Structure.Years = append(acc.Structure.Years, models.NewYear(label))
		acc.year = len(acc.Structure.Years) - 1
		acc.semester = -1
		return acc
	}

	if kind == SemesterHeading {
		if acc.year >= 0 {
			year := &acc.Structure.Years[acc.year]
			year.Semesters = append(year.Semesters, models.NewSemester(label))
			acc.semester = len(year.Semesters) - 1
			return acc
		}
		acc.Diagnostics.OrphanSemesters++
	}

	if acc.year < 0 || acc.semester < 0 {
		acc.Diagnostics.RowsIgnored++
		return acc
	}

	subject, ok := r.subject(row, &acc.Diagnostics)
	if ok {
		semester := &acc.Structure.Years[acc.year].Semesters[acc.semester]
		semester.Subjects = append(semester.Subjects, subject)
	}
	return acc
}

// subject reads code, name, type and credits from the first four cells.
// A guide link is only looked for in the last cell of rows with more than
// four cells.
func (r rules) subject(row Row, diag *Diagnostics) (models.Subject, bool) {
	if len(row.Cells) < 4 {
		diag.TooFewCells++
		return models.Subject{}, false
	}

	code := strings.TrimSpace(row.Cells[0].Text)
	if utf8.RuneCountInString(code) <= minCodeLength {
		diag.ShortCodes++
		return models.Subject{}, false
	}

	subject := models.Subject{
		Code:    code,
		Name:    strings.TrimSpace(row.Cells[1].Text),
		Type:    strings.TrimSpace(row.Cells[2].Text),
		Credits: strings.TrimSpace(row.Cells[3].Text),
	}

	if len(row.Cells) > 4 {
		last := row.Cells[len(row.Cells)-1]
		if last.HasLink && r.marker != "" && strings.Contains(last.Href, r.marker) {
			if link, ok := r.resolve(last.Href); ok {
				subject.PDFURL = &link
			} else {
				diag.UnresolvedLinks++
			}
		}
	}

	return subject, true
}

// resolve turns a guide href into an absolute URL. An href that does not
// parse, such as one with a bad percent escape, is kept as written and
// joined to the base as plain text.
func (r rules) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return joinRaw(r.base, href)
	}
	if r.base == nil {
		if !ref.IsAbs() {
			return "", false
		}
		return ref.String(), true
	}
	return r.base.ResolveReference(ref).String(), true
}

// joinRaw joins href to the scheme://host base without parsing it
func joinRaw(base *url.URL, href string) (string, bool) {
	if strings.Contains(href, "://") {
		return href, true
	}
	if base == nil || base.Host == "" {
		return "", false
	}
	if strings.HasPrefix(href, "//") {
		return base.Scheme + ":" + href, true
	}
	return base.Scheme + "://" + base.Host + "/" + strings.TrimPrefix(href, "/"), true
}
