package extractor

import (
	"strings"

	"degreescraper/pkg/config"
)

// Kind is the role of a table row in the catalog layout
type Kind int

const (
	None Kind = iota
	YearHeading
	SemesterHeading
)

func (k Kind) String() string {
	switch k {
	case YearHeading:
		return "year"
	case SemesterHeading:
		return "semester"
	default:
		return "none"
	}
}

// Vocabulary holds the literal tokens that mark heading rows. Matching is
// a case-sensitive substring test.
type Vocabulary struct {
	YearTokens     []string
	SemesterTokens []string
}

// DefaultVocabulary returns the tokens used on UNED catalog pages
func DefaultVocabulary() Vocabulary {
	return VocabularyFromConfig(config.DefaultConfig().Extractor)
}

// VocabularyFromConfig builds a vocabulary from the extractor settings
func VocabularyFromConfig(cfg config.ExtractorConfig) Vocabulary {
	return Vocabulary{
		YearTokens:     append([]string(nil), cfg.YearTokens...),
		SemesterTokens: append([]string(nil), cfg.SemesterTokens...),
	}
}

// Classify reports which heading a single cell names. Year tokens only
// count in header (th) cells and semester tokens only in data (td) cells.
func (v Vocabulary) Classify(text string, header bool) Kind {
	switch {
	case header && containsAny(text, v.YearTokens):
		return YearHeading
	case !header && containsAny(text, v.SemesterTokens):
		return SemesterHeading
	default:
		return None
	}
}

// ClassifyRow applies Classify to every cell of a row, header cells first.
// The returned label is the text of the cell that matched.
func (v Vocabulary) ClassifyRow(row Row) (Kind, string) {
	for _, header := range row.Headers {
		if kind := v.Classify(header, true); kind != None {
			return kind, header
		}
	}
	for _, cell := range row.Cells {
		if kind := v.Classify(cell.Text, false); kind != None {
			return kind, cell.Text
		}
	}
	return None, ""
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(text, token) {
			return true
		}
	}
	return false
}
