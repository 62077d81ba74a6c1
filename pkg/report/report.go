// Package report writes an extracted degree structure to disk as a JSON
// document and a plain text summary.
package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errs "degreescraper/pkg/errors"
	"degreescraper/pkg/models"
	"degreescraper/pkg/storage"
)

// Summary holds the totals printed at the end of the text report
type Summary struct {
	TotalSubjects int
	TotalCredits  int
	// UnparsedCredits counts subjects whose credits were not an integer.
	// They still count as subjects but add nothing to TotalCredits.
	UnparsedCredits int
}

// Summarize computes the report totals without rendering anything
func Summarize(s *models.DegreeStructure) Summary {
	var sum Summary
	_ = s.Walk(func(_ *models.Year, _ *models.Semester, subj *models.Subject) error {
		sum.add(subj.Credits)
		return nil
	})
	return sum
}

func (s *Summary) add(credits string) {
	s.TotalSubjects++
	n, err := strconv.Atoi(strings.TrimSpace(credits))
	if err != nil {
		s.UnparsedCredits++
		return
	}
	s.TotalCredits += n
}

// EncodeJSON returns the JSON document for s: two-space indentation, with
// non-ASCII and HTML characters left as is
func EncodeJSON(s *models.DegreeStructure) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Normalized()); err != nil {
		return nil, fmt.Errorf("failed to encode structure: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes the JSON document to path
func WriteJSON(path string, s *models.DegreeStructure) error {
	data, err := EncodeJSON(s)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return errs.New(errs.ErrorTypeIO, 0, "", "failed to write %s: %v", path, err)
	}
	return nil
}

// ReadJSON loads a document previously written by WriteJSON
func ReadJSON(path string) (*models.DegreeStructure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var s models.DegreeStructure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "", "failed to parse %s: %v", path, err)
	}
	return s.Normalized(), nil
}

// RenderText writes the text report to w and returns its totals
func RenderText(w io.Writer, s *models.DegreeStructure) (Summary, error) {
	bw := bufio.NewWriter(w)
	var sum Summary

	fmt.Fprintf(bw, "DEGREE STRUCTURE: %s\n", s.DegreeTitle)
	bw.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, year := range s.Years {
		fmt.Fprintf(bw, "%s\n", year.Name)
		bw.WriteString(strings.Repeat("-", 40) + "\n")

		for _, semester := range year.Semesters {
			fmt.Fprintf(bw, "  %s\n", semester.Name)

			for _, subj := range semester.Subjects {
				sum.add(subj.Credits)
				fmt.Fprintf(bw, "    • %s (%s) - %s credits - %s\n", subj.Name, subj.Code, subj.Credits, subj.Type)
			}
			bw.WriteString("\n")
		}
		bw.WriteString("\n")
	}

	bw.WriteString("SUMMARY:\n")
	fmt.Fprintf(bw, "Total subjects: %d\n", sum.TotalSubjects)
	fmt.Fprintf(bw, "Total credits: %d\n", sum.TotalCredits)

	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("failed to write text report: %w", err)
	}
	return sum, nil
}

// TextPath returns the text report path that goes with a JSON path
func TextPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".txt"
}

// Generate writes the JSON document to jsonPath and the text report next
// to it
func Generate(jsonPath string, s *models.DegreeStructure) (Summary, error) {
	if err := WriteJSON(jsonPath, s); err != nil {
		return Summary{}, err
	}

	var buf bytes.Buffer
	sum, err := RenderText(&buf, s)
	if err != nil {
		return sum, err
	}

	textPath := TextPath(jsonPath)
	if err := storage.WriteFileAtomic(textPath, buf.Bytes()); err != nil {
		return sum, errs.New(errs.ErrorTypeIO, 0, "", "failed to write %s: %v", textPath, err)
	}
	return sum, nil
}
