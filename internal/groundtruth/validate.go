// Package groundtruth compares decoded entries against a JSON listing captured from a known-good extraction.
package groundtruth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bgrewell/sdt-kit/pkg/entry"
)

var ErrMismatch = errors.New("entries do not match ground truth")

// GroundTruthEntry represents a single record from the JSON.
type GroundTruthEntry struct {
	StartTime uint32 `json:"start_time"`
	EndTime   uint32 `json:"end_time"`
	Lang      string `json:"lang"`
	Text      string `json:"text"`
}

// LoadGroundTruth reads the JSON from a file and unmarshals it into a slice.
func LoadGroundTruth(filePath string) ([]GroundTruthEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entries []GroundTruthEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return entries, nil
}

// ContainsControl returns true if the string has any control characters other than line breaks and tabs.
func ContainsControl(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
		if r == 0x7F {
			return true
		}
	}
	return false
}

// Validate compares entries, in order, against the ground truth loaded from gtPath and writes a summary to w.
func Validate(w io.Writer, entries []entry.Entry, gtPath string) error {
	groundTruth, err := LoadGroundTruth(gtPath)
	if err != nil {
		return err
	}
	return Compare(w, entries, groundTruth)
}

// Compare checks entries against groundTruth position by position.
func Compare(w io.Writer, entries []entry.Entry, groundTruth []GroundTruthEntry) error {
	var problems []string

	for i, e := range entries {
		if ContainsControl(e.Text) {
			problems = append(problems, fmt.Sprintf("#%d at 0x%X: control characters in text %q", i+1, e.Offset, e.Text))
		}
		if i >= len(groundTruth) {
			problems = append(problems, fmt.Sprintf("#%d at 0x%X: extra entry %q", i+1, e.Offset, e.Text))
			continue
		}
		gt := groundTruth[i]
		got := GroundTruthEntry{StartTime: e.StartTime, EndTime: e.EndTime, Lang: e.Label, Text: e.Text}
		if got != gt {
			problems = append(problems, fmt.Sprintf("#%d at 0x%X: got %d-%d %s %q, want %d-%d %s %q", i+1, e.Offset,
				got.StartTime, got.EndTime, got.Lang, got.Text, gt.StartTime, gt.EndTime, gt.Lang, gt.Text))
		}
	}
	for i := len(entries); i < len(groundTruth); i++ {
		problems = append(problems, fmt.Sprintf("#%d: missing entry %q", i+1, groundTruth[i].Text))
	}

	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintln(w, "VALIDATION RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	if len(problems) == 0 {
		fmt.Fprintf(w, "All %d entries match the ground truth!\n", len(entries))
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	fmt.Fprintln(w, strings.Repeat("=", 40))
	return fmt.Errorf("%w: %d problems", ErrMismatch, len(problems))
}
