// Package output writes reports as plain text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jjtimmons/seqcmp/internal/report"
	"gopkg.in/yaml.v3"
)

// formats
const (
	Text = "text"
	JSON = "json"
	YAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{Text, JSON, YAML}

// Comparison is a comparison with the values derived from its alignment.
type Comparison struct {
	Primary  string  `json:"primary" yaml:"primary"`
	Test     string  `json:"test" yaml:"test"`
	Aligned  Aligned `json:"aligned" yaml:"aligned"`
	Score    int     `json:"score" yaml:"score"`
	Identity float64 `json:"identity" yaml:"identity"`
}

// Aligned holds the aligned sequences with the marker line between them.
type Aligned struct {
	Primary string `json:"primary" yaml:"primary"`
	Marker  string `json:"marker" yaml:"marker"`
	Test    string `json:"test" yaml:"test"`
}

// Document is the structured form of a report.
type Document struct {
	Comparisons []Comparison `json:"comparisons" yaml:"comparisons"`
	Notes       *string      `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewDocument converts a report into its structured form.
func NewDocument(r *report.Report) Document {
	doc := Document{Comparisons: []Comparison{}}
	if r == nil {
		return doc
	}

	for _, c := range r.Comparisons {
		doc.Comparisons = append(doc.Comparisons, Comparison{
			Primary: c.Primary.Name,
			Test:    c.Test.Name,
			Aligned: Aligned{
				Primary: c.Alignment.Primary,
				Marker:  c.Marker,
				Test:    c.Alignment.Test,
			},
			Score:    c.Alignment.Score(),
			Identity: c.Alignment.Identity(),
		})
	}
	if notes, ok := r.Notes(); ok {
		doc.Notes = &notes
	}
	return doc
}

// Write writes the report to w in the format requested.
func Write(w io.Writer, format string, r *report.Report) error {
	switch strings.ToLower(format) {
	case Text, "":
		text := r.String()
		if text == "" {
			return nil
		}
		_, err := io.WriteString(w, text+"\n")
		return err
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(r))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(r)); err != nil {
			return fmt.Errorf("failed to serialize report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q, expected one of: %s", format, strings.Join(Formats, ", "))
	}
}
