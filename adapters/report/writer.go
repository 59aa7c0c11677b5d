// Package report renders analyses as Markdown, JSON, YAML and Excel workbooks.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"geoprospect/domain/geochem"
)

// Format names accepted by NewWriter
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Writer outputs an analysis document
type Writer interface {
	Write(doc *Document) (int, error)
}

// Document is the exportable part of an analysis: everything except the
// per-sample curve, which stays in the workbook export
type Document struct {
	Column      string                   `json:"column" yaml:"column"`
	Source      string                   `json:"source,omitempty" yaml:"source,omitempty"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Summary     geochem.ColumnSummary    `json:"summary" yaml:"summary"`
	Elbow       geochem.ElbowResult      `json:"elbow" yaml:"elbow"`
	Classes     []geochem.ClassSummary   `json:"classes" yaml:"classes"`
	Frequency   []geochem.FrequencyClass `json:"frequency" yaml:"frequency"`
}

// NewDocument builds a document from an analysis of the named source file
func NewDocument(a *geochem.Analysis, source string) *Document {
	return &Document{
		Column:      a.Column,
		Source:      source,
		GeneratedAt: a.CreatedAt,
		Summary:     a.Summary,
		Elbow:       a.Elbow,
		Classes:     a.Classes,
		Frequency:   a.Frequency,
	}
}

// NewWriter returns the writer for a format name
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md", "":
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output), nil
	case FormatYAML, "yml":
		return NewYAMLWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// baseWriter provides common functionality for report writers
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter tracks bytes written through it
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
