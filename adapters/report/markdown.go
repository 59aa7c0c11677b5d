package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs reports in Markdown format
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full report
func (w *MarkdownWriter) Write(doc *Document) (int, error) {
	counter := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(counter)

	w.writeHeader(md, doc)
	w.writeSummary(md, doc)
	w.writeElbow(md, doc)
	w.writeClasses(md, doc)
	w.writeFrequency(md, doc)

	err := md.Build()
	return counter.n, err
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *Document) {
	md.H1("Geochemical Analysis: " + doc.Column)
	md.PlainText("")

	rows := [][]string{{"Column", "`" + doc.Column + "`"}}
	if doc.Source != "" {
		rows = append(rows, []string{"Source", doc.Source})
	}
	if !doc.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, doc *Document) {
	s := doc.Summary
	md.H2("Summary Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Samples", strconv.Itoa(s.Count)},
			{"Skipped cells", strconv.Itoa(s.Skipped)},
			{"Minimum", formatValue(s.Min)},
			{"Maximum", formatValue(s.Max)},
			{"Mean", formatValue(s.Mean)},
			{"Median", formatValue(s.Median)},
			{"Geometric mean", formatValue(s.GeometricMean)},
			{"Standard deviation", formatValue(s.StdDev)},
			{"Log10 standard deviation", formatValue(s.LogStdDev)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeElbow(md *markdown.Markdown, doc *Document) {
	e := doc.Elbow
	md.H2("Cluster Count (Elbow Method)")
	md.PlainText("")

	rows := make([][]string, 0, len(e.Scores))
	for _, s := range e.Scores {
		k := strconv.Itoa(s.K)
		if s.K == e.Elbow {
			k = "**" + k + "**"
		}
		rows = append(rows, []string{k, formatValue(s.Distortion), fmt.Sprintf("%.2f", float64(s.FitTime.Microseconds())/1000)})
	}
	md.Table(markdown.TableSet{Header: []string{"K", "Distortion", "Fit time (ms)"}, Rows: rows})
	md.PlainText("")

	if e.Detected {
		md.Note(fmt.Sprintf("Elbow at K = %d over K = %d..%d.", e.Elbow, e.KMin, e.KMax))
	} else {
		md.Warningf("No elbow found over K = %d..%d; using K = %d.", e.KMin, e.KMax, e.Elbow)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeClasses(md *markdown.Markdown, doc *Document) {
	md.H2("Populations")
	md.PlainText("")

	rows := make([][]string, 0, len(doc.Classes))
	for _, c := range doc.Classes {
		threshold := "-"
		if c.Threshold > 0 {
			threshold = formatValue(c.Threshold)
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Class),
			strconv.Itoa(c.Count),
			formatValue(c.MinValue),
			formatValue(c.MaxValue),
			formatValue(c.MedianValue),
			fmt.Sprintf("%.2f - %.2f", c.MinProbability, c.MaxProbability),
			threshold,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Class", "Samples", "Min", "Max", "Median", "Probability (%)", "Threshold"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFrequency(md *markdown.Markdown, doc *Document) {
	md.H2("Frequency Table")
	md.PlainText("")

	rows := make([][]string, 0, len(doc.Frequency))
	for _, f := range doc.Frequency {
		rows = append(rows, FrequencyRow(f))
	}
	md.Table(markdown.TableSet{Header: frequencyHeader(), Rows: rows})
	md.PlainText("")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
