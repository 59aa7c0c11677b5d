package report

import (
	"fmt"
	"io"
	"strconv"

	"geoprospect/domain/geochem"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names
const (
	SheetFrequency = "Frequency"
	SheetClasses   = "Classes"
	SheetElbow     = "Elbow"
	SheetCurve     = "Probability"
)

// FrequencyRow formats one frequency class for display, in FrequencyColumns order
func FrequencyRow(f geochem.FrequencyClass) []string {
	return []string{
		formatValue(f.Minimum),
		formatValue(f.Maximum),
		strconv.FormatFloat(f.MinimumLog, 'f', 3, 64),
		strconv.Itoa(f.AbsoluteFrequency),
		strconv.FormatFloat(f.RelativeFrequency, 'f', 2, 64),
		strconv.Itoa(f.CumulativeFrequency),
		strconv.FormatFloat(f.CumulativeDirectPct, 'f', 2, 64),
		strconv.FormatFloat(f.CumulativeInvertPct, 'f', 2, 64),
	}
}

func frequencyHeader() []string {
	header := make([]string, len(geochem.FrequencyColumns))
	copy(header, geochem.FrequencyColumns)
	return header
}

// WriteWorkbook writes the frequency table, class summary, elbow scores and
// probability curve of an analysis as an xlsx workbook
func WriteWorkbook(a *geochem.Analysis, output io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetFrequency); err != nil {
		return err
	}
	if err := writeSheet(f, SheetFrequency, toCells(frequencyHeader()), frequencyRows(a.Frequency)); err != nil {
		return err
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetClasses, []string{"Class", "Samples", "Min", "Max", "Mean", "Median", "Min probability (%)", "Max probability (%)", "Threshold"}, classRows(a.Classes)},
		{SheetElbow, []string{"K", "Distortion", "Fit time (ms)", "Selected"}, elbowRows(a.Elbow)},
		{SheetCurve, []string{"Rank", "Value", "Probability (%)", "Log value", "Log probability", "Probit", "Class", "Row"}, curveRows(a.Points)},
	}
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeSheet(f, s.name, toCells(s.header), s.rows); err != nil {
			return err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Geochemical analysis: " + a.Column,
		Creator: "geoprospect",
	}); err != nil {
		return err
	}
	return f.Write(output)
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func frequencyRows(table []geochem.FrequencyClass) [][]interface{} {
	rows := make([][]interface{}, len(table))
	for i, r := range table {
		rows[i] = []interface{}{r.Minimum, r.Maximum, r.MinimumLog, r.AbsoluteFrequency, r.RelativeFrequency,
			r.CumulativeFrequency, r.CumulativeDirectPct, r.CumulativeInvertPct}
	}
	return rows
}

func classRows(classes []geochem.ClassSummary) [][]interface{} {
	rows := make([][]interface{}, len(classes))
	for i, c := range classes {
		rows[i] = []interface{}{c.Class, c.Count, c.MinValue, c.MaxValue, c.MeanValue, c.MedianValue,
			c.MinProbability, c.MaxProbability, c.Threshold}
	}
	return rows
}

func elbowRows(e geochem.ElbowResult) [][]interface{} {
	rows := make([][]interface{}, len(e.Scores))
	for i, s := range e.Scores {
		rows[i] = []interface{}{s.K, s.Distortion, float64(s.FitTime.Microseconds()) / 1000, s.K == e.Elbow}
	}
	return rows
}

func curveRows(points []geochem.ProbabilityPoint) [][]interface{} {
	rows := make([][]interface{}, len(points))
	for i, p := range points {
		rows[i] = []interface{}{p.Rank, p.Value, p.Probability, p.LogValue, p.LogProb, p.Probit, p.Class, p.RowIndex + 1}
	}
	return rows
}
