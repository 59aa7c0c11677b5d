package testkit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyGenerator_Deterministic(t *testing.T) {
	a := NewSurveyGenerator(DefaultSurveyConfig()).Generate()
	b := NewSurveyGenerator(DefaultSurveyConfig()).Generate()

	require.Len(t, a.Rows, 300)
	assert.Equal(t, a.Rows, b.Rows)
	assert.Equal(t, []string{"sample_id", "lat", "lon", "Cu_ppm", "Zn_ppm"}, a.Headers)
}

func TestSurveyGenerator_IndexColumn(t *testing.T) {
	config := DefaultSurveyConfig()
	config.Samples = 5
	config.IndexColumn = true

	table := NewSurveyGenerator(config).Generate()
	assert.Equal(t, "Unnamed: 0", table.Headers[0])
	assert.Equal(t, "4", table.Rows[4]["Unnamed: 0"])
}

func TestCSV(t *testing.T) {
	table := Column("Au_ppb", "1.5", "", "3")
	out := CSV(table)

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "Au_ppb", string(lines[0]))
	assert.Equal(t, "3", string(lines[3]))
}
