package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"geoprospect/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// Population is one lognormal geochemical population (background, anomaly, ...)
type Population struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"` // geometric mean of the population
	LogSD  float64 `json:"log_sd"` // natural-log standard deviation
	Weight float64 `json:"weight"` // share of samples
}

// SurveyConfig configures the soil survey generator
type SurveyConfig struct {
	Samples     int                     `json:"samples"`
	Elements    map[string][]Population `json:"elements"`
	CenterLat   float64                 `json:"center_lat"`
	CenterLon   float64                 `json:"center_lon"`
	SpreadDeg   float64                 `json:"spread_deg"`
	IndexColumn bool                    `json:"index_column"` // add a data-frame style "Unnamed: 0" column
	Seed        uint64                  `json:"seed"`
}

// DefaultSurveyConfig returns a two-population Cu survey and a single-population Zn one
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Samples: 300,
		Elements: map[string][]Population{
			"Cu_ppm": {
				{Name: "background", Median: 25, LogSD: 0.35, Weight: 0.85},
				{Name: "anomaly", Median: 400, LogSD: 0.3, Weight: 0.15},
			},
			"Zn_ppm": {
				{Name: "background", Median: 60, LogSD: 0.4, Weight: 1},
			},
		},
		CenterLat: -13.5,
		CenterLon: -48.5,
		SpreadDeg: 0.5,
		Seed:      42,
	}
}

// SurveyGenerator produces synthetic soil geochemistry tables
type SurveyGenerator struct {
	config SurveyConfig
	rng    *rand.Rand
}

// NewSurveyGenerator creates a generator; equal configs give equal tables
func NewSurveyGenerator(config SurveyConfig) *SurveyGenerator {
	return &SurveyGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)),
	}
}

// Elements returns element column names in a stable order
func (g *SurveyGenerator) Elements() []string {
	names := make([]string, 0, len(g.config.Elements))
	for name := range g.config.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the table: sample_id, lat, lon and one column per element
func (g *SurveyGenerator) Generate() *dataset.Table {
	elements := g.Elements()

	headers := []string{}
	if g.config.IndexColumn {
		headers = append(headers, "Unnamed: 0")
	}
	headers = append(headers, "sample_id", "lat", "lon")
	headers = append(headers, elements...)

	samplers := make(map[string][]distuv.LogNormal, len(elements))
	for _, el := range elements {
		for _, pop := range g.config.Elements[el] {
			samplers[el] = append(samplers[el], distuv.LogNormal{
				Mu:    math.Log(pop.Median),
				Sigma: pop.LogSD,
				Src:   g.rng,
			})
		}
	}

	rows := make([]dataset.Row, g.config.Samples)
	for i := range rows {
		row := dataset.Row{
			"sample_id": fmt.Sprintf("S-%04d", i+1),
			"lat":       formatFloat(g.config.CenterLat + (g.rng.Float64()-0.5)*g.config.SpreadDeg),
			"lon":       formatFloat(g.config.CenterLon + (g.rng.Float64()-0.5)*g.config.SpreadDeg),
		}
		if g.config.IndexColumn {
			row["Unnamed: 0"] = strconv.Itoa(i)
		}
		for _, el := range elements {
			pick := g.pickPopulation(g.config.Elements[el])
			row[el] = formatFloat(samplers[el][pick].Rand())
		}
		rows[i] = row
	}

	return &dataset.Table{Headers: headers, Rows: rows}
}

func (g *SurveyGenerator) pickPopulation(pops []Population) int {
	total := 0.0
	for _, p := range pops {
		total += p.Weight
	}
	target := g.rng.Float64() * total
	acc := 0.0
	for i, p := range pops {
		acc += p.Weight
		if target < acc {
			return i
		}
	}
	return len(pops) - 1
}

// CSV renders a table as comma-separated text with a header row
func CSV(table *dataset.Table) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(table.Headers)
	for _, row := range table.Rows {
		record := make([]string, len(table.Headers))
		for i, h := range table.Headers {
			record[i] = row[h]
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes()
}

// Column builds a single-column table from literal cells, handy for edge cases
func Column(name string, cells ...string) *dataset.Table {
	rows := make([]dataset.Row, len(cells))
	for i, c := range cells {
		rows[i] = dataset.Row{name: c}
	}
	return &dataset.Table{Headers: []string{name}, Rows: rows}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
