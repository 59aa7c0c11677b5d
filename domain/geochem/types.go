package geochem

import (
	"time"

	"geoprospect/domain/core"
)

// ProbabilityPoint is one sample on the cumulative log-probability curve.
// Points are ordered by descending value, so Probability grows along the slice.
type ProbabilityPoint struct {
	Rank        int     `json:"rank"`
	Value       float64 `json:"value"`
	Probability float64 `json:"probability"` // % of samples >= Value
	LogValue    float64 `json:"log_value"`
	LogProb     float64 `json:"log_prob"`
	Probit      float64 `json:"probit"`
	Class       int     `json:"class,omitempty"` // 1..K once labelled
	RowIndex    int     `json:"row_index"`       // index into the source table
}

// FrequencyClass is one row of the frequency table. Classes are equal-width in log10 space.
type FrequencyClass struct {
	Minimum             float64 `json:"minimum" yaml:"minimum"`
	Maximum             float64 `json:"maximum" yaml:"maximum"`
	MinimumLog          float64 `json:"minimum_log" yaml:"minimum_log"`
	AbsoluteFrequency   int     `json:"absolute_frequency" yaml:"absolute_frequency"`
	RelativeFrequency   float64 `json:"relative_frequency" yaml:"relative_frequency"`
	CumulativeFrequency int     `json:"cumulative_frequency" yaml:"cumulative_frequency"`
	CumulativeDirectPct float64 `json:"cumulative_direct_pct" yaml:"cumulative_direct_pct"`
	CumulativeInvertPct float64 `json:"cumulative_inverted_pct" yaml:"cumulative_inverted_pct"`
}

// FrequencyColumns are the display headers of the frequency table, in order
var FrequencyColumns = []string{
	"Minimum",
	"Maximum",
	"Minimum (log)",
	"Absolute Frequency",
	"Relative Frequency (%)",
	"Cumulative Frequency",
	"Direct Cumulative Frequency (%)",
	"Inverted Cumulative Frequency (%)",
}

// ElbowScore is the K-means fit for a single K
type ElbowScore struct {
	K          int           `json:"k" yaml:"k"`
	Distortion float64       `json:"distortion" yaml:"distortion"`
	FitTime    time.Duration `json:"fit_time" yaml:"fit_time"`
}

// ElbowResult holds the distortion curve and the selected cluster count
type ElbowResult struct {
	KMin     int          `json:"k_min" yaml:"k_min"`
	KMax     int          `json:"k_max" yaml:"k_max"`
	Scores   []ElbowScore `json:"scores" yaml:"scores"`
	Elbow    int          `json:"elbow" yaml:"elbow"`
	Detected bool         `json:"detected" yaml:"detected"`
}

// KValues returns the K of every score, in order
func (e ElbowResult) KValues() []float64 {
	ks := make([]float64, len(e.Scores))
	for i, s := range e.Scores {
		ks[i] = float64(s.K)
	}
	return ks
}

// Distortions returns the distortion of every score, in order
func (e ElbowResult) Distortions() []float64 {
	ds := make([]float64, len(e.Scores))
	for i, s := range e.Scores {
		ds[i] = s.Distortion
	}
	return ds
}

// ClassSummary describes one geochemical population found by clustering
type ClassSummary struct {
	Class          int     `json:"class" yaml:"class"`
	Count          int     `json:"count" yaml:"count"`
	MinValue       float64 `json:"min_value" yaml:"min_value"`
	MaxValue       float64 `json:"max_value" yaml:"max_value"`
	MeanValue      float64 `json:"mean_value" yaml:"mean_value"`
	MedianValue    float64 `json:"median_value" yaml:"median_value"`
	MinProbability float64 `json:"min_probability" yaml:"min_probability"`
	MaxProbability float64 `json:"max_probability" yaml:"max_probability"`
	Threshold      float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"` // lower bound separating this class from the one below
}

// ColumnSummary is descriptive statistics of the values that entered the pipeline
type ColumnSummary struct {
	Count         int     `json:"count" yaml:"count"`
	Skipped       int     `json:"skipped" yaml:"skipped"`
	Min           float64 `json:"min" yaml:"min"`
	Max           float64 `json:"max" yaml:"max"`
	Mean          float64 `json:"mean" yaml:"mean"`
	Median        float64 `json:"median" yaml:"median"`
	GeometricMean float64 `json:"geometric_mean" yaml:"geometric_mean"`
	StdDev        float64 `json:"std_dev" yaml:"std_dev"`
	LogStdDev     float64 `json:"log_std_dev" yaml:"log_std_dev"`
}

// Coordinates locate a sample when the table carries latitude/longitude columns
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Analysis is the complete output for one column of one dataset
type Analysis struct {
	ID        core.AnalysisID        `json:"id"`
	DatasetID core.DatasetID         `json:"dataset_id"`
	Column    string                 `json:"column"`
	Summary   ColumnSummary          `json:"summary"`
	Points    []ProbabilityPoint     `json:"points"`
	Frequency []FrequencyClass       `json:"frequency"`
	Elbow     ElbowResult            `json:"elbow"`
	Classes   []ClassSummary         `json:"classes"`
	Locations map[int]Coordinates    `json:"locations,omitempty"` // keyed by RowIndex
	Params    map[string]interface{} `json:"params"`
	CreatedAt time.Time              `json:"created_at"`
}

// Clusters returns the selected cluster count
func (a *Analysis) Clusters() int {
	return a.Elbow.Elbow
}

// AnalysisRecord is the persisted summary of an analysis run
type AnalysisRecord struct {
	ID          core.AnalysisID `json:"id" db:"id"`
	DatasetID   core.DatasetID  `json:"dataset_id" db:"dataset_id"`
	Filename    string          `json:"filename" db:"filename"`
	Column      string          `json:"column" db:"column_name"`
	SampleCount int             `json:"sample_count" db:"sample_count"`
	Skipped     int             `json:"skipped" db:"skipped"`
	Clusters    int             `json:"clusters" db:"clusters"`
	Detected    bool            `json:"detected" db:"detected"`
	ScoresJSON  string          `json:"-" db:"scores"`
	Thresholds  string          `json:"-" db:"thresholds"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
