package geochem

import (
	"encoding/json"
	"fmt"
)

// NewAnalysisRecord summarizes an analysis for the history table
func NewAnalysisRecord(a *Analysis, filename string) (*AnalysisRecord, error) {
	scores, err := json.Marshal(a.Elbow.Scores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal elbow scores: %w", err)
	}
	thresholds := make([]float64, 0, len(a.Classes))
	for _, c := range a.Classes {
		if c.Threshold > 0 {
			thresholds = append(thresholds, c.Threshold)
		}
	}
	thresholdJSON, err := json.Marshal(thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thresholds: %w", err)
	}

	return &AnalysisRecord{
		ID:          a.ID,
		DatasetID:   a.DatasetID,
		Filename:    filename,
		Column:      a.Column,
		SampleCount: a.Summary.Count,
		Skipped:     a.Summary.Skipped,
		Clusters:    a.Clusters(),
		Detected:    a.Elbow.Detected,
		ScoresJSON:  string(scores),
		Thresholds:  string(thresholdJSON),
		CreatedAt:   a.CreatedAt,
	}, nil
}

// Scores decodes the stored distortion curve
func (r *AnalysisRecord) Scores() ([]ElbowScore, error) {
	var scores []ElbowScore
	if r.ScoresJSON == "" {
		return scores, nil
	}
	if err := json.Unmarshal([]byte(r.ScoresJSON), &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal elbow scores: %w", err)
	}
	return scores, nil
}

// ThresholdValues decodes the stored class thresholds
func (r *AnalysisRecord) ThresholdValues() ([]float64, error) {
	var thresholds []float64
	if r.Thresholds == "" {
		return thresholds, nil
	}
	if err := json.Unmarshal([]byte(r.Thresholds), &thresholds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thresholds: %w", err)
	}
	return thresholds, nil
}
