package app

import (
	"geoprospect/internal/analysis"
	"geoprospect/internal/config"
)

// AnalysisOptions maps the analysis section of the configuration onto
// pipeline options. Unset fields keep the pipeline defaults.
func AnalysisOptions(cfg config.AnalysisConfig) analysis.Options {
	opts := analysis.DefaultOptions()
	if cfg.KMin > 0 {
		opts.Elbow.KMin = cfg.KMin
	}
	if cfg.KMax > 0 {
		opts.Elbow.KMax = cfg.KMax
	}
	if cfg.Seed != 0 {
		opts.Elbow.KMeans.Seed = cfg.Seed
	}
	if cfg.NInit > 0 {
		opts.Elbow.KMeans.NInit = cfg.NInit
	}
	if cfg.MaxIter > 0 {
		opts.Elbow.KMeans.MaxIter = cfg.MaxIter
	}
	opts.Elbow.Workers = cfg.ElbowWorkers
	if cfg.BelowDetection == string(analysis.DetectionHalf) {
		opts.BelowDetection = analysis.DetectionHalf
	}
	return opts
}
