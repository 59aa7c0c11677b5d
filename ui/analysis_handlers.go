package ui

import (
	"net/http"

	"geoprospect/domain/core"
	"geoprospect/domain/geochem"
	"geoprospect/internal/errors"
	"geoprospect/internal/figure"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Figures groups the three dashboard charts of one analysis
type Figures struct {
	Probability figure.Figure `json:"probability"`
	Elbow       figure.Figure `json:"elbow"`
	Map         figure.Figure `json:"map"`
}

type analysisResponse struct {
	Analysis         *geochem.Analysis `json:"analysis"`
	FrequencyColumns []string          `json:"frequency_columns"`
	Figures          Figures           `json:"figures"`
}

func figuresFor(a *geochem.Analysis) Figures {
	return Figures{
		Probability: figure.ProbabilityScatter(a),
		Elbow:       figure.ElbowPlot(a.Elbow),
		Map:         figure.Map(a),
	}
}

// handleAnalysis runs (or fetches from cache) the analysis of one column
func (s *Server) handleAnalysis(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	column, err := requiredColumn(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	a, err := s.service.Analyze(c.Request.Context(), id, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysisResponse{
		Analysis:         a,
		FrequencyColumns: geochem.FrequencyColumns,
		Figures:          figuresFor(a),
	})
}

// handleFrequency returns the frequency table alone
func (s *Server) handleFrequency(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	column, err := requiredColumn(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	table, err := s.service.Frequency(c.Request.Context(), id, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"column":    column,
		"columns":   geochem.FrequencyColumns,
		"frequency": table,
	})
}

// handleEmptyFigure returns the placeholder chart shown before a column is chosen
func (s *Server) handleEmptyFigure(c *gin.Context) {
	c.JSON(http.StatusOK, figure.Empty(c.DefaultQuery("title", EmptyFigureTitle)))
}

// handleMapFigure returns the sample map. Without a dataset and column it is
// the default view of the survey region.
func (s *Server) handleMapFigure(c *gin.Context) {
	rawID, column := c.Query("dataset"), c.Query("column")
	if rawID == "" || column == "" {
		c.JSON(http.StatusOK, figure.Map(nil))
		return
	}
	id, err := core.ParseDatasetID(rawID)
	if err != nil {
		s.respondError(c, errors.NotFound("dataset"))
		return
	}
	a, err := s.service.Analyze(c.Request.Context(), id, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, figure.Map(a))
}

// handleHistory lists recent analyses, newest first
func (s *Server) handleHistory(c *gin.Context) {
	limit := queryInt(c, "limit", defaultHistoryLimit)
	if limit == 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	records, err := s.service.History(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": records, "count": len(records)})
}

// handleAnalysisRecord returns one persisted analysis summary with its decoded curve
func (s *Server) handleAnalysisRecord(c *gin.Context) {
	id, err := core.ParseAnalysisID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.NotFound("analysis"))
		return
	}
	record, err := s.service.Record(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	scores, err := record.Scores()
	if err != nil {
		s.respondError(c, err)
		return
	}
	thresholds, err := record.ThresholdValues()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analysis":   record,
		"scores":     scores,
		"thresholds": thresholds,
	})
}
