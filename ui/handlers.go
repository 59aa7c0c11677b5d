package ui

import (
	"encoding/json"
	"html/template"
	"net/http"

	"geoprospect/internal/figure"

	"github.com/gin-gonic/gin"
)

// EmptyFigureTitle is shown on the charts until a column is selected
const EmptyFigureTitle = "Load Data First"

// handleIndex serves the dashboard page
func (s *Server) handleIndex(c *gin.Context) {
	empty, err := json.Marshal(figure.Empty(EmptyFigureTitle))
	if err != nil {
		s.respondError(c, err)
		return
	}
	emptyMap, err := json.Marshal(figure.Map(nil))
	if err != nil {
		s.respondError(c, err)
		return
	}

	opts := s.service.Options()
	s.renderTemplate(c, "index.html", gin.H{
		"Title":       "Geochemical Prospection",
		"MaxUploadMB": s.maxUpload >> 20,
		"KMin":        opts.Elbow.KMin,
		"KMax":        opts.Elbow.KMax,
		"EmptyFigure": template.JS(empty),
		"EmptyMap":    template.JS(emptyMap),
	})
}

// handleAbout serves the methodology page
func (s *Server) handleAbout(c *gin.Context) {
	s.renderTemplate(c, "about.html", gin.H{
		"Title":   "Methodology",
		"Content": s.about,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
