package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"geoprospect/adapters/report"
	"geoprospect/domain/geochem"
	"geoprospect/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var reportContentTypes = map[string]string{
	report.FormatMarkdown: "text/markdown; charset=utf-8",
	report.FormatJSON:     "application/json; charset=utf-8",
	report.FormatYAML:     "application/yaml; charset=utf-8",
}

var reportExtensions = map[string]string{
	report.FormatMarkdown: "md",
	report.FormatJSON:     "json",
	report.FormatYAML:     "yaml",
}

// analysisForDownload runs the analysis behind a download and returns it with
// the name of the uploaded file
func (s *Server) analysisForDownload(c *gin.Context) (*geochem.Analysis, string, bool) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}
	column, err := requiredColumn(c)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}
	ds, err := s.service.Dataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}
	a, err := s.service.Analyze(c.Request.Context(), id, column)
	if err != nil {
		s.respondError(c, err)
		return nil, "", false
	}
	return a, ds.OriginalFilename, true
}

// handleReport downloads the analysis report, markdown unless ?format=json|yaml
func (s *Server) handleReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", report.FormatMarkdown))
	contentType, ok := reportContentTypes[format]
	if !ok {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format)))
		return
	}

	a, source, ok := s.analysisForDownload(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	w, err := report.NewWriter(format, &buf)
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	if _, err := w.Write(report.NewDocument(a, source)); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to render report"))
		return
	}

	attachment(c, a.Column+"_report."+reportExtensions[format])
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// handleWorkbook downloads the frequency table, classes, elbow curve and
// probability curve as an Excel workbook
func (s *Server) handleWorkbook(c *gin.Context) {
	a, _, ok := s.analysisForDownload(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(a, &buf); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to build workbook"))
		return
	}

	attachment(c, a.Column+"_frequency.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	filename = unsafeFilenameChars.ReplaceAllString(filename, "_")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
}
