package ui

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"geoprospect/domain/core"
	"geoprospect/internal/errors"

	"github.com/gin-gonic/gin"
)

// UploadErrorMessage is the only detail shown to users when a file cannot be read
const UploadErrorMessage = "There was an error processing this file."

// statusForError maps application error codes to HTTP status codes
func statusForError(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return 499
	}

	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeColumnNotFound,
		errors.CodeUnsupportedFormat, errors.CodeMalformedFile:
		return http.StatusBadRequest
	case errors.CodeNoNumericData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failure details from API clients
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.Message == "" {
			return appErr.Error()
		}
		return appErr.Message
	}
	return http.StatusText(status)
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.log.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": publicMessage(err, status),
		"code":  errors.GetCode(err),
	})
}

// datasetID parses the :id path parameter; malformed IDs are reported as missing datasets
func datasetID(c *gin.Context) (core.DatasetID, error) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		return "", errors.NotFound("dataset")
	}
	return id, nil
}

// requiredColumn reads the column query parameter
func requiredColumn(c *gin.Context) (string, error) {
	column := c.Query("column")
	if column == "" {
		return "", errors.InvalidInput("column query parameter is required")
	}
	return column, nil
}

// queryInt parses an integer query parameter, falling back to def when absent or invalid
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
