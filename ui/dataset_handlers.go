package ui

import (
	"io"
	"net/http"

	"geoprospect/domain/dataset"
	"geoprospect/internal/errors"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 100

type datasetResponse struct {
	Dataset        *dataset.Dataset `json:"dataset"`
	Headers        []string         `json:"headers"`
	NumericColumns []string         `json:"numeric_columns"`
}

func newDatasetResponse(ds *dataset.Dataset) datasetResponse {
	numeric := ds.NumericColumns()
	if numeric == nil {
		numeric = []string{}
	}
	return datasetResponse{Dataset: ds, Headers: ds.Table.Headers, NumericColumns: numeric}
}

// handleUpload accepts a multipart upload in the "file" field. Several files
// may be sent; only the first is read.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+(1<<20))

	form, err := c.MultipartForm()
	if err != nil {
		s.log.Warn("[Upload] invalid multipart request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": UploadErrorMessage})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded", "code": errors.CodeInvalidInput})
		return
	}
	header := files[0]
	if header.Size > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	ds, err := s.service.Upload(c.Request.Context(), header.Filename, data)
	if err != nil {
		if statusForError(err) == http.StatusBadRequest {
			s.log.Warn("[Upload] %s: %v", header.Filename, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": UploadErrorMessage, "code": errors.GetCode(err)})
			return
		}
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newDatasetResponse(ds))
}

// handleDataset returns dataset metadata and column profiles
func (s *Server) handleDataset(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds, err := s.service.Dataset(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDatasetResponse(ds))
}

// handleRows returns one page of the uploaded table
func (s *Server) handleRows(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", defaultPageSize)

	rows, total, err := s.service.Rows(c.Request.Context(), id, offset, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":   rows,
		"total":  total,
		"offset": offset,
		"count":  len(rows),
	})
}
