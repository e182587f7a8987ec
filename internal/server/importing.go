package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"area-map/internal/excel"
	"area-map/internal/metrics"
	"area-map/internal/store"
)

// importRecords replaces the business file with an uploaded CSV or XLSX.
// A workbook is read from its first sheet and stored back as CSV.
func (s *Server) importRecords(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("file is required"))
		return
	}

	var body io.Reader
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".xlsx":
		if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		inputPath := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, inputPath); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		defer os.Remove(inputPath)

		f, err := excel.OpenFile(inputPath)
		if err != nil {
			fail(c, http.StatusBadRequest, fmt.Errorf("open workbook: %w", err))
			return
		}
		records, err := excel.ReadRecords(f, "")
		f.Close()
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		var buf bytes.Buffer
		if err := store.WriteRecords(&buf, records); err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		body = &buf
	default:
		src, err := file.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		defer src.Close()
		body = src
	}

	n, err := s.records.Replace(body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrMissingColumns) || errors.Is(err, store.ErrMalformedCSV) {
			status = http.StatusBadRequest
		}
		fail(c, status, err)
		return
	}
	metrics.RecordsLoaded.Set(float64(n))
	s.log.Info("records_imported", "file", file.Filename, "records", n)
	c.JSON(http.StatusOK, gin.H{"ok": true, "records": n})
}
