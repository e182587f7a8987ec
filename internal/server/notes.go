package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"area-map/internal/metrics"
	"area-map/internal/store"
)

type addNoteRequest struct {
	BusinessName string `json:"business_name"`
	Text         string `json:"text"`
}

func (s *Server) listNotes(c *gin.Context) {
	limit, err := queryInt(c, "limit", -1)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	notes, err := s.notes.Recent(limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notes": notes})
}

func (s *Server) addNote(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.BusinessName) == "" {
		fail(c, http.StatusBadRequest, errors.New("business_name is required"))
		return
	}
	rec, ok := findRecord(s.records.Records(), req.BusinessName)
	if !ok {
		fail(c, http.StatusNotFound, errUnknownRecord(req.BusinessName))
		return
	}

	note := store.NewNote(rec, req.Text, time.Now())
	if err := s.notes.Append(note); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	metrics.NotesAppendedTotal.Inc()
	s.log.Info("note_saved", "business", rec.Name)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "note": note})
}

func (s *Server) downloadNotes(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="catatan_kunjungan.csv"`)
	if err := s.notes.WriteCSV(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
