// Package server exposes the engine and the stores to the local dashboard
// page as JSON over gin.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"area-map/internal/clusters"
	"area-map/internal/config"
	"area-map/internal/logger"
	"area-map/internal/metrics"
	"area-map/internal/models"
	"area-map/internal/store"
)

const (
	sessionName = "areamap"
	clustersKey = "manual_clusters"
	topN        = 8
	recentNotes = 6
)

type Server struct {
	cfg     config.Config
	log     *slog.Logger
	records *store.RecordFile
	notes   *store.NoteFile
}

func New(cfg config.Config, records *store.RecordFile, notes *store.NoteFile, l *slog.Logger) *Server {
	if l == nil {
		l = logger.L()
	}
	metrics.RecordsLoaded.Set(float64(len(records.Records())))
	return &Server{cfg: cfg, log: l, records: records, notes: notes}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// Cluster names are free text and may carry an escaped "/".
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), logger.AccessMiddleware(s.log))

	secret := s.cfg.SessionSecret
	if secret == "" {
		// Sessions only live in memory, so a per-process key is enough.
		secret = uuid.New().String()
	}
	r.Use(sessions.Sessions(sessionName, memstore.NewStore([]byte(secret))))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/download-result/:filename", s.downloadResult)

	api := r.Group("/api")
	api.Use(s.refresh)
	{
		api.GET("/options", s.options)
		api.GET("/records", s.listRecords)
		api.GET("/summary", s.summary)

		api.GET("/radius", s.radius)
		api.POST("/radius/export", s.exportRadius)

		api.GET("/clusters", s.listClusters)
		api.POST("/clusters", s.createCluster)
		api.GET("/clusters/shapes", s.clusterShapes)
		api.PATCH("/clusters/:name", s.updateCluster)
		api.DELETE("/clusters/:name", s.deleteCluster)

		api.GET("/notes", s.listNotes)
		api.POST("/notes", s.addNote)
		api.GET("/notes.csv", s.downloadNotes)

		api.POST("/import", s.importRecords)
		api.POST("/reload", s.reload)
	}
	return r
}

// refresh reloads the business file when it changed on disk.
func (s *Server) refresh(c *gin.Context) {
	if !s.cfg.AutoRefresh {
		c.Next()
		return
	}
	changed, err := s.records.Refresh()
	switch {
	case err != nil:
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		s.log.Warn("records_refresh_error", "path", s.records.Path(), "err", err)
	case changed:
		n := len(s.records.Records())
		metrics.ReloadsTotal.WithLabelValues("ok").Inc()
		metrics.RecordsLoaded.Set(float64(n))
		s.log.Info("records_reloaded", "path", s.records.Path(), "records", n)
	}
	c.Next()
}

func (s *Server) reload(c *gin.Context) {
	if err := s.records.Reload(); err != nil {
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		fail(c, http.StatusInternalServerError, err)
		return
	}
	n := len(s.records.Records())
	metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	metrics.RecordsLoaded.Set(float64(n))
	s.log.Info("records_reloaded", "path", s.records.Path(), "records", n, "forced", true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "records": n})
}

// findRecord returns the first record called name.
func findRecord(records []models.Record, name string) (models.Record, bool) {
	for _, r := range records {
		if r.Name == name {
			return r, true
		}
	}
	return models.Record{}, false
}

func loadClusters(c *gin.Context) clusters.State {
	var st clusters.State
	raw, ok := sessions.Default(c).Get(clustersKey).(string)
	if !ok {
		return st
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return clusters.State{}
	}
	return st
}

func saveClusters(c *gin.Context, st clusters.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	sess := sessions.Default(c)
	sess.Set(clustersKey, string(b))
	return sess.Save()
}

func fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": err.Error()})
}

var errBadNumber = errors.New("invalid number")

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errBadNumber, key, v)
	}
	return n, nil
}
