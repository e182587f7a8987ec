package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"area-map/internal/calculator"
	"area-map/internal/clusters"
	"area-map/internal/excel"
	"area-map/internal/metrics"
	"area-map/internal/models"
)

var (
	errNoCenter    = errors.New("center is required")
	errBadRadius   = errors.New("radius must be a positive number of meters")
	errNotLocated  = errors.New("center has no usable coordinates")
	errNotFoundRec = errors.New("record not found")
)

func errUnknownRecord(name string) error {
	return fmt.Errorf("%w: %q", errNotFoundRec, name)
}

func (s *Server) radiusParam(c *gin.Context) (float64, error) {
	v := c.Query("radius")
	if v == "" {
		return s.cfg.DefaultRadius, nil
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadRadius, v)
	}
	return r, nil
}

type radiusResult struct {
	Center models.Record
	Radius float64
	Hits   []models.RadiusHit
}

// runRadius resolves the center by name and runs the query. The returned
// status is meaningful only when err is non-nil.
func (s *Server) runRadius(c *gin.Context) (radiusResult, int, error) {
	name := c.Query("center")
	if name == "" {
		return radiusResult{}, http.StatusBadRequest, errNoCenter
	}
	radius, err := s.radiusParam(c)
	if err != nil {
		return radiusResult{}, http.StatusBadRequest, err
	}
	all := s.records.Records()
	center, ok := findRecord(all, name)
	if !ok {
		return radiusResult{}, http.StatusNotFound, errUnknownRecord(name)
	}
	pos, ok := center.Position()
	if !ok {
		return radiusResult{}, http.StatusUnprocessableEntity, fmt.Errorf("%w: %q", errNotLocated, name)
	}

	start := time.Now()
	hits := calculator.WithinRadius(pos, radius, all)
	metrics.RadiusDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RadiusHits.Observe(float64(len(hits)))
	metrics.QueriesTotal.WithLabelValues("radius").Inc()
	s.log.Debug("radius_query", "center", name, "radius_m", radius, "hits", len(hits))

	return radiusResult{Center: center, Radius: radius, Hits: hits}, 0, nil
}

func (s *Server) radius(c *gin.Context) {
	res, status, err := s.runRadius(c)
	if err != nil {
		fail(c, status, err)
		return
	}
	inRadius := make([]models.Record, len(res.Hits))
	for i, h := range res.Hits {
		inRadius[i] = h.Record
	}
	// Clusters on the radius map only use members inside the circle.
	shapes := clusters.Shapes(loadClusters(c), inRadius)
	countShapes(shapes)

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"center":   res.Center,
		"radius":   res.Radius,
		"hits":     res.Hits,
		"count":    len(res.Hits),
		"clusters": shapes,
	})
}

func (s *Server) exportRadius(c *gin.Context) {
	res, status, err := s.runRadius(c)
	if err != nil {
		fail(c, status, err)
		return
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	filename := fmt.Sprintf("radius_%s.xlsx", uuid.New().String())
	outputPath := filepath.Join(s.cfg.OutputDir, filename)

	rows := excel.RowsFromHits(res.Center, res.Hits)
	if err := excel.WriteResult(outputPath, rows, "Hasil"); err != nil {
		fail(c, http.StatusInternalServerError, fmt.Errorf("write export: %w", err))
		return
	}
	s.log.Info("radius_exported", "center", res.Center.Name, "rows", len(rows), "file", filename)
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"rows":     len(rows),
		"sheet":    "Hasil",
		"filename": filename,
	})
}

func (s *Server) downloadResult(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	target := filepath.Join(s.cfg.OutputDir, filename)
	if _, err := os.Stat(target); err != nil {
		fail(c, http.StatusNotFound, errors.New("result not found"))
		return
	}
	c.FileAttachment(target, filename)
}

func countShapes(shapes []clusters.Shape) {
	for _, sh := range shapes {
		if sh.Hull != nil {
			metrics.HullsTotal.WithLabelValues("hull").Inc()
		} else {
			metrics.HullsTotal.WithLabelValues("points").Inc()
		}
	}
}
