package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"area-map/internal/config"
	"area-map/internal/filter"
	"area-map/internal/metrics"
	"area-map/internal/models"
)

func (s *Server) options(c *gin.Context) {
	all := s.records.Records()
	lo, hi := filter.ReviewBounds(all)
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"categories":     filter.Categories(all),
		"regions":        filter.Regions(all),
		"review_min":     lo,
		"review_max":     hi,
		"default_radius": s.cfg.DefaultRadius,
		"radius_min":     config.MinRadius,
		"radius_max":     config.MaxRadius,
	})
}

func parseCriteria(c *gin.Context) (filter.Criteria, error) {
	crit := filter.Criteria{
		Category: c.Query("category"),
		Region:   c.Query("region"),
	}
	var err error
	if crit.MinReview, err = queryInt(c, "min_review", 0); err != nil {
		return crit, err
	}
	if crit.MaxReview, err = queryInt(c, "max_review", 0); err != nil {
		return crit, err
	}
	if v := c.Query("high_review"); v != "" {
		if crit.HighReviewOnly, err = strconv.ParseBool(v); err != nil {
			return crit, err
		}
	}
	return crit, nil
}

func (s *Server) listRecords(c *gin.Context) {
	crit, err := parseCriteria(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	metrics.QueriesTotal.WithLabelValues("records").Inc()
	filtered := filter.Apply(s.records.Records(), crit)
	resp := gin.H{"ok": true, "records": filtered, "count": len(filtered)}
	if center, ok := filter.MedianCenter(filtered); ok {
		resp["map_center"] = center
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) summary(c *gin.Context) {
	crit, err := parseCriteria(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	radius, err := s.radiusParam(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	metrics.QueriesTotal.WithLabelValues("summary").Inc()

	all := s.records.Records()
	filtered := filter.Apply(all, crit)

	var center *models.Coordinate
	if name := c.Query("center"); name != "" {
		rec, ok := findRecord(all, name)
		if !ok {
			fail(c, http.StatusNotFound, errUnknownRecord(name))
			return
		}
		if pos, ok := rec.Position(); ok {
			center = &pos
		}
	}

	notes, err := s.notes.Recent(recentNotes)
	if err != nil {
		s.log.Warn("notes_read_error", "path", s.notes.Path(), "err", err)
		notes = []models.Note{}
	}

	region := func(r models.Record) string { return r.Region }
	category := func(r models.Record) string { return r.Category }
	c.JSON(http.StatusOK, gin.H{
		"ok":                   true,
		"summary":              filter.Summarize(all, filtered, center, radius),
		"radius":               radius,
		"top_regions":          filter.CountBy(all, region, topN),
		"top_regions_filtered": filter.CountBy(filtered, region, topN),
		"category_share":       filter.CountBy(all, category, 0),
		"top_reviewed":         filter.TopByReviews(filtered, 10),
		"recent_notes":         notes,
	})
}
