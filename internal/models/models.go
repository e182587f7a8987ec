package models

import (
	"math"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is one business row. Located is false when lat/lon were missing or
// unparseable; such records still show up in tables but never in spatial queries.
type Record struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Region      string     `json:"region"`
	Loc         Coordinate `json:"loc"`
	Located     bool       `json:"located"`
	ReviewCount int        `json:"review_count"`
}

// Position returns the record's coordinate if it can take part in distance math.
func (r Record) Position() (Coordinate, bool) {
	if !r.Located || !finite(r.Loc.Lat) || !finite(r.Loc.Lon) {
		return Coordinate{}, false
	}
	return r.Loc, true
}

type RadiusHit struct {
	Record   Record  `json:"record"`
	Distance float64 `json:"distance_m"`
}

// Note is a visit annotation. Coordinates are copied from the record when the
// note is written and are not kept in sync afterwards.
type Note struct {
	Timestamp    time.Time  `json:"timestamp"`
	BusinessName string     `json:"business_name"`
	Loc          Coordinate `json:"loc"`
	Located      bool       `json:"located"`
	Text         string     `json:"text"`
}

// ManualCluster is a user-curated group. Members are record names and may
// point at records that no longer exist.
type ManualCluster struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Active  bool     `json:"active"`
	Members []string `json:"members"`
}

type Hull struct {
	Vertices []Coordinate `json:"vertices"`
	Centroid Coordinate   `json:"centroid"`
}

// Degenerate reports whether the hull collapsed to a segment or a point.
func (h Hull) Degenerate() bool {
	return len(h.Vertices) < 3
}

type ResultRow struct {
	CenterName string
	CenterLat  float64
	CenterLon  float64
	Name       string
	Category   string
	Region     string
	Lat        float64
	Lon        float64
	Reviews    int
	Distance   int
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
