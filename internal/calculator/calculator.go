package calculator

import (
	"math"
	"sort"

	"area-map/internal/models"
)

// WithinRadius returns every located record at most radiusMeters from center,
// nearest first. Equal distances keep their input order. records is not modified.
func WithinRadius(center models.Coordinate, radiusMeters float64, records []models.Record) []models.RadiusHit {
	hits := make([]models.RadiusHit, 0)
	for _, r := range records {
		pos, ok := r.Position()
		if !ok {
			continue
		}
		d := Distance(center, pos)
		if d <= radiusMeters {
			hits = append(hits, models.RadiusHit{Record: r, Distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func CountWithinRadius(center models.Coordinate, radiusMeters float64, records []models.Record) int {
	n := 0
	for _, r := range records {
		pos, ok := r.Position()
		if ok && Distance(center, pos) <= radiusMeters {
			n++
		}
	}
	return n
}

// Nearest finds the point closest to from. The first of several equally
// close points wins. ok is false for an empty slice.
func Nearest(from models.Coordinate, points []models.Coordinate) (index int, meters float64, ok bool) {
	minDist := math.MaxFloat64
	index = -1
	for i, p := range points {
		d := Distance(from, p)
		if d < minDist {
			minDist = d
			index = i
		}
	}
	if index < 0 {
		return -1, 0, false
	}
	return index, minDist, true
}

// GreedyRoute orders stops by repeatedly walking to the closest unvisited
// one, starting at start. It is a nearest-neighbour heuristic, not an optimal tour.
func GreedyRoute(start models.Coordinate, stops []models.Coordinate) []models.Coordinate {
	remaining := make([]models.Coordinate, len(stops))
	copy(remaining, stops)

	route := make([]models.Coordinate, 0, len(stops))
	current := start
	for len(remaining) > 0 {
		idx, _, ok := Nearest(current, remaining)
		if !ok {
			idx = 0
		}
		next := remaining[idx]
		route = append(route, next)
		current = next
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return route
}
