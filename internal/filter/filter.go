// Package filter narrows and summarizes the record set for the dashboard.
package filter

import (
	"sort"

	"area-map/internal/calculator"
	"area-map/internal/models"
)

// HighReviewThreshold is the review count a business must exceed to count as
// "high review".
const HighReviewThreshold = 1000

// Criteria selects records. Empty Category or Region means any. A zero
// MaxReview disables the upper bound.
type Criteria struct {
	Category       string
	Region         string
	MinReview      int
	MaxReview      int
	HighReviewOnly bool
}

// Apply returns the records matching c in their original order.
func Apply(records []models.Record, c Criteria) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if c.Category != "" && r.Category != c.Category {
			continue
		}
		if c.Region != "" && r.Region != c.Region {
			continue
		}
		if r.ReviewCount < c.MinReview {
			continue
		}
		if c.MaxReview > 0 && r.ReviewCount > c.MaxReview {
			continue
		}
		if c.HighReviewOnly && r.ReviewCount <= HighReviewThreshold {
			continue
		}
		out = append(out, r)
	}
	return out
}

func Categories(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Category })
}

func Regions(records []models.Record) []string {
	return distinct(records, func(r models.Record) string { return r.Region })
}

// ReviewBounds returns the smallest and largest review counts. The upper
// bound is never below 1 so a slider over it always has a range.
func ReviewBounds(records []models.Record) (lo, hi int) {
	if len(records) == 0 {
		return 0, 1
	}
	lo, hi = records[0].ReviewCount, records[0].ReviewCount
	for _, r := range records[1:] {
		if r.ReviewCount < lo {
			lo = r.ReviewCount
		}
		if r.ReviewCount > hi {
			hi = r.ReviewCount
		}
	}
	if hi < 1 {
		hi = 1
	}
	return lo, hi
}

type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountBy tallies records by key, most frequent first with ties ordered by
// value. Empty keys are ignored. limit <= 0 returns every value.
func CountBy(records []models.Record, key func(models.Record) string, limit int) []Count {
	tally := make(map[string]int)
	for _, r := range records {
		if k := key(r); k != "" {
			tally[k]++
		}
	}
	out := make([]Count, 0, len(tally))
	for v, n := range tally {
		out = append(out, Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopByReviews returns up to n records with the most reviews.
func TopByReviews(records []models.Record, n int) []models.Record {
	out := append([]models.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewCount > out[j].ReviewCount
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MedianCenter is the per-axis median of the located records, used to
// center a map. ok is false when nothing is located.
func MedianCenter(records []models.Record) (c models.Coordinate, ok bool) {
	var lats, lons []float64
	for _, r := range records {
		if pos, located := r.Position(); located {
			lats = append(lats, pos.Lat)
			lons = append(lons, pos.Lon)
		}
	}
	if len(lats) == 0 {
		return c, false
	}
	return models.Coordinate{Lat: median(lats), Lon: median(lons)}, true
}

type Summary struct {
	Total        int `json:"total"`
	Filtered     int `json:"filtered"`
	WithinRadius int `json:"within_radius"`
	HighReview   int `json:"high_review"`
}

// Summarize fills the dashboard metric cards. WithinRadius counts all
// records around center and stays zero when center is nil.
func Summarize(all, filtered []models.Record, center *models.Coordinate, radiusMeters float64) Summary {
	s := Summary{Total: len(all), Filtered: len(filtered)}
	if center != nil {
		s.WithinRadius = calculator.CountWithinRadius(*center, radiusMeters, all)
	}
	for _, r := range all {
		if r.ReviewCount > HighReviewThreshold {
			s.HighReview++
		}
	}
	return s
}

func distinct(records []models.Record, key func(models.Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}
