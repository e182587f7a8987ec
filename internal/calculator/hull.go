package calculator

import (
	"sort"

	"area-map/internal/models"
)

// ResolveMembers looks member names up in records and returns the positions
// that resolve. Unknown names, repeated names and unlocated records are skipped.
// When several records share a name the first one is used.
func ResolveMembers(members []string, records []models.Record) []models.Coordinate {
	byName := make(map[string]models.Record, len(records))
	for _, r := range records {
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = r
		}
	}

	seen := make(map[string]struct{}, len(members))
	var out []models.Coordinate
	for _, m := range members {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		rec, ok := byName[m]
		if !ok {
			continue
		}
		if pos, ok := rec.Position(); ok {
			out = append(out, pos)
		}
	}
	return out
}

// ClusterHull returns the boundary of a manual cluster, or nil when fewer
// than three member positions resolve against records.
func ClusterHull(members []string, records []models.Record) *models.Hull {
	pts := ResolveMembers(members, records)
	if len(pts) < 3 {
		return nil
	}
	return ConvexHull(pts)
}

// ConvexHull builds the planar hull of points, treating longitude as x and
// latitude as y. Vertices come back counter-clockwise starting from the
// westernmost (then southernmost) point, without a closing duplicate.
// Collinear input collapses to the two extreme points and identical input to
// a single point. Returns nil for no points.
func ConvexHull(points []models.Coordinate) *models.Hull {
	pts := sortedUnique(points)
	if len(pts) == 0 {
		return nil
	}
	if len(pts) < 3 {
		return &models.Hull{Vertices: pts, Centroid: meanPoint(pts)}
	}

	hull := make([]models.Coordinate, 0, 2*len(pts))
	// lower chain
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	return &models.Hull{Vertices: hull, Centroid: polygonCentroid(hull)}
}

func sortedUnique(points []models.Coordinate) []models.Coordinate {
	pts := make([]models.Coordinate, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Lon != pts[j].Lon {
			return pts[i].Lon < pts[j].Lon
		}
		return pts[i].Lat < pts[j].Lat
	})
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// cross is the z component of (a-o) x (b-o); positive means a left turn.
func cross(o, a, b models.Coordinate) float64 {
	return (a.Lon-o.Lon)*(b.Lat-o.Lat) - (a.Lat-o.Lat)*(b.Lon-o.Lon)
}

// polygonCentroid is the area-weighted centroid. Vertices are shifted to the
// first one before summing to keep precision at city scale.
func polygonCentroid(vs []models.Coordinate) models.Coordinate {
	if len(vs) < 3 {
		return meanPoint(vs)
	}
	o := vs[0]
	var area2, cx, cy float64
	for i := range vs {
		x0, y0 := vs[i].Lon-o.Lon, vs[i].Lat-o.Lat
		next := vs[(i+1)%len(vs)]
		x1, y1 := next.Lon-o.Lon, next.Lat-o.Lat
		c := x0*y1 - x1*y0
		area2 += c
		cx += (x0 + x1) * c
		cy += (y0 + y1) * c
	}
	if area2 == 0 {
		return meanPoint(vs)
	}
	return models.Coordinate{
		Lat: o.Lat + cy/(3*area2),
		Lon: o.Lon + cx/(3*area2),
	}
}

func meanPoint(vs []models.Coordinate) models.Coordinate {
	var c models.Coordinate
	if len(vs) == 0 {
		return c
	}
	for _, v := range vs {
		c.Lat += v.Lat
		c.Lon += v.Lon
	}
	c.Lat /= float64(len(vs))
	c.Lon /= float64(len(vs))
	return c
}
