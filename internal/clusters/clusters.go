// Package clusters holds the operator's manual clusters as an immutable
// value. Every mutation returns a new State and leaves the receiver alone;
// the caller decides where the current State lives and for how long.
package clusters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"area-map/internal/calculator"
	"area-map/internal/models"
)

var (
	ErrEmptyName = errors.New("cluster name must not be empty")
	ErrNoMembers = errors.New("cluster needs at least one member")
	ErrNotFound  = errors.New("cluster not found")
)

const DefaultColor = "#22c55e"

type State struct {
	items []models.ManualCluster
}

// Create adds a cluster. A cluster with the same name is replaced in place.
func (s State) Create(name, color string, members []string) (State, error) {
	if strings.TrimSpace(name) == "" {
		return s, ErrEmptyName
	}
	if len(members) == 0 {
		return s, ErrNoMembers
	}
	if color == "" {
		color = DefaultColor
	}
	c := models.ManualCluster{
		Name:    name,
		Color:   color,
		Active:  true,
		Members: append([]string(nil), members...),
	}

	next := s.clone()
	if i := next.index(name); i >= 0 {
		next.items[i] = c
	} else {
		next.items = append(next.items, c)
	}
	return next, nil
}

func (s State) SetActive(name string, active bool) (State, error) {
	return s.update(name, func(c *models.ManualCluster) { c.Active = active })
}

func (s State) SetColor(name, color string) (State, error) {
	return s.update(name, func(c *models.ManualCluster) { c.Color = color })
}

// EditVisible replaces the members that appear in visible with selected and
// keeps every member outside visible untouched. It lets an editor that only
// shows part of the records change membership without dropping the rest.
func (s State) EditVisible(name string, visible, selected []string) (State, error) {
	shown := make(map[string]struct{}, len(visible))
	for _, v := range visible {
		shown[v] = struct{}{}
	}
	return s.update(name, func(c *models.ManualCluster) {
		kept := make([]string, 0, len(c.Members)+len(selected))
		for _, m := range c.Members {
			if _, ok := shown[m]; !ok {
				kept = append(kept, m)
			}
		}
		c.Members = append(kept, selected...)
	})
}

func (s State) Delete(name string) (State, error) {
	i := s.index(name)
	if i < 0 {
		return s, fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	next := State{items: make([]models.ManualCluster, 0, len(s.items)-1)}
	next.items = append(next.items, s.items[:i]...)
	next.items = append(next.items, s.items[i+1:]...)
	return next, nil
}

func (s State) Get(name string) (models.ManualCluster, bool) {
	i := s.index(name)
	if i < 0 {
		return models.ManualCluster{}, false
	}
	return copyCluster(s.items[i]), true
}

// List returns the clusters in creation order.
func (s State) List() []models.ManualCluster {
	return s.clone().items
}

func (s State) Active() []models.ManualCluster {
	var out []models.ManualCluster
	for _, c := range s.items {
		if c.Active {
			out = append(out, copyCluster(c))
		}
	}
	return out
}

func (s State) Len() int { return len(s.items) }

func (s State) MarshalJSON() ([]byte, error) {
	items := s.items
	if items == nil {
		items = []models.ManualCluster{}
	}
	return json.Marshal(items)
}

func (s *State) UnmarshalJSON(b []byte) error {
	var items []models.ManualCluster
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	s.items = items
	return nil
}

func (s State) update(name string, fn func(*models.ManualCluster)) (State, error) {
	i := s.index(name)
	if i < 0 {
		return s, fmt.Errorf("update %q: %w", name, ErrNotFound)
	}
	next := s.clone()
	fn(&next.items[i])
	return next, nil
}

func (s State) index(name string) int {
	for i, c := range s.items {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	if s.items == nil {
		return State{}
	}
	out := State{items: make([]models.ManualCluster, len(s.items))}
	for i, c := range s.items {
		out.items[i] = copyCluster(c)
	}
	return out
}

func copyCluster(c models.ManualCluster) models.ManualCluster {
	c.Members = append([]string(nil), c.Members...)
	return c
}

// Shape is what the map draws for one active cluster: a hull when at least
// three members resolve, otherwise the resolved points as plain markers.
type Shape struct {
	Name   string              `json:"name"`
	Color  string              `json:"color"`
	Hull   *models.Hull        `json:"hull,omitempty"`
	Points []models.Coordinate `json:"points,omitempty"`
}

// Shapes resolves every active cluster against records. Clusters with no
// resolvable member are left out.
func Shapes(s State, records []models.Record) []Shape {
	out := make([]Shape, 0)
	for _, c := range s.Active() {
		pts := calculator.ResolveMembers(c.Members, records)
		switch {
		case len(pts) >= 3:
			out = append(out, Shape{Name: c.Name, Color: c.Color, Hull: calculator.ConvexHull(pts)})
		case len(pts) > 0:
			out = append(out, Shape{Name: c.Name, Color: c.Color, Points: pts})
		}
	}
	return out
}
