package geograph

import (
	"github.com/paulmach/orb"
)

// Point is a node in the geo-entity graph. It carries a validated WGS84
// coordinate and id-sets linking it back to the lines and polygons that
// contain it, plus explicit neighbor links to adjacent points.
//
// The link sets returned by Lines, Polygons and Neighbors are the live
// collections, not copies; callers must not mutate them directly.
type Point struct {
	ID       int64
	lat, lon float64

	lines     map[int64]struct{}
	polygons  map[int64]struct{}
	neighbors map[int64]struct{}
}

// NewPoint creates a point with a validated coordinate.
func NewPoint(id int64, lat, lon float64) (*Point, error) {
	if err := validateCoordinate(lat, lon); err != nil {
		return nil, err
	}
	return &Point{
		ID:        id,
		lat:       lat,
		lon:       lon,
		lines:     make(map[int64]struct{}),
		polygons:  make(map[int64]struct{}),
		neighbors: make(map[int64]struct{}),
	}, nil
}

// Lat returns the latitude in degrees.
func (p *Point) Lat() float64 { return p.lat }

// Lon returns the longitude in degrees.
func (p *Point) Lon() float64 { return p.lon }

// SetCoordinate replaces the coordinate after validation.
func (p *Point) SetCoordinate(lat, lon float64) error {
	if err := validateCoordinate(lat, lon); err != nil {
		return err
	}
	p.lat = lat
	p.lon = lon
	return nil
}

// Coordinate returns the point as an orb (lon, lat) coordinate pair.
func (p *Point) Coordinate() orb.Point {
	return orb.Point{p.lon, p.lat}
}

// Lines returns the ids of lines containing this point.
func (p *Point) Lines() map[int64]struct{} { return p.lines }

// Polygons returns the ids of polygons whose rings contain this point.
func (p *Point) Polygons() map[int64]struct{} { return p.polygons }

// Neighbors returns the ids of points linked as neighbors.
func (p *Point) Neighbors() map[int64]struct{} { return p.neighbors }

// AddNeighbor links p and q symmetrically. Linking a point to itself is an
// error; re-linking an existing neighbor is a no-op.
func (p *Point) AddNeighbor(q *Point) error {
	if q == nil {
		return &ErrNilEntity{Kind: "point"}
	}
	if q.ID == p.ID {
		return &ErrSelfNeighbor{ID: p.ID}
	}
	p.neighbors[q.ID] = struct{}{}
	q.neighbors[p.ID] = struct{}{}
	return nil
}

// RemoveNeighbor unlinks p and q on both sides. Removing a non-neighbor is
// a no-op.
func (p *Point) RemoveNeighbor(q *Point) {
	if q == nil {
		return
	}
	delete(p.neighbors, q.ID)
	delete(q.neighbors, p.ID)
}

// Isolated reports whether the point belongs to no line or polygon and has
// no neighbors.
func (p *Point) Isolated() bool {
	return len(p.lines) == 0 && len(p.polygons) == 0 && len(p.neighbors) == 0
}

func (p *Point) attachLine(id int64)    { p.lines[id] = struct{}{} }
func (p *Point) detachLine(id int64)    { delete(p.lines, id) }
func (p *Point) attachPolygon(id int64) { p.polygons[id] = struct{}{} }
func (p *Point) detachPolygon(id int64) { delete(p.polygons, id) }
