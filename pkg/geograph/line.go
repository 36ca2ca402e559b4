package geograph

import (
	"github.com/paulmach/orb"
)

// Line is an ordered polyline over point ids. The bound is maintained
// incrementally on Append and recomputed from scratch on Remove. A line may
// additionally carry a cached orb.LineString geometry for datasets loaded
// without point materialization.
type Line struct {
	ID   int64
	Tags map[string]string

	points   []int64
	bound    orb.Bound
	hasBound bool

	// neighbors maps adjacent line id to the point ids shared with it.
	neighbors map[int64][]int64

	geom    orb.LineString
	hasGeom bool
}

// NewLine creates a line from an ordered point slice and attaches the line
// back-reference on every member point.
func NewLine(id int64, tags map[string]string, pts []*Point) (*Line, error) {
	if tags == nil {
		tags = make(map[string]string)
	}
	l := &Line{
		ID:        id,
		Tags:      tags,
		points:    make([]int64, 0, len(pts)),
		neighbors: make(map[int64][]int64),
	}
	for _, p := range pts {
		if err := l.Append(p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// PointIDs returns the ordered member point ids. The slice is live.
func (l *Line) PointIDs() []int64 { return l.points }

// Len returns the number of member points.
func (l *Line) Len() int { return len(l.points) }

// Closed reports whether the line has at least two points and its first and
// last point ids coincide.
func (l *Line) Closed() bool {
	return len(l.points) >= 2 && l.points[0] == l.points[len(l.points)-1]
}

// Bound returns the derived bounding box. The second return is false while
// the line has no points and no cached geometry.
func (l *Line) Bound() (orb.Bound, bool) {
	return l.bound, l.hasBound
}

// Append adds a point to the end of the line, attaches the back-reference
// and extends the bound monotonically.
func (l *Line) Append(p *Point) error {
	if p == nil {
		return &ErrNilEntity{Kind: "point"}
	}
	l.points = append(l.points, p.ID)
	p.attachLine(l.ID)
	l.expandBound(p.Coordinate())
	return nil
}

// Remove drops the first occurrence of p from the line and recomputes the
// bound from the remaining points. The back-reference on p is detached only
// when no occurrence remains. Returns false when p is not a member.
func (l *Line) Remove(p *Point, points *PointRegistry) bool {
	if p == nil {
		return false
	}
	idx := -1
	for i, id := range l.points {
		if id == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	l.points = append(l.points[:idx], l.points[idx+1:]...)

	remains := false
	for _, id := range l.points {
		if id == p.ID {
			remains = true
			break
		}
	}
	if !remains {
		p.detachLine(l.ID)
	}
	l.recomputeBound(points)
	return true
}

// removeAll drops every occurrence of the given point id without touching
// the point's back-reference or the bound. Used by cascade removal where
// the point itself is going away.
func (l *Line) removeAll(pointID int64) {
	kept := l.points[:0]
	for _, id := range l.points {
		if id != pointID {
			kept = append(kept, id)
		}
	}
	l.points = kept
}

// RecomputeNeighbors rebuilds the adjacency map from the line sets of each
// member point: every other line sharing a member point becomes a neighbor,
// keyed by line id with the shared point ids as the value.
func (l *Line) RecomputeNeighbors(points *PointRegistry) {
	l.neighbors = make(map[int64][]int64)
	for _, id := range l.points {
		p, ok := points.Get(id)
		if !ok {
			continue
		}
		for lineID := range p.Lines() {
			if lineID == l.ID {
				continue
			}
			l.neighbors[lineID] = append(l.neighbors[lineID], id)
		}
	}
}

// Neighbors returns the adjacency map built by RecomputeNeighbors.
func (l *Line) Neighbors() map[int64][]int64 { return l.neighbors }

func (l *Line) dropNeighbor(lineID int64) { delete(l.neighbors, lineID) }

// SetGeometry caches a materialized linestring and refreshes the bound
// from it.
func (l *Line) SetGeometry(ls orb.LineString) {
	l.geom = ls
	l.hasGeom = true
	if len(ls) > 0 {
		l.bound = ls.Bound()
		l.hasBound = true
	}
}

// Geometry returns the cached linestring, if set.
func (l *Line) Geometry() (orb.LineString, bool) {
	return l.geom, l.hasGeom
}

// LineString materializes the line's coordinates through the point
// registry. Fails on the first missing point id.
func (l *Line) LineString(points *PointRegistry) (orb.LineString, error) {
	ls := make(orb.LineString, 0, len(l.points))
	for _, id := range l.points {
		p, ok := points.Get(id)
		if !ok {
			return nil, &ErrMissingPoint{EntityID: l.ID, PointID: id}
		}
		ls = append(ls, p.Coordinate())
	}
	return ls, nil
}

func (l *Line) expandBound(c orb.Point) {
	if !l.hasBound {
		l.bound = orb.Bound{Min: c, Max: c}
		l.hasBound = true
		return
	}
	l.bound = l.bound.Extend(c)
}

func (l *Line) recomputeBound(points *PointRegistry) {
	l.hasBound = false
	for _, id := range l.points {
		p, ok := points.Get(id)
		if !ok {
			continue
		}
		l.expandBound(p.Coordinate())
	}
}
