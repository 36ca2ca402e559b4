package geograph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is an area bounded by an outer ring of point ids with optional
// inner rings (holes). Inner rings can only exist while an outer ring is
// present. The bound spans all rings. A cached orb.Polygon handle, when
// set, provides containment checks without registry lookups.
type Polygon struct {
	ID   int64
	Tags map[string]string

	outer  []int64
	inners [][]int64

	bound    orb.Bound
	hasBound bool

	geom    orb.Polygon
	hasGeom bool
}

// NewPolygon creates an empty polygon. Rings are added with SetOuter and
// AddInner.
func NewPolygon(id int64, tags map[string]string) *Polygon {
	if tags == nil {
		tags = make(map[string]string)
	}
	return &Polygon{ID: id, Tags: tags}
}

// OuterIDs returns the outer ring point ids. The slice is live.
func (pg *Polygon) OuterIDs() []int64 { return pg.outer }

// InnerIDs returns the inner ring point id lists. The slices are live.
func (pg *Polygon) InnerIDs() [][]int64 { return pg.inners }

// Bound returns the bounding box over all rings. The second return is
// false while the polygon has no rings and no cached geometry.
func (pg *Polygon) Bound() (orb.Bound, bool) { return pg.bound, pg.hasBound }

// SetOuter sets the outer ring and attaches back-references on the ring
// points. An existing outer ring must be removed with RemoveOuter first.
func (pg *Polygon) SetOuter(pts []*Point) error {
	if len(pg.outer) > 0 {
		return &ErrRingConstraint{PolygonID: pg.ID, Reason: "outer ring already set"}
	}
	for _, p := range pts {
		if p == nil {
			return &ErrNilEntity{Kind: "point"}
		}
	}
	pg.outer = make([]int64, 0, len(pts))
	for _, p := range pts {
		pg.outer = append(pg.outer, p.ID)
		p.attachPolygon(pg.ID)
	}
	pg.recomputeBoundFrom(pts)
	return nil
}

// AddInner appends an inner ring. An inner ring requires a non-empty outer
// ring.
func (pg *Polygon) AddInner(pts []*Point) error {
	if len(pg.outer) == 0 {
		return &ErrRingConstraint{PolygonID: pg.ID, Reason: "inner ring requires an outer ring"}
	}
	for _, p := range pts {
		if p == nil {
			return &ErrNilEntity{Kind: "point"}
		}
	}
	ring := make([]int64, 0, len(pts))
	for _, p := range pts {
		ring = append(ring, p.ID)
		p.attachPolygon(pg.ID)
		pg.expandBound(p.Coordinate())
	}
	pg.inners = append(pg.inners, ring)
	return nil
}

// RemoveOuter clears the outer ring. It fails while inner rings remain.
func (pg *Polygon) RemoveOuter(points *PointRegistry) error {
	if len(pg.inners) > 0 {
		return &ErrRingConstraint{PolygonID: pg.ID, Reason: "outer ring cannot be removed while inner rings remain"}
	}
	for _, id := range pg.outer {
		if p, ok := points.Get(id); ok {
			p.detachPolygon(pg.ID)
		}
	}
	pg.outer = nil
	pg.hasBound = pg.hasGeom
	return nil
}

// ClearInners drops all inner rings, detaching points not also on the
// outer ring, and recomputes the bound.
func (pg *Polygon) ClearInners(points *PointRegistry) {
	onOuter := make(map[int64]struct{}, len(pg.outer))
	for _, id := range pg.outer {
		onOuter[id] = struct{}{}
	}
	for _, ring := range pg.inners {
		for _, id := range ring {
			if _, ok := onOuter[id]; ok {
				continue
			}
			if p, found := points.Get(id); found {
				p.detachPolygon(pg.ID)
			}
		}
	}
	pg.inners = nil
	pg.recomputeBound(points)
}

// SetGeometry caches a materialized polygon and refreshes the bound
// from it.
func (pg *Polygon) SetGeometry(poly orb.Polygon) {
	pg.geom = poly
	pg.hasGeom = true
	if len(poly) > 0 && len(poly[0]) > 0 {
		pg.bound = poly.Bound()
		pg.hasBound = true
	}
}

// Geometry returns the cached polygon, if set.
func (pg *Polygon) Geometry() (orb.Polygon, bool) { return pg.geom, pg.hasGeom }

// Rings materializes all rings through the point registry, outer ring
// first. Rings are closed if their stored point ids are not.
func (pg *Polygon) Rings(points *PointRegistry) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, 1+len(pg.inners))
	rings := append([][]int64{pg.outer}, pg.inners...)
	for _, ids := range rings {
		ring := make(orb.Ring, 0, len(ids)+1)
		for _, id := range ids {
			p, ok := points.Get(id)
			if !ok {
				return nil, &ErrMissingPoint{EntityID: pg.ID, PointID: id}
			}
			ring = append(ring, p.Coordinate())
		}
		if len(ring) > 0 && !ring.Closed() {
			ring = append(ring, ring[0])
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// ContainsCoordinate reports whether (lat, lon) falls inside the outer
// ring and outside every inner ring. A cached geometry handle is used when
// present; otherwise rings are materialized through the registry.
func (pg *Polygon) ContainsCoordinate(lat, lon float64, points *PointRegistry) (bool, error) {
	if err := validateCoordinate(lat, lon); err != nil {
		return false, err
	}
	c := orb.Point{lon, lat}
	if pg.hasGeom {
		return planar.PolygonContains(pg.geom, c), nil
	}
	poly, err := pg.Rings(points)
	if err != nil {
		return false, err
	}
	if len(poly) == 0 || len(poly[0]) == 0 {
		return false, nil
	}
	return planar.PolygonContains(poly, c), nil
}

func (pg *Polygon) expandBound(c orb.Point) {
	if !pg.hasBound {
		pg.bound = orb.Bound{Min: c, Max: c}
		pg.hasBound = true
		return
	}
	pg.bound = pg.bound.Extend(c)
}

func (pg *Polygon) recomputeBoundFrom(outer []*Point) {
	pg.hasBound = false
	for _, p := range outer {
		pg.expandBound(p.Coordinate())
	}
}

func (pg *Polygon) recomputeBound(points *PointRegistry) {
	pg.hasBound = false
	rings := append([][]int64{pg.outer}, pg.inners...)
	for _, ring := range rings {
		for _, id := range ring {
			if p, ok := points.Get(id); ok {
				pg.expandBound(p.Coordinate())
			}
		}
	}
}

// removeAll drops every occurrence of the given point id from all rings.
// Used by cascade removal.
func (pg *Polygon) removeAll(pointID int64) {
	filter := func(ids []int64) []int64 {
		kept := ids[:0]
		for _, id := range ids {
			if id != pointID {
				kept = append(kept, id)
			}
		}
		return kept
	}
	pg.outer = filter(pg.outer)
	for i := range pg.inners {
		pg.inners[i] = filter(pg.inners[i])
	}
}
