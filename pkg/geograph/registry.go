package geograph

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// boundsOverlap reports inclusive axis-aligned overlap: entities whose
// bound edge exactly equals a query edge are included.
func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}

// PointRegistry maps point ids to points. Adding a duplicate id overwrites
// the previous entry and logs a warning.
type PointRegistry struct {
	items map[int64]*Point
	log   *zap.Logger
}

// NewPointRegistry creates an empty registry. A nil logger disables
// logging.
func NewPointRegistry(log *zap.Logger) *PointRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &PointRegistry{items: make(map[int64]*Point), log: log}
}

// Add stores a point by id, overwriting any previous entry with the same
// id.
func (r *PointRegistry) Add(p *Point) error {
	if p == nil {
		return &ErrNilEntity{Kind: "point"}
	}
	if _, exists := r.items[p.ID]; exists {
		r.log.Warn("point overwritten", zap.Int64("id", p.ID))
	}
	r.items[p.ID] = p
	return nil
}

// Get looks up a point by id.
func (r *PointRegistry) Get(id int64) (*Point, bool) {
	p, ok := r.items[id]
	return p, ok
}

// Remove drops a point by id without cascading. Use Store.RemovePoint for
// cascade semantics.
func (r *PointRegistry) Remove(id int64) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// Len returns the number of registered points.
func (r *PointRegistry) Len() int { return len(r.items) }

// All returns the live id map.
func (r *PointRegistry) All() map[int64]*Point { return r.items }

// QueryBound returns all points inside or on the edge of the query bound,
// via a linear scan.
func (r *PointRegistry) QueryBound(q orb.Bound) []*Point {
	var hits []*Point
	for _, p := range r.items {
		c := p.Coordinate()
		if c[0] >= q.Min[0] && c[0] <= q.Max[0] && c[1] >= q.Min[1] && c[1] <= q.Max[1] {
			hits = append(hits, p)
		}
	}
	return hits
}

// ClearIsolated removes every point with no line or polygon membership and
// no neighbor links, returning the removed ids.
func (r *PointRegistry) ClearIsolated() []int64 {
	var removed []int64
	for id, p := range r.items {
		if p.Isolated() {
			removed = append(removed, id)
			delete(r.items, id)
		}
	}
	if len(removed) > 0 {
		r.log.Info("isolated points removed", zap.Int("count", len(removed)))
	}
	return removed
}

// LineRegistry maps line ids to lines with overwrite-on-duplicate
// semantics.
type LineRegistry struct {
	items map[int64]*Line
	log   *zap.Logger
}

// NewLineRegistry creates an empty registry. A nil logger disables
// logging.
func NewLineRegistry(log *zap.Logger) *LineRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &LineRegistry{items: make(map[int64]*Line), log: log}
}

// Add stores a line by id, overwriting any previous entry with the same
// id.
func (r *LineRegistry) Add(l *Line) error {
	if l == nil {
		return &ErrNilEntity{Kind: "line"}
	}
	if _, exists := r.items[l.ID]; exists {
		r.log.Warn("line overwritten", zap.Int64("id", l.ID))
	}
	r.items[l.ID] = l
	return nil
}

// Get looks up a line by id.
func (r *LineRegistry) Get(id int64) (*Line, bool) {
	l, ok := r.items[id]
	return l, ok
}

// Remove drops a line by id without cascading. Use Store.RemoveLine for
// cascade semantics.
func (r *LineRegistry) Remove(id int64) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// Len returns the number of registered lines.
func (r *LineRegistry) Len() int { return len(r.items) }

// All returns the live id map.
func (r *LineRegistry) All() map[int64]*Line { return r.items }

// QueryBound returns all lines whose bound overlaps the query bound,
// edges inclusive, via a linear scan. Lines without a bound never match.
func (r *LineRegistry) QueryBound(q orb.Bound) []*Line {
	var hits []*Line
	for _, l := range r.items {
		b, ok := l.Bound()
		if ok && boundsOverlap(b, q) {
			hits = append(hits, l)
		}
	}
	return hits
}

// PolygonRegistry maps polygon ids to polygons with overwrite-on-duplicate
// semantics.
type PolygonRegistry struct {
	items map[int64]*Polygon
	log   *zap.Logger
}

// NewPolygonRegistry creates an empty registry. A nil logger disables
// logging.
func NewPolygonRegistry(log *zap.Logger) *PolygonRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &PolygonRegistry{items: make(map[int64]*Polygon), log: log}
}

// Add stores a polygon by id, overwriting any previous entry with the
// same id.
func (r *PolygonRegistry) Add(pg *Polygon) error {
	if pg == nil {
		return &ErrNilEntity{Kind: "polygon"}
	}
	if _, exists := r.items[pg.ID]; exists {
		r.log.Warn("polygon overwritten", zap.Int64("id", pg.ID))
	}
	r.items[pg.ID] = pg
	return nil
}

// Get looks up a polygon by id.
func (r *PolygonRegistry) Get(id int64) (*Polygon, bool) {
	pg, ok := r.items[id]
	return pg, ok
}

// Remove drops a polygon by id without cascading. Use Store.RemovePolygon
// for cascade semantics.
func (r *PolygonRegistry) Remove(id int64) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// Len returns the number of registered polygons.
func (r *PolygonRegistry) Len() int { return len(r.items) }

// All returns the live id map.
func (r *PolygonRegistry) All() map[int64]*Polygon { return r.items }

// QueryBound returns all polygons whose bound overlaps the query bound,
// edges inclusive, via a linear scan. Polygons without a bound never
// match.
func (r *PolygonRegistry) QueryBound(q orb.Bound) []*Polygon {
	var hits []*Polygon
	for _, pg := range r.items {
		b, ok := pg.Bound()
		if ok && boundsOverlap(b, q) {
			hits = append(hits, pg)
		}
	}
	return hits
}
