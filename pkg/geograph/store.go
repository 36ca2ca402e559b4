package geograph

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Store ties the three registries together and implements the cascading
// removal rules that keep membership links symmetric.
type Store struct {
	points   *PointRegistry
	lines    *LineRegistry
	polygons *PolygonRegistry
	log      *zap.Logger
}

// NewStore creates a store with empty registries sharing one logger. A nil
// logger disables logging.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		points:   NewPointRegistry(log),
		lines:    NewLineRegistry(log),
		polygons: NewPolygonRegistry(log),
		log:      log,
	}
}

// Points returns the point registry.
func (s *Store) Points() *PointRegistry { return s.points }

// Lines returns the line registry.
func (s *Store) Lines() *LineRegistry { return s.lines }

// Polygons returns the polygon registry.
func (s *Store) Polygons() *PolygonRegistry { return s.polygons }

// RemovePoint removes a point and detaches it everywhere: every occurrence
// in owning lines and polygon rings is dropped (with bound recompute), and
// all neighbor links are severed.
func (s *Store) RemovePoint(id int64) bool {
	p, ok := s.points.Get(id)
	if !ok {
		return false
	}
	for lineID := range p.Lines() {
		if l, found := s.lines.Get(lineID); found {
			l.removeAll(id)
			l.recomputeBound(s.points)
		}
	}
	for polyID := range p.Polygons() {
		if pg, found := s.polygons.Get(polyID); found {
			pg.removeAll(id)
			pg.recomputeBound(s.points)
		}
	}
	for nbrID := range p.Neighbors() {
		if q, found := s.points.Get(nbrID); found {
			delete(q.Neighbors(), id)
		}
	}
	s.points.Remove(id)
	return true
}

// RemoveLine removes a line, detaches its back-reference from every member
// point, and drops it from other lines' adjacency maps.
func (s *Store) RemoveLine(id int64) bool {
	l, ok := s.lines.Get(id)
	if !ok {
		return false
	}
	for _, pid := range l.PointIDs() {
		if p, found := s.points.Get(pid); found {
			p.detachLine(id)
		}
	}
	for otherID := range l.Neighbors() {
		if other, found := s.lines.Get(otherID); found {
			other.dropNeighbor(id)
		}
	}
	s.lines.Remove(id)
	return true
}

// RemovePolygon removes a polygon and detaches its back-reference from
// every ring point.
func (s *Store) RemovePolygon(id int64) bool {
	pg, ok := s.polygons.Get(id)
	if !ok {
		return false
	}
	rings := append([][]int64{pg.OuterIDs()}, pg.InnerIDs()...)
	for _, ring := range rings {
		for _, pid := range ring {
			if p, found := s.points.Get(pid); found {
				p.detachPolygon(id)
			}
		}
	}
	s.polygons.Remove(id)
	return true
}

// GlobalBound returns the union bounding box over every point, line and
// polygon in the store. The second return is false when the store holds no
// bounded entity.
func (s *Store) GlobalBound() (orb.Bound, bool) {
	var global orb.Bound
	has := false
	extend := func(b orb.Bound) {
		if !has {
			global = b
			has = true
			return
		}
		global = global.Union(b)
	}
	for _, p := range s.points.All() {
		c := p.Coordinate()
		extend(orb.Bound{Min: c, Max: c})
	}
	for _, l := range s.lines.All() {
		if b, ok := l.Bound(); ok {
			extend(b)
		}
	}
	for _, pg := range s.polygons.All() {
		if b, ok := pg.Bound(); ok {
			extend(b)
		}
	}
	return global, has
}
