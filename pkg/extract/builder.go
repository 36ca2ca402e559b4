package extract

import (
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/geograph"
)

// BuilderOptions configures record acceptance beyond the tag filter.
type BuilderOptions struct {
	// RequireWayLink accepts an area only when at least one of its nodes
	// already belongs to an accepted way. Coastal water areas share their
	// shoreline nodes with the coastline ways; inland ponds do not, and
	// this switch drops them.
	RequireWayLink bool
}

// Builder turns accepted way and area records into graph entities.
// Points are deduplicated by node id across every record the builder has
// seen.
type Builder struct {
	store  *geograph.Store
	filter FilterConfig
	opts   BuilderOptions
	log    *zap.Logger

	waysAdded  int
	areasAdded int
}

// NewBuilder creates a builder over a fresh store. A nil logger disables
// logging.
func NewBuilder(filter FilterConfig, opts BuilderOptions, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		store:  geograph.NewStore(log),
		filter: filter,
		opts:   opts,
		log:    log,
	}
}

// Store returns the store the builder populates.
func (b *Builder) Store() *geograph.Store { return b.store }

// AddWay filters and ingests one way record. Consecutive way nodes become
// graph neighbors. Rejected records and records with unusable coordinates
// are logged and skipped; ingestion continues.
func (b *Builder) AddWay(rec WayRecord) error {
	if len(rec.Nodes) == 0 {
		return &ErrEmptyRecord{Kind: "way", ID: rec.ID}
	}
	if !b.filter.Ways.Match(rec.Tags) {
		return nil
	}
	pts, err := b.ensurePoints(rec.Nodes)
	if err != nil {
		b.log.Warn("way skipped", zap.Int64("id", rec.ID), zap.Error(err))
		return nil
	}
	line, err := geograph.NewLine(rec.ID, rec.Tags, pts)
	if err != nil {
		return err
	}
	for i := 1; i < len(pts); i++ {
		if pts[i-1].ID == pts[i].ID {
			continue
		}
		if err := pts[i-1].AddNeighbor(pts[i]); err != nil {
			return err
		}
	}
	if err := b.store.Lines().Add(line); err != nil {
		return err
	}
	b.waysAdded++
	return nil
}

// AddArea filters and ingests one area record. With RequireWayLink set,
// areas sharing no node with an already-ingested way are dropped.
func (b *Builder) AddArea(rec AreaRecord) error {
	if len(rec.Outer) == 0 {
		return &ErrEmptyRecord{Kind: "area", ID: rec.ID}
	}
	if !b.filter.Areas.Match(rec.Tags) {
		return nil
	}
	if b.opts.RequireWayLink && !b.sharesWayNode(rec) {
		b.log.Debug("area without way link dropped", zap.Int64("id", rec.ID))
		return nil
	}

	outer, err := b.ensurePoints(rec.Outer)
	if err != nil {
		b.log.Warn("area skipped", zap.Int64("id", rec.ID), zap.Error(err))
		return nil
	}
	pg := geograph.NewPolygon(rec.ID, rec.Tags)
	if err := pg.SetOuter(outer); err != nil {
		return err
	}
	for i, ring := range rec.Inners {
		inner, err := b.ensurePoints(ring)
		if err != nil {
			b.log.Warn("inner ring skipped",
				zap.Int64("id", rec.ID), zap.Int("ring", i), zap.Error(err))
			continue
		}
		if err := pg.AddInner(inner); err != nil {
			return err
		}
	}
	if err := b.store.Polygons().Add(pg); err != nil {
		return err
	}
	b.areasAdded++
	return nil
}

// Finish refreshes derived state after the last record: line adjacency
// maps are rebuilt and points no record ended up referencing are removed.
// Returns the populated store.
func (b *Builder) Finish() *geograph.Store {
	for _, l := range b.store.Lines().All() {
		l.RecomputeNeighbors(b.store.Points())
	}
	removed := b.store.Points().ClearIsolated()
	b.log.Info("build finished",
		zap.Int("ways", b.waysAdded),
		zap.Int("areas", b.areasAdded),
		zap.Int("points", b.store.Points().Len()),
		zap.Int("isolated_removed", len(removed)))
	return b.store
}

// ensurePoints resolves node refs to shared point instances, creating
// points on first sight. An existing point keeps its first-seen
// coordinate.
func (b *Builder) ensurePoints(nodes []NodeRef) ([]*geograph.Point, error) {
	pts := make([]*geograph.Point, 0, len(nodes))
	for _, n := range nodes {
		p, ok := b.store.Points().Get(n.ID)
		if !ok {
			var err error
			p, err = geograph.NewPoint(n.ID, n.Lat, n.Lon)
			if err != nil {
				return nil, err
			}
			if err := b.store.Points().Add(p); err != nil {
				return nil, err
			}
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func (b *Builder) sharesWayNode(rec AreaRecord) bool {
	rings := append([][]NodeRef{rec.Outer}, rec.Inners...)
	for _, ring := range rings {
		for _, n := range ring {
			if p, ok := b.store.Points().Get(n.ID); ok && len(p.Lines()) > 0 {
				return true
			}
		}
	}
	return false
}
