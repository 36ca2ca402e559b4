package interchange

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/geograph"
)

// Collection encodes a store plus any standalone points into a feature
// collection. Lines come first in id order, then polygons, then the
// standalone points. Returns ErrNothingToWrite when no feature can be
// produced.
func (c *Codec) Collection(store *geograph.Store, standalone []*geograph.Point) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	for _, l := range sortedLines(store.Lines()) {
		f, err := c.lineFeature(l, store.Points())
		if err != nil {
			c.log.Warn("line skipped", zap.Int64("id", l.ID), zap.Error(err))
			continue
		}
		fc.Append(f)
	}

	for _, pg := range sortedPolygons(store.Polygons()) {
		f, err := c.polygonFeature(pg, store.Points())
		if err != nil {
			c.log.Warn("polygon skipped", zap.Int64("id", pg.ID), zap.Error(err))
			continue
		}
		fc.Append(f)
	}

	for _, p := range standalone {
		if p == nil {
			continue
		}
		f := geojson.NewFeature(p.Coordinate())
		f.ID = p.ID
		f.Properties[PropTags] = map[string]string{}
		f.Properties[PropNodeIDs] = []int64{p.ID}
		fc.Append(f)
	}

	if len(fc.Features) == 0 {
		return nil, &ErrNothingToWrite{}
	}
	return fc, nil
}

// WriteFile encodes the store and writes it as a GeoJSON file. The file is
// not created when there is nothing to write.
func (c *Codec) WriteFile(path string, store *geograph.Store, standalone []*geograph.Point) error {
	fc, err := c.Collection(store, standalone)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	c.log.Info("collection written", zap.String("path", path), zap.Int("features", len(fc.Features)))
	return nil
}

func (c *Codec) lineFeature(l *geograph.Line, points *geograph.PointRegistry) (*geojson.Feature, error) {
	ls, err := l.LineString(points)
	if err != nil {
		return nil, err
	}
	if len(ls) < 2 {
		if cached, ok := l.Geometry(); ok && len(cached) >= 2 {
			ls = cached
		} else {
			return nil, &ErrUnsupportedGeometry{Type: "degenerate LineString"}
		}
	}

	f := geojson.NewFeature(ls)
	f.ID = l.ID
	f.Properties[PropTags] = l.Tags
	f.Properties[PropNodeIDs] = append([]int64(nil), l.PointIDs()...)
	f.BBox = geojson.NewBBox(ls.Bound())
	return f, nil
}

// polygonFeature encodes a polygon, outer ring first. Rings with fewer
// than three distinct positions are skipped with a warning; a skipped
// outer ring drops the feature. Open rings are closed on the emitted
// copy.
func (c *Codec) polygonFeature(pg *geograph.Polygon, points *geograph.PointRegistry) (*geojson.Feature, error) {
	ringIDs := append([][]int64{pg.OuterIDs()}, pg.InnerIDs()...)

	poly := make(orb.Polygon, 0, len(ringIDs))
	nodeIDs := make([][]int64, 0, len(ringIDs))
	for i, ids := range ringIDs {
		ring := make(orb.Ring, 0, len(ids)+1)
		for _, id := range ids {
			p, ok := points.Get(id)
			if !ok {
				return nil, &geograph.ErrMissingPoint{EntityID: pg.ID, PointID: id}
			}
			ring = append(ring, p.Coordinate())
		}
		if len(ring) < 3 {
			if i == 0 {
				return nil, &ErrUnsupportedGeometry{Type: "degenerate outer ring"}
			}
			c.log.Warn("short ring skipped",
				zap.Int64("polygon", pg.ID), zap.Int("ring", i), zap.Int("points", len(ring)))
			continue
		}
		if !ring.Closed() {
			c.log.Warn("open ring closed", zap.Int64("polygon", pg.ID), zap.Int("ring", i))
			ring = append(ring, ring[0])
		}
		poly = append(poly, ring)
		nodeIDs = append(nodeIDs, append([]int64(nil), ids...))
	}

	f := geojson.NewFeature(poly)
	f.ID = pg.ID
	f.Properties[PropTags] = pg.Tags
	f.Properties[PropNodeIDs] = nodeIDs
	f.BBox = geojson.NewBBox(poly.Bound())
	return f, nil
}

func sortedLines(reg *geograph.LineRegistry) []*geograph.Line {
	out := make([]*geograph.Line, 0, reg.Len())
	for _, l := range reg.All() {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedPolygons(reg *geograph.PolygonRegistry) []*geograph.Polygon {
	out := make([]*geograph.Polygon, 0, reg.Len())
	for _, pg := range reg.All() {
		out = append(out, pg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
