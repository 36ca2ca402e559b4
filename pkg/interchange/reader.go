package interchange

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/geograph"
)

// Read decodes a feature collection into the store, rebuilding the entity
// graph. Points shared between features are deduplicated by id into a
// single instance. Malformed features are logged and skipped; the pass
// always completes.
func (c *Codec) Read(fc *geojson.FeatureCollection, store *geograph.Store) error {
	if fc == nil {
		return &ErrNothingToWrite{}
	}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		id := FeatureID(f, int64(i))
		tags := Tags(f.Properties)

		switch geom := f.Geometry.(type) {
		case orb.Point:
			c.readPoint(store, f, id, geom)
		case orb.LineString:
			c.readLine(store, f, id, tags, geom)
		case orb.Polygon:
			c.readPolygon(store, f, id, tags, geom)
		default:
			c.log.Warn("feature skipped",
				zap.Int64("id", id),
				zap.Error(&ErrUnsupportedGeometry{Type: string(f.Geometry.GeoJSONType())}))
		}
	}
	return nil
}

// ReadFile reads and decodes a GeoJSON file into the store.
func (c *Codec) ReadFile(path string, store *geograph.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return c.Read(fc, store)
}

// FastRead decodes a feature collection into geometry-handle entities:
// lines and polygons carry their coordinates directly and the point
// registry stays empty. Suitable for read-only passes over large files.
func (c *Codec) FastRead(fc *geojson.FeatureCollection, store *geograph.Store) error {
	if fc == nil {
		return &ErrNothingToWrite{}
	}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		id := FeatureID(f, int64(i))
		tags := Tags(f.Properties)

		switch geom := f.Geometry.(type) {
		case orb.LineString:
			l, err := geograph.NewLine(id, tags, nil)
			if err != nil {
				return err
			}
			l.SetGeometry(geom)
			if err := store.Lines().Add(l); err != nil {
				return err
			}
		case orb.Polygon:
			pg := geograph.NewPolygon(id, tags)
			pg.SetGeometry(geom)
			if err := store.Polygons().Add(pg); err != nil {
				return err
			}
		default:
			// Point and other features carry no geometry handle worth caching
			continue
		}
	}
	return nil
}

// FastReadFile reads a GeoJSON file in geometry-handle mode.
func (c *Codec) FastReadFile(path string, store *geograph.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return c.FastRead(fc, store)
}

func (c *Codec) readPoint(store *geograph.Store, f *geojson.Feature, id int64, geom orb.Point) {
	ids, _ := FlatNodeIDs(f.Properties[PropNodeIDs])
	if len(ids) > 0 {
		id = ids[0]
	}
	if _, err := ensurePoint(store, id, geom[1], geom[0]); err != nil {
		c.log.Warn("point skipped", zap.Int64("id", id), zap.Error(err))
	}
}

func (c *Codec) readLine(store *geograph.Store, f *geojson.Feature, id int64, tags map[string]string, geom orb.LineString) {
	ids, ok := FlatNodeIDs(f.Properties[PropNodeIDs])
	if !ok || len(ids) != len(geom) {
		c.log.Warn("line skipped",
			zap.Int64("id", id),
			zap.Error(&ErrCountMismatch{FeatureID: id, Coords: len(geom), NodeIDs: len(ids)}))
		return
	}
	pts := make([]*geograph.Point, 0, len(ids))
	for i, nodeID := range ids {
		p, err := ensurePoint(store, nodeID, geom[i][1], geom[i][0])
		if err != nil {
			c.log.Warn("line skipped", zap.Int64("id", id), zap.Error(err))
			return
		}
		pts = append(pts, p)
	}
	l, err := geograph.NewLine(id, tags, pts)
	if err != nil {
		c.log.Warn("line skipped", zap.Int64("id", id), zap.Error(err))
		return
	}
	if err := store.Lines().Add(l); err != nil {
		c.log.Warn("line skipped", zap.Int64("id", id), zap.Error(err))
	}
}

// readPolygon rebuilds a polygon feature. A count mismatch on the outer
// ring drops the whole feature; a mismatch on an inner ring drops only
// that ring.
func (c *Codec) readPolygon(store *geograph.Store, f *geojson.Feature, id int64, tags map[string]string, geom orb.Polygon) {
	rings, ok := ringNodeIDs(f.Properties[PropNodeIDs])
	if !ok || len(rings) == 0 || len(geom) == 0 || len(rings[0]) != len(geom[0]) {
		outer := 0
		if len(rings) > 0 {
			outer = len(rings[0])
		}
		coords := 0
		if len(geom) > 0 {
			coords = len(geom[0])
		}
		c.log.Warn("polygon skipped",
			zap.Int64("id", id),
			zap.Error(&ErrCountMismatch{FeatureID: id, Coords: coords, NodeIDs: outer}))
		return
	}

	pg := geograph.NewPolygon(id, tags)
	outer, err := c.ringPoints(store, id, rings[0], geom[0])
	if err != nil {
		c.log.Warn("polygon skipped", zap.Int64("id", id), zap.Error(err))
		return
	}
	if err := pg.SetOuter(outer); err != nil {
		c.log.Warn("polygon skipped", zap.Int64("id", id), zap.Error(err))
		return
	}

	for i := 1; i < len(rings) && i < len(geom); i++ {
		if len(rings[i]) != len(geom[i]) {
			c.log.Warn("inner ring skipped",
				zap.Int64("id", id), zap.Int("ring", i),
				zap.Error(&ErrCountMismatch{FeatureID: id, Coords: len(geom[i]), NodeIDs: len(rings[i])}))
			continue
		}
		inner, err := c.ringPoints(store, id, rings[i], geom[i])
		if err != nil {
			c.log.Warn("inner ring skipped", zap.Int64("id", id), zap.Int("ring", i), zap.Error(err))
			continue
		}
		if err := pg.AddInner(inner); err != nil {
			c.log.Warn("inner ring skipped", zap.Int64("id", id), zap.Int("ring", i), zap.Error(err))
		}
	}

	if err := store.Polygons().Add(pg); err != nil {
		c.log.Warn("polygon skipped", zap.Int64("id", id), zap.Error(err))
	}
}

func (c *Codec) ringPoints(store *geograph.Store, featureID int64, ids []int64, ring orb.Ring) ([]*geograph.Point, error) {
	pts := make([]*geograph.Point, 0, len(ids))
	for i, nodeID := range ids {
		p, err := ensurePoint(store, nodeID, ring[i][1], ring[i][0])
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// ensurePoint returns the registered point with the given id, creating and
// registering it when absent. An existing point keeps its coordinate, so
// features sharing an id share one instance.
func ensurePoint(store *geograph.Store, id int64, lat, lon float64) (*geograph.Point, error) {
	if p, ok := store.Points().Get(id); ok {
		return p, nil
	}
	p, err := geograph.NewPoint(id, lat, lon)
	if err != nil {
		return nil, err
	}
	if err := store.Points().Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FeatureID extracts a numeric feature id, falling back to the feature's
// position in the collection.
func FeatureID(f *geojson.Feature, fallback int64) int64 {
	if id, ok := asInt64(f.ID); ok {
		return id
	}
	return fallback
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// Tags decodes the "tags" property, accepting both the in-memory string
// map and the generic map produced by JSON decoding.
func Tags(props geojson.Properties) map[string]string {
	tags := make(map[string]string)
	switch m := props[PropTags].(type) {
	case map[string]string:
		for k, v := range m {
			tags[k] = v
		}
	case map[string]interface{}:
		for k, v := range m {
			if s, ok := v.(string); ok {
				tags[k] = s
			}
		}
	}
	return tags
}

// FlatNodeIDs decodes a flat id_nodes list.
func FlatNodeIDs(v interface{}) ([]int64, bool) {
	switch list := v.(type) {
	case []int64:
		return list, true
	case []interface{}:
		ids := make([]int64, 0, len(list))
		for _, item := range list {
			id, ok := asInt64(item)
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
		return ids, true
	default:
		return nil, false
	}
}

// ringNodeIDs decodes a per-ring id_nodes list.
func ringNodeIDs(v interface{}) ([][]int64, bool) {
	switch list := v.(type) {
	case [][]int64:
		return list, true
	case []interface{}:
		rings := make([][]int64, 0, len(list))
		for _, item := range list {
			ring, ok := FlatNodeIDs(item)
			if !ok {
				return nil, false
			}
			rings = append(rings, ring)
		}
		return rings, true
	default:
		return nil, false
	}
}
