package interchange

import (
	"fmt"
	"io"
	"os"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/geograph"
)

// snapshotName is the layer name stamped on snapshot files.
const snapshotName = "waterline-snapshot"

// WriteSnapshot writes a geometry-only FlatGeobuf snapshot of the store's
// lines and polygons, lines first in id order. Ids and tags are not
// preserved; the snapshot is a geometry cache for fast reloads, not a
// replacement for the GeoJSON interchange files.
func (c *Codec) WriteSnapshot(w io.Writer, store *geograph.Store) error {
	var geoms []orb.Geometry
	for _, l := range sortedLines(store.Lines()) {
		ls, err := l.LineString(store.Points())
		if err != nil || len(ls) < 2 {
			if cached, ok := l.Geometry(); ok && len(cached) >= 2 {
				ls = cached
			} else {
				c.log.Warn("line left out of snapshot", zap.Int64("id", l.ID))
				continue
			}
		}
		geoms = append(geoms, ls)
	}
	for _, pg := range sortedPolygons(store.Polygons()) {
		poly, err := pg.Rings(store.Points())
		if err != nil || len(poly) == 0 || len(poly[0]) < 4 {
			if cached, ok := pg.Geometry(); ok && len(cached) > 0 {
				poly = cached
			} else {
				c.log.Warn("polygon left out of snapshot", zap.Int64("id", pg.ID))
				continue
			}
		}
		geoms = append(geoms, poly)
	}
	if len(geoms) == 0 {
		return &ErrNothingToWrite{}
	}

	builder := flatbuffers.NewBuilder(4096)
	header := writer.NewHeader(builder)
	header.SetName(snapshotName)
	header.SetGeometryType(flattypes.GeometryTypeUnknown)

	gen := &snapshotGenerator{geoms: geoms}
	// The spatial index is required: reading back iterates via an
	// envelope search.
	fgb := writer.NewWriter(header, true, gen, nil)
	if _, err := fgb.Write(w); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	c.log.Info("snapshot written", zap.Int("geometries", len(geoms)))
	return nil
}

// WriteSnapshotFile writes a snapshot to a file.
func (c *Codec) WriteSnapshotFile(path string, store *geograph.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return c.WriteSnapshot(f, store)
}

// ReadSnapshot loads a snapshot into the store in geometry-handle mode,
// assigning sequential ids starting at 1. The point registry stays empty.
func (c *Codec) ReadSnapshot(data []byte, store *geograph.Store) error {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	return c.loadSnapshot(fgb, store)
}

// ReadSnapshotFile loads a snapshot file into the store.
func (c *Codec) ReadSnapshotFile(path string, store *geograph.Store) error {
	fgb, err := flatgeobuf.New(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return c.loadSnapshot(fgb, store)
}

func (c *Codec) loadSnapshot(fgb *flatgeobuf.FlatGeoBuf, store *geograph.Store) error {
	h := fgb.Header()
	if h.FeaturesCount() == 0 {
		return nil
	}
	if h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return fmt.Errorf("snapshot has no spatial index")
	}

	features, err := fgb.Search(h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
	if err != nil {
		return fmt.Errorf("scanning snapshot: %w", err)
	}

	nextID := int64(1)
	for _, feature := range features {
		var geomObj flattypes.Geometry
		fgbGeom := feature.Geometry(&geomObj)
		if fgbGeom == nil {
			continue
		}
		switch fgbGeom.Type() {
		case flattypes.GeometryTypeLineString:
			l, err := geograph.NewLine(nextID, nil, nil)
			if err != nil {
				return err
			}
			l.SetGeometry(lineStringFromFGB(fgbGeom))
			if err := store.Lines().Add(l); err != nil {
				return err
			}
			nextID++
		case flattypes.GeometryTypePolygon:
			pg := geograph.NewPolygon(nextID, nil)
			pg.SetGeometry(polygonFromFGB(fgbGeom))
			if err := store.Polygons().Add(pg); err != nil {
				return err
			}
			nextID++
		default:
			c.log.Warn("snapshot geometry skipped",
				zap.String("type", flattypes.EnumNamesGeometryType[fgbGeom.Type()]))
		}
	}
	return nil
}

// snapshotGenerator hands geometries to the FlatGeobuf writer one at a
// time.
type snapshotGenerator struct {
	geoms []orb.Geometry
	index int
}

func (g *snapshotGenerator) Generate() *writer.Feature {
	for g.index < len(g.geoms) {
		geom := g.geoms[g.index]
		g.index++

		builder := flatbuffers.NewBuilder(1024)
		fgbGeom := geometryToFGB(geom, builder)
		if fgbGeom == nil {
			continue
		}
		feature := writer.NewFeature(builder)
		feature.SetGeometry(fgbGeom)
		return feature
	}
	return nil
}

func geometryToFGB(geom orb.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	g := writer.NewGeometry(builder)
	switch v := geom.(type) {
	case orb.LineString:
		g.SetType(flattypes.GeometryTypeLineString)
		xy := make([]float64, 0, len(v)*2)
		for _, p := range v {
			xy = append(xy, p[0], p[1])
		}
		g.SetXY(xy)
	case orb.Polygon:
		g.SetType(flattypes.GeometryTypePolygon)
		var xy []float64
		var ends []uint32
		cumulative := uint32(0)
		for _, ring := range v {
			for _, p := range ring {
				xy = append(xy, p[0], p[1])
			}
			cumulative += uint32(len(ring))
			ends = append(ends, cumulative)
		}
		g.SetXY(xy)
		g.SetEnds(ends)
	default:
		return nil
	}
	return g
}

func lineStringFromFGB(fgbGeom *flattypes.Geometry) orb.LineString {
	xyLen := fgbGeom.XyLength()
	ls := make(orb.LineString, 0, xyLen/2)
	for i := 0; i+1 < xyLen; i += 2 {
		ls = append(ls, orb.Point{fgbGeom.Xy(i), fgbGeom.Xy(i + 1)})
	}
	return ls
}

func polygonFromFGB(fgbGeom *flattypes.Geometry) orb.Polygon {
	xyLen := fgbGeom.XyLength()
	endsLen := fgbGeom.EndsLength()
	if endsLen == 0 {
		ring := make(orb.Ring, 0, xyLen/2)
		for i := 0; i+1 < xyLen; i += 2 {
			ring = append(ring, orb.Point{fgbGeom.Xy(i), fgbGeom.Xy(i + 1)})
		}
		return orb.Polygon{ring}
	}
	poly := make(orb.Polygon, 0, endsLen)
	start := uint32(0)
	for i := 0; i < endsLen; i++ {
		end := fgbGeom.Ends(i)
		ring := make(orb.Ring, 0, end-start)
		for j := start; j < end; j++ {
			idx := int(j) * 2
			if idx+1 < xyLen {
				ring = append(ring, orb.Point{fgbGeom.Xy(idx), fgbGeom.Xy(idx + 1)})
			}
		}
		poly = append(poly, ring)
		start = end
	}
	return poly
}
