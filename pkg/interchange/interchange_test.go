package interchange

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ivakin/waterline/pkg/geograph"
)

func buildStore(t *testing.T) (*geograph.Store, []*geograph.Point) {
	t.Helper()
	store := geograph.NewStore(nil)

	mk := func(id int64, lat, lon float64) *geograph.Point {
		p, err := geograph.NewPoint(id, lat, lon)
		if err != nil {
			t.Fatalf("NewPoint(%d): %v", id, err)
		}
		if err := store.Points().Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
		return p
	}

	a := mk(1, 54.712345678, 20.512345678)
	b := mk(2, 54.812345678, 20.612345678)
	line, err := geograph.NewLine(10, map[string]string{"natural": "coastline"}, []*geograph.Point{a, b})
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	if err := store.Lines().Add(line); err != nil {
		t.Fatalf("Add line: %v", err)
	}

	c := mk(3, 10, 10)
	d := mk(4, 10, 12)
	e := mk(5, 12, 12)
	f := mk(6, 12, 10)
	pg := geograph.NewPolygon(20, map[string]string{"natural": "water"})
	if err := pg.SetOuter([]*geograph.Point{c, d, e, f, c}); err != nil {
		t.Fatalf("SetOuter: %v", err)
	}
	if err := store.Polygons().Add(pg); err != nil {
		t.Fatalf("Add polygon: %v", err)
	}

	standalone, err := geograph.NewPoint(100, -33.912345678, 18.412345678)
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	return store, []*geograph.Point{standalone}
}

func TestWriteEmptyStore(t *testing.T) {
	codec := NewCodec(nil)
	_, err := codec.Collection(geograph.NewStore(nil), nil)
	if err == nil {
		t.Fatal("expected ErrNothingToWrite")
	}
	if _, ok := err.(*ErrNothingToWrite); !ok {
		t.Errorf("expected *ErrNothingToWrite, got %T", err)
	}
}

func TestRoundTrip(t *testing.T) {
	codec := NewCodec(nil)
	store, standalone := buildStore(t)

	path := filepath.Join(t.TempDir(), "out.geojson")
	if err := codec.WriteFile(path, store, standalone); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	decoded := geograph.NewStore(nil)
	if err := codec.ReadFile(path, decoded); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	line, ok := decoded.Lines().Get(10)
	if !ok {
		t.Fatal("line 10 missing after round trip")
	}
	if line.Tags["natural"] != "coastline" {
		t.Errorf("line tags = %v", line.Tags)
	}
	wantIDs := []int64{1, 2}
	gotIDs := line.PointIDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("line point ids = %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("line point ids = %v, want %v", gotIDs, wantIDs)
		}
	}

	orig, _ := store.Points().Get(1)
	got, ok := decoded.Points().Get(1)
	if !ok {
		t.Fatal("point 1 missing after round trip")
	}
	if math.Abs(got.Lat()-orig.Lat()) > 1e-9 || math.Abs(got.Lon()-orig.Lon()) > 1e-9 {
		t.Errorf("point 1 drifted: got (%v, %v), want (%v, %v)",
			got.Lat(), got.Lon(), orig.Lat(), orig.Lon())
	}

	pg, ok := decoded.Polygons().Get(20)
	if !ok {
		t.Fatal("polygon 20 missing after round trip")
	}
	if len(pg.OuterIDs()) != 5 {
		t.Errorf("outer ring ids = %v, want 5 entries", pg.OuterIDs())
	}

	sp, ok := decoded.Points().Get(100)
	if !ok {
		t.Fatal("standalone point missing after round trip")
	}
	if math.Abs(sp.Lat()-(-33.912345678)) > 1e-9 {
		t.Errorf("standalone point lat drifted: %v", sp.Lat())
	}
}

func TestBBoxOrdering(t *testing.T) {
	codec := NewCodec(nil)
	store, _ := buildStore(t)
	fc, err := codec.Collection(store, nil)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	var line *geojson.Feature
	for _, f := range fc.Features {
		if id, _ := asInt64(f.ID); id == 10 {
			line = f
		}
	}
	if line == nil {
		t.Fatal("line feature missing")
	}
	bbox := line.BBox
	if len(bbox) != 4 {
		t.Fatalf("bbox = %v, want 4 values", bbox)
	}
	// (min_lon, min_lat, max_lon, max_lat)
	if !(bbox[0] <= bbox[2] && bbox[1] <= bbox[3]) {
		t.Errorf("bbox not min-before-max: %v", bbox)
	}
	if bbox[0] != 20.512345678 || bbox[1] != 54.712345678 {
		t.Errorf("bbox min = (%v, %v), want (lon, lat) ordering", bbox[0], bbox[1])
	}
}

func TestPointDedupOnRead(t *testing.T) {
	codec := NewCodec(nil)
	store := geograph.NewStore(nil)

	// Two lines sharing point id 2
	fc := geojson.NewFeatureCollection()
	f1 := geojson.NewFeature(orb.LineString{{20, 54}, {21, 55}})
	f1.ID = 10
	f1.Properties[PropTags] = map[string]string{}
	f1.Properties[PropNodeIDs] = []int64{1, 2}
	fc.Append(f1)
	f2 := geojson.NewFeature(orb.LineString{{21, 55}, {22, 56}})
	f2.ID = 11
	f2.Properties[PropTags] = map[string]string{}
	f2.Properties[PropNodeIDs] = []int64{2, 3}
	fc.Append(f2)

	if err := codec.Read(fc, store); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.Points().Len() != 3 {
		t.Fatalf("point count = %d, want 3 (shared point deduplicated)", store.Points().Len())
	}
	shared, _ := store.Points().Get(2)
	if len(shared.Lines()) != 2 {
		t.Errorf("shared point belongs to %d lines, want 2", len(shared.Lines()))
	}
}

func TestCountMismatchSkipsFeature(t *testing.T) {
	codec := NewCodec(nil)
	store := geograph.NewStore(nil)

	fc := geojson.NewFeatureCollection()
	bad := geojson.NewFeature(orb.LineString{{20, 54}, {21, 55}})
	bad.ID = 10
	bad.Properties[PropTags] = map[string]string{}
	bad.Properties[PropNodeIDs] = []int64{1, 2, 3} // one id too many
	fc.Append(bad)

	if err := codec.Read(fc, store); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.Lines().Len() != 0 {
		t.Error("mismatched line was not skipped")
	}
}

func TestShortRingSkippedOnWrite(t *testing.T) {
	codec := NewCodec(nil)
	store, _ := buildStore(t)

	pg, _ := store.Polygons().Get(20)
	a, _ := store.Points().Get(3)
	b, _ := store.Points().Get(4)
	if err := pg.AddInner([]*geograph.Point{a, b}); err != nil {
		t.Fatalf("AddInner: %v", err)
	}

	fc, err := codec.Collection(store, nil)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	for _, f := range fc.Features {
		if id, _ := asInt64(f.ID); id != 20 {
			continue
		}
		poly := f.Geometry.(orb.Polygon)
		if len(poly) != 1 {
			t.Errorf("polygon has %d rings, want 1 (short inner ring skipped)", len(poly))
		}
	}
}

func TestOpenRingClosedOnWrite(t *testing.T) {
	codec := NewCodec(nil)
	store := geograph.NewStore(nil)

	mk := func(id int64, lat, lon float64) *geograph.Point {
		p, _ := geograph.NewPoint(id, lat, lon)
		_ = store.Points().Add(p)
		return p
	}
	pg := geograph.NewPolygon(1, nil)
	// Open ring: no closing point
	_ = pg.SetOuter([]*geograph.Point{mk(1, 0, 0), mk(2, 0, 1), mk(3, 1, 1), mk(4, 1, 0)})
	_ = store.Polygons().Add(pg)

	fc, err := codec.Collection(store, nil)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if !poly[0].Closed() {
		t.Error("emitted ring not closed")
	}
}

func TestFastRead(t *testing.T) {
	codec := NewCodec(nil)
	store, standalone := buildStore(t)
	fc, err := codec.Collection(store, standalone)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	// Serialize and re-parse so geometry arrives the way a file would
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	parsed, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	fast := geograph.NewStore(nil)
	if err := codec.FastRead(parsed, fast); err != nil {
		t.Fatalf("FastRead: %v", err)
	}
	if fast.Points().Len() != 0 {
		t.Errorf("fast read materialized %d points, want 0", fast.Points().Len())
	}
	line, ok := fast.Lines().Get(10)
	if !ok {
		t.Fatal("line 10 missing after fast read")
	}
	if _, ok := line.Geometry(); !ok {
		t.Error("line has no cached geometry")
	}
	if line.Tags["natural"] != "coastline" {
		t.Errorf("line tags = %v", line.Tags)
	}
	pg, ok := fast.Polygons().Get(20)
	if !ok {
		t.Fatal("polygon 20 missing after fast read")
	}
	if got, err := pg.ContainsCoordinate(11, 11, nil); err != nil || !got {
		t.Errorf("ContainsCoordinate(11, 11) = %v, %v; want true", got, err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	codec := NewCodec(nil)
	store, _ := buildStore(t)

	var buf bytes.Buffer
	if err := codec.WriteSnapshot(&buf, store); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	loaded := geograph.NewStore(nil)
	if err := codec.ReadSnapshot(buf.Bytes(), loaded); err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if loaded.Lines().Len() != 1 {
		t.Errorf("lines = %d, want 1", loaded.Lines().Len())
	}
	if loaded.Polygons().Len() != 1 {
		t.Errorf("polygons = %d, want 1", loaded.Polygons().Len())
	}
	if loaded.Points().Len() != 0 {
		t.Errorf("points = %d, want 0 (geometry-only cache)", loaded.Points().Len())
	}

	var pg *geograph.Polygon
	for _, candidate := range loaded.Polygons().All() {
		pg = candidate
	}
	got, err := pg.ContainsCoordinate(11, 11, nil)
	if err != nil || !got {
		t.Errorf("ContainsCoordinate(11, 11) = %v, %v; want true", got, err)
	}
}

func TestSnapshotEmptyStore(t *testing.T) {
	codec := NewCodec(nil)
	var buf bytes.Buffer
	err := codec.WriteSnapshot(&buf, geograph.NewStore(nil))
	if err == nil {
		t.Fatal("expected ErrNothingToWrite")
	}
}
