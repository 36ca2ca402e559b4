package geograph

import (
	"testing"

	"github.com/paulmach/orb"
)

// square builds a closed ring of points around (lat, lon) with the given
// half-size and registers them.
func square(t *testing.T, reg *PointRegistry, baseID int64, lat, lon, half float64) []*Point {
	t.Helper()
	coords := [][2]float64{
		{lat - half, lon - half},
		{lat - half, lon + half},
		{lat + half, lon + half},
		{lat + half, lon - half},
	}
	pts := make([]*Point, 0, len(coords)+1)
	for i, c := range coords {
		p := mustPoint(t, baseID+int64(i), c[0], c[1])
		if err := reg.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
		pts = append(pts, p)
	}
	pts = append(pts, pts[0])
	return pts
}

func TestPolygonRingConstraints(t *testing.T) {
	reg := NewPointRegistry(nil)
	pg := NewPolygon(1, nil)

	inner := square(t, reg, 10, 0, 0, 1)
	if err := pg.AddInner(inner); err == nil {
		t.Fatal("AddInner without outer ring expected error")
	} else if _, ok := err.(*ErrRingConstraint); !ok {
		t.Errorf("expected *ErrRingConstraint, got %T", err)
	}

	outer := square(t, reg, 20, 0, 0, 5)
	if err := pg.SetOuter(outer); err != nil {
		t.Fatalf("SetOuter: %v", err)
	}
	if err := pg.AddInner(inner); err != nil {
		t.Fatalf("AddInner: %v", err)
	}

	if err := pg.RemoveOuter(reg); err == nil {
		t.Fatal("RemoveOuter with inner rings expected error")
	}
	pg.ClearInners(reg)
	if err := pg.RemoveOuter(reg); err != nil {
		t.Fatalf("RemoveOuter after ClearInners: %v", err)
	}
	if len(pg.OuterIDs()) != 0 {
		t.Error("outer ring not cleared")
	}
}

func TestPolygonBackReferences(t *testing.T) {
	reg := NewPointRegistry(nil)
	pg := NewPolygon(1, nil)
	outer := square(t, reg, 10, 0, 0, 5)
	if err := pg.SetOuter(outer); err != nil {
		t.Fatalf("SetOuter: %v", err)
	}
	for _, p := range outer {
		if _, ok := p.Polygons()[pg.ID]; !ok {
			t.Errorf("point %d missing polygon back-reference", p.ID)
		}
	}
	if err := pg.RemoveOuter(reg); err != nil {
		t.Fatalf("RemoveOuter: %v", err)
	}
	for _, p := range outer {
		if _, ok := p.Polygons()[pg.ID]; ok {
			t.Errorf("point %d still holds polygon back-reference", p.ID)
		}
	}
}

func TestPolygonBound(t *testing.T) {
	reg := NewPointRegistry(nil)
	pg := NewPolygon(1, nil)
	if _, ok := pg.Bound(); ok {
		t.Error("empty polygon should have no bound")
	}
	outer := square(t, reg, 10, 0, 0, 5)
	_ = pg.SetOuter(outer)
	bound, ok := pg.Bound()
	if !ok {
		t.Fatal("bound unset after SetOuter")
	}
	want := orb.Bound{Min: orb.Point{-5, -5}, Max: orb.Point{5, 5}}
	if bound != want {
		t.Errorf("bound = %v, want %v", bound, want)
	}
}

func TestContainsCoordinate(t *testing.T) {
	reg := NewPointRegistry(nil)
	pg := NewPolygon(1, nil)
	_ = pg.SetOuter(square(t, reg, 10, 0, 0, 5))
	_ = pg.AddInner(square(t, reg, 20, 0, 0, 1))

	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"inside outer, outside inner", 3, 3, true},
		{"inside inner hole", 0, 0, false},
		{"outside outer", 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pg.ContainsCoordinate(tt.lat, tt.lon, reg)
			if err != nil {
				t.Fatalf("ContainsCoordinate: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContainsCoordinate(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}

	if _, err := pg.ContainsCoordinate(91, 0, reg); err == nil {
		t.Error("invalid query coordinate expected error")
	}
}

func TestContainsCoordinateCachedGeometry(t *testing.T) {
	pg := NewPolygon(1, nil)
	pg.SetGeometry(orb.Polygon{
		{{-5, -5}, {5, -5}, {5, 5}, {-5, 5}, {-5, -5}},
	})
	// No registry needed when a geometry handle is cached
	got, err := pg.ContainsCoordinate(0, 0, nil)
	if err != nil {
		t.Fatalf("ContainsCoordinate: %v", err)
	}
	if !got {
		t.Error("ContainsCoordinate(0, 0) = false, want true")
	}
}

func TestRingsAutoClose(t *testing.T) {
	reg := NewPointRegistry(nil)
	pg := NewPolygon(1, nil)
	open := square(t, reg, 10, 0, 0, 5)
	open = open[:len(open)-1] // drop the closing point
	_ = pg.SetOuter(open)

	poly, err := pg.Rings(reg)
	if err != nil {
		t.Fatalf("Rings: %v", err)
	}
	ring := poly[0]
	if !ring.Closed() {
		t.Error("materialized ring not closed")
	}
	if len(ring) != 5 {
		t.Errorf("ring length = %d, want 5", len(ring))
	}
}
