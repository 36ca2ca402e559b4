package geograph

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestRegistryOverwrite(t *testing.T) {
	reg := NewPointRegistry(nil)
	first := mustPoint(t, 1, 10, 10)
	second := mustPoint(t, 1, 20, 20)

	if err := reg.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := reg.Add(second); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	got, ok := reg.Get(1)
	if !ok {
		t.Fatal("Get(1) missing")
	}
	if got.Lat() != 20 || got.Lon() != 20 {
		t.Errorf("registry kept first entry, want second: (%f, %f)", got.Lat(), got.Lon())
	}
}

func TestRegistryAddNil(t *testing.T) {
	if err := NewPointRegistry(nil).Add(nil); err == nil {
		t.Error("PointRegistry.Add(nil) expected error")
	}
	if err := NewLineRegistry(nil).Add(nil); err == nil {
		t.Error("LineRegistry.Add(nil) expected error")
	}
	if err := NewPolygonRegistry(nil).Add(nil); err == nil {
		t.Error("PolygonRegistry.Add(nil) expected error")
	}
}

func TestPointQueryBoundEdgeInclusive(t *testing.T) {
	reg := NewPointRegistry(nil)
	onEdge := mustPoint(t, 1, 10, 20)
	inside := mustPoint(t, 2, 5, 15)
	outside := mustPoint(t, 3, 11, 21)
	for _, p := range []*Point{onEdge, inside, outside} {
		_ = reg.Add(p)
	}

	// Query max edge passes exactly through onEdge
	q := orb.Bound{Min: orb.Point{10, 0}, Max: orb.Point{20, 10}}
	hits := reg.QueryBound(q)
	if len(hits) != 2 {
		t.Fatalf("QueryBound returned %d points, want 2", len(hits))
	}
	for _, p := range hits {
		if p.ID == outside.ID {
			t.Error("point outside the bound returned")
		}
	}
}

func TestLineQueryBoundEdgeInclusive(t *testing.T) {
	preg := NewPointRegistry(nil)
	reg := NewLineRegistry(nil)

	a := mustPoint(t, 1, 0, 0)
	b := mustPoint(t, 2, 10, 10)
	_ = preg.Add(a)
	_ = preg.Add(b)
	touching, _ := NewLine(100, nil, []*Point{a, b})
	_ = reg.Add(touching)

	c := mustPoint(t, 3, 50, 50)
	d := mustPoint(t, 4, 60, 60)
	far, _ := NewLine(200, nil, []*Point{c, d})
	_ = reg.Add(far)

	empty, _ := NewLine(300, nil, nil)
	_ = reg.Add(empty)

	// Query min corner coincides with the touching line's max corner
	q := orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{20, 20}}
	hits := reg.QueryBound(q)
	if len(hits) != 1 || hits[0].ID != touching.ID {
		t.Errorf("QueryBound hits = %v, want only line %d", lineIDs(hits), touching.ID)
	}
}

func lineIDs(ls []*Line) []int64 {
	ids := make([]int64, 0, len(ls))
	for _, l := range ls {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestPolygonQueryBound(t *testing.T) {
	preg := NewPointRegistry(nil)
	reg := NewPolygonRegistry(nil)

	pg := NewPolygon(1, nil)
	_ = pg.SetOuter(square(t, preg, 10, 0, 0, 5))
	_ = reg.Add(pg)

	far := NewPolygon(2, nil)
	_ = far.SetOuter(square(t, preg, 20, 40, 40, 5))
	_ = reg.Add(far)

	q := orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{6, 6}}
	hits := reg.QueryBound(q)
	if len(hits) != 1 || hits[0].ID != pg.ID {
		t.Errorf("QueryBound returned %d polygons, want only polygon %d", len(hits), pg.ID)
	}
}

func TestClearIsolated(t *testing.T) {
	reg := NewPointRegistry(nil)
	isolated := mustPoint(t, 1, 10, 10)
	member := mustPoint(t, 2, 11, 11)
	linked := mustPoint(t, 3, 12, 12)
	other := mustPoint(t, 4, 13, 13)
	for _, p := range []*Point{isolated, member, linked, other} {
		_ = reg.Add(p)
	}
	_, _ = NewLine(100, nil, []*Point{member})
	_ = linked.AddNeighbor(other)

	removed := reg.ClearIsolated()
	if len(removed) != 1 || removed[0] != isolated.ID {
		t.Errorf("removed = %v, want [%d]", removed, isolated.ID)
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
	if _, ok := reg.Get(member.ID); !ok {
		t.Error("line member removed")
	}
}
