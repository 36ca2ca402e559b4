package merge

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// PruneCoveredLines drops every line feature that some polygon feature
// covers without strictly containing: a line running exactly along a
// polygon boundary duplicates that boundary and carries no information of
// its own. Lines crossing the interior (contained) survive.
func (e *Engine) PruneCoveredLines(fc *geojson.FeatureCollection) (kept, removed *geojson.FeatureCollection, err error) {
	kept = geojson.NewFeatureCollection()
	removed = geojson.NewFeatureCollection()
	if fc == nil {
		return kept, removed, nil
	}

	type polyGeom struct {
		id   int64
		geom *geos.Geom
	}
	var polys []polyGeom
	defer func() {
		for _, pg := range polys {
			pg.geom.Destroy()
		}
	}()
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		if _, ok := f.Geometry.(orb.Polygon); !ok {
			continue
		}
		g, gerr := toGeos(f.Geometry)
		if gerr != nil {
			return nil, nil, gerr
		}
		polys = append(polys, polyGeom{id: interchange.FeatureID(f, int64(i)), geom: g})
	}

	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		if _, ok := f.Geometry.(orb.LineString); !ok {
			kept.Append(f)
			continue
		}
		g, gerr := toGeos(f.Geometry)
		if gerr != nil {
			return nil, nil, gerr
		}
		dropped := false
		for _, pg := range polys {
			if pg.geom.Covers(g) && !pg.geom.Contains(g) {
				e.log.Info("covered line pruned",
					zap.Int64("line", interchange.FeatureID(f, int64(i))),
					zap.Int64("polygon", pg.id))
				removed.Append(f)
				dropped = true
				break
			}
		}
		g.Destroy()
		if !dropped {
			kept.Append(f)
		}
	}
	return kept, removed, nil
}

// PruneInnerDuplicates drops single-ring polygon features that duplicate
// another polygon's inner ring: when the ring treated as a polygon covers
// the candidate without strictly containing it, the candidate is the hole
// boundary re-materialized as its own feature.
func (e *Engine) PruneInnerDuplicates(fc *geojson.FeatureCollection) (kept, removed *geojson.FeatureCollection, err error) {
	kept = geojson.NewFeatureCollection()
	removed = geojson.NewFeatureCollection()
	if fc == nil {
		return kept, removed, nil
	}

	type innerRing struct {
		owner int64
		geom  *geos.Geom
	}
	var rings []innerRing
	defer func() {
		for _, r := range rings {
			r.geom.Destroy()
		}
	}()
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || len(poly) < 2 {
			continue
		}
		owner := interchange.FeatureID(f, int64(i))
		for _, inner := range poly[1:] {
			g, gerr := toGeos(orb.Polygon{inner})
			if gerr != nil {
				return nil, nil, gerr
			}
			rings = append(rings, innerRing{owner: owner, geom: g})
		}
	}

	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || len(poly) != 1 {
			kept.Append(f)
			continue
		}
		id := interchange.FeatureID(f, int64(i))
		g, gerr := toGeos(f.Geometry)
		if gerr != nil {
			return nil, nil, gerr
		}
		dropped := false
		for _, r := range rings {
			if r.owner == id {
				continue
			}
			if r.geom.Covers(g) && !r.geom.Contains(g) {
				e.log.Info("inner-ring duplicate pruned",
					zap.Int64("polygon", id), zap.Int64("owner", r.owner))
				removed.Append(f)
				dropped = true
				break
			}
		}
		g.Destroy()
		if !dropped {
			kept.Append(f)
		}
	}
	return kept, removed, nil
}
