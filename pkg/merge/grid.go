package merge

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// SplitToGrid clips one polygon feature against a regular grid of the
// given cell size laid over its bounding box, producing one feature per
// non-empty polygonal intersection. MultiPolygon intersections contribute
// one feature per part. Tags carry over to every part; node ids do not
// survive clipping and are dropped. Part ids are assigned sequentially
// from 1.
func (e *Engine) SplitToGrid(f *geojson.Feature, cell float64) (*geojson.FeatureCollection, error) {
	if f == nil || f.Geometry == nil {
		return nil, &ErrNotPolygon{}
	}
	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		return nil, &ErrNotPolygon{ID: interchange.FeatureID(f, 0)}
	}
	if cell <= 0 {
		return nil, &ErrInvalidCell{Cell: cell}
	}

	source, err := toGeos(poly)
	if err != nil {
		return nil, err
	}
	defer source.Destroy()

	tags := interchange.Tags(f.Properties)
	bound := poly.Bound()

	out := geojson.NewFeatureCollection()
	nextID := int64(1)
	for x := bound.Min[0]; x < bound.Max[0]; x += cell {
		for y := bound.Min[1]; y < bound.Max[1]; y += cell {
			cellGeom, err := toGeos(orb.Polygon{orb.Ring{
				{x, y}, {x + cell, y}, {x + cell, y + cell}, {x, y + cell}, {x, y},
			}})
			if err != nil {
				return nil, err
			}
			inter := source.Intersection(cellGeom)
			cellGeom.Destroy()
			if inter == nil {
				continue
			}
			if inter.IsEmpty() {
				inter.Destroy()
				continue
			}
			clipped, err := fromGeos(inter)
			inter.Destroy()
			if err != nil {
				return nil, err
			}
			for _, part := range polygonParts(clipped) {
				pf := geojson.NewFeature(part)
				pf.ID = nextID
				nextID++
				partTags := make(map[string]string, len(tags))
				for k, v := range tags {
					partTags[k] = v
				}
				pf.Properties[interchange.PropTags] = partTags
				pf.BBox = geojson.NewBBox(part.Bound())
				out.Append(pf)
			}
		}
	}
	e.log.Info("polygon split to grid",
		zap.Int64("source", interchange.FeatureID(f, 0)),
		zap.Float64("cell", cell), zap.Int("parts", len(out.Features)))
	return out, nil
}

// polygonParts extracts the polygonal parts of a clip result. Degenerate
// intersections (points, lines along cell edges) produce nothing.
func polygonParts(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		return []orb.Polygon(v)
	case orb.Collection:
		var parts []orb.Polygon
		for _, child := range v {
			parts = append(parts, polygonParts(child)...)
		}
		return parts
	default:
		return nil
	}
}
