package merge

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SelectLinesByTag returns the line features whose tag matches the given
// value. Used to pull coastline segments out of a mixed collection before
// chaining.
func (e *Engine) SelectLinesByTag(fc *geojson.FeatureCollection, key, value string) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		if _, ok := f.Geometry.(orb.LineString); !ok {
			continue
		}
		if v, ok := tagValue(f, key); ok && v == value {
			out.Append(f)
		}
	}
	return out
}

// RemoveByTag splits a collection on a tag blacklist: features whose tag
// value appears in values go to removed, everything else to kept.
func (e *Engine) RemoveByTag(fc *geojson.FeatureCollection, key string, values ...string) (kept, removed *geojson.FeatureCollection) {
	kept = geojson.NewFeatureCollection()
	removed = geojson.NewFeatureCollection()
	if fc == nil {
		return kept, removed
	}
	blacklist := make(map[string]struct{}, len(values))
	for _, v := range values {
		blacklist[v] = struct{}{}
	}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		if v, ok := tagValue(f, key); ok {
			if _, banned := blacklist[v]; banned {
				removed.Append(f)
				continue
			}
		}
		kept.Append(f)
	}
	return kept, removed
}

// StripProperties copies a collection keeping geometry and id only.
// Downstream consumers that need boundaries but not attribution read these
// lightweight copies.
func (e *Engine) StripProperties(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		stripped := geojson.NewFeature(f.Geometry)
		stripped.ID = f.ID
		stripped.BBox = f.BBox
		out.Append(stripped)
	}
	return out
}
