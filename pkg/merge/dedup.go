package merge

import (
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// DedupGeometry drops features whose geometry text exactly matches an
// earlier feature's. The first occurrence wins. Dropped duplicates and
// features without usable geometry land in the rejected collection; the
// pass always completes.
func (e *Engine) DedupGeometry(fc *geojson.FeatureCollection) (kept, rejected *geojson.FeatureCollection) {
	kept = geojson.NewFeatureCollection()
	rejected = geojson.NewFeatureCollection()
	if fc == nil {
		return kept, rejected
	}

	seen := make(map[string]int64)
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		if f.Geometry == nil {
			e.log.Warn("feature without geometry rejected",
				zap.Int64("id", interchange.FeatureID(f, int64(i))))
			rejected.Append(f)
			continue
		}
		key := wkt.MarshalString(f.Geometry)
		id := interchange.FeatureID(f, int64(i))
		if firstID, dup := seen[key]; dup {
			e.log.Warn("duplicate geometry rejected",
				zap.Int64("id", id), zap.Int64("kept", firstID))
			rejected.Append(f)
			continue
		}
		seen[key] = id
		kept.Append(f)
	}
	return kept, rejected
}
