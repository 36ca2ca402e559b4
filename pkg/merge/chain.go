package merge

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// chainEntry is one line feature prepared for stitching: its coordinates
// with any reversal override applied, and its node ids when they track the
// coordinates one-to-one.
type chainEntry struct {
	feature *geojson.Feature
	coords  orb.LineString
	ids     []int64
	hasIDs  bool
}

// ChainLines stitches line features into one continuous line starting from
// the feature with startID. A candidate whose leading endpoint continues
// the chain's trailing endpoint is appended in order; one whose trailing
// endpoint continues it is reversed first. The shared endpoint is dropped
// at each join. Endpoints are compared by node id when both lines carry
// id_nodes — the same node can be serialized with differing float
// precision across extracts, and distinct nodes can share a coordinate —
// and by exact coordinate equality only when ids are absent.
//
// Features listed in reversed have their coordinate order flipped before
// chaining, which resolves source lines digitized against the flow.
// Consumed lines disappear from the output; lines that never match and all
// non-line features pass through untouched.
func (e *Engine) ChainLines(fc *geojson.FeatureCollection, startID int64, reversed []int64) (*geojson.FeatureCollection, error) {
	if fc == nil {
		return nil, &ErrMissingFeature{ID: startID}
	}
	flip := make(map[int64]struct{}, len(reversed))
	for _, id := range reversed {
		flip[id] = struct{}{}
	}

	var start *chainEntry
	var pool []*chainEntry
	var rest []*geojson.Feature
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			rest = append(rest, f)
			continue
		}
		id := interchange.FeatureID(f, int64(i))
		entry := newChainEntry(f, ls)
		if _, ok := flip[id]; ok {
			entry.reverse()
		}
		if id == startID {
			start = entry
			continue
		}
		pool = append(pool, entry)
	}
	if start == nil {
		return nil, &ErrMissingFeature{ID: startID}
	}

	if len(start.coords) == 0 {
		e.log.Warn("start line has no coordinates, nothing to chain",
			zap.Int64("start", startID))
	}
	chained := 0
	for len(start.coords) > 0 {
		matched := false
		for i, cand := range pool {
			if len(cand.coords) == 0 {
				continue
			}
			switch {
			case start.continuesFromHead(cand):
				start.join(cand)
			case start.continuesFromTail(cand):
				cand.reverse()
				start.join(cand)
			default:
				continue
			}
			pool = append(pool[:i], pool[i+1:]...)
			chained++
			matched = true
			break
		}
		if !matched {
			break
		}
	}
	e.log.Info("lines chained",
		zap.Int64("start", startID), zap.Int("consumed", chained), zap.Int("leftover", len(pool)))

	out := geojson.NewFeatureCollection()
	out.Append(start.toFeature())
	for _, leftover := range pool {
		out.Append(leftover.feature)
	}
	for _, f := range rest {
		out.Append(f)
	}
	return out, nil
}

func newChainEntry(f *geojson.Feature, ls orb.LineString) *chainEntry {
	entry := &chainEntry{
		feature: f,
		coords:  append(orb.LineString(nil), ls...),
	}
	if ids, ok := interchange.FlatNodeIDs(f.Properties[interchange.PropNodeIDs]); ok && len(ids) == len(ls) {
		entry.ids = append([]int64(nil), ids...)
		entry.hasIDs = true
	}
	return entry
}

// continuesFromHead reports whether other's leading endpoint continues the
// chain's trailing endpoint. Node ids are authoritative when both lines
// carry them; otherwise exact coordinate equality decides.
func (c *chainEntry) continuesFromHead(other *chainEntry) bool {
	if c.hasIDs && other.hasIDs {
		return other.ids[0] == c.ids[len(c.ids)-1]
	}
	return other.coords[0] == c.coords[len(c.coords)-1]
}

// continuesFromTail is continuesFromHead for other's trailing endpoint; a
// match means other chains on reversed.
func (c *chainEntry) continuesFromTail(other *chainEntry) bool {
	if c.hasIDs && other.hasIDs {
		return other.ids[len(other.ids)-1] == c.ids[len(c.ids)-1]
	}
	return other.coords[len(other.coords)-1] == c.coords[len(c.coords)-1]
}

func (c *chainEntry) reverse() {
	for i, j := 0, len(c.coords)-1; i < j; i, j = i+1, j-1 {
		c.coords[i], c.coords[j] = c.coords[j], c.coords[i]
	}
	if c.hasIDs {
		for i, j := 0, len(c.ids)-1; i < j; i, j = i+1, j-1 {
			c.ids[i], c.ids[j] = c.ids[j], c.ids[i]
		}
	}
}

// join appends other's coordinates, dropping the shared first coordinate.
// Node ids stay attached only while every joined segment carries them.
func (c *chainEntry) join(other *chainEntry) {
	c.coords = append(c.coords, other.coords[1:]...)
	if c.hasIDs && other.hasIDs {
		c.ids = append(c.ids, other.ids[1:]...)
	} else {
		c.hasIDs = false
		c.ids = nil
	}
}

func (c *chainEntry) toFeature() *geojson.Feature {
	f := geojson.NewFeature(c.coords)
	f.ID = c.feature.ID
	f.Properties[interchange.PropTags] = interchange.Tags(c.feature.Properties)
	if c.hasIDs {
		f.Properties[interchange.PropNodeIDs] = c.ids
	}
	f.BBox = geojson.NewBBox(c.coords.Bound())
	return f
}
