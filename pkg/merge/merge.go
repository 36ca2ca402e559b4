// Package merge reconciles decoded feature collections from overlapping
// regional extracts: deduplication by tag key and by exact geometry,
// fixed-point coastline chaining, covered-line and inner-ring pruning, and
// grid splitting of large polygons.
//
// Geometry predicates (covers, contains, intersection) are delegated to
// GEOS and bridged through WKT; only booleans and result geometries cross
// the boundary.
package merge

import (
	"fmt"
	"math/rand"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// Policy selects what happens when two features share the same merge key.
type Policy int

const (
	// PolicyOverwrite keeps the later feature.
	PolicyOverwrite Policy = iota
	// PolicySkip keeps the earlier feature.
	PolicySkip
	// PolicyRekey keeps both, moving the later feature under a fresh
	// random key.
	PolicyRekey
)

func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicySkip:
		return "skip"
	case PolicyRekey:
		return "rekey"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Options configures an Engine.
type Options struct {
	// LineKey is the tag whose value identifies a line across extracts.
	LineKey string
	// PolygonKey is the tag whose value identifies a polygon across
	// extracts.
	PolygonKey string
	// OnCollision selects the dedup policy for key collisions.
	OnCollision Policy
	// Logger receives skip and drop warnings. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions merges on the "name" tag with overwrite semantics.
func DefaultOptions() Options {
	return Options{
		LineKey:     "name",
		PolygonKey:  "name",
		OnCollision: PolicyOverwrite,
	}
}

// ErrMissingMergeKey indicates a feature without the configured merge tag.
// Concat treats this as fatal: a keyless feature cannot be reconciled.
type ErrMissingMergeKey struct {
	FeatureID int64
	Key       string
}

func (e *ErrMissingMergeKey) Error() string {
	return fmt.Sprintf("feature %d has no %q tag", e.FeatureID, e.Key)
}

// ErrMissingFeature indicates a referenced feature id absent from the
// collection.
type ErrMissingFeature struct {
	ID int64
}

func (e *ErrMissingFeature) Error() string {
	return fmt.Sprintf("feature %d not in collection", e.ID)
}

// ErrInvalidCell indicates a non-positive grid cell size.
type ErrInvalidCell struct {
	Cell float64
}

func (e *ErrInvalidCell) Error() string {
	return fmt.Sprintf("invalid grid cell size %f", e.Cell)
}

// ErrNotPolygon indicates an operation that requires polygon geometry.
type ErrNotPolygon struct {
	ID int64
}

func (e *ErrNotPolygon) Error() string {
	return fmt.Sprintf("feature %d is not a polygon", e.ID)
}

// Engine runs merge passes over feature collections.
type Engine struct {
	opts Options
	log  *zap.Logger
	rnd  *rand.Rand
}

// NewEngine creates an engine. A nil logger in the options disables
// logging.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts: opts,
		log:  log,
		rnd:  rand.New(rand.NewSource(1)),
	}
}

// Concat merges several collections into one, deduplicating linestrings by
// the line key and polygons by the polygon key. A feature missing its key
// fails the whole merge. Output feature ids are reassigned sequentially,
// lines first, then polygons, then everything else.
func (e *Engine) Concat(collections ...*geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	lines := make(map[string]*geojson.Feature)
	polygons := make(map[string]*geojson.Feature)
	var lineOrder, polyOrder []string
	var rest []*geojson.Feature

	place := func(m map[string]*geojson.Feature, order *[]string, tagKey, key string, f *geojson.Feature) {
		if _, ok := m[key]; !ok {
			m[key] = f
			*order = append(*order, key)
			return
		}
		switch e.opts.OnCollision {
		case PolicySkip:
			e.log.Debug("feature skipped on key collision", zap.String("key", key))
		case PolicyRekey:
			fresh := fmt.Sprintf("%s-%08x", key, e.rnd.Uint32())
			for {
				if _, taken := m[fresh]; !taken {
					break
				}
				fresh = fmt.Sprintf("%s-%08x", key, e.rnd.Uint32())
			}
			setTag(f, tagKey, fresh)
			m[fresh] = f
			*order = append(*order, fresh)
		default: // PolicyOverwrite: later wins, position preserved
			m[key] = f
		}
	}

	n := 0
	for _, fc := range collections {
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			n++
			switch f.Geometry.GeoJSONType() {
			case "LineString":
				key, ok := tagValue(f, e.opts.LineKey)
				if !ok {
					return nil, &ErrMissingMergeKey{FeatureID: interchange.FeatureID(f, int64(n)), Key: e.opts.LineKey}
				}
				place(lines, &lineOrder, e.opts.LineKey, key, f)
			case "Polygon":
				key, ok := tagValue(f, e.opts.PolygonKey)
				if !ok {
					return nil, &ErrMissingMergeKey{FeatureID: interchange.FeatureID(f, int64(n)), Key: e.opts.PolygonKey}
				}
				place(polygons, &polyOrder, e.opts.PolygonKey, key, f)
			default:
				rest = append(rest, f)
			}
		}
	}

	out := geojson.NewFeatureCollection()
	nextID := int64(1)
	for _, key := range lineOrder {
		f := lines[key]
		f.ID = nextID
		nextID++
		out.Append(f)
	}
	for _, key := range polyOrder {
		f := polygons[key]
		f.ID = nextID
		nextID++
		out.Append(f)
	}
	for _, f := range rest {
		f.ID = nextID
		nextID++
		out.Append(f)
	}
	return out, nil
}

// tagValue reads a single tag from a feature's "tags" property.
func tagValue(f *geojson.Feature, key string) (string, bool) {
	tags := interchange.Tags(f.Properties)
	v, ok := tags[key]
	return v, ok && v != ""
}

// setTag rewrites a single tag in place, normalizing the property to a
// string map.
func setTag(f *geojson.Feature, key, value string) {
	tags := interchange.Tags(f.Properties)
	tags[key] = value
	f.Properties[interchange.PropTags] = tags
}
