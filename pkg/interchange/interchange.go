// Package interchange encodes and decodes geo-entity stores as GeoJSON
// feature collections, plus a geometry-only FlatGeobuf snapshot for fast
// reloads.
//
// The wire contract: every feature carries a "tags" property
// (string-to-string map) and an "id_nodes" property listing member point
// ids (flat for points and lines, one list per ring for polygons).
// Coordinates are ordered (lon, lat) and per-feature bbox values are
// ordered (min_lon, min_lat, max_lon, max_lat).
package interchange

import (
	"fmt"

	"go.uber.org/zap"
)

// Property keys used on every encoded feature.
const (
	PropTags    = "tags"
	PropNodeIDs = "id_nodes"
)

// ErrNothingToWrite indicates an encode request over an empty store.
type ErrNothingToWrite struct{}

func (e *ErrNothingToWrite) Error() string {
	return "nothing to write: store holds no points, lines or polygons"
}

// ErrCountMismatch indicates a feature whose coordinate count differs from
// its id_nodes count.
type ErrCountMismatch struct {
	FeatureID int64
	Coords    int
	NodeIDs   int
}

func (e *ErrCountMismatch) Error() string {
	return fmt.Sprintf("feature %d: %d coordinates but %d node ids",
		e.FeatureID, e.Coords, e.NodeIDs)
}

// ErrUnsupportedGeometry indicates a feature geometry type the codec does
// not handle.
type ErrUnsupportedGeometry struct {
	Type string
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("unsupported geometry type %q", e.Type)
}

// Codec encodes and decodes stores. A nil logger disables logging.
type Codec struct {
	log *zap.Logger
}

// NewCodec creates a codec.
func NewCodec(log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log}
}
