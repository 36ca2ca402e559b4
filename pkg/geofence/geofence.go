// Package geofence shapes finished polygon features for downstream
// persistence: one row per feature with a display name, the axis-aligned
// rectangle corners used for coarse prefiltering, and the full geometry as
// WKT. Executing the actual storage writes is the Sink implementor's job.
package geofence

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/ivakin/waterline/pkg/interchange"
)

// Row is one geofence record ready for persistence. Corner fields follow
// the right-top / left-bottom convention of the consuming tracker.
type Row struct {
	Name string
	// Right-top corner
	MaxLat, MaxLon float64
	// Left-bottom corner
	MinLat, MinLon float64
	// WKT is the full polygon geometry as Well-Known Text.
	WKT string
}

// Sink persists one row per call. Implementations wrap whatever storage
// the deployment uses; each Put is its own transaction.
type Sink interface {
	Put(ctx context.Context, row Row) error
}

// ErrNoName indicates a feature that produced no usable row name.
type ErrNoName struct {
	FeatureID int64
}

func (e *ErrNoName) Error() string {
	return fmt.Sprintf("feature %d has no name and no prefix was given", e.FeatureID)
}

// RowsFromCollection builds rows from the polygon features of a
// collection. The row name comes from the "name" tag; unnamed features
// get prefix plus their feature id, and with an empty prefix an unnamed
// feature is an error. Non-polygon features are ignored.
func RowsFromCollection(fc *geojson.FeatureCollection, prefix string) ([]Row, error) {
	if fc == nil {
		return nil, nil
	}
	var rows []Row
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			continue
		}
		id := interchange.FeatureID(f, int64(i))
		name := interchange.Tags(f.Properties)["name"]
		if name == "" {
			if prefix == "" {
				return nil, &ErrNoName{FeatureID: id}
			}
			name = fmt.Sprintf("%s%d", prefix, id)
		}
		bound := poly.Bound()
		rows = append(rows, Row{
			Name:   name,
			MaxLat: bound.Max[1],
			MaxLon: bound.Max[0],
			MinLat: bound.Min[1],
			MinLon: bound.Min[0],
			WKT:    wkt.MarshalString(poly),
		})
	}
	return rows, nil
}

// Export pushes rows into the sink one at a time. A failing row is logged
// and skipped, never retried; the export always runs to the end unless
// the context is cancelled. Returns the number of rows written and the
// per-row failures.
func Export(ctx context.Context, sink Sink, rows []Row, log *zap.Logger) (int, []error) {
	if log == nil {
		log = zap.NewNop()
	}
	written := 0
	var failures []error
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if err := sink.Put(ctx, row); err != nil {
			log.Error("geofence row not written", zap.String("name", row.Name), zap.Error(err))
			failures = append(failures, fmt.Errorf("row %s: %w", row.Name, err))
			continue
		}
		written++
	}
	log.Info("geofence export finished",
		zap.Int("written", written), zap.Int("failed", len(failures)))
	return written, failures
}
