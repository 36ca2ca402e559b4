package geograph

import (
	"fmt"
)

// ErrInvalidCoordinate indicates a coordinate outside valid WGS84 bounds.
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Lat, e.Lon)
}

// ErrNilEntity indicates a nil point, line or polygon was passed where a
// value is required.
type ErrNilEntity struct {
	Kind string
}

func (e *ErrNilEntity) Error() string {
	return fmt.Sprintf("nil %s", e.Kind)
}

// ErrSelfNeighbor indicates an attempt to link a point to itself.
type ErrSelfNeighbor struct {
	ID int64
}

func (e *ErrSelfNeighbor) Error() string {
	return fmt.Sprintf("point %d cannot neighbor itself", e.ID)
}

// ErrRingConstraint indicates a polygon ring operation that would violate
// the outer/inner invariant: inner rings require an outer ring, and the
// outer ring cannot be removed while inner rings remain.
type ErrRingConstraint struct {
	PolygonID int64
	Reason    string
}

func (e *ErrRingConstraint) Error() string {
	return fmt.Sprintf("polygon %d ring constraint: %s", e.PolygonID, e.Reason)
}

// ErrMissingPoint indicates an entity references a point id that is not in
// the registry.
type ErrMissingPoint struct {
	EntityID int64
	PointID  int64
}

func (e *ErrMissingPoint) Error() string {
	return fmt.Sprintf("entity %d references missing point %d", e.EntityID, e.PointID)
}

// validateCoordinate checks WGS84 bounds. Boundary values are valid.
func validateCoordinate(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}
