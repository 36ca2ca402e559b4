// Package extract sits between an external raw-map decoder and the entity
// graph. The decoder hands over flat way and area records; a configurable
// tag filter decides which records matter, and the Builder turns accepted
// records into graph entities with points deduplicated across records.
//
// The package also maintains an R-tree index over interchange files on
// disk, so a merge run can load only the regional extracts that intersect
// its region of interest.
package extract

import (
	"fmt"
)

// NodeRef is one node of a way or ring: its source id and location.
type NodeRef struct {
	ID       int64
	Lat, Lon float64
}

// WayRecord is a polyline as the decoder delivers it.
type WayRecord struct {
	ID    int64
	Tags  map[string]string
	Nodes []NodeRef
}

// AreaRecord is a closed area as the decoder delivers it: one outer ring
// and any number of inner rings.
type AreaRecord struct {
	ID     int64
	Tags   map[string]string
	Outer  []NodeRef
	Inners [][]NodeRef
}

// ErrEmptyRecord indicates a record without nodes.
type ErrEmptyRecord struct {
	Kind string
	ID   int64
}

func (e *ErrEmptyRecord) Error() string {
	return fmt.Sprintf("%s record %d has no nodes", e.Kind, e.ID)
}
