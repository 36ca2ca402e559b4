// Package geograph holds an in-memory graph of geographic entities: points,
// polylines and polygons linked by bidirectional membership references.
//
// Entities reference each other by int64 id. A Line stores the ids of its
// member points, a Point stores the ids of the lines and polygons it belongs
// to, and lookups go through the registries. The Store ties the three
// registries together and keeps removal cascades consistent: removing a point
// detaches it from every line, polygon and neighbor that references it.
//
// All operations are synchronous and single-threaded. Registries answer
// bounding-box queries with a linear scan; the dataset is assumed to fit in
// memory.
//
// Example usage:
//
//	store := geograph.NewStore(logger)
//	a, _ := geograph.NewPoint(1, 54.7, 20.5)
//	b, _ := geograph.NewPoint(2, 54.8, 20.6)
//	store.Points().Add(a)
//	store.Points().Add(b)
//	line, _ := geograph.NewLine(10, map[string]string{"natural": "coastline"}, []*geograph.Point{a, b})
//	store.Lines().Add(line)
package geograph
