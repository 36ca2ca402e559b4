package merge

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/twpayne/go-geos"
)

// toGeos bridges an orb geometry into GEOS through WKT. The caller owns
// the returned geometry and must Destroy it.
func toGeos(g orb.Geometry) (*geos.Geom, error) {
	if g == nil {
		return nil, fmt.Errorf("nil geometry")
	}
	geom, err := geos.NewGeomFromWKT(wkt.MarshalString(g))
	if err != nil {
		return nil, fmt.Errorf("bridging geometry to GEOS: %w", err)
	}
	return geom, nil
}

// fromGeos bridges a GEOS geometry back through WKT.
func fromGeos(g *geos.Geom) (orb.Geometry, error) {
	out, err := wkt.Unmarshal(g.ToWKT())
	if err != nil {
		return nil, fmt.Errorf("bridging geometry from GEOS: %w", err)
	}
	return out, nil
}
