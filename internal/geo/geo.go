package geo

import (
	"github.com/LVPlayground/gamemode/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Positions are stored as XYZ points in WKB. Game world units are used as-is; there is no SRID
// because the world is a flat map, not a projection of the earth.

// PointFromPosition converts a world position into an XYZ point.
func PointFromPosition(pos core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: pos.X, Y: pos.Y},
		Z:    pos.Z,
		Type: geom.DimXYZ,
	})
}

// PositionFromPoint converts a point back into a world position. Empty points map to the origin.
func PositionFromPoint(p geom.Point) core.Position3D {
	coords, ok := p.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: coords.X, Y: coords.Y, Z: coords.Z}
}
