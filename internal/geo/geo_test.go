package geo

import (
	"testing"

	"github.com/LVPlayground/gamemode/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

func TestPointFromPosition(t *testing.T) {
	point := PointFromPosition(core.Position3D{X: 1958.3783, Y: 1343.1572, Z: 15.3746})

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X != 1958.3783 || coords.Y != 1343.1572 || coords.Z != 15.3746 {
		t.Errorf("unexpected coordinates %+v", coords)
	}
	if point.CoordinatesType() != geom.DimXYZ {
		t.Errorf("expected XYZ point, got %v", point.CoordinatesType())
	}
}

func TestPositionFromPoint_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pos  core.Position3D
	}{
		{"origin", core.Position3D{}},
		{"las venturas", core.Position3D{X: 2027.4, Y: 1008.2, Z: 10.8}},
		{"negative", core.Position3D{X: -2653.6, Y: 634.8, Z: -14.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionFromPoint(PointFromPosition(tt.pos))
			if got != tt.pos {
				t.Errorf("expected %+v, got %+v", tt.pos, got)
			}
		})
	}
}

func TestPositionFromPoint_Empty(t *testing.T) {
	got := PositionFromPoint(geom.NewEmptyPoint(geom.DimXYZ))
	if got != (core.Position3D{}) {
		t.Errorf("expected origin, got %+v", got)
	}
}
