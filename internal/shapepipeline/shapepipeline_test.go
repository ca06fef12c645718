package shapepipeline

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonFromShape_SplitsPartsIntoExteriorAndHoles(t *testing.T) {
	poly := &shp.Polygon{
		Parts: []int32{0, 4},
		Points: []shp.Point{
			// exterior: 10x10 square
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
			// hole: smaller square
			{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4},
		},
	}

	rings := polygonFromShape(poly)

	require.Len(t, rings, 2)
	assert.Len(t, rings[0], 4)
	assert.Len(t, rings[1], 4)
	assert.Equal(t, orb.Point{2, 2}, rings[1][0])
}

func TestUnsignedRingArea_MatchesShoelaceForUnitSquare(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	assert.InDelta(t, 1.0, unsignedRingArea(ring), 1e-9)
}

func TestBoundFromBox_PreservesMinMax(t *testing.T) {
	box := shp.Box{MinX: -1, MinY: -2, MaxX: 3, MaxY: 4}
	b := boundFromBox(box)
	assert.Equal(t, orb.Point{-1, -2}, b.Min)
	assert.Equal(t, orb.Point{3, 4}, b.Max)
}

func TestExtractLandShapes_MissingPathReturnsError(t *testing.T) {
	err := extractLandShapes(nil, "", nil, orb.Bound{}, nil)
	require.Error(t, err)
}

func TestExtractCountriesAndCities_MissingPathReturnsError(t *testing.T) {
	err := extractCountriesAndCities(nil, "", "", nil, nil)
	require.Error(t, err)
}
