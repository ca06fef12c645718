package polygonstore

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
)

func square(cx, cy, half float64) orb.Polygon {
	return orb.Polygon{
		orb.Ring{
			{cx - half, cy - half},
			{cx + half, cy - half},
			{cx + half, cy + half},
			{cx - half, cy + half},
			{cx - half, cy - half},
		},
	}
}

func TestProcessForestsAsync_EmitsAtEveryZoomUpToTopLevel(t *testing.T) {
	s := New()
	// area = (2*0.02)^2 = 1.6e-3, above z=16 and z=17's Phase D floors.
	s.AddPolygon(square(0, 0, 0.02))

	out := make(chan Emission, 4096)
	s.ProcessForestsAsync(out, false, 16)

	var emissions []Emission
	for e := range out {
		emissions = append(emissions, e)
	}

	// z=16 and z=17 both emit; z+1==18==tilemath.ZoomLevels stops recursion.
	require.Len(t, emissions, 2)
	assert.EqualValues(t, 16, emissions[0].Zoom)
	assert.EqualValues(t, 17, emissions[1].Zoom)
	for _, e := range emissions {
		assert.EqualValues(t, -2, e.Object.ID)
		assert.Equal(t, mapgeom.NatureForest, e.Object.Kind.Nature)
	}
}

func TestUnsignedArea_MatchesShoelaceForUnitSquare(t *testing.T) {
	p := square(0, 0, 0.5)
	assert.InDelta(t, 1.0, unsignedArea(p), 1e-9)
}

func TestSizeFilter_DropsBelowAreaFloor(t *testing.T) {
	zf := 5.0
	big := square(0, 0, 0.01)
	small := square(5, 5, 1e-5)

	out := sizeFilter([]orb.Polygon{big, small}, zf)
	require.Len(t, out, 1)
	assert.InDelta(t, unsignedArea(big), unsignedArea(out[0]), 1e-12)
}

func TestPairwiseUnionReduce_CollapsesToSingleEnclosingPolygon(t *testing.T) {
	polys := []orb.Polygon{
		square(0, 0, 0.1),
		square(0.05, 0.05, 0.1),
		square(1, 1, 0.1),
		square(1.05, 1.05, 0.1),
	}
	out := pairwiseUnionReduce(polys)
	require.Len(t, out, 1)

	// The result must actually enclose the far pair of squares at (1,1),
	// not just the first pair near the origin — a hull that silently
	// dropped half the input would bound the near pair's ~0.06 area alone.
	b := out[0].Bound()
	assert.InDelta(t, -0.1, b.Min[0], 1e-9)
	assert.InDelta(t, -0.1, b.Min[1], 1e-9)
	assert.InDelta(t, 1.15, b.Max[0], 1e-9)
	assert.InDelta(t, 1.15, b.Max[1], 1e-9)
	// Convex hull (-0.1,-0.1),(0.1,-0.1),(1.15,0.95),(1.15,1.15),(0.95,1.15),(-0.1,0.1).
	assert.InDelta(t, 0.46, unsignedArea(out[0]), 1e-9)
}

func TestPhaseDSimplifyAndEmit_EmitsForestObjectsAboveFloor(t *testing.T) {
	out := make(chan Emission, 8)
	zf := 4.0
	emitted := phaseDSimplifyAndEmit(out, 4, []orb.Polygon{square(0, 0, 0.01)}, zf)
	close(out)

	var got []Emission
	for e := range out {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.EqualValues(t, -2, got[0].Object.ID)
	require.Len(t, emitted, 1)
}

func TestRingArea_IsHalfOfShoelaceSum(t *testing.T) {
	ring := orb.Ring{{0, 0}, {4, 0}, {4, 3}, {0, 3}, {0, 0}}
	assert.InDelta(t, 12.0, math.Abs(ringArea(ring)), 1e-9)
}
