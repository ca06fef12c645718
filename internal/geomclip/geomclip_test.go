package geomclip

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquareRing() orb.Ring {
	return orb.Ring{
		{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}, {-0.5, -0.5},
	}
}

func TestClipPolygon_ContainingRectReturnsSameRing(t *testing.T) {
	rect := orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{2, 2}}
	clipped, ok := ClipPolygon(unitSquareRing(), rect)
	require.True(t, ok)
	assert.Len(t, clipped, 5)
}

func TestClipPolygon_PartialOverlapYieldsTriangle(t *testing.T) {
	rect := orb.Bound{Min: orb.Point{0.5, 0.5}, Max: orb.Point{2, 2}}
	clipped, ok := ClipPolygon(unitSquareRing(), rect)
	require.True(t, ok)
	// closed ring of a triangle has 4 points (3 distinct + repeated first).
	assert.Len(t, clipped, 4)
}

func TestClipLine_KeepsOutsideEndpointsConnectedToInside(t *testing.T) {
	line := orb.LineString{{0, 0}, {5, 0}, {10, 0}}
	rect := orb.Bound{Min: orb.Point{1, -1}, Max: orb.Point{4, 1}}

	segments := ClipLine(line, rect)
	require.Len(t, segments, 1)
	sub := segments[0]
	assert.Contains(t, sub, orb.Point{0, 0})
	assert.Contains(t, sub, orb.Point{5, 0})
	// (5,0)-(10,0) lies wholly outside rect, so its far endpoint is not kept.
	assert.NotContains(t, sub, orb.Point{10, 0})
}

func TestSimplifyVW_RemovesLowAreaVertex(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0.0001}, {2, 0}}
	out := SimplifyVW(line, 0.01)
	assert.Len(t, out, 2)
}

func TestDensifyTwice_InsertsMidpointsOnExteriorOnly(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}},
	}
	out := DensifyTwice(poly)
	assert.Contains(t, out, orb.Point{1, 0})
	assert.Contains(t, out, orb.Point{2, 1})
}

func TestConvexHull_SquareOfPoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}}
	hull := ConvexHull(pts)
	assert.Len(t, hull, 5) // 4 corners + closing point
	assert.NotContains(t, hull[:len(hull)-1], orb.Point{0.5, 0.5})
}

func TestPolygonsIntersect_OverlappingSquaresTrue(t *testing.T) {
	a := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	b := orb.Polygon{{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}}
	assert.True(t, PolygonsIntersect(a, b))
}

func TestPolygonsIntersect_DisjointSquaresFalse(t *testing.T) {
	a := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	b := orb.Polygon{{{10, 10}, {12, 10}, {12, 12}, {10, 12}, {10, 10}}}
	assert.False(t, PolygonsIntersect(a, b))
}

// An L-shaped polygon and a small square sitting entirely inside the L's
// notch (and so inside the L's bounding box) but outside the L's filled
// area — the case a bounding-rectangle test would wrongly call an
// intersection.
func TestPolygonsIntersect_OverlappingBoundsButDisjointShapesFalse(t *testing.T) {
	l := orb.Polygon{{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}, {0, 0}}}
	notchSquare := orb.Polygon{{{1.2, 1.2}, {1.8, 1.2}, {1.8, 1.8}, {1.2, 1.8}, {1.2, 1.2}}}
	assert.False(t, PolygonsIntersect(l, notchSquare))
}
