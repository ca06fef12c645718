// Package geomclip implements the pure geometric primitives shared by
// TileWriter and PolygonStore: rectangle/line clipping, Sutherland–Hodgman
// polygon clipping, Visvalingam–Whyatt simplification, densification, and a
// concave-hull aggregation routine. Grounded on
// osm/src/tiles/sutherland_hodgman.rs and osm_tool/src/polygon_store.rs.
package geomclip

import "github.com/paulmach/orb"

// side bitmask, matching get_side in sutherland_hodgman.rs: 1=left, 2=right,
// 4=bottom, 8=top.
const (
	sideLeft   = 1
	sideRight  = 2
	sideBottom = 4
	sideTop    = 8
)

func side(p orb.Point, rect orb.Bound) int {
	code := 0
	if p[0] < rect.Min[0] {
		code |= sideLeft
	}
	if p[0] > rect.Max[0] {
		code |= sideRight
	}
	if p[1] < rect.Min[1] {
		code |= sideBottom
	}
	if p[1] > rect.Max[1] {
		code |= sideTop
	}
	return code
}

// Inside reports whether p lies inside rect, treating the boundary as
// inside (strict inequality test on the outside side only).
func Inside(p orb.Point, rect orb.Bound) bool { return side(p, rect) == 0 }

// RectContains reports whether outer fully contains inner.
func RectContains(outer, inner orb.Bound) bool {
	return outer.Min[0] <= inner.Min[0] && outer.Min[1] <= inner.Min[1] &&
		outer.Max[0] >= inner.Max[0] && outer.Max[1] >= inner.Max[1]
}

// RectIntersects reports whether two rectangles overlap at all.
func RectIntersects(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1]
}

// intersectEdge returns the intersection of segment a->b with the named
// rectangle edge, following sutherland_hodgman.rs's intersect_edge formulas
// exactly.
func intersectEdge(a, b orb.Point, edge int, rect orb.Bound) orb.Point {
	switch edge {
	case sideTop:
		y := rect.Max[1]
		t := (y - a[1]) / (b[1] - a[1])
		return orb.Point{a[0] + t*(b[0]-a[0]), y}
	case sideBottom:
		y := rect.Min[1]
		t := (y - a[1]) / (b[1] - a[1])
		return orb.Point{a[0] + t*(b[0]-a[0]), y}
	case sideRight:
		x := rect.Max[0]
		t := (x - a[0]) / (b[0] - a[0])
		return orb.Point{x, a[1] + t*(b[1]-a[1])}
	case sideLeft:
		x := rect.Min[0]
		t := (x - a[0]) / (b[0] - a[0])
		return orb.Point{x, a[1] + t*(b[1]-a[1])}
	default:
		return a
	}
}

// RectIntersectionPoint returns the first intersection of line with any of
// rect's four edges, ignoring collinear overlap (spec §4.1
// rect_intersection_point).
func RectIntersectionPoint(rect orb.Bound, line [2]orb.Point) (orb.Point, bool) {
	a, b := line[0], line[1]
	for _, edge := range []int{sideLeft, sideRight, sideBottom, sideTop} {
		sa := side(a, rect) & edge
		sb := side(b, rect) & edge
		if sa == sb {
			continue
		}
		p := intersectEdge(a, b, edge, rect)
		if onEdgeSegment(p, edge, rect) {
			return p, true
		}
	}
	return orb.Point{}, false
}

func onEdgeSegment(p orb.Point, edge int, rect orb.Bound) bool {
	switch edge {
	case sideTop, sideBottom:
		return p[0] >= rect.Min[0] && p[0] <= rect.Max[0]
	default:
		return p[1] >= rect.Min[1] && p[1] <= rect.Max[1]
	}
}
