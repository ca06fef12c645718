package geomclip

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// ConvexHull computes the convex hull of points via the monotone-chain
// (Andrew) algorithm, returned as a closed ring. No suitable third-party
// convex/concave hull package was found anywhere in the retrieved example
// corpus (see DESIGN.md) — this and ConcaveHull below are hand-rolled,
// stdlib-only geometry routines standing in for the original's
// rs_concaveman dependency and the `geo` crate's BooleanOps::union.
func ConvexHull(points []orb.Point) orb.Ring {
	pts := uniqueSorted(points)
	n := len(pts)
	if n < 3 {
		return orb.Ring(append([]orb.Point{}, pts...))
	}

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	lower := make([]orb.Point, 0, n)
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]orb.Point, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) > 0 {
		hull = append(hull, hull[0])
	}
	return orb.Ring(hull)
}

func uniqueSorted(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]bool, len(points))
	out := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// ConcaveHull computes a non-convex tight boundary around points using the
// k-nearest-neighbor "crawl" algorithm (Moreira & Santos, 2007): starting
// from the convex hull's lowest point, repeatedly step to the nearest
// unused neighbor that keeps the boundary simple, widening the neighbor
// search (k) until a step succeeds. Falls back to the convex hull if points
// are too few or every width exhausts without covering every point.
func ConcaveHull(points []orb.Point, k int) orb.Ring {
	pts := uniqueSorted(points)
	if len(pts) < 4 {
		return ConvexHull(pts)
	}
	if k < 3 {
		k = 3
	}

	for width := k; width < len(pts); width++ {
		if hull, ok := concaveHullAttempt(pts, width); ok {
			return hull
		}
	}
	return ConvexHull(pts)
}

func concaveHullAttempt(pts []orb.Point, k int) (orb.Ring, bool) {
	remaining := append([]orb.Point{}, pts...)
	start := lowestPoint(remaining)

	hull := orb.Ring{start}
	current := start
	prevAngle := 0.0
	removePoint(&remaining, start)

	steps := 0
	maxSteps := len(pts) * 3
	for {
		steps++
		if steps > maxSteps {
			return nil, false
		}

		candidates := nearestK(current, remaining, k)
		if len(candidates) == 0 {
			candidates = nearestK(current, []orb.Point{start}, 1)
			if len(candidates) == 0 {
				return nil, false
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			ai := rightTurnAngle(prevAngle, current, candidates[i])
			aj := rightTurnAngle(prevAngle, current, candidates[j])
			return ai > aj
		})

		var chosen orb.Point
		found := false
		for _, cand := range candidates {
			if cand == start && len(hull) < len(pts) {
				continue
			}
			if !intersectsHull(hull, current, cand) {
				chosen = cand
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}

		if chosen == start {
			hull = append(hull, start)
			break
		}

		prevAngle = math.Atan2(chosen[1]-current[1], chosen[0]-current[0])
		hull = append(hull, chosen)
		current = chosen
		removePoint(&remaining, chosen)

		if len(hull) > len(pts)+1 {
			return nil, false
		}
	}

	for _, p := range pts {
		if !pointInRing(p, hull) && !onRing(p, hull) {
			return nil, false
		}
	}

	return hull, true
}

func lowestPoint(pts []orb.Point) orb.Point {
	best := pts[0]
	for _, p := range pts[1:] {
		if p[1] < best[1] || (p[1] == best[1] && p[0] < best[0]) {
			best = p
		}
	}
	return best
}

func removePoint(pts *[]orb.Point, target orb.Point) {
	s := *pts
	for i, p := range s {
		if p == target {
			s = append(s[:i], s[i+1:]...)
			break
		}
	}
	*pts = s
}

func nearestK(from orb.Point, pts []orb.Point, k int) []orb.Point {
	type distPt struct {
		d float64
		p orb.Point
	}
	ds := make([]distPt, len(pts))
	for i, p := range pts {
		dx, dy := p[0]-from[0], p[1]-from[1]
		ds[i] = distPt{d: dx*dx + dy*dy, p: p}
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].d < ds[j].d })
	if k > len(ds) {
		k = len(ds)
	}
	out := make([]orb.Point, k)
	for i := 0; i < k; i++ {
		out[i] = ds[i].p
	}
	return out
}

func rightTurnAngle(prevAngle float64, from, to orb.Point) float64 {
	angle := math.Atan2(to[1]-from[1], to[0]-from[0])
	diff := prevAngle - angle
	for diff < 0 {
		diff += 2 * math.Pi
	}
	for diff > 2*math.Pi {
		diff -= 2 * math.Pi
	}
	return diff
}

func intersectsHull(hull orb.Ring, a, b orb.Point) bool {
	if len(hull) < 2 {
		return false
	}
	for i := 0; i < len(hull)-1; i++ {
		p1, p2 := hull[i], hull[i+1]
		if p1 == a || p2 == a || p1 == b || p2 == b {
			continue
		}
		if segmentsIntersect(a, b, p1, p2) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross3(p3, p4, p1)
	d2 := cross3(p3, p4, p2)
	d3 := cross3(p1, p2, p3)
	d4 := cross3(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross3(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func pointInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi[1] > p[1]) != (pj[1] > p[1]) &&
			p[0] < (pj[0]-pi[0])*(p[1]-pi[1])/(pj[1]-pi[1])+pi[0] {
			inside = !inside
		}
	}
	return inside
}

func onRing(p orb.Point, ring orb.Ring) bool {
	for _, v := range ring {
		if v == p {
			return true
		}
	}
	return false
}

// PolygonsIntersect reports whether two polygons' exterior rings overlap:
// either has a vertex inside the other, or an edge of one crosses an edge
// of the other. Holes are ignored — the callers that need this (scaled
// proximity tests, not exact boolean geometry) only ever pass simple
// single-ring shapes.
func PolygonsIntersect(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ringA, ringB := a[0], b[0]
	if len(ringA) == 0 || len(ringB) == 0 {
		return false
	}

	for _, p := range ringA {
		if pointInRing(p, ringB) {
			return true
		}
	}
	for _, p := range ringB {
		if pointInRing(p, ringA) {
			return true
		}
	}
	for i := 0; i < len(ringA)-1; i++ {
		for j := 0; j < len(ringB)-1; j++ {
			if segmentsIntersect(ringA[i], ringA[i+1], ringB[j], ringB[j+1]) {
				return true
			}
		}
	}
	return false
}

// Union approximates the union of two simple polygons as the convex hull of
// their combined vertex sets. There is no polygon-boolean-ops package in
// the retrieved corpus (see DESIGN.md); PolygonStore's pairwise reduction
// only needs an area-conservative superset to drive its downstream
// area/VW-epsilon gates, so the convex-hull approximation is acceptable
// here even though it is not an exact geometric union.
func Union(a, b orb.Polygon) orb.Polygon {
	var pts []orb.Point
	if len(a) > 0 {
		pts = append(pts, []orb.Point(a[0])...)
	}
	if len(b) > 0 {
		pts = append(pts, []orb.Point(b[0])...)
	}
	hull := ConvexHull(pts)
	return orb.Polygon{hull}
}
