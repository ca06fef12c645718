package geomclip

import "github.com/paulmach/orb"

// ClipPolygon implements Sutherland–Hodgman clipping of ring against rect,
// processing the four rectangle edges in the fixed order left, right,
// bottom, top (bit values 1,2,4,8 as in sutherland_hodgman.rs — the "doubled
// edge" iteration order 1,2,4,8 corresponds to left,right,bottom,top). The
// boundary test is strict inequality; points exactly on an edge count as
// inside. Returns (nil, false) once the ring clips to fewer than two
// vertices.
func ClipPolygon(ring orb.Ring, rect orb.Bound) (orb.Ring, bool) {
	points := []orb.Point(ring)
	if len(points) > 0 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}

	for _, edge := range []int{sideLeft, sideRight, sideBottom, sideTop} {
		if len(points) == 0 {
			return nil, false
		}
		points = clipEdge(points, edge, rect)
	}

	if len(points) < 2 {
		return nil, false
	}

	closed := append(append(orb.Ring{}, points...), points[0])
	return closed, true
}

func insideEdge(p orb.Point, edge int, rect orb.Bound) bool {
	return side(p, rect)&edge == 0
}

func clipEdge(points []orb.Point, edge int, rect orb.Bound) []orb.Point {
	if len(points) == 0 {
		return nil
	}
	var out []orb.Point
	n := len(points)
	for i := 0; i < n; i++ {
		cur := points[i]
		prev := points[(i-1+n)%n]

		curIn := insideEdge(cur, edge, rect)
		prevIn := insideEdge(prev, edge, rect)

		if curIn != prevIn {
			out = append(out, intersectEdge(prev, cur, edge, rect))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}
