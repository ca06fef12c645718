package geomclip

import "github.com/paulmach/orb"

// ClipLine walks consecutive coordinate pairs of line; for each segment, if
// both endpoints lie outside rect AND the segment does not cross rect, the
// current output sub-line is closed (if it has >=2 vertices) and a new one
// begins. Otherwise both endpoints of the segment are appended as-is —
// deliberately not Cohen–Sutherland clipped, so points slightly outside rect
// that connect two inside vertices are kept, reducing seam artifacts (spec
// §4.1).
func ClipLine(line orb.LineString, rect orb.Bound) []orb.LineString {
	if len(line) < 2 {
		return nil
	}

	var out []orb.LineString
	var current orb.LineString

	flush := func() {
		if len(current) >= 2 {
			out = append(out, current)
		}
		current = nil
	}

	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		aIn, bIn := Inside(a, rect), Inside(b, rect)

		if !aIn && !bIn && !segmentCrosses(a, b, rect) {
			flush()
			continue
		}

		if len(current) == 0 {
			current = append(current, a)
		}
		current = append(current, b)
	}
	flush()

	return out
}

// segmentCrosses reports whether segment a-b crosses rect at all, used only
// to decide whether to break the output polyline (not to clip the segment
// itself).
func segmentCrosses(a, b orb.Point, rect orb.Bound) bool {
	_, ok := RectIntersectionPoint(rect, [2]orb.Point{a, b})
	return ok
}
