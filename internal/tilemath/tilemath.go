// Package tilemath implements the conversion between world-coordinate
// rectangles and integer tile keys, grounded directly on
// osm/src/tiles/mod.rs rather than the teacher's slippy-map tile math
// (internal/tile/coords.go), which assumes standard Web Mercator tiling —
// a materially different convention from this spec's inverted-latitude,
// TILES_COUNT-subdivided world rectangle.
package tilemath

import (
	"math"

	"github.com/paulmach/orb"
)

// TilesCount is the subdivision count of the world rectangle at zoom 0.
const TilesCount = 32768

// MinZoomForPlanetTiles is the zoom at and above which TileWriter accepts
// new tile keys regardless of the tile-keys cache (spec §4.6).
const MinZoomForPlanetTiles = 10

// ZoomLevels is the number of zoom levels PolygonStore/WayStore cascade
// through (z in [0, ZoomLevels)).
const ZoomLevels = 18

// Key uniquely identifies one stored tile.
type Key struct {
	X, Y, Z int32
}

// WorldRect returns the fixed world rectangle spanning longitude [-180,180]
// and latitude [-75,89]. The constructor in the original source is called
// with corners in the order (-180,89) then (180,-75) — y descending — but
// its underlying Rect type normalizes to (min,max) on construction, so the
// observable boundary is the ordinary min<max box returned here (width=360,
// height=164); only the call-site argument order was "inverted" (spec §9's
// Open Question), and that detail has no further behavioral consequence
// once normalized, so it is not re-introduced here.
func WorldRect() orb.Bound {
	return orb.Bound{Min: orb.Point{-180, -75}, Max: orb.Point{180, 89}}
}

// TilesAtZoom returns max(1, TilesCount >> z).
func TilesAtZoom(z int32) int32 {
	n := int32(TilesCount) >> uint(z)
	if n < 1 {
		return 1
	}
	return n
}

// TileRect computes the rectangle for key, scaled about its centre by
// scaleFactor. The writer uses 1.01 when clipping geometry into a tile; the
// reader-side coordinate-origin transform uses 1.0 (spec §4.2).
func TileRect(key Key, scaleFactor float64) orb.Bound {
	world := WorldRect()
	n := float64(TilesAtZoom(key.Z))
	tileW := (world.Max[0] - world.Min[0]) / n
	tileH := (world.Max[1] - world.Min[1]) / n

	p1 := orb.Point{
		tileW*float64(key.X) + world.Min[0],
		tileH*float64(key.Y) + world.Min[1],
	}
	p2 := orb.Point{p1[0] + tileW, p1[1] + tileH}

	rect := orb.Bound{Min: orb.Point{min(p1[0], p2[0]), min(p1[1], p2[1])}, Max: orb.Point{max(p1[0], p2[0]), max(p1[1], p2[1])}}
	return scaleAboutCenter(rect, scaleFactor)
}

func scaleAboutCenter(r orb.Bound, factor float64) orb.Bound {
	cx := (r.Min[0] + r.Max[0]) / 2
	cy := (r.Min[1] + r.Max[1]) / 2
	hw := (r.Max[0] - r.Min[0]) / 2 * factor
	hh := (r.Max[1] - r.Min[1]) / 2 * factor
	return orb.Bound{
		Min: orb.Point{cx - hw, cy - hh},
		Max: orb.Point{cx + hw, cy + hh},
	}
}

// Ranges is the inclusive integer tile-index box covering a rectangle at a
// given zoom.
type Ranges struct {
	MinX, MaxX, MinY, MaxY int32
}

// RangesForRect clamps the projected min/max of rect into
// [0, TilesAtZoom(z)-1] on each axis (spec §4.2 ranges_for_rect).
func RangesForRect(z int32, rect orb.Bound) Ranges {
	world := WorldRect()
	n := TilesAtZoom(z)
	nf := float64(n)

	proj := func(x, axisMin, axisSpan float64) int32 {
		v := int32(nf * ((x - axisMin) / axisSpan))
		if v < 0 {
			return 0
		}
		if v > n-1 {
			return n - 1
		}
		return v
	}

	worldW := world.Max[0] - world.Min[0]
	worldH := world.Max[1] - world.Min[1]

	minX := proj(rect.Min[0], world.Min[0], worldW)
	maxX := proj(rect.Max[0], world.Min[0], worldW)
	minY := proj(rect.Min[1], world.Min[1], worldH)
	maxY := proj(rect.Max[1], world.Min[1], worldH)

	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	return Ranges{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

// mercatorLevel22Pixels is the world pixel size at web-mercator zoom 22
// with a 256px tile, the fixed projection TileWriter persists geometry
// coordinates against regardless of the tile's own TilesCount-based zoom.
const mercatorLevel22Pixels = 256 * (1 << 22)

// MercatorSubpixelAtLevel22 projects a lon/lat coordinate to its world
// pixel position under standard web mercator at zoom 22 (spec §4.6
// save_to_file). Coordinates stored on disk are this value minus the
// containing tile's own top-left, so they fit in f32 pixel offsets.
func MercatorSubpixelAtLevel22(p orb.Point) orb.Point {
	const size = mercatorLevel22Pixels
	x := (p[0] + 180) / 360 * size
	sinLat := math.Sin(p[1] * math.Pi / 180)
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * size
	return orb.Point{x, y}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
