// Package polygonstore accumulates forest/wood/park polygons extracted from
// a single pass over the data and reduces them, zoom by zoom, into the
// small set of simplified shapes that actually get drawn — merging
// adjacent scraps, dropping slivers, and simplifying the survivors before
// handing each zoom's output to the next. Grounded on pbf_processor.rs's
// PolygonStore and its process_forests cascade.
package polygonstore

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/geomclip"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
)

// Emission is one polygon PolygonStore hands downstream: the zoom it was
// simplified for, plus the object/geometry pair TileWriter expects.
type Emission struct {
	Zoom     int32
	Object   mapgeom.Object
	Geometry mapgeom.Geometry
}

// PolygonStore collects raw forest polygons until ProcessForestsAsync drains
// them through the merge-reduce-simplify cascade.
type PolygonStore struct {
	mu       sync.Mutex
	polygons []orb.Polygon
}

// New returns an empty store.
func New() *PolygonStore {
	return &PolygonStore{}
}

// AddPolygon queues a raw polygon (the pipeline passes the exterior ring of
// a forest/wood way or of a forest relation) for the next process run.
func (s *PolygonStore) AddPolygon(p orb.Polygon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polygons = append(s.polygons, p)
}

// ProcessForestsAsync launches the zoom cascade in a goroutine, emitting
// every simplified polygon on out and closing it once the cascade reaches
// the top zoom level. mergeEnabled gates the pairwise-union and
// concave-hull-aggregation phases; when false, every zoom just simplifies
// and re-filters the previous zoom's output (the raw set at startZoom).
func (s *PolygonStore) ProcessForestsAsync(out chan<- Emission, mergeEnabled bool, startZoom int32) {
	s.mu.Lock()
	polygons := make([]orb.Polygon, len(s.polygons))
	copy(polygons, s.polygons)
	s.mu.Unlock()

	go func() {
		defer close(out)
		processForests(out, startZoom, polygons, mergeEnabled)
	}()
}

func processForests(out chan<- Emission, z int32, polygons []orb.Polygon, mergeEnabled bool) {
	zf := float64(z)
	work := polygons

	if mergeEnabled {
		work = pairwiseUnionReduce(work)
		work = sizeFilter(work, zf)
		work = concaveHullAggregate(work, zf)
	}

	emitted := phaseDSimplifyAndEmit(out, z, work, zf)

	if z+1 != tilemath.ZoomLevels {
		processForests(out, z+1, emitted, mergeEnabled)
	}
}

// pairwiseUnionReduce is Phase A: a balanced-tree union reduction that keeps
// intermediate results small compared to a monotonic fold. Round i (i from
// 1 to rounds) unions polygons[j] with polygons[j+half] for every j that's
// a multiple of step=2^i, half=step/2. The final result lives at index 0.
func pairwiseUnionReduce(polygons []orb.Polygon) []orb.Polygon {
	n := len(polygons)
	if n == 0 {
		return nil
	}
	merged := make([]orb.Polygon, n)
	copy(merged, polygons)

	rounds := 0
	for step := 1; step < n; step *= 2 {
		rounds++
	}
	for i := 1; i <= rounds; i++ {
		step := 1 << uint(i)
		half := step / 2
		for j := 0; j+half < n; j += step {
			merged[j] = geomclip.Union(merged[j], merged[j+half])
		}
	}

	return []orb.Polygon{simplifyPolygon(merged[0], 1e-8)}
}

// sizeFilter is Phase B: drop polygons too small to matter at this zoom.
func sizeFilter(polygons []orb.Polygon, zf float64) []orb.Polygon {
	threshold := 5e-8 * (zf - 2) * (zf - 2)
	out := make([]orb.Polygon, 0, len(polygons))
	for _, p := range polygons {
		if unsignedArea(p) >= threshold {
			out = append(out, p)
		}
	}
	return out
}

// concaveHullAggregate is Phase C: an R-tree-driven pass that merges small
// neighboring polygons into their larger neighbor's concave hull rather
// than letting them survive as separate slivers.
func concaveHullAggregate(polygons []orb.Polygon, zf float64) []orb.Polygon {
	tree := rtreego.NewTree(2, 25, 50)
	largeThreshold := 5e-6 * (zf - 2) * (zf - 2) * (zf - 2)
	scale := 1.01 + 0.03*(zf-2)

	for _, poly := range polygons {
		bound := poly.Bound()
		drainRect := boundToRect(scaleBound(bound, 1.5))

		var drained []orb.Polygon
		for _, hit := range tree.SearchIntersect(drainRect) {
			ps := hit.(*polySpatial)
			tree.Delete(ps)
			drained = append(drained, ps.poly)
		}

		var small []orb.Polygon
		for _, d := range drained {
			if unsignedArea(d) > largeThreshold {
				insertPoly(tree, d)
			} else {
				small = append(small, d)
			}
		}

		scaledPoly := scalePolygon(poly, scale)
		var aggregationPts []orb.Point
		aggregated := false
		for _, sm := range small {
			if geomclip.PolygonsIntersect(scaledPoly, scalePolygon(sm, scale)) {
				aggregationPts = append(aggregationPts, flattenRings(sm)...)
				aggregated = true
			} else {
				insertPoly(tree, sm)
			}
		}

		if aggregated {
			densified := geomclip.DensifyTwice(poly)
			allPts := append(append([]orb.Point{}, densified...), aggregationPts...)
			hull := geomclip.ConcaveHull(allPts, 3)
			insertPoly(tree, orb.Polygon{hull})
		} else {
			insertPoly(tree, poly)
		}
	}

	world := boundToRect(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}})
	var result []orb.Polygon
	for _, hit := range tree.SearchIntersect(world) {
		result = append(result, hit.(*polySpatial).poly)
	}
	return result
}

// phaseDSimplifyAndEmit is Phase D: every polygon that clears the per-zoom
// area floor is VW-simplified and emitted as a forest feature at z.
func phaseDSimplifyAndEmit(out chan<- Emission, z int32, polygons []orb.Polygon, zf float64) []orb.Polygon {
	threshold := 3e-6 * (zf - 2) * (zf - 2)
	eps := 3e-7 * (zf - 2) * (zf - 2)

	emitted := make([]orb.Polygon, 0, len(polygons))
	for _, p := range polygons {
		if unsignedArea(p) < threshold {
			continue
		}
		simplified := simplifyPolygon(p, eps)
		emitted = append(emitted, simplified)
		out <- Emission{
			Zoom: z,
			Object: mapgeom.Object{
				ID: -2,
				Kind: mapgeom.ObjectKind{
					Tag:    mapgeom.KindNature,
					Nature: mapgeom.NatureForest,
				},
			},
			Geometry: mapgeom.Poly(simplified),
		}
	}
	return emitted
}

func simplifyPolygon(p orb.Polygon, eps float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		out[i] = orb.Ring(geomclip.SimplifyVW(orb.LineString(ring), eps))
	}
	return out
}

// unsignedArea is the exterior ring's shoelace area minus each hole's,
// floored at zero. No polygon-area library was found anywhere in the
// retrieved corpus (see DESIGN.md); the shoelace formula below matches the
// style of geomclip's own hand-rolled triangleArea/DensifyTwice.
func unsignedArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := math.Abs(ringArea(p[0]))
	for _, hole := range p[1:] {
		area -= math.Abs(ringArea(hole))
	}
	if area < 0 {
		return 0
	}
	return area
}

func ringArea(ring orb.Ring) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return sum / 2
}

func flattenRings(p orb.Polygon) []orb.Point {
	var out []orb.Point
	for _, ring := range p {
		out = append(out, []orb.Point(ring)...)
	}
	return out
}

// scalePolygon scales every ring of p by factor about p's own bound center,
// matching the original's poly.scale(scale_koef) call on the actual shape
// rather than its bounding box — the proximity test in concaveHullAggregate
// needs the scaled shapes themselves, not scaled bounding rectangles.
func scalePolygon(p orb.Polygon, factor float64) orb.Polygon {
	center := p.Bound().Center()
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		nr := make(orb.Ring, len(ring))
		for j, pt := range ring {
			nr[j] = orb.Point{
				center[0] + (pt[0]-center[0])*factor,
				center[1] + (pt[1]-center[1])*factor,
			}
		}
		out[i] = nr
	}
	return out
}

func scaleBound(b orb.Bound, factor float64) orb.Bound {
	center := b.Center()
	halfW := (b.Max[0] - b.Min[0]) / 2 * factor
	halfH := (b.Max[1] - b.Min[1]) / 2 * factor
	return orb.Bound{
		Min: orb.Point{center[0] - halfW, center[1] - halfH},
		Max: orb.Point{center[0] + halfW, center[1] + halfH},
	}
}

// polySpatial adapts a polygon to rtreego.Spatial so the aggregation pass in
// concaveHullAggregate can index and drain by bounding rectangle. Grounded
// on the SpatialObject wrapper in the retrieval pack's osm-zone-tiler.
type polySpatial struct {
	poly orb.Polygon
	rect rtreego.Rect
}

func (p *polySpatial) Bounds() rtreego.Rect { return p.rect }

func insertPoly(tree *rtreego.Rtree, p orb.Polygon) {
	tree.Insert(&polySpatial{poly: p, rect: boundToRect(p.Bound())})
}

// boundToRect converts an orb.Bound into an rtreego.Rect, flooring
// degenerate (zero-width/height) dimensions to a tiny epsilon since
// rtreego.NewRect rejects non-positive lengths.
func boundToRect(b orb.Bound) rtreego.Rect {
	const epsilon = 1e-12
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	if width <= 0 {
		width = epsilon
	}
	if height <= 0 {
		height = epsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{width, height})
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{epsilon, epsilon})
	}
	return rect
}
