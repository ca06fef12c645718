// Package tileprocessor decides, per object kind, which zoom levels a
// feature is added to TileWriter at and with what per-zoom simplification —
// the layer the pipeline's read passes call into directly, as opposed to
// PolygonStore/WayStore's own multi-zoom cascades. Grounded on
// tile_processor.rs's TileProcessor.
package tileprocessor

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/geomclip"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilewriter"
)

// PolygonMergeZoomLevel is the zoom at which PolygonStore's own cascade
// takes over forest polygons; below it, forests are tiled independently
// like any other nature polygon.
const PolygonMergeZoomLevel = 3

// Processor dispatches (object, geometry) pairs from the PBF/shapefile read
// passes into a TileWriter, applying the per-kind zoom-range and
// simplification rules tile_processor.rs hard-codes per variant.
type Processor struct {
	Writer *tilewriter.TileWriter
}

// New wraps w.
func New(w *tilewriter.TileWriter) *Processor {
	return &Processor{Writer: w}
}

// AddToTiles dispatches obj/geom to the per-kind handler. Kinds with no
// handler (Route, Way — those go through RoadGraph/WayStore instead) are
// silently ignored, matching tile_processor.rs's catch-all `_ => {}`.
func (p *Processor) AddToTiles(ctx context.Context, obj mapgeom.Object, geom mapgeom.Geometry) {
	switch obj.Kind.Tag {
	case mapgeom.KindPoi:
		p.addToPOI(ctx, obj, geom)
	case mapgeom.KindNature, mapgeom.KindAdminLine:
		p.addToNature(ctx, obj, geom)
	case mapgeom.KindBuilding:
		p.addToBuildings(ctx, obj, geom)
	}
}

func (p *Processor) addToBuildings(ctx context.Context, obj mapgeom.Object, geom mapgeom.Geometry) {
	for z := int32(0); z <= 1; z++ {
		p.Writer.AddToTiles(ctx, z, obj, geom, true)
	}
}

// addToNature walks every zoom, re-simplifying the previous zoom's already
// simplified geometry (cheaper than re-simplifying the original each time),
// stopping early once a polygon's area drops under its zoom's floor (no
// lower zoom would pass either) or once PolygonStore's own cascade takes
// over a forest polygon at PolygonMergeZoomLevel.
func (p *Processor) addToNature(ctx context.Context, obj mapgeom.Object, geom mapgeom.Geometry) {
	canCreate := obj.Kind.Tag != mapgeom.KindAdminLine && !(obj.Kind.Tag == mapgeom.KindNature && obj.Kind.Nature == mapgeom.NatureGround)

	current := geom
	for z := int32(0); z < tilemath.ZoomLevels; z++ {
		if z >= PolygonMergeZoomLevel && obj.Kind.Tag == mapgeom.KindNature && obj.Kind.Nature == mapgeom.NatureForest {
			break
		}

		zf := float64(z)
		next, ok := simplifyForNature(obj, current, zf)
		if !ok {
			return
		}
		p.Writer.AddToTiles(ctx, z, obj, next, canCreate)
		current = next
	}
}

func simplifyForNature(obj mapgeom.Object, geom mapgeom.Geometry, zf float64) (mapgeom.Geometry, bool) {
	switch g := geom.(type) {
	case mapgeom.Line:
		return mapgeom.Line(geomclip.SimplifyVW(orb.LineString(g), 0.001*zf)), true
	case mapgeom.Poly:
		isGround := obj.Kind.Tag == mapgeom.KindNature && obj.Kind.Nature == mapgeom.NatureGround
		eps, areaFloor := 0.00003, 0.0000003
		if isGround {
			eps, areaFloor = 0.00007, 0.0001
		}

		poly := orb.Polygon(g)
		ext := geomclip.SimplifyVW(poly[0], eps*zf*zf)
		simplified := orb.Polygon{ext}
		if zf < 2 {
			for _, interior := range poly[1:] {
				simplified = append(simplified, geomclip.SimplifyVW(interior, eps*zf*zf))
			}
		}

		if unsignedArea(simplified) < areaFloor*zf*zf {
			return nil, false
		}
		return mapgeom.Poly(simplified), true
	default:
		return geom, true
	}
}

func unsignedArea(p orb.Polygon) float64 {
	var total float64
	for _, ring := range p {
		total += ringArea(ring)
	}
	if total < 0 {
		total = -total
	}
	return total
}

func ringArea(ring orb.Ring) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

func (p *Processor) addToPOI(ctx context.Context, obj mapgeom.Object, geom mapgeom.Geometry) {
	if obj.Kind.Tag != mapgeom.KindPoi {
		return
	}
	info := obj.Kind.Poi

	for z := int32(0); z < tilemath.ZoomLevels; z++ {
		switch info.Kind {
		case mapgeom.PoiPopArea:
			if (info.PopLevel == 0 && z >= 5 && z <= 12) || (info.PopLevel == 1 && z > 12) {
				p.Writer.AddToTiles(ctx, z, obj, geom, false)
			}
		case mapgeom.PoiTrafficLight:
			if z == 0 {
				p.Writer.AddToTiles(ctx, z, obj, geom, true)
			}
		case mapgeom.PoiTrainStation:
			limit := int32(2)
			if info.IsTrainStop {
				limit = 4
			}
			if z <= limit {
				p.Writer.AddToTiles(ctx, z, obj, geom, true)
			}
		default: // Toilet, Parking, Text
			if z <= 1 {
				p.Writer.AddToTiles(ctx, z, obj, geom, true)
			}
		}
	}
}
