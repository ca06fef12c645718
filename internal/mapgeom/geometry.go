// Package mapgeom holds the tagged geometry variant and object-kind model
// shared by every stage of the pipeline: GeomClip, PolygonStore, WayStore,
// and TileWriter all exchange (MapGeomObject, MapGeometry) pairs defined
// here. It mirrors osm/src/map/mod.rs, expressed as a Go sum type dispatched
// by exhaustive type switch rather than an "I know it's a line" accessor.
package mapgeom

import "github.com/paulmach/orb"

// Geometry is a closed sum type over the three shapes the pipeline ever
// produces. Callers switch on the concrete type; there is no "AsLine"-style
// accessor, by design.
type Geometry interface {
	isGeometry()
	Bound() orb.Bound
}

// Line is an ordered, non-closed sequence of at least two coordinates.
type Line orb.LineString

func (Line) isGeometry()          {}
func (l Line) Bound() orb.Bound   { return orb.LineString(l).Bound() }

// Poly is a polygon: one exterior ring plus zero or more interior (hole)
// rings, each ring closed with at least three distinct vertices.
type Poly orb.Polygon

func (Poly) isGeometry()        {}
func (p Poly) Bound() orb.Bound { return orb.Polygon(p).Bound() }

// Point is a single coordinate (used for POIs and other point features).
type Point orb.Point

func (Point) isGeometry() {}
func (p Point) Bound() orb.Bound {
	pt := orb.Point(p)
	return orb.Bound{Min: pt, Max: pt}
}

// Object pairs an identity with its semantic kind. The id is the source
// way/node/relation id where one exists, or a synthetic negative id for
// geometry synthesized by the pipeline itself (merged forests, planet data).
type Object struct {
	ID   int64
	Kind ObjectKind
}

// ObjectKind is the closed set of semantic classifications a MapGeomObject
// can carry. Exactly one field is meaningful depending on Tag.
type ObjectKind struct {
	Tag      ObjectKindTag
	Nature   NatureKind
	Building BuildingInfo
	Way      WayInfo
	Poi      PointInfo
}

// ObjectKindTag discriminates ObjectKind's variants.
type ObjectKindTag int

const (
	KindNature ObjectKindTag = iota
	KindBuilding
	KindWay
	KindRoute
	KindAdminLine
	KindPoi
)

// NatureKind enumerates natural-feature sub-types.
type NatureKind int

const (
	NatureGround NatureKind = iota
	NaturePark
	NatureForest
	NatureWater
)

// BuildingInfo carries the building's level count (0 when unknown).
type BuildingInfo struct {
	Levels uint16
}

// ObjectKindFromTag maps a matched (key, value) tag pair from WayTags into
// an ObjectKind for a non-road/rail way or relation, mirroring
// MapGeomObjectKind::from_tag. levels is only meaningful when k=="building".
func ObjectKindFromTag(k, v string, levels uint16) ObjectKind {
	switch k {
	case "water":
		return ObjectKind{Tag: KindNature, Nature: NatureWater}
	case "leisure":
		return ObjectKind{Tag: KindNature, Nature: NaturePark}
	case "building":
		return ObjectKind{Tag: KindBuilding, Building: BuildingInfo{Levels: levels}}
	case "natural", "landuse":
		if v == "water" || v == "bay" {
			return ObjectKind{Tag: KindNature, Nature: NatureWater}
		}
		return ObjectKind{Tag: KindNature, Nature: NatureForest}
	default:
		return ObjectKind{Tag: KindNature, Nature: NatureForest}
	}
}

// Collection is an ordered sequence of (object, geometry) pairs. Before
// persistence it is sorted by Object total order (see order.go) so a
// renderer draws features in the correct painter order.
type Collection []Pair

// Pair is one persisted feature.
type Pair struct {
	Object   Object
	Geometry Geometry
}
