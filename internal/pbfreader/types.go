package pbfreader

import "github.com/paulmach/orb"

// Node is one decoded OSM node: its id, world coordinate, and raw
// string-table-indexed tags.
type Node struct {
	ID    int64
	Coord orb.Point
	Tags  map[uint32]uint32
}

// Way is one decoded OSM way: its id, raw tags, and delta-decoded member
// node ids.
type Way struct {
	ID   int64
	Tags map[uint32]uint32
	Refs []int64
}

// AsLine resolves Refs against nodes, skipping any ref with no known
// coordinate, and reports the first and last resolved node id — matching
// OsmWay::as_line exactly (including its history of using the first/last
// *resolved* id, not the first/last requested ref).
func (w Way) AsLine(nodes map[int64]orb.Point) (line orb.LineString, firstID, lastID int64) {
	firstID, lastID = -1, -1
	for _, ref := range w.Refs {
		p, ok := nodes[ref]
		if !ok {
			continue
		}
		if firstID == -1 {
			firstID = ref
		}
		lastID = ref
		line = append(line, p)
	}
	return line, firstID, lastID
}

// AsPolygon resolves Refs into a single-ring polygon with no holes.
func (w Way) AsPolygon(nodes map[int64]orb.Point) orb.Polygon {
	line, _, _ := w.AsLine(nodes)
	return orb.Polygon{orb.Ring(line)}
}

// WayMember is one (way id, role string-table index) pair inside a relation.
type WayMember struct {
	WayID int64
	Role  int32
}

// Relation is one decoded OSM relation: its id, raw tags, and the way
// members with "way" membership type (OSM member type 1).
type Relation struct {
	ID   int64
	Tags map[uint32]uint32
	Ways []WayMember
}

func newRelation(r rawRelation) Relation {
	tags := make(map[uint32]uint32, len(r.Keys))
	for i := range r.Keys {
		if i < len(r.Vals) {
			tags[r.Keys[i]] = r.Vals[i]
		}
	}

	memIDs := deltaDecode(r.MemIDs)
	var ways []WayMember
	for i, t := range r.Types {
		if t != 1 { // only "way" members (OSM Relation.MemberType::WAY == 1)
			continue
		}
		if i >= len(memIDs) || i >= len(r.RolesSid) {
			continue
		}
		ways = append(ways, WayMember{WayID: memIDs[i], Role: r.RolesSid[i]})
	}

	return Relation{ID: r.ID, Tags: tags, Ways: ways}
}

// BlobData is everything decoded out of one PrimitiveBlock, plus the string
// table needed to resolve its tag indices — mirroring OsmBlobData.
type BlobData struct {
	StringTable []string
	Nodes       []Node
	Ways        []Way
	Relations   []Relation
}
