package mapgeom

import "sort"

// Less implements the painter-order total order over ObjectKind (spec §4.7):
// Nature < Building < Way < Route < AdminLine < Poi at the top level; within
// Way, WayInfo.Less breaks ties; within Poi, PointInfo.Less breaks ties.
func (k ObjectKind) Less(o ObjectKind) bool {
	if k.Tag != o.Tag {
		return k.Tag < o.Tag
	}
	switch k.Tag {
	case KindNature:
		return k.Nature < o.Nature
	case KindBuilding:
		return k.Building.Levels < o.Building.Levels
	case KindWay:
		return k.Way.Less(o.Way)
	case KindPoi:
		return k.Poi.Less(o.Poi)
	default:
		return false
	}
}

// Less orders two Objects by Kind only — object identity never participates
// in painter order.
func (o Object) Less(other Object) bool { return o.Kind.Less(other.Kind) }

// SortForPersistence sorts a Collection in place by Object total order, the
// step TileWriter.save_to_file performs before serializing each tile (spec
// §4.6, testable property 5).
func SortForPersistence(c Collection) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Object.Less(c[j].Object)
	})
}

// IsSortedForPersistence reports whether c already satisfies painter order;
// used by tests and by the round-trip invariant (spec §8 property 5).
func IsSortedForPersistence(c Collection) bool {
	return sort.SliceIsSorted(c, func(i, j int) bool {
		return c[i].Object.Less(c[j].Object)
	})
}
