// Package waystore accumulates road/rail way records, stitches them at
// shared endpoints into the longest runs a shared class/layer allows, and
// emits per-zoom simplified lines either as independent segments or as a
// topology-preserving cut graph. Grounded on osm/src/map/way_store.rs.
package waystore

import (
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/geomclip"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
)

// Item is one way as read from a PBF/shapefile pass, before stitching.
type Item struct {
	FID, LID int64
	WayID    int64
	Line     orb.LineString
	Info     mapgeom.WayInfo
}

// Emission is one line WayStore hands downstream for a given zoom.
type Emission struct {
	Zoom     int32
	Object   mapgeom.Object
	Geometry mapgeom.Geometry
}

// WayStore collects Items until ProcessWaysAsync drains them.
type WayStore struct {
	mu    sync.Mutex
	items []Item
}

// New returns an empty store.
func New() *WayStore {
	return &WayStore{}
}

// AddItem queues one way record.
func (s *WayStore) AddItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// ProcessWaysAsync launches the merge/filter/emit pipeline in a goroutine,
// closing out once every zoom level has been processed.
func (s *WayStore) ProcessWaysAsync(out chan<- Emission, preserveTopology bool) {
	s.mu.Lock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	go func() {
		defer close(out)
		merged := mergeAtSharedEndpoints(items)
		if preserveTopology {
			emitTopologyPreserving(out, merged)
		} else {
			emitIndependent(out, merged)
		}
	}()
}

// mergedWay is one stitched path: the concatenation of every Item chained
// together at shared endpoints of identical StitchKey.
type mergedWay struct {
	fID, lID int64
	wayID    int64
	info     mapgeom.WayInfo
	line     orb.LineString
}

// nodeKey is a stitch endpoint: a node id paired with the class/layer it
// must match, so a motorway and a footway sharing a node never merge.
type nodeKey struct {
	id   int64
	kind mapgeom.StitchKey
}

// mergeAtSharedEndpoints is Step 1. Footway is excluded from stitching and
// passed through as a one-item path (spec §4.5's excluded bucket).
func mergeAtSharedEndpoints(items []Item) []*mergedWay {
	paths := make(map[nodeKey]*mergedWay)
	var all []*mergedWay
	seen := make(map[*mergedWay]bool)

	for _, item := range items {
		if isExcludedFromStitching(item.Info.LineKind) {
			mw := &mergedWay{fID: item.FID, lID: item.LID, wayID: item.WayID, info: item.Info, line: item.Line}
			all = append(all, mw)
			seen[mw] = true
			continue
		}

		key := item.Info.StitchKey()
		fID, lID := item.FID, item.LID
		line := append(orb.LineString{}, item.Line...)

		for {
			if node, ok := paths[nodeKey{fID, key}]; ok {
				delete(paths, nodeKey{node.fID, key})
				delete(paths, nodeKey{node.lID, key})
				if node.fID == fID {
					line = spliceFront(reverseLine(node.line), line)
					fID = node.lID
				} else {
					line = spliceFront(node.line, line)
					fID = node.fID
				}
				continue
			}
			if node, ok := paths[nodeKey{lID, key}]; ok {
				delete(paths, nodeKey{node.fID, key})
				delete(paths, nodeKey{node.lID, key})
				if node.fID == lID {
					line = spliceBack(line, node.line)
					lID = node.lID
				} else {
					line = spliceBack(line, reverseLine(node.line))
					lID = node.fID
				}
				continue
			}
			break
		}

		mw := &mergedWay{fID: fID, lID: lID, wayID: item.WayID, info: item.Info, line: line}
		paths[nodeKey{fID, key}] = mw
		paths[nodeKey{lID, key}] = mw
	}

	for _, mw := range paths {
		if !seen[mw] {
			seen[mw] = true
			all = append(all, mw)
		}
	}
	return all
}

func isExcludedFromStitching(k mapgeom.LineKind) bool {
	return !k.IsRailway && k.Highway == mapgeom.HighwayFootway
}

// spliceFront prepends prefix to line, dropping prefix's last point since it
// duplicates line's first (the shared stitch vertex).
func spliceFront(prefix, line orb.LineString) orb.LineString {
	if len(prefix) == 0 {
		return line
	}
	out := make(orb.LineString, 0, len(prefix)-1+len(line))
	out = append(out, prefix[:len(prefix)-1]...)
	out = append(out, line...)
	return out
}

// spliceBack appends suffix to line, dropping line's last point since it
// duplicates suffix's first (the shared stitch vertex).
func spliceBack(line, suffix orb.LineString) orb.LineString {
	if len(line) == 0 {
		return suffix
	}
	out := make(orb.LineString, 0, len(line)-1+len(suffix))
	out = append(out, line[:len(line)-1]...)
	out = append(out, suffix...)
	return out
}

func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

// included is Step 2's per-zoom inclusion filter.
func included(z int32, kind mapgeom.LineKind) bool {
	if z == 0 {
		return true
	}
	if z == 1 {
		return kind.IsRailway || kind.Highway != mapgeom.HighwayFootway
	}
	if kind.IsRailway {
		return z < 4
	}
	if z >= 13 {
		return false
	}

	rank := kind.RenderRank()
	switch {
	case z <= 4:
		return rank >= 12
	case z <= 5:
		return rank >= 13
	case z <= 6:
		return rank >= 14
	case z <= 8:
		return rank >= 15
	default:
		return rank >= 16
	}
}

func emitIndependent(out chan<- Emission, merged []*mergedWay) {
	for z := int32(0); z < tilemath.ZoomLevels; z++ {
		zf := float64(z)
		for _, mw := range merged {
			if !included(z, mw.info.LineKind) {
				continue
			}
			emitOne(out, z, mw.wayID, mw.info, simplifyForZoom(mw.line, zf))
		}
	}
}

func simplifyForZoom(line orb.LineString, zf float64) orb.LineString {
	if len(line) <= 2 {
		return line
	}
	return geomclip.SimplifyVW(line, 8e-6*zf*zf)
}

func emitOne(out chan<- Emission, z int32, wayID int64, info mapgeom.WayInfo, line orb.LineString) {
	out <- Emission{
		Zoom: z,
		Object: mapgeom.Object{
			ID:   wayID,
			Kind: mapgeom.ObjectKind{Tag: mapgeom.KindWay, Way: info},
		},
		Geometry: mapgeom.Line(line),
	}
}

// coordKey collapses floating-point near-duplicates by scaling to 1e12 and
// truncating, per spec §4.5.
type coordKey struct{ x, y int64 }

func keyOf(p orb.Point) coordKey {
	return coordKey{int64(p[0] * 1e12), int64(p[1] * 1e12)}
}

func lineLength(line orb.LineString) float64 {
	var total float64
	for i := 0; i+1 < len(line); i++ {
		dx := line[i+1][0] - line[i][0]
		dy := line[i+1][1] - line[i][1]
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// emitTopologyPreserving is Step 3's preserve_topology=true branch: z=0
// emits every merged way whole (everything is included there); z in
// [1, ZoomLevels) cuts each way at vertices shared with others still
// present at that zoom, dropping ways the per-zoom filter excludes and
// keeping the endpoint/vertex counters consistent for later zooms.
func emitTopologyPreserving(out chan<- Emission, merged []*mergedWay) {
	for _, mw := range merged {
		emitOne(out, 0, mw.wayID, mw.info, simplifyForZoom(mw.line, 0))
	}

	endpointCount := make(map[coordKey]int)
	vertexCount := make(map[coordKey]int)
	for _, mw := range merged {
		addCounts(endpointCount, vertexCount, mw.line, 1)
	}

	filtered := make(map[*mergedWay]bool)

	for z := int32(1); z < tilemath.ZoomLevels; z++ {
		zf := float64(z)
		for _, mw := range merged {
			if filtered[mw] {
				continue
			}
			if !included(z, mw.info.LineKind) {
				filtered[mw] = true
				addCounts(endpointCount, vertexCount, mw.line, -1)
				continue
			}
			emitCutWay(out, z, zf, mw, endpointCount, vertexCount)
		}
	}
}

func addCounts(endpointCount, vertexCount map[coordKey]int, line orb.LineString, delta int) {
	if len(line) == 0 {
		return
	}
	endpointCount[keyOf(line[0])] += delta
	endpointCount[keyOf(line[len(line)-1])] += delta
	for _, p := range line {
		vertexCount[keyOf(p)] += delta
	}
}

func emitCutWay(out chan<- Emission, z int32, zf float64, mw *mergedWay, endpointCount, vertexCount map[coordKey]int) {
	line := mw.line
	fConnected := vertexCount[keyOf(line[0])] > 1
	lConnected := vertexCount[keyOf(line[len(line)-1])] > 1
	if !fConnected && !lConnected {
		emitOne(out, z, mw.wayID, mw.info, simplifyForZoom(line, zf))
		return
	}

	var buffer orb.LineString
	cutCount := 0
	for i, p := range line {
		buffer = append(buffer, p)
		if i == 0 {
			continue
		}
		if endpointCount[keyOf(p)] > 0 && len(buffer) >= 2 && i != len(line)-1 {
			emitOne(out, z, mw.wayID, mw.info, simplifyForZoom(buffer, zf))
			cutCount++
			buffer = orb.LineString{p}
		}
	}

	if len(buffer) < 2 {
		return
	}
	if shouldDropTail(cutCount, endpointCount, line, buffer) {
		return
	}
	emitOne(out, z, mw.wayID, mw.info, simplifyForZoom(buffer, zf))
}

// shouldDropTail implements the final-tail drop rule: only the very first
// cut segment of an otherwise uncut, unconnected, short way is discarded —
// these are filtering leftovers, not real road fragments.
func shouldDropTail(cutCount int, endpointCount map[coordKey]int, fullLine, tail orb.LineString) bool {
	if cutCount != 0 {
		return false
	}
	fConnected := endpointCount[keyOf(fullLine[0])] > 0
	lConnected := endpointCount[keyOf(fullLine[len(fullLine)-1])] > 0
	if fConnected || lConnected {
		return false
	}
	return lineLength(fullLine) <= 2.5e-3
}
