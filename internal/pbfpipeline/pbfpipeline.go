// Package pbfpipeline orchestrates one PBF extract run: pre-scanning
// relation-referenced way ids, decoding node/way/relation blobs, dispatching
// each tagged feature to PolygonStore, WayStore, or directly to TileWriter
// via Processor, then draining the merge/filter cascades into the tile
// store. Grounded on osm_tool/src/pbf_processor.rs's PbfProcessor.
package pbfpipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/pbfreader"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/polygonstore"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/shapepipeline"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tileprocessor"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilewriter"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/waystore"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/worker"
)

// wayPassWorkers/relationPassWorkers match reader/mod.rs's own
// threadpool::ThreadPool::new(6) (spec §5).
const wayPassWorkers = 6
const relationPassWorkers = 6

// Config mirrors the extract config JSON's pipeline-relevant fields.
type Config struct {
	MergePolygons        bool
	PreserveRoadTopology bool
}

// Pipeline holds the accumulators shared across every input file in one
// extract run.
type Pipeline struct {
	cfg    Config
	Writer *tilewriter.TileWriter
	proc   *tileprocessor.Processor
	ways   *waystore.WayStore
	polys  *polygonstore.PolygonStore
}

// New returns a pipeline with fresh, empty accumulators.
func New(cfg Config) *Pipeline {
	w := tilewriter.New()
	return &Pipeline{
		cfg:    cfg,
		Writer: w,
		proc:   tileprocessor.New(w),
		ways:   waystore.New(),
		polys:  polygonstore.New(),
	}
}

// ProcessFile runs steps 1-7 of the orchestrator over one PBF file: pre-scan,
// blob decode, then node/way/relation passes. It does not drain the
// PolygonStore/WayStore cascades or save to disk; call Finish once every
// input file has been processed.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, boundary orb.Bound) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pbf file %s: %w", path, err)
	}
	defer f.Close()

	reader := pbfreader.NewReader(f, boundary)

	usedWayIDs, err := reader.ExtractWayIDsFromRelations(pbfreader.RelationTags)
	if err != nil {
		return fmt.Errorf("pre-scan relation way ids: %w", err)
	}

	nodeBlobs, wayBlobs, relBlobs, err := reader.Data(ctx)
	if err != nil {
		return fmt.Errorf("decode pbf blobs: %w", err)
	}

	nodes := make(map[int64]orb.Point)
	for _, blob := range nodeBlobs {
		p.readNodes(ctx, blob, nodes)
	}

	wayRefs := make(map[int64][]int64)
	for _, blob := range wayBlobs {
		for _, w := range blob.Ways {
			if _, used := usedWayIDs[w.ID]; used {
				wayRefs[w.ID] = w.Refs
			}
		}
	}

	wayPool := worker.New[*pbfreader.BlobData, struct{}](worker.Config{Workers: wayPassWorkers})
	wayPool.Run(ctx, wayBlobs, func(ctx context.Context, blob *pbfreader.BlobData) (struct{}, error) {
		p.readWays(ctx, blob, nodes)
		return struct{}{}, nil
	})

	relPool := worker.New[*pbfreader.BlobData, struct{}](worker.Config{Workers: relationPassWorkers})
	relPool.Run(ctx, relBlobs, func(ctx context.Context, blob *pbfreader.BlobData) (struct{}, error) {
		p.readRelations(ctx, blob, wayRefs, nodes)
		return struct{}{}, nil
	})

	return nil
}

// Finish drains PolygonStore/WayStore's async cascades into the writer and
// persists every tile to dir (step 8-9 of the orchestrator).
func (p *Pipeline) Finish(ctx context.Context, dir string, showProgress bool) error {
	polyOut := make(chan polygonstore.Emission)
	wayOut := make(chan waystore.Emission)

	p.polys.ProcessForestsAsync(polyOut, p.cfg.MergePolygons, tileprocessor.PolygonMergeZoomLevel)
	p.ways.ProcessWaysAsync(wayOut, p.cfg.PreserveRoadTopology)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for e := range polyOut {
			p.Writer.AddToTiles(ctx, e.Zoom, e.Object, e.Geometry, true)
		}
	}()
	go func() {
		defer wg.Done()
		for e := range wayOut {
			p.Writer.AddToTiles(ctx, e.Zoom, e.Object, e.Geometry, true)
		}
	}()
	wg.Wait()

	return p.Writer.SaveToFile(dir, showProgress)
}

// PrepareForPlanetData flushes the PBF-derived tiles and arranges for the
// next add_to_tiles call with can_create_new_tiles=false to capture today's
// tile keys as the snapshot cache, so that subsequent shapefile-sourced
// data can only enrich tiles the PBF pass already created (spec §4.9).
func (p *Pipeline) PrepareForPlanetData() {
	p.Writer.FlushToCollections(true)
}

// ExtractPlanetData feeds land polygons, admin boundary lines, and
// country/city population centers from shapeCfg through the same Processor
// every PBF-derived feature uses. Call PrepareForPlanetData first. Grounded
// on shape_processor.rs's ShapeProcessor::extract_planet_data.
func (p *Pipeline) ExtractPlanetData(ctx context.Context, shapeCfg shapepipeline.Config, worldBoundary orb.Bound, logger *slog.Logger) error {
	return shapepipeline.ExtractPlanetData(ctx, shapeCfg, p.proc, worldBoundary, logger)
}

func (p *Pipeline) readNodes(ctx context.Context, blob *pbfreader.BlobData, nodes map[int64]orb.Point) {
	poiFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.POITags)
	nameFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.NameTags)
	trainFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.TrainTag)

	for _, n := range blob.Nodes {
		nodes[n.ID] = n.Coord

		k, v, ok := poiFilter.Filter(blob.StringTable, n.Tags)
		if !ok {
			continue
		}

		var nameEn, name string
		for _, kv := range nameFilter.FilterAll(blob.StringTable, n.Tags) {
			switch kv.Key {
			case "name:en":
				nameEn = kv.Value
			case "name":
				name = kv.Value
			}
		}
		text := nameEn
		if text == "" {
			text = name
		}

		info := mapgeom.PointInfo{Text: text}
		switch {
		case k == "highway" && v == "traffic_signals":
			info.Kind = mapgeom.PoiTrafficLight
		case k == "amenity" && v == "toilets":
			info.Kind = mapgeom.PoiToilet
		case k == "amenity" && v == "parking":
			info.Kind = mapgeom.PoiParking
		case k == "railway" && v == "station":
			info.Kind = mapgeom.PoiTrainStation
			_, _, isTrain := trainFilter.Filter(blob.StringTable, n.Tags)
			info.IsTrainStop = isTrain
		default:
			continue
		}

		obj := mapgeom.Object{ID: n.ID, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindPoi, Poi: info}}
		p.proc.AddToTiles(ctx, obj, mapgeom.Point(n.Coord))
	}
}

func (p *Pipeline) readWays(ctx context.Context, blob *pbfreader.BlobData, nodes map[int64]orb.Point) {
	wayFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.WayTags)
	roadFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.RoadTags)
	buildingFilter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.BuildingTags)

	for _, w := range blob.Ways {
		k, v, ok := wayFilter.Filter(blob.StringTable, w.Tags)
		if !ok {
			continue
		}

		if k == "railway" || k == "highway" {
			line, firstID, lastID := w.AsLine(nodes)
			if len(line) == 0 {
				continue
			}
			p.ways.AddItem(waystore.Item{
				FID:   firstID,
				LID:   lastID,
				WayID: w.ID,
				Line:  line,
				Info:  buildWayInfo(blob, w, v, roadFilter),
			})
			continue
		}

		poly := w.AsPolygon(nodes)
		if len(poly) == 0 || len(poly[0]) == 0 {
			continue
		}

		var levels uint16
		if k == "building" {
			for _, kv := range buildingFilter.FilterAll(blob.StringTable, w.Tags) {
				if kv.Key == "building:levels" {
					if n, err := strconv.ParseUint(kv.Value, 10, 16); err == nil {
						levels = uint16(n)
					}
				}
			}
		}

		kind := mapgeom.ObjectKindFromTag(k, v, levels)
		obj := mapgeom.Object{ID: w.ID, Kind: kind}
		geom := mapgeom.Poly(poly)

		if kind.Tag == mapgeom.KindNature && kind.Nature == mapgeom.NatureForest {
			p.polys.AddPolygon(orb.Polygon{poly[0]})
		}
		p.proc.AddToTiles(ctx, obj, geom)
	}
}

func buildWayInfo(blob *pbfreader.BlobData, w pbfreader.Way, v string, roadFilter *pbfreader.TagFilter) mapgeom.WayInfo {
	var layer int64
	layerKind := mapgeom.LayerNone
	var nameEn, name string

	for _, kv := range roadFilter.FilterAll(blob.StringTable, w.Tags) {
		switch kv.Key {
		case "layer":
			if n, err := strconv.ParseInt(kv.Value, 10, 32); err == nil {
				layer = n
			}
		case "tunnel":
			layerKind = mapgeom.LayerTunnel
		case "bridge":
			layerKind = mapgeom.LayerBridge
		case "name:en":
			nameEn = kv.Value
		case "name":
			name = kv.Value
		}
	}
	// A layer value with no tunnel/bridge tag is invalid per the OSM wiki;
	// ignore it (pbf_processor.rs's read_ways does the same).
	if layerKind == mapgeom.LayerNone {
		layer = 0
	}

	lineKind := mapgeom.LineKind{}
	if v == "rail" {
		lineKind.IsRailway = true
		lineKind.Railway = mapgeom.RailwayRail
	} else {
		lineKind.Highway, _ = mapgeom.HighwayFromTagValue(v)
	}

	displayName := nameEn
	if displayName == "" {
		displayName = name
	}

	return mapgeom.WayInfo{LineKind: lineKind, Layer: int32(layer), LayerKind: layerKind, NameEn: displayName}
}

func (p *Pipeline) readRelations(ctx context.Context, blob *pbfreader.BlobData, wayRefs map[int64][]int64, nodes map[int64]orb.Point) {
	filter := pbfreader.NewTagFilter(blob.StringTable, pbfreader.RelationTags)

	for _, rel := range blob.Relations {
		k, v, ok := filter.Filter(blob.StringTable, rel.Tags)
		if !ok {
			continue
		}

		var outer, inner [][]int64
		for _, m := range rel.Ways {
			refs, ok := wayRefs[m.WayID]
			if !ok || len(refs) == 0 {
				continue
			}
			role := ""
			if int(m.Role) < len(blob.StringTable) {
				role = blob.StringTable[m.Role]
			}
			switch role {
			case "outer":
				outer = append(outer, refs)
			case "inner":
				inner = append(inner, refs)
			}
		}
		if len(outer) == 0 {
			continue
		}

		rings := mergeChains(outer)
		var polygons []orb.Polygon
		for _, ring := range rings {
			coords, ok := resolveCoords(ring, nodes)
			if !ok {
				continue
			}
			polygons = append(polygons, orb.Polygon{orb.Ring(coords)})
		}

		for _, line := range inner {
			if len(line) == 0 {
				continue
			}
			first, ok := nodes[line[0]]
			if !ok {
				continue
			}
			for i := range polygons {
				if planar.PolygonContains(polygons[i], first) {
					coords, ok := resolveCoords(line, nodes)
					if ok {
						polygons[i] = append(polygons[i], orb.Ring(coords))
					}
					break
				}
			}
		}

		kind := mapgeom.ObjectKindFromTag(k, v, 0)
		for _, poly := range polygons {
			obj := mapgeom.Object{ID: rel.ID, Kind: kind}
			geom := mapgeom.Poly(poly)
			if kind.Tag == mapgeom.KindNature && kind.Nature == mapgeom.NatureForest {
				p.polys.AddPolygon(orb.Polygon{poly[0]})
			}
			p.proc.AddToTiles(ctx, obj, geom)
		}
	}
}

// mergeChains stitches node-id chains at shared endpoints, exactly as
// read_relations's inline hash-map merge does, producing closed outer rings
// out of however many way segments a multipolygon relation split them into.
func mergeChains(chains [][]int64) [][]int64 {
	hm := make(map[int64][]int64)
	for _, original := range chains {
		if len(original) == 0 {
			continue
		}
		way := append([]int64(nil), original...)
		key1, key2 := way[0], way[len(way)-1]

		for {
			if w, ok := hm[key1]; ok {
				delete(hm, key1)
				way = append(append([]int64(nil), w...), way...)
				key1, key2 = way[0], way[len(way)-1]
				continue
			}
			if w, ok := hm[key2]; ok {
				delete(hm, key2)
				way = append(append([]int64(nil), w...), reverseInt64(way)...)
				key1, key2 = way[0], way[len(way)-1]
				continue
			}
			break
		}
		hm[key2] = way
	}

	out := make([][]int64, 0, len(hm))
	for _, w := range hm {
		out = append(out, w)
	}
	return out
}

func reverseInt64(s []int64) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func resolveCoords(ids []int64, nodes map[int64]orb.Point) ([]orb.Point, bool) {
	out := make([]orb.Point, 0, len(ids))
	for _, id := range ids {
		p, ok := nodes[id]
		if !ok {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}
