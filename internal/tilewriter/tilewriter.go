// Package tilewriter fans every incoming (zoom, object, geometry) triple
// out across the tile keys its bounding rectangle touches, clips it to each
// tile, and persists the per-tile collections as compressed pixel-space
// blobs. Grounded on osm/src/tile_writer/tile_writer.rs.
package tilewriter

import (
	"context"
	"sync"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/geomclip"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/worker"
)

// ClipWorkers is the size of the pool AddToTiles dispatches tile-clip work
// to (spec §5).
const ClipWorkers = 3

// chanBuffer bounds the records queued for FlushToCollections. Once the
// channel is full, AddToTiles appends straight into tile_db_map, so a send
// never blocks waiting for a drain.
const chanBuffer = 4096

// record is one accepted, already-clipped geometry awaiting collection.
type record struct {
	key      tilemath.Key
	object   mapgeom.Object
	geometry mapgeom.Geometry
}

// TileWriter accumulates clipped per-tile feature collections and persists
// them to a Store.
type TileWriter struct {
	mu            sync.Mutex
	tileDB        map[tilemath.Key]mapgeom.Collection
	tileKeysCache map[tilemath.Key]struct{}
	cacheCaptured bool

	ch   chan record
	pool *worker.Pool[clipTask, []record]
}

// New returns an empty TileWriter.
func New() *TileWriter {
	return &TileWriter{
		tileDB: make(map[tilemath.Key]mapgeom.Collection),
		ch:     make(chan record, chanBuffer),
		pool:   worker.New[clipTask, []record](worker.Config{Workers: ClipWorkers}),
	}
}

type clipTask struct {
	key      tilemath.Key
	object   mapgeom.Object
	geometry mapgeom.Geometry
	geomRect orb.Bound
}

// AddToTiles fans geom out across every tile key its bounding rectangle
// touches at zoom z, clipping it per tile and queuing the results for
// FlushToCollections. canCreateNewTiles=false restricts acceptance to tile
// keys already present in tile_db_map at the moment the first such call is
// made (the snapshot moment after every "creator" pass has run).
func (w *TileWriter) AddToTiles(ctx context.Context, z int32, obj mapgeom.Object, geom mapgeom.Geometry, canCreateNewTiles bool) {
	w.mu.Lock()
	if !canCreateNewTiles && !w.cacheCaptured {
		w.tileKeysCache = make(map[tilemath.Key]struct{}, len(w.tileDB))
		for k := range w.tileDB {
			w.tileKeysCache[k] = struct{}{}
		}
		w.cacheCaptured = true
	}
	w.mu.Unlock()

	geomRect := geom.Bound()
	ranges := tilemath.RangesForRect(z, geomRect)

	var tasks []clipTask
	for i := ranges.MinX; i <= ranges.MaxX; i++ {
		for j := ranges.MinY; j <= ranges.MaxY; j++ {
			key := tilemath.Key{X: i, Y: j, Z: z}
			if !w.acceptKey(key, z, canCreateNewTiles) {
				continue
			}
			tasks = append(tasks, clipTask{key: key, object: obj, geometry: geom, geomRect: geomRect})
		}
	}
	if len(tasks) == 0 {
		return
	}

	results := w.pool.Run(ctx, tasks, func(_ context.Context, t clipTask) ([]record, error) {
		tileRect := tilemath.TileRect(t.key, 1.01)
		clipped := clipGeometry(t.geometry, tileRect, t.geomRect)
		out := make([]record, len(clipped))
		for i, g := range clipped {
			out[i] = record{key: t.key, object: t.object, geometry: g}
		}
		return out, nil
	})

	for _, res := range results {
		for _, rec := range res.Value {
			select {
			case w.ch <- rec:
			default:
				w.mu.Lock()
				w.tileDB[rec.key] = append(w.tileDB[rec.key], mapgeom.Pair{Object: rec.object, Geometry: rec.geometry})
				w.mu.Unlock()
			}
		}
	}
}

// acceptKey is the accept-or-drop rule from spec §4.6: always accept when
// new tiles may be created, or at planet-tile zooms, or when the snapshot
// cache already knows this key.
func (w *TileWriter) acceptKey(key tilemath.Key, z int32, canCreateNewTiles bool) bool {
	if canCreateNewTiles || z >= tilemath.MinZoomForPlanetTiles {
		return true
	}
	w.mu.Lock()
	_, ok := w.tileKeysCache[key]
	w.mu.Unlock()
	return ok
}

// clipGeometry implements GeomClip.clip: the fast path when the tile fully
// contains the geometry, an empty result when the rectangles don't
// intersect, and Sutherland-Hodgman / line-clip otherwise.
func clipGeometry(geom mapgeom.Geometry, tileRect, geomRect orb.Bound) []mapgeom.Geometry {
	if geomclip.RectContains(tileRect, geomRect) {
		return []mapgeom.Geometry{geom}
	}
	if !geomclip.RectIntersects(tileRect, geomRect) {
		return nil
	}

	switch g := geom.(type) {
	case mapgeom.Line:
		segments := geomclip.ClipLine(orb.LineString(g), tileRect)
		out := make([]mapgeom.Geometry, len(segments))
		for i, s := range segments {
			out[i] = mapgeom.Line(s)
		}
		return out
	case mapgeom.Poly:
		poly := orb.Polygon(g)
		if len(poly) == 0 {
			return nil
		}
		ext, ok := geomclip.ClipPolygon(poly[0], tileRect)
		if !ok || len(ext) == 0 {
			return nil
		}
		clipped := orb.Polygon{ext}
		for _, hole := range poly[1:] {
			if clippedHole, ok := geomclip.ClipPolygon(hole, tileRect); ok && len(clippedHole) > 0 {
				clipped = append(clipped, clippedHole)
			}
		}
		return []mapgeom.Geometry{mapgeom.Poly(clipped)}
	case mapgeom.Point:
		return []mapgeom.Geometry{g}
	default:
		return nil
	}
}

// TileDB returns a snapshot copy of the accumulated per-tile collections,
// for inspection by callers outside this package (tests).
func (w *TileWriter) TileDB() map[tilemath.Key]mapgeom.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[tilemath.Key]mapgeom.Collection, len(w.tileDB))
	for k, v := range w.tileDB {
		out[k] = v
	}
	return out
}

// FlushToCollections closes the send side, drains every pending record into
// tile_db_map, and optionally reopens a fresh channel for further
// AddToTiles calls.
func (w *TileWriter) FlushToCollections(recreateChannel bool) {
	close(w.ch)
	for rec := range w.ch {
		w.mu.Lock()
		w.tileDB[rec.key] = append(w.tileDB[rec.key], mapgeom.Pair{Object: rec.object, Geometry: rec.geometry})
		w.mu.Unlock()
	}
	if recreateChannel {
		w.ch = make(chan record, chanBuffer)
	}
}
