package tilewriter

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/errs"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilestore"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/worker"
)

// SaveWorkers is the size of the pool save_to_file uses to serialize and
// compress tiles concurrently (spec §5).
const SaveWorkers = 2

// persistedPoint/persistedGeometry/persistedPair/persistedCollection are the
// on-disk shape of one tile: f32 pixel offsets relative to the tile's
// top-left at mercator zoom 22, gob-encoded (no tile-geometry serialization
// library was found anywhere in the retrieved corpus — see DESIGN.md — so
// this mirrors RoadGraph's own stdlib gob exception) then gzip-compressed
// at BestSpeed, matching the teacher's mbtiles writer.
type persistedPoint struct{ X, Y float32 }

type persistedGeometry struct {
	Kind  uint8 // 0=line, 1=poly, 2=point
	Line  []persistedPoint
	Rings [][]persistedPoint
	Point persistedPoint
}

type persistedPair struct {
	Object   mapgeom.Object
	Geometry persistedGeometry
}

type persistedCollection struct {
	Pairs []persistedPair
}

// SaveToFile flushes any pending records, then serializes and persists
// every tile's collection into dir, reporting percent progress to stderr.
func (w *TileWriter) SaveToFile(dir string, showProgress bool) error {
	w.FlushToCollections(false)

	store, err := tilestore.Open(dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	type keyedCollection struct {
		key  tilemath.Key
		pair mapgeom.Collection
	}
	pending := make([]keyedCollection, 0, len(w.tileDB))
	for k, c := range w.tileDB {
		mapgeom.SortForPersistence(c)
		pending = append(pending, keyedCollection{key: k, pair: c})
	}
	w.mu.Unlock()

	progress := worker.NewProgress(len(pending), showProgress)
	pool := worker.New[keyedCollection, tilestore.Row](worker.Config{Workers: SaveWorkers, OnProgress: progress.Callback()})

	results := pool.Run(context.Background(), pending, func(_ context.Context, kc keyedCollection) (tilestore.Row, error) {
		origin := tilemath.MercatorSubpixelAtLevel22(tilemath.TileRect(kc.key, 1.0).Min)
		blob, err := serializeAndCompress(kc.pair, origin)
		if err != nil {
			return tilestore.Row{}, err
		}
		return tilestore.Row{X: kc.key.X, Y: kc.key.Y, Z: kc.key.Z, Data: blob}, nil
	})
	progress.Done()

	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
		if err := store.Insert(res.Value); err != nil {
			return err
		}
	}

	return store.Close()
}

func serializeAndCompress(c mapgeom.Collection, origin orb.Point) ([]byte, error) {
	pc := persistedCollection{Pairs: make([]persistedPair, len(c))}
	for i, pair := range c {
		pc.Pairs[i] = persistedPair{Object: pair.Object, Geometry: toPersistedGeometry(pair.Geometry, origin)}
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(pc); err != nil {
		return nil, fmt.Errorf("%w: tile collection: %v", errs.ErrSerialize, err)
	}

	var compressed bytes.Buffer
	gz, err := gzip.NewWriterLevel(&compressed, gzip.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("%w: open gzip writer: %v", errs.ErrSerialize, err)
	}
	if _, err := gz.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: compress tile collection: %v", errs.ErrSerialize, err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize gzip: %v", errs.ErrSerialize, err)
	}
	return compressed.Bytes(), nil
}

func toPersistedPoint(p orb.Point, origin orb.Point) persistedPoint {
	proj := tilemath.MercatorSubpixelAtLevel22(p)
	return persistedPoint{X: float32(proj[0] - origin[0]), Y: float32(proj[1] - origin[1])}
}

func toPersistedGeometry(g mapgeom.Geometry, origin orb.Point) persistedGeometry {
	switch v := g.(type) {
	case mapgeom.Line:
		line := make([]persistedPoint, len(v))
		for i, p := range v {
			line[i] = toPersistedPoint(p, origin)
		}
		return persistedGeometry{Kind: 0, Line: line}
	case mapgeom.Poly:
		rings := make([][]persistedPoint, len(v))
		for i, ring := range v {
			pts := make([]persistedPoint, len(ring))
			for j, p := range ring {
				pts[j] = toPersistedPoint(p, origin)
			}
			rings[i] = pts
		}
		return persistedGeometry{Kind: 1, Rings: rings}
	case mapgeom.Point:
		return persistedGeometry{Kind: 2, Point: toPersistedPoint(orb.Point(v), origin)}
	default:
		return persistedGeometry{}
	}
}
