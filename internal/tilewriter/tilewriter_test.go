package tilewriter

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
)

func poiObject(id int64) mapgeom.Object {
	return mapgeom.Object{ID: id, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindPoi}}
}

func TestAddToTiles_CreatesNewTileKeyWhenAllowed(t *testing.T) {
	w := New()
	pt := mapgeom.Point(orb.Point{0, 0})

	w.AddToTiles(context.Background(), 5, poiObject(1), pt, true)
	w.FlushToCollections(false)

	w.mu.Lock()
	defer w.mu.Unlock()
	require.NotEmpty(t, w.tileDB)
}

func TestAddToTiles_RejectsNewTileBelowPlanetZoomWhenCreationDisabled(t *testing.T) {
	w := New()
	pt := mapgeom.Point(orb.Point{0, 0})

	// z=5 < MinZoomForPlanetTiles(10); canCreateNewTiles=false and an empty
	// cache (no prior creator pass) means no key can be accepted.
	w.AddToTiles(context.Background(), 5, poiObject(1), pt, false)
	w.FlushToCollections(false)

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.tileDB)
}

func TestAddToTiles_AcceptsExistingKeyFromSnapshotCache(t *testing.T) {
	w := New()
	pt := mapgeom.Point(orb.Point{0, 0})

	// First, create the tile at z=5 while creation is allowed.
	w.AddToTiles(context.Background(), 5, poiObject(1), pt, true)
	w.FlushToCollections(true)

	// Second object at the same location, creation disabled: the snapshot
	// cache (captured on this very call) already contains the key, so it's
	// accepted.
	w.AddToTiles(context.Background(), 5, poiObject(2), pt, false)
	w.FlushToCollections(false)

	w.mu.Lock()
	defer w.mu.Unlock()
	var total int
	for _, c := range w.tileDB {
		total += len(c)
	}
	assert.Equal(t, 2, total)
}

func TestClipGeometry_ContainingTileReturnsUnchanged(t *testing.T) {
	line := mapgeom.Line(orb.LineString{{0, 0}, {1, 1}})
	tileRect := orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}
	out := clipGeometry(line, tileRect, line.Bound())
	require.Len(t, out, 1)
	assert.Equal(t, line, out[0])
}

func TestClipGeometry_NonIntersectingReturnsEmpty(t *testing.T) {
	line := mapgeom.Line(orb.LineString{{0, 0}, {1, 1}})
	tileRect := orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{6, 6}}
	out := clipGeometry(line, tileRect, line.Bound())
	assert.Empty(t, out)
}

func TestAcceptKey_AlwaysAcceptsAtPlanetZoom(t *testing.T) {
	w := New()
	key := tilemath.Key{X: 0, Y: 0, Z: tilemath.MinZoomForPlanetTiles}
	assert.True(t, w.acceptKey(key, tilemath.MinZoomForPlanetTiles, false))
}
