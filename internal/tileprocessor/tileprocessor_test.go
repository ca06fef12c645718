package tileprocessor

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilewriter"
)

func TestAddToBuildings_EmitsAtZoomZeroAndOneOnly(t *testing.T) {
	w := tilewriter.New()
	p := New(w)
	obj := mapgeom.Object{ID: 1, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindBuilding}}
	square := mapgeom.Poly(orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}})

	p.AddToTiles(context.Background(), obj, square)
	w.FlushToCollections(false)

	require.NotEmpty(t, w.TileDB())
	for k := range w.TileDB() {
		assert.LessOrEqual(t, k.Z, int32(1))
	}
}

func TestAddToPOI_TrafficLightOnlyAtZoomZero(t *testing.T) {
	w := tilewriter.New()
	p := New(w)
	obj := mapgeom.Object{ID: 2, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindPoi, Poi: mapgeom.PointInfo{Kind: mapgeom.PoiTrafficLight}}}
	pt := mapgeom.Point(orb.Point{0, 0})

	p.AddToTiles(context.Background(), obj, pt)
	w.FlushToCollections(false)

	for k := range w.TileDB() {
		assert.Equal(t, int32(0), k.Z)
	}
}

func TestAddToPOI_PopAreaLevelZeroOnlyBetweenZoomFiveAndTwelve(t *testing.T) {
	w := tilewriter.New()
	p := New(w)
	obj := mapgeom.Object{ID: 3, Kind: mapgeom.ObjectKind{Tag: mapgeom.KindPoi, Poi: mapgeom.PointInfo{Kind: mapgeom.PoiPopArea, PopLevel: 0}}}
	pt := mapgeom.Point(orb.Point{0, 0})

	p.AddToTiles(context.Background(), obj, pt)
	w.FlushToCollections(false)

	for k := range w.TileDB() {
		assert.True(t, k.Z >= 5 && k.Z <= 12)
	}
}

func TestSimplifyForNature_DropsPolygonBelowAreaFloor(t *testing.T) {
	tiny := orb.Polygon{{{0, 0}, {0, 1e-4}, {1e-4, 1e-4}, {1e-4, 0}, {0, 0}}}
	obj := mapgeom.Object{Kind: mapgeom.ObjectKind{Tag: mapgeom.KindNature, Nature: mapgeom.NatureForest}}
	_, ok := simplifyForNature(obj, mapgeom.Poly(tiny), 10)
	assert.False(t, ok)
}

func TestUnsignedArea_MatchesShoelaceForUnitSquare(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	require.InDelta(t, 1.0, unsignedArea(square), 1e-9)
}
