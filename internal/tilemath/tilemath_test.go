package tilemath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldRect_Dimensions(t *testing.T) {
	r := WorldRect()
	assert.InDelta(t, 360, r.Max[0]-r.Min[0], 1e-9)
	assert.InDelta(t, 164, r.Max[1]-r.Min[1], 1e-9)
}

func TestTilesAtZoom(t *testing.T) {
	assert.EqualValues(t, 32768, TilesAtZoom(0))
	assert.EqualValues(t, 1, TilesAtZoom(15))
	assert.EqualValues(t, 1, TilesAtZoom(20))
}

func TestTileRect_CenterTileAtZoomZero(t *testing.T) {
	rect := TileRect(Key{X: 16384, Y: 16384, Z: 0}, 1.0)
	assert.InDelta(t, 0.0, rect.Min[0], 1e-6)
	assert.InDelta(t, 360.0/32768.0, rect.Max[0]-rect.Min[0], 1e-9)
}

func TestRangesForRect_ClampsToValidRange(t *testing.T) {
	world := WorldRect()
	ranges := RangesForRect(0, world)
	assert.EqualValues(t, 0, ranges.MinX)
	assert.EqualValues(t, TilesCount-1, ranges.MaxX)
	assert.EqualValues(t, 0, ranges.MinY)
	assert.EqualValues(t, TilesCount-1, ranges.MaxY)
}
