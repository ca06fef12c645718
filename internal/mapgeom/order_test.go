package mapgeom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerKindOrdering_BridgeBeatsTunnelRegardlessOfLayer(t *testing.T) {
	// Reproduces the documented "Bridge > None > Tunnel" ordering, preserved
	// bit-for-bit even though it reads as contradicting the source comment
	// that bridges take priority over tunnels with a higher layer value.
	assert.Less(t, int(LayerTunnel), int(LayerNone))
	assert.Less(t, int(LayerNone), int(LayerBridge))

	bridgeLowLayer := WayInfo{LayerKind: LayerBridge, Layer: 0}
	tunnelHighLayer := WayInfo{LayerKind: LayerTunnel, Layer: 5}
	assert.True(t, tunnelHighLayer.Less(bridgeLowLayer))
}

func TestWayInfoOrdering_RenderRankTiebreak(t *testing.T) {
	motorway := WayInfo{LayerKind: LayerNone, Layer: 0, LineKind: LineKind{Highway: HighwayMotorway}}
	footway := WayInfo{LayerKind: LayerNone, Layer: 0, LineKind: LineKind{Highway: HighwayFootway}}
	assert.True(t, footway.Less(motorway))
}

func TestObjectKindOrdering_TopLevel(t *testing.T) {
	nature := ObjectKind{Tag: KindNature, Nature: NatureForest}
	way := ObjectKind{Tag: KindWay}
	poi := ObjectKind{Tag: KindPoi}
	assert.True(t, nature.Less(way))
	assert.True(t, way.Less(poi))
}

func TestSortForPersistence(t *testing.T) {
	c := Collection{
		{Object: Object{ID: 1, Kind: ObjectKind{Tag: KindPoi}}},
		{Object: Object{ID: 2, Kind: ObjectKind{Tag: KindNature}}},
		{Object: Object{ID: 3, Kind: ObjectKind{Tag: KindWay}}},
	}
	SortForPersistence(c)
	assert.True(t, IsSortedForPersistence(c))
	assert.Equal(t, int64(2), c[0].Object.ID)
	assert.Equal(t, int64(3), c[1].Object.ID)
	assert.Equal(t, int64(1), c[2].Object.ID)
}

func TestPointInfoOrdering(t *testing.T) {
	popLow := PointInfo{Kind: PoiPopArea, PopLevel: 0, Population: 100}
	popHigh := PointInfo{Kind: PoiPopArea, PopLevel: 1, Population: 1}
	traffic := PointInfo{Kind: PoiTrafficLight}
	assert.True(t, popLow.Less(popHigh))
	assert.True(t, popHigh.Less(traffic))
}
