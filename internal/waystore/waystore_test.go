package waystore

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
)

func primaryInfo() mapgeom.WayInfo {
	return mapgeom.WayInfo{LineKind: mapgeom.LineKind{Highway: mapgeom.HighwayPrimary}}
}

func footwayInfo() mapgeom.WayInfo {
	return mapgeom.WayInfo{LineKind: mapgeom.LineKind{Highway: mapgeom.HighwayFootway}}
}

func TestMergeAtSharedEndpoints_StitchesTwoWaysAtSharedNode(t *testing.T) {
	items := []Item{
		{FID: 1, LID: 2, WayID: 10, Info: primaryInfo(), Line: orb.LineString{{0, 0}, {1, 0}}},
		{FID: 2, LID: 3, WayID: 11, Info: primaryInfo(), Line: orb.LineString{{1, 0}, {2, 0}}},
	}

	merged := mergeAtSharedEndpoints(items)
	require.Len(t, merged, 1)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, merged[0].line)
	assert.Equal(t, int64(1), merged[0].fID)
	assert.Equal(t, int64(3), merged[0].lID)
}

func TestMergeAtSharedEndpoints_DifferentClassesNeverStitch(t *testing.T) {
	items := []Item{
		{FID: 1, LID: 2, WayID: 10, Info: primaryInfo(), Line: orb.LineString{{0, 0}, {1, 0}}},
		{FID: 2, LID: 3, WayID: 11, Info: mapgeom.WayInfo{LineKind: mapgeom.LineKind{Highway: mapgeom.HighwaySecondary}}, Line: orb.LineString{{1, 0}, {2, 0}}},
	}

	merged := mergeAtSharedEndpoints(items)
	assert.Len(t, merged, 2)
}

func TestMergeAtSharedEndpoints_FootwayNeverStitches(t *testing.T) {
	items := []Item{
		{FID: 1, LID: 2, WayID: 10, Info: footwayInfo(), Line: orb.LineString{{0, 0}, {1, 0}}},
		{FID: 2, LID: 3, WayID: 11, Info: footwayInfo(), Line: orb.LineString{{1, 0}, {2, 0}}},
	}

	merged := mergeAtSharedEndpoints(items)
	assert.Len(t, merged, 2)
}

func TestIncluded_ZoomZeroAlwaysIncludesEverything(t *testing.T) {
	assert.True(t, included(0, mapgeom.LineKind{Highway: mapgeom.HighwayFootway}))
	assert.True(t, included(0, mapgeom.LineKind{Highway: mapgeom.HighwayService}))
}

func TestIncluded_ZoomOneExcludesOnlyFootway(t *testing.T) {
	assert.False(t, included(1, mapgeom.LineKind{Highway: mapgeom.HighwayFootway}))
	assert.True(t, included(1, mapgeom.LineKind{Highway: mapgeom.HighwayService}))
}

func TestIncluded_RailwayIncludedBelowZoomFour(t *testing.T) {
	rail := mapgeom.LineKind{IsRailway: true, Railway: mapgeom.RailwayRail}
	assert.True(t, included(3, rail))
	assert.False(t, included(4, rail))
}

func TestIncluded_ZoomThirteenAndAboveExcludesEverything(t *testing.T) {
	assert.False(t, included(13, mapgeom.LineKind{Highway: mapgeom.HighwayMotorway}))
}

func TestIncluded_RankStaircaseAtZoomFive(t *testing.T) {
	assert.True(t, included(5, mapgeom.LineKind{Highway: mapgeom.HighwayPrimary}))    // rank 14 >= 13
	assert.True(t, included(5, mapgeom.LineKind{Highway: mapgeom.HighwaySecondary})) // rank 13 >= 13
	assert.False(t, included(5, mapgeom.LineKind{Highway: mapgeom.HighwayTertiary})) // rank 12 < 13
}

func TestEmitIndependent_EmitsOneLinePerIncludedZoom(t *testing.T) {
	s := New()
	s.AddItem(Item{FID: 1, LID: 2, WayID: 10, Info: primaryInfo(), Line: orb.LineString{{0, 0}, {1, 0}, {2, 0}}})

	out := make(chan Emission, 1024)
	s.ProcessWaysAsync(out, false)

	var count int
	for range out {
		count++
	}
	assert.Greater(t, count, 0)
}

func TestShouldDropTail_DropsShortUnconnectedFirstSegment(t *testing.T) {
	endpointCount := map[coordKey]int{}
	line := orb.LineString{{0, 0}, {0.0001, 0}}
	assert.True(t, shouldDropTail(0, endpointCount, line, line))
}

func TestShouldDropTail_KeepsWhenAlreadyCutOnce(t *testing.T) {
	endpointCount := map[coordKey]int{}
	line := orb.LineString{{0, 0}, {0.0001, 0}}
	assert.False(t, shouldDropTail(1, endpointCount, line, line))
}
