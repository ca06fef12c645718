package pbfreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePackedTags_SplitsOnZeroKey(t *testing.T) {
	packed := []int32{1, 2, 3, 4, 0, 2, 1}

	tags := decodePackedTags(packed)

	assert.Len(t, tags, 2, "expect 2 sets of tags")
	assert.Len(t, tags[0], 2, "expect 2 tags in first set")
	assert.Equal(t, uint32(2), tags[0][1])
	assert.Equal(t, uint32(4), tags[0][3])
	assert.Len(t, tags[1], 1, "expect 1 tag in second set")
	assert.Equal(t, uint32(1), tags[1][2])
}

func TestDeltaDecode_AccumulatesFromZero(t *testing.T) {
	assert.Equal(t, []int64{5, 3, 10}, deltaDecode([]int64{5, -2, 7}))
}
