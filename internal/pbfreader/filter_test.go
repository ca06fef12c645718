package pbfreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagFilter_ResolvesAndMatches(t *testing.T) {
	stringTable := []string{"a", "b", "c", "d"}

	tags1 := map[uint32]uint32{0: 1, 2: 3}
	tags2 := map[uint32]uint32{0: 2, 2: 0}
	tags3 := map[uint32]uint32{1: 2, 2: 0}

	f := NewTagFilter(stringTable, []TagRule{
		{Key: "a", Value: "b", HasValue: true},
		{Key: "b", HasValue: false},
	})

	k, v, ok := f.Filter(stringTable, tags1)
	assert.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, "b", v)

	_, _, ok = f.Filter(stringTable, tags2)
	assert.False(t, ok)

	k, v, ok = f.Filter(stringTable, tags3)
	assert.True(t, ok)
	assert.Equal(t, "b", k)
	assert.Equal(t, "c", v)
}

func TestTagFilter_UnresolvableRuleIsDropped(t *testing.T) {
	stringTable := []string{"highway", "primary"}
	f := NewTagFilter(stringTable, []TagRule{
		{Key: "highway", Value: "primary", HasValue: true},
		{Key: "railway", Value: "rail", HasValue: true},
	})
	assert.Len(t, f.filter, 1)
}
