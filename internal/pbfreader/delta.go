package pbfreader

// deltaDecode turns a sequence of packed delta values into absolute values,
// matching osm_tool/src/reader/mod.rs's Delta iterator (a running
// accumulator seeded by the first value).
func deltaDecode(vals []int64) []int64 {
	out := make([]int64, len(vals))
	var acc int64
	for i, v := range vals {
		acc += v
		out[i] = acc
	}
	return out
}
