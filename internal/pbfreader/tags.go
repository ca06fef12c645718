package pbfreader

// decodePackedTags splits a DenseNodes.keys_vals stream into one map per
// node: pairs of (key_index, val_index) terminated by a 0 key, matching
// tags.rs's TagIterator exactly (including: no trailing 0 still yields the
// last in-progress set once the stream runs out).
func decodePackedTags(packed []int32) []map[uint32]uint32 {
	var out []map[uint32]uint32
	cur := map[uint32]uint32{}

	i := 0
	for i < len(packed) {
		key := packed[i]
		i++
		if key == 0 {
			out = append(out, cur)
			cur = map[uint32]uint32{}
			continue
		}
		if i >= len(packed) {
			break
		}
		val := packed[i]
		i++
		cur[uint32(key)] = uint32(val)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
