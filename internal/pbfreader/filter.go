package pbfreader

// TagRule is one (key, optional value) entry of a tag filter's wanted-tags
// list, mirroring filter.rs's &[(&str, Option<&str>)] slices.
type TagRule struct {
	Key   string
	Value string
	// HasValue distinguishes "key present with this exact value" from
	// "key present with any value" (filter.rs's Option<&str> == None).
	HasValue bool
}

// TagFilter resolves a small set of wanted (key, value) pairs against one
// blob's string table once, then tests tag maps by string-table index —
// grounded on filter.rs's TagFilter.
type TagFilter struct {
	filter []indexRule
}

type indexRule struct {
	key      uint32
	val      uint32
	hasValue bool
}

// NewTagFilter resolves rules against stringTable. A rule whose key or
// (if present) value string is absent from the table is dropped, exactly as
// filter.rs's TagFilter::new silently skips unresolvable rules.
func NewTagFilter(stringTable []string, rules []TagRule) *TagFilter {
	index := make(map[string]uint32, len(stringTable))
	for i, s := range stringTable {
		index[s] = uint32(i)
	}

	f := &TagFilter{}
	for _, r := range rules {
		k, ok := index[r.Key]
		if !ok {
			continue
		}
		ir := indexRule{key: k}
		if r.HasValue {
			v, ok := index[r.Value]
			if !ok {
				continue
			}
			ir.val = v
			ir.hasValue = true
		}
		f.filter = append(f.filter, ir)
	}
	return f
}

// Filter returns the first (key, value) string pair in tags that matches one
// of the filter's rules, or ok=false — matching filter.rs's TagFilter::filter
// (map iteration order is not guaranteed; callers that need a single
// deterministic match rely on there being at most one plausible hit, as the
// original code does).
func (f *TagFilter) Filter(stringTable []string, tags map[uint32]uint32) (key, value string, ok bool) {
	for k, v := range tags {
		for _, r := range f.filter {
			if k != r.key {
				continue
			}
			if r.hasValue && v != r.val {
				continue
			}
			return stringTable[k], stringTable[v], true
		}
	}
	return "", "", false
}

// FilterAll returns every (key, value) string pair in tags matching any rule,
// mirroring filter.rs's TagFilter::filter_all.
func (f *TagFilter) FilterAll(stringTable []string, tags map[uint32]uint32) []KV {
	var out []KV
	for k, v := range tags {
		for _, r := range f.filter {
			if k != r.key {
				continue
			}
			if r.hasValue && v != r.val {
				continue
			}
			out = append(out, KV{Key: stringTable[k], Value: stringTable[v]})
		}
	}
	return out
}

// KV is one resolved (key, value) string pair.
type KV struct {
	Key, Value string
}
