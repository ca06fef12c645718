package roadgraph

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/errs"
)

// snapshot is the on-disk shape of a Graph: edges and node coordinates,
// self-describing via gob the way spec §4.8 "self-describing serialization"
// asks for — no third-party graph-persistence library exists in the
// retrieved corpus, so this is a deliberate stdlib exception (see
// DESIGN.md).
type snapshot struct {
	Edges map[int64]map[int64]float32
	Nodes map[int64]orb.Point
}

// Save persists the graph to path.
func (g *Graph) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", errs.ErrFailedToSave, path, err)
	}
	defer f.Close()

	snap := snapshot{Edges: g.edges, Nodes: g.nodes}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("%w: encode %s: %v", errs.ErrFailedToSave, path, err)
	}
	return nil
}

// Load reads a graph previously written by Save.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrFailedToLoad, path, err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", errs.ErrFailedToLoad, path, err)
	}

	return &Graph{edges: snap.Edges, nodes: snap.Nodes}, nil
}
