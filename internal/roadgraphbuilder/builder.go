// Package roadgraphbuilder reads a PBF file end to end and builds a
// RoadGraph out of every way whose highway= value is one of the recognized
// road classes (other values are skipped), honoring oneway=yes. Grounded
// on osm_tool/src/main.rs's RoadGraph subcommand.
package roadgraphbuilder

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/mapgeom"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/pbfreader"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/roadgraph"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
)

var highwayOnly = []pbfreader.TagRule{{Key: "highway", HasValue: false}}
var onewayYes = []pbfreader.TagRule{{Key: "oneway", Value: "yes", HasValue: true}}

// Build reads path and returns a populated graph, clipping nodes to the same
// fixed world rectangle the rest of this repo's tile math uses.
func Build(ctx context.Context, path string) (*roadgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file %s: %w", path, err)
	}
	defer f.Close()

	reader := pbfreader.NewReader(f, tilemath.WorldRect())
	nodeBlobs, wayBlobs, _, err := reader.Data(ctx)
	if err != nil {
		return nil, fmt.Errorf("decode pbf blobs: %w", err)
	}

	nodes := make(map[int64]orb.Point)
	for _, blob := range nodeBlobs {
		for _, n := range blob.Nodes {
			nodes[n.ID] = n.Coord
		}
	}

	graph := roadgraph.New()
	for _, blob := range wayBlobs {
		highwayFilter := pbfreader.NewTagFilter(blob.StringTable, highwayOnly)
		directionFilter := pbfreader.NewTagFilter(blob.StringTable, onewayYes)

		for _, w := range blob.Ways {
			k, v, ok := highwayFilter.Filter(blob.StringTable, w.Tags)
			if !ok || k != "highway" {
				continue
			}
			hkind, ok := mapgeom.HighwayFromTagValue(v)
			if !ok {
				continue
			}
			_, _, oneway := directionFilter.Filter(blob.StringTable, w.Tags)

			var prevID int64
			var prevCoord orb.Point
			havePrev := false
			for _, ref := range w.Refs {
				coord, ok := nodes[ref]
				if !ok {
					continue
				}
				if havePrev {
					if oneway {
						graph.AddEdge(prevID, prevCoord, ref, coord, hkind)
					} else {
						graph.AddBiEdge(prevID, prevCoord, ref, coord, hkind)
					}
				}
				prevID, prevCoord, havePrev = ref, coord, true
			}
		}
	}

	return graph, nil
}
