package roadgraph

import (
	"container/heap"

	"github.com/paulmach/orb"
)

// Route runs A* from fromID to toID using the Euclidean distance to the
// destination coordinate as heuristic, returning the coordinate sequence
// along the winning path. ok is false when either endpoint has no known
// coordinate or no path exists — matching routing/mod.rs's route() "no
// route" result.
func (g *Graph) Route(fromID, toID int64) (path []orb.Point, ok bool) {
	fromCoord, fOK := g.nodes[fromID]
	toCoord, tOK := g.nodes[toID]
	if !fOK || !tOK {
		return nil, false
	}
	if fromID == toID {
		return []orb.Point{fromCoord}, true
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &heapItem{id: fromID, gScore: 0, fScore: euclidean(fromCoord, toCoord)})

	gScore := map[int64]float64{fromID: 0}
	cameFrom := map[int64]int64{}
	visited := map[int64]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*heapItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		if cur.id == toID {
			return reconstructPath(g, cameFrom, toID, fromID), true
		}

		for next, weight := range g.edges[cur.id] {
			if visited[next] {
				continue
			}
			tentative := gScore[cur.id] + float64(weight)
			if existing, seen := gScore[next]; seen && tentative >= existing {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = cur.id

			nextCoord, ok := g.nodes[next]
			h := 0.0
			if ok {
				h = euclidean(nextCoord, toCoord)
			}
			heap.Push(open, &heapItem{id: next, gScore: tentative, fScore: tentative + h})
		}
	}

	return nil, false
}

func reconstructPath(g *Graph, cameFrom map[int64]int64, toID, fromID int64) []orb.Point {
	ids := []int64{toID}
	for ids[len(ids)-1] != fromID {
		ids = append(ids, cameFrom[ids[len(ids)-1]])
	}

	path := make([]orb.Point, len(ids))
	for i, id := range ids {
		path[len(ids)-1-i] = g.nodes[id]
	}
	return path
}

type heapItem struct {
	id     int64
	gScore float64
	fScore float64
}

type nodeHeap []*heapItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].fScore < h[j].fScore }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
