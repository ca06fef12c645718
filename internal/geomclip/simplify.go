package geomclip

import (
	"container/heap"

	"github.com/paulmach/orb"
)

// SimplifyVW applies Visvalingam–Whyatt simplification to line, repeatedly
// removing the vertex whose triangle (with its current neighbors) has the
// smallest effective area, until no such area is below eps. Endpoints are
// never removed (spec §4.1 simplify_vw).
func SimplifyVW(line orb.LineString, eps float64) orb.LineString {
	n := len(line)
	if n <= 2 {
		out := make(orb.LineString, n)
		copy(out, line)
		return out
	}

	prev := make([]int, n)
	next := make([]int, n)
	alive := make([]bool, n)
	for i := range line {
		prev[i] = i - 1
		next[i] = i + 1
		alive[i] = true
	}
	next[n-1] = -1

	pq := &vwHeap{}
	heap.Init(pq)
	version := make([]int, n)
	for i := 1; i < n-1; i++ {
		heap.Push(pq, vwItem{area: triangleArea(line[prev[i]], line[i], line[next[i]]), idx: i, ver: 0})
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(vwItem)
		i := item.idx
		if !alive[i] || item.ver != version[i] {
			continue
		}
		if item.area >= eps {
			break
		}

		p, nx := prev[i], next[i]
		alive[i] = false
		next[p] = nx
		if nx != -1 {
			prev[nx] = p
		}

		if p != 0 && prev[p] != -1 {
			version[p]++
			heap.Push(pq, vwItem{area: triangleArea(line[prev[p]], line[p], line[next[p]]), idx: p, ver: version[p]})
		}
		if nx != -1 && next[nx] != -1 {
			version[nx]++
			heap.Push(pq, vwItem{area: triangleArea(line[prev[nx]], line[nx], line[next[nx]]), idx: nx, ver: version[nx]})
		}
	}

	out := make(orb.LineString, 0, n)
	for i := 0; i != -1; i = next[i] {
		out = append(out, line[i])
	}
	return out
}

func triangleArea(a, b, c orb.Point) float64 {
	area := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
	if area < 0 {
		area = -area
	}
	return area / 2
}

type vwItem struct {
	area float64
	idx  int
	ver  int
}

type vwHeap []vwItem

func (h vwHeap) Len() int            { return len(h) }
func (h vwHeap) Less(i, j int) bool  { return h[i].area < h[j].area }
func (h vwHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vwHeap) Push(x interface{}) { *h = append(*h, x.(vwItem)) }
func (h *vwHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// DensifyTwice emits, for every exterior segment, start/midpoint/end, and
// appends interior ring vertices unchanged (spec §4.1 densify_twice).
func DensifyTwice(poly orb.Polygon) []orb.Point {
	var out []orb.Point
	if len(poly) == 0 {
		return out
	}
	ext := poly[0]
	for i := 0; i < len(ext)-1; i++ {
		a, b := ext[i], ext[i+1]
		if len(out) == 0 {
			out = append(out, a)
		}
		mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
		out = append(out, mid, b)
	}
	for _, interior := range poly[1:] {
		out = append(out, []orb.Point(interior)...)
	}
	return out
}
