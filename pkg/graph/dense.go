package graph

import (
	"fmt"

	"porestream/pkg/voxel"
)

// denseGraph stores vertices in a contiguous slice indexed by the
// volume's linear index, with a parallel presence bitmap. Removal
// clears the presence bit; the slot itself is not freed.
type denseGraph struct {
	shape   [3]int
	slots   []denseSlot
	present []bool
	count   int
}

type denseSlot struct {
	key Key
	ann Annotation
}

func newDenseGraph(shape [3]int) *denseGraph {
	n := shape[0] * shape[1] * shape[2]
	return &denseGraph{
		shape:   shape,
		slots:   make([]denseSlot, n),
		present: make([]bool, n),
	}
}

func (g *denseGraph) index(p voxel.Point) (int, bool) {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] >= g.shape[i] {
			return 0, false
		}
	}
	return p[0] + g.shape[0]*p[1] + g.shape[0]*g.shape[1]*p[2], true
}

func (g *denseGraph) Insert(k Key) {
	idx, ok := g.index(k.Point)
	if !ok {
		panic(fmt.Sprintf("graph: insert of out-of-bounds point %v", k.Point))
	}
	if g.present[idx] {
		panic(fmt.Sprintf("graph: duplicate insert at %v", k.Point))
	}
	g.slots[idx] = denseSlot{key: k, ann: NewAnnotation()}
	g.present[idx] = true
	g.count++
}

func (g *denseGraph) Remove(p voxel.Point) {
	if idx, ok := g.index(p); ok && g.present[idx] {
		g.present[idx] = false
		g.count--
	}
}

func (g *denseGraph) Has(p voxel.Point) bool {
	idx, ok := g.index(p)
	return ok && g.present[idx]
}

func (g *denseGraph) Key(p voxel.Point) (Key, bool) {
	idx, ok := g.index(p)
	if !ok || !g.present[idx] {
		return Key{}, false
	}
	return g.slots[idx].key, true
}

func (g *denseGraph) Annotation(p voxel.Point) *Annotation {
	idx, ok := g.index(p)
	if !ok || !g.present[idx] {
		panic(fmt.Sprintf("graph: annotation of absent point %v", p))
	}
	return &g.slots[idx].ann
}

func (g *denseGraph) Neighbours(p voxel.Point) []Key {
	out := make([]Key, 0, 26)
	for _, n := range p.Neighbours26() {
		if k, ok := g.Key(n); ok {
			out = append(out, k)
		}
	}
	return out
}

func (g *denseGraph) Len() int {
	return g.count
}

func (g *denseGraph) Each(fn func(k Key, a *Annotation)) {
	for idx := range g.slots {
		if g.present[idx] {
			fn(g.slots[idx].key, &g.slots[idx].ann)
		}
	}
}

func (g *denseGraph) NewLike() Graph {
	return newDenseGraph(g.shape)
}
