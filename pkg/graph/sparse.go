package graph

import (
	"fmt"
	"sort"

	"porestream/pkg/voxel"
)

// sparseGraph stores vertices in a hash map keyed by point.
type sparseGraph struct {
	vertices map[voxel.Point]*sparseSlot
}

type sparseSlot struct {
	key Key
	ann Annotation
}

func newSparseGraph() *sparseGraph {
	return &sparseGraph{vertices: make(map[voxel.Point]*sparseSlot)}
}

func (g *sparseGraph) Insert(k Key) {
	if _, ok := g.vertices[k.Point]; ok {
		panic(fmt.Sprintf("graph: duplicate insert at %v", k.Point))
	}
	g.vertices[k.Point] = &sparseSlot{key: k, ann: NewAnnotation()}
}

func (g *sparseGraph) Remove(p voxel.Point) {
	delete(g.vertices, p)
}

func (g *sparseGraph) Has(p voxel.Point) bool {
	_, ok := g.vertices[p]
	return ok
}

func (g *sparseGraph) Key(p voxel.Point) (Key, bool) {
	s, ok := g.vertices[p]
	if !ok {
		return Key{}, false
	}
	return s.key, true
}

func (g *sparseGraph) Annotation(p voxel.Point) *Annotation {
	s, ok := g.vertices[p]
	if !ok {
		panic(fmt.Sprintf("graph: annotation of absent point %v", p))
	}
	return &s.ann
}

func (g *sparseGraph) Neighbours(p voxel.Point) []Key {
	out := make([]Key, 0, 26)
	for _, n := range p.Neighbours26() {
		if s, ok := g.vertices[n]; ok {
			out = append(out, s.key)
		}
	}
	return out
}

func (g *sparseGraph) Len() int {
	return len(g.vertices)
}

// Each visits vertices in point order so that runs are deterministic
// regardless of map iteration order.
func (g *sparseGraph) Each(fn func(k Key, a *Annotation)) {
	points := make([]voxel.Point, 0, len(g.vertices))
	for p := range g.vertices {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	for _, p := range points {
		s := g.vertices[p]
		fn(s.key, &s.ann)
	}
}

func (g *sparseGraph) NewLike() Graph {
	return newSparseGraph()
}
