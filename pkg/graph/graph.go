package graph

import (
	"fmt"
	"sort"

	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

// Flavor selects the storage representation of a graph.
type Flavor string

const (
	// FlavorSpeed uses a contiguous array indexed by the volume's
	// linear index with a presence bitmap. O(1) lookup, memory
	// proportional to the full volume.
	FlavorSpeed Flavor = "speed"
	// FlavorMemory uses a hash map keyed by point. Memory
	// proportional to the number of pore voxels.
	FlavorMemory Flavor = "memory"
)

// Graph is an associative store from vertex key to annotation. Both
// flavors expose the same capability set; the search engine is
// written against this interface, not a representation.
//
// Insert panics on a duplicate point and Annotation panics on an
// absent one: both are invariant violations, not runtime errors.
type Graph interface {
	// Insert adds a vertex with a fresh annotation.
	Insert(k Key)
	// Remove drops a vertex; absent keys are a no-op.
	Remove(p voxel.Point)
	// Has reports whether a vertex exists at p.
	Has(p voxel.Point) bool
	// Key returns the stored key at p.
	Key(p voxel.Point) (Key, bool)
	// Annotation returns mutable access to the annotation at p.
	Annotation(p voxel.Point) *Annotation
	// Neighbours returns the keys of the 26-neighbours of p that
	// currently exist in the graph, in enumeration order.
	Neighbours(p voxel.Point) []Key
	// Len returns the number of vertices.
	Len() int
	// Each visits every vertex in deterministic point order.
	Each(fn func(k Key, a *Annotation))
	// NewLike returns an empty graph of the same flavor and bounds.
	NewLike() Graph
}

// New returns an empty graph of the requested flavor. The shape is
// the bounding volume, required by the speed flavor for its linear
// indexing and ignored by the memory flavor.
func New(flavor Flavor, shape [3]int) (Graph, error) {
	switch flavor {
	case FlavorSpeed:
		return newDenseGraph(shape), nil
	case FlavorMemory:
		return newSparseGraph(), nil
	default:
		return nil, fmt.Errorf("unknown graph flavor %q", flavor)
	}
}

// BuildFromSkeleton populates a graph with one vertex per annotated
// voxel of the distance transform, using the squared distance as the
// vertex property. Vertices are inserted in point order.
func BuildFromSkeleton(g Graph, img *skeleton.Image) {
	points := make([]voxel.Point, 0, img.Len())
	img.Each(func(p voxel.Point, _ *skeleton.Annotation) {
		points = append(points, p)
	})
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	for _, p := range points {
		g.Insert(Key{Point: p, Property: float64(img.Get(p).Distance)})
	}
}

// IsLocalMaximum reports whether no face or edge neighbour of p in
// the graph has a strictly greater property value. Vertex-neighbours
// are excluded, so plateaus of equal-valued voxels all evaluate as
// maxima. The result is cached in the annotation.
func IsLocalMaximum(g Graph, k Key) bool {
	a := g.Annotation(k.Point)
	if a.LocalMax != LocalMaxUnset {
		return a.LocalMax == LocalMaxTrue
	}
	isMax := true
	for _, n := range g.Neighbours(k.Point) {
		if k.Point.IsVertexNeighbour(n.Point) {
			continue
		}
		if n.Property > k.Property {
			isMax = false
			break
		}
	}
	if isMax {
		a.LocalMax = LocalMaxTrue
	} else {
		a.LocalMax = LocalMaxFalse
	}
	return isMax
}
