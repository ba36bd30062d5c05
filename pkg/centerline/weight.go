// Package centerline threads one-voxel-thick centerlines through the
// pore network: face centerpoint discovery, a gradient-guided
// Dijkstra search over the annotated graph, centerline assembly with
// thinness validation, branch splitting and per-centerline statistics.
package centerline

import (
	"math"

	"porestream/pkg/graph"
	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

// InfiniteDistance is the path cost of an unreached vertex.
const InfiniteDistance = math.MaxFloat64

// dominanceFactor scales the vertex weight so that it always
// outweighs the penalties, which then only break ties.
const dominanceFactor = 1.0e3

// Weight returns the cost of stepping onto a vertex: 1/(1+property).
// Wider pores carry lower weights, so shortest paths hug the medial
// axis. The value is always in (0, 1] for a non-negative property.
func Weight(candidate graph.Key) float64 {
	return 1.0 / (1.0 + candidate.Property)
}

// EuclideanDistance is the real distance between two voxel centres.
func EuclideanDistance(p, q voxel.Point) float64 {
	return math.Sqrt(float64(skeleton.SquaredDistance(p, q)))
}
