// Package graph maps pore voxels to annotated vertices and provides
// the search infrastructure for centerline extraction: two
// interchangeable storage flavors, a handle-based priority queue and
// the maximal-cluster discoverer.
package graph

import (
	"math"

	"porestream/pkg/voxel"
)

// Key identifies a vertex: its voxel position plus the property value
// carried by the vertex, a floating-point copy of the voxel's squared
// distance to the pore boundary.
type Key struct {
	Point    voxel.Point
	Property float64
}

// LocalMaxState is the cached result of a local-maximum test.
type LocalMaxState int8

const (
	// LocalMaxUnset means the test has not run for this vertex yet.
	LocalMaxUnset LocalMaxState = iota
	// LocalMaxTrue marks a confirmed local maximum.
	LocalMaxTrue
	// LocalMaxFalse marks a confirmed non-maximum.
	LocalMaxFalse
)

// Annotation is the mutable search state attached to a vertex.
type Annotation struct {
	// Distance is the accumulated path cost, +Inf until relaxed.
	Distance float64

	// Predecessor is the previous vertex on the best path, nil at
	// the source and for unreached vertices.
	Predecessor *Key

	// Removed is set once the vertex has been popped from the queue
	// and its distance is final.
	Removed bool

	// LocalMax caches the local-maximum test.
	LocalMax LocalMaxState

	// ClusterID labels the maximal cluster the vertex belongs to,
	// -1 when the vertex is not a local maximum.
	ClusterID int

	// Handle is the priority-queue handle of the vertex while it is
	// enqueued, -1 otherwise.
	Handle int
}

// NewAnnotation returns an annotation in its initial search state.
func NewAnnotation() Annotation {
	return Annotation{
		Distance:  math.Inf(1),
		ClusterID: -1,
		Handle:    -1,
	}
}
