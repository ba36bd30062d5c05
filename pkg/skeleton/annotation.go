// Package skeleton computes the squared Euclidean distance transform
// of the pore space with the Image-Foresting Transform and derives the
// medial-axis skeleton family from it.
package skeleton

import (
	"math"

	"porestream/pkg/voxel"
)

// Infinity is the distance assigned to voxels not yet reached by the
// transform.
const Infinity = math.MaxInt

// Status tracks the IFT lifecycle of a voxel.
type Status uint8

const (
	// StatusInitial marks a voxel never touched by the transform.
	StatusInitial Status = iota
	// StatusInserted marks a voxel currently sitting in the queue.
	StatusInserted
	// StatusRemoved marks a voxel whose distance is final.
	StatusRemoved
)

// Annotation is the per-voxel result of the distance transform.
type Annotation struct {
	// Distance is the squared Euclidean distance to the nearest
	// contour voxel.
	Distance int

	// Displacements is the signed displacement vector to that voxel.
	Displacements [3]int

	// Status is the IFT lifecycle state.
	Status Status

	// Tag is the insertion counter used to break distance ties.
	Tag int

	// ContourLabel identifies which contour component the nearest
	// boundary voxel belongs to, PixelLabel its ordinal position on
	// that contour.
	ContourLabel int
	PixelLabel   int

	// Point is the nearest contour voxel itself.
	Point voxel.Point
}

// NewAnnotation returns an annotation in its initial state.
func NewAnnotation() *Annotation {
	return &Annotation{
		Distance:      Infinity,
		Displacements: [3]int{Infinity, Infinity, Infinity},
		Status:        StatusInitial,
	}
}

// Image maps pore voxels to their annotations.
type Image struct {
	annotations map[voxel.Point]*Annotation
}

// NewImage returns an empty annotated image.
func NewImage() *Image {
	return &Image{annotations: make(map[voxel.Point]*Annotation)}
}

// Has reports whether p carries an annotation.
func (img *Image) Has(p voxel.Point) bool {
	_, ok := img.annotations[p]
	return ok
}

// Get returns the annotation at p, or nil when absent.
func (img *Image) Get(p voxel.Point) *Annotation {
	return img.annotations[p]
}

// Set stores the annotation for p.
func (img *Image) Set(p voxel.Point, a *Annotation) {
	img.annotations[p] = a
}

// Len returns the number of annotated voxels.
func (img *Image) Len() int {
	return len(img.annotations)
}

// Each calls fn for every annotated voxel. Iteration order is not
// deterministic; callers that need ordering sweep the volume instead.
func (img *Image) Each(fn func(p voxel.Point, a *Annotation)) {
	for p, a := range img.annotations {
		fn(p, a)
	}
}

// SquaredDistance returns the squared Euclidean distance between two
// points.
func SquaredDistance(p, q voxel.Point) int {
	d := 0
	for i := 0; i < 3; i++ {
		v := p[i] - q[i]
		d += v * v
	}
	return d
}
