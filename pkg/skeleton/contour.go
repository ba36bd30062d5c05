package skeleton

import (
	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// IsContour reports whether p is a pore voxel with at least one
// face-neighbour outside the pore phase. Voxels on the volume border
// count their out-of-bounds neighbours as solid.
func IsContour(v *models.Volume, p voxel.Point) bool {
	if !v.IsPore(p) {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		for _, d := range [2]int{-1, 1} {
			q := p
			q[axis] += d
			if !v.IsPore(q) {
				return true
			}
		}
	}
	return false
}

// Contours finds every contour voxel of the volume and groups them
// into 26-connected components. Each component receives a contour
// label and its voxels are numbered in BFS order. The returned slice
// lists the contour voxels in discovery order, which later seeds the
// distance transform deterministically.
func Contours(v *models.Volume) (*Image, []voxel.Point) {
	img := NewImage()
	var seeds []voxel.Point

	label := 0
	v.Each(func(p voxel.Point) {
		if img.Has(p) || !IsContour(v, p) {
			return
		}

		// BFS over the 26-connected contour component
		pixel := 0
		queue := []voxel.Point{p}
		a := NewAnnotation()
		a.ContourLabel = label
		a.PixelLabel = pixel
		img.Set(p, a)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			seeds = append(seeds, cur)
			for _, n := range cur.Neighbours26() {
				if img.Has(n) || !IsContour(v, n) {
					continue
				}
				pixel++
				na := NewAnnotation()
				na.ContourLabel = label
				na.PixelLabel = pixel
				img.Set(n, na)
				queue = append(queue, n)
			}
		}
		label++
	})

	return img, seeds
}
