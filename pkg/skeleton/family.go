package skeleton

import (
	"porestream/pkg/voxel"
)

// Family derives the skeleton-family measure from a distance
// transform. For each annotated voxel p with nearest boundary voxel b,
// the value is the maximum squared distance between b and the nearest
// boundary voxel of any annotated 26-neighbour of p. The medial-axis
// skeleton of radius at least k is the set of voxels with value >= k.
func Family(img *Image) map[voxel.Point]int {
	family := make(map[voxel.Point]int, img.Len())
	img.Each(func(p voxel.Point, a *Annotation) {
		value := 0
		for _, n := range p.Neighbours26() {
			na := img.Get(n)
			if na == nil {
				continue
			}
			if d := SquaredDistance(na.Point, a.Point); d > value {
				value = d
			}
		}
		family[p] = value
	})
	return family
}
