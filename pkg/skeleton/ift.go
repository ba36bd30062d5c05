package skeleton

import (
	"container/heap"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// iftEntry is one queue element of the transform. Entries are never
// updated in place; a relaxation pushes a fresh entry and the stale
// one is skipped on pop.
type iftEntry struct {
	point    voxel.Point
	distance int
	tag      int
}

// iftQueue orders entries by (distance, tag) lexicographically.
type iftQueue []iftEntry

func (q iftQueue) Len() int { return len(q) }

func (q iftQueue) Less(i, j int) bool {
	if q[i].distance != q[j].distance {
		return q[i].distance < q[j].distance
	}
	return q[i].tag < q[j].tag
}

func (q iftQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *iftQueue) Push(x any) { *q = append(*q, x.(iftEntry)) }

func (q *iftQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// Skeletonize runs the Image-Foresting Transform on the pore phase of
// the volume. Every pore voxel ends up annotated with the squared
// Euclidean distance to its nearest contour voxel, the displacement
// vector to it, and the identity of that voxel. Contour voxels form
// the seed set at distance zero. Ties are broken by the insertion
// counter, so the run is deterministic for a fixed volume.
func Skeletonize(v *models.Volume) *Image {
	img, seeds := Contours(v)

	counter := 0
	queue := make(iftQueue, 0, len(seeds))
	for _, c := range seeds {
		a := img.Get(c)
		a.Distance = 0
		a.Displacements = [3]int{0, 0, 0}
		a.Point = c
		a.Status = StatusInserted
		a.Tag = counter
		counter++
		queue = append(queue, iftEntry{point: c, distance: 0, tag: a.Tag})
	}
	heap.Init(&queue)

	for queue.Len() > 0 {
		e := heap.Pop(&queue).(iftEntry)
		a := img.Get(e.point)
		if a.Status == StatusRemoved || e.distance != a.Distance || e.tag != a.Tag {
			continue
		}
		a.Status = StatusRemoved

		for _, n := range e.point.Neighbours26() {
			if !v.IsPore(n) {
				continue
			}
			na := img.Get(n)
			if na == nil {
				na = NewAnnotation()
				img.Set(n, na)
			}
			if na.Status == StatusRemoved {
				continue
			}

			var disp [3]int
			dist := 0
			for i := 0; i < 3; i++ {
				disp[i] = a.Displacements[i] + abs(n[i]-e.point[i])
				dist += disp[i] * disp[i]
			}
			if dist < na.Distance {
				na.Distance = dist
				na.Displacements = disp
				na.Point = a.Point
				na.ContourLabel = a.ContourLabel
				na.PixelLabel = a.PixelLabel
				na.Status = StatusInserted
				na.Tag = counter
				counter++
				heap.Push(&queue, iftEntry{point: n, distance: dist, tag: na.Tag})
			}
		}
	}

	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
