package centerline

import (
	"porestream/internal/models"
	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

// FacePoint is a pore centerpoint found on one face of the volume,
// together with its squared boundary distance.
type FacePoint struct {
	Point    voxel.Point
	Distance float64
}

// CenterpointDiscoverer finds, for each pore component clipped to a
// face of the volume, the voxel of maximal boundary distance within
// that component. These centerpoints serve as sources and sinks of
// the centerline search.
type CenterpointDiscoverer struct {
	volume *models.Volume
	img    *skeleton.Image
	used   map[voxel.Point]struct{}
}

// NewCenterpointDiscoverer returns a discoverer over the pore volume
// and its distance transform.
func NewCenterpointDiscoverer(volume *models.Volume, img *skeleton.Image) *CenterpointDiscoverer {
	return &CenterpointDiscoverer{volume: volume, img: img}
}

// boundedCenter flood-fills the in-plane 8-connected pore component
// containing start and returns the voxel with the largest annotated
// distance.
func (d *CenterpointDiscoverer) boundedCenter(start voxel.Point, axis int) FacePoint {
	maxPoint := start
	maxProperty := d.img.Get(start).Distance
	queue := []voxel.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := d.used[cur]; ok {
			continue
		}
		d.used[cur] = struct{}{}
		for _, n := range cur.NeighboursInPlane(axis) {
			if !d.volume.IsPore(n) || !d.img.Has(n) {
				continue
			}
			if _, ok := d.used[n]; ok {
				continue
			}
			queue = append(queue, n)
			if property := d.img.Get(n).Distance; property > maxProperty {
				maxProperty = property
				maxPoint = n
			}
		}
	}
	return FacePoint{Point: maxPoint, Distance: float64(maxProperty)}
}

// Points returns the centerpoints of all pore components on the face
// plane with the given coordinate along the given axis. The sweep
// order over the plane is deterministic.
func (d *CenterpointDiscoverer) Points(axis, coordinate int) []FacePoint {
	d.used = make(map[voxel.Point]struct{})
	var out []FacePoint
	d.volume.Each(func(p voxel.Point) {
		if p[axis] != coordinate {
			return
		}
		if !d.volume.IsPore(p) || !d.img.Has(p) {
			return
		}
		if _, ok := d.used[p]; ok {
			return
		}
		out = append(out, d.boundedCenter(p, axis))
	})
	return out
}

// SourcePoints gathers the pore centerpoints of the three low faces
// (coordinate zero along every axis). The search starts from the
// first of these that succeeds.
func (d *CenterpointDiscoverer) SourcePoints() []FacePoint {
	var out []FacePoint
	for axis := 0; axis < 3; axis++ {
		out = append(out, d.Points(axis, 0)...)
	}
	return out
}

// EndPoints gathers the pore centerpoints of all six faces. The full
// sink set spans both extremes of every axis.
func (d *CenterpointDiscoverer) EndPoints() []FacePoint {
	var out []FacePoint
	for axis := 0; axis < 3; axis++ {
		out = append(out, d.Points(axis, 0)...)
		out = append(out, d.Points(axis, d.volume.Shape[axis]-1)...)
	}
	return out
}
