// Package morphology analyses the segmented rock geometry: it labels
// pore clusters, keeps the percolating ones, classifies surface and
// bulk voxels and estimates box-counting fractal dimensions.
package morphology

import (
	"log/slog"
	"sort"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// labeller holds the working state of the Hoshen-Kopelman sweep.
// labels mirrors the volume in x-fastest order. counts[L] is the
// number of sites in cluster L when positive, or the negated label of
// the proper cluster L was merged into. Label 0 means unlabelled.
type labeller struct {
	shape  [3]int
	labels []int
	counts []int
	bmin   [][3]int
	bmax   [][3]int
}

// previousNeighbours lists the 13 already-visited sites of the
// 26-neighbourhood under an x-fastest sweep: the full previous z
// plane slice plus the four in-plane predecessors.
var previousNeighbours = [13]voxel.Point{
	{-1, -1, -1}, {0, -1, -1}, {1, -1, -1},
	{-1, 0, -1}, {0, 0, -1}, {1, 0, -1},
	{-1, 1, -1}, {0, 1, -1}, {1, 1, -1},
	{-1, -1, 0}, {0, -1, 0}, {1, -1, 0},
	{-1, 0, 0},
}

func newLabeller(shape [3]int) *labeller {
	return &labeller{
		shape:  shape,
		labels: make([]int, shape[0]*shape[1]*shape[2]),
		counts: []int{0},
		bmin:   [][3]int{{}},
		bmax:   [][3]int{{}},
	}
}

func (l *labeller) index(p voxel.Point) int {
	return p[0] + l.shape[0]*p[1] + l.shape[0]*l.shape[1]*p[2]
}

func (l *labeller) in(p voxel.Point) bool {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] >= l.shape[i] {
			return false
		}
	}
	return true
}

// proper follows merge links down to the representative label and
// compresses the path on the way back.
func (l *labeller) proper(label int) int {
	root := label
	for l.counts[root] < 0 {
		root = -l.counts[root]
	}
	for l.counts[label] < 0 {
		next := -l.counts[label]
		l.counts[label] = -root
		label = next
	}
	return root
}

// extend grows the bounding box of label to include p.
func (l *labeller) extend(label int, p voxel.Point) {
	for i := 0; i < 3; i++ {
		if p[i] < l.bmin[label][i] {
			l.bmin[label][i] = p[i]
		}
		if p[i] > l.bmax[label][i] {
			l.bmax[label][i] = p[i]
		}
	}
}

// newCluster starts a fresh cluster at p and returns its label.
func (l *labeller) newCluster(p voxel.Point) int {
	label := len(l.counts)
	l.counts = append(l.counts, 1)
	l.bmin = append(l.bmin, [3]int{p[0], p[1], p[2]})
	l.bmax = append(l.bmax, [3]int{p[0], p[1], p[2]})
	return label
}

// merge joins the proper clusters of the given labels, keeping the
// lowest label as representative, and accounts for the site at p.
func (l *labeller) merge(labels []int, p voxel.Point) int {
	lowest := labels[0]
	for _, label := range labels[1:] {
		if label < lowest {
			lowest = label
		}
	}

	total := 1 + l.counts[lowest]
	for _, label := range labels {
		if label == lowest {
			continue
		}
		total += l.counts[label]
		l.counts[label] = -lowest
		for i := 0; i < 3; i++ {
			if l.bmin[label][i] < l.bmin[lowest][i] {
				l.bmin[lowest][i] = l.bmin[label][i]
			}
			if l.bmax[label][i] > l.bmax[lowest][i] {
				l.bmax[lowest][i] = l.bmax[label][i]
			}
		}
		l.bmin[label] = [3]int{}
		l.bmax[label] = [3]int{}
	}
	l.counts[lowest] = total
	l.extend(lowest, p)
	return lowest
}

// label assigns a cluster label to the flagged site at p from the
// labels of its previously visited neighbours.
func (l *labeller) label(p voxel.Point) {
	seen := make(map[int]struct{}, 4)
	var neighbours []int
	for _, d := range previousNeighbours {
		n := p.Add(voxel.Point(d))
		if !l.in(n) {
			continue
		}
		if label := l.labels[l.index(n)]; label != 0 {
			root := l.proper(label)
			if _, ok := seen[root]; !ok {
				seen[root] = struct{}{}
				neighbours = append(neighbours, root)
			}
		}
	}

	var label int
	switch len(neighbours) {
	case 0:
		label = l.newCluster(p)
	case 1:
		label = neighbours[0]
		l.counts[label]++
		l.extend(label, p)
	default:
		label = l.merge(neighbours, p)
	}
	l.labels[l.index(p)] = label
}

// percolating returns the proper labels of the clusters whose bounding
// box spans the whole volume, checked in decreasing cluster size.
func (l *labeller) percolating() map[int]struct{} {
	type cluster struct {
		label int
		count int
	}
	var clusters []cluster
	for label := 1; label < len(l.counts); label++ {
		if l.counts[label] > 0 {
			clusters = append(clusters, cluster{label, l.counts[label]})
		}
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].count != clusters[j].count {
			return clusters[i].count > clusters[j].count
		}
		return clusters[i].label < clusters[j].label
	})

	total := l.shape[0] * l.shape[1] * l.shape[2]
	spanning := make(map[int]struct{})
	for _, c := range clusters {
		span := 1
		for i := 0; i < 3; i++ {
			span *= l.bmax[c.label][i] - l.bmin[c.label][i] + 1
		}
		if span != total {
			break
		}
		spanning[c.label] = struct{}{}
	}
	return spanning
}

// KeepPercolating labels the 26-connected clusters of pore voxels with
// the enhanced Hoshen-Kopelman algorithm and removes the finite ones:
// on return only the voxels of percolating pore clusters are still
// pore (0), every other site is solid (1). It returns the number of
// percolating clusters found.
func KeepPercolating(v *models.Volume) int {
	l := newLabeller(v.Shape)

	v.Each(func(p voxel.Point) {
		if v.At(p) == 0 {
			l.label(p)
		}
	})

	spanning := l.percolating()

	v.Each(func(p voxel.Point) {
		label := l.labels[l.index(p)]
		if label == 0 {
			v.Set(p, 1)
			return
		}
		if _, ok := spanning[l.proper(label)]; ok {
			v.Set(p, 0)
		} else {
			v.Set(p, 1)
		}
	})

	slog.Info("cluster labelling finished",
		"clusters", l.clusterCount(), "percolating", len(spanning))
	return len(spanning)
}

func (l *labeller) clusterCount() int {
	count := 0
	for label := 1; label < len(l.counts); label++ {
		if l.counts[label] > 0 {
			count++
		}
	}
	return count
}

// Porosity returns the pore fraction of the volume, the connected
// porosity when called after KeepPercolating.
func Porosity(v *models.Volume) float64 {
	pores := 0
	for _, value := range v.Data {
		if value == 0 {
			pores++
		}
	}
	return float64(pores) / float64(v.Len())
}
