// Package network derives the capillary network from a rasterized
// centerline image: one node per centerline voxel, one link per pair
// of neighbouring nodes, exported in JSON Graph Format.
package network

import (
	"math"
	"sort"

	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

// Node is one centerline voxel of the capillary network, annotated
// with the squared pore radius at that location.
type Node struct {
	ID            int
	Point         voxel.Point
	SquaredRadius int32
}

// Link joins two neighbouring nodes. Source always carries the lower
// node id.
type Link struct {
	ID            int
	Source        int
	Target        int
	Length        float64
	SquaredRadius float64
}

// Network is the node and link collection of a pore network.
type Network struct {
	Nodes []Node
	Links []Link

	index map[voxel.Point]int
}

// linkLength is the Euclidean distance between the two node centres.
func linkLength(a, b Node) float64 {
	return math.Sqrt(float64(skeleton.SquaredDistance(a.Point, b.Point)))
}

// linkSquaredRadius combines the two node radii into the effective
// squared radius of the capillary joining them.
func linkSquaredRadius(a, b Node) float64 {
	r2A := float64(a.SquaredRadius)
	r2B := float64(b.SquaredRadius)
	denominator := math.Sqrt(r2A*r2A + r2B*r2B)
	if denominator == 0 {
		return 0
	}
	return math.Sqrt2 * r2A * r2B / denominator
}

func (n *Network) insertNode(p voxel.Point, squaredRadius int32) {
	node := Node{ID: len(n.Nodes), Point: p, SquaredRadius: squaredRadius}
	n.Nodes = append(n.Nodes, node)
	n.index[p] = node.ID
}

func (n *Network) hasLink(seen map[[2]int]struct{}, a, b Node) bool {
	source, target := a.ID, b.ID
	if source > target {
		source, target = target, source
	}
	_, ok := seen[[2]int{source, target}]
	return ok
}

func (n *Network) insertLink(seen map[[2]int]struct{}, a, b Node) {
	source, target := a.ID, b.ID
	if source > target {
		source, target = target, source
	}
	seen[[2]int{source, target}] = struct{}{}
	n.Links = append(n.Links, Link{
		ID:            len(n.Links),
		Source:        source,
		Target:        target,
		Length:        linkLength(a, b),
		SquaredRadius: linkSquaredRadius(a, b),
	})
}

// Build constructs the network of a centerline image mapping voxels
// to squared radii. Nodes are numbered in point order; every pair of
// 26-neighbouring nodes is linked exactly once.
func Build(image map[voxel.Point]int32) *Network {
	n := &Network{index: make(map[voxel.Point]int, len(image))}

	points := make([]voxel.Point, 0, len(image))
	for p := range image {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
	for _, p := range points {
		n.insertNode(p, image[p])
	}

	seen := make(map[[2]int]struct{})
	for _, node := range n.Nodes {
		for _, q := range node.Point.Neighbours26() {
			id, ok := n.index[q]
			if !ok {
				continue
			}
			neighbour := n.Nodes[id]
			if !n.hasLink(seen, node, neighbour) {
				n.insertLink(seen, node, neighbour)
			}
		}
	}
	return n
}
