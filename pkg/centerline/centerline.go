package centerline

import (
	"math"

	"porestream/pkg/graph"
)

// Node is one point of a centerline, the vertex key plus the path
// distance the search accumulated up to it.
type Node struct {
	Key      graph.Key
	Distance float64
}

// Centerline is a one-voxel-thick path through the pore space. Nodes
// are stored sink first: the last node is the source side of the walk
// that produced the path.
type Centerline struct {
	nodes []Node
}

// NewCenterline wraps a node sequence.
func NewCenterline(nodes []Node) Centerline {
	return Centerline{nodes: nodes}
}

// Len returns the number of nodes.
func (c *Centerline) Len() int {
	return len(c.nodes)
}

// Node returns the i-th node.
func (c *Centerline) Node(i int) Node {
	return c.nodes[i]
}

// Nodes returns the underlying node sequence.
func (c *Centerline) Nodes() []Node {
	return c.nodes
}

// Split cuts the centerline at index i. The receiver keeps the nodes
// up to and including i, the returned centerline starts at i, so the
// cut node is shared. Splitting at either end returns an empty
// centerline and leaves the receiver unchanged.
func (c *Centerline) Split(i int) Centerline {
	if i == 0 || i == len(c.nodes)-1 {
		return Centerline{}
	}
	tail := make([]Node, len(c.nodes)-i)
	copy(tail, c.nodes[i:])
	c.nodes = c.nodes[:i+1]
	return Centerline{nodes: tail}
}

// Statistics are the geometric measures of a single centerline.
type Statistics struct {
	// Size is the arc length, the sum of the Euclidean distances
	// between consecutive nodes.
	Size float64

	// Tortuosity is the arc length over the end-to-end distance,
	// minus one. A straight line has tortuosity zero.
	Tortuosity float64

	// AveragePropertyValue is the mean pore radius along the path,
	// the running mean of the square roots of the vertex properties.
	AveragePropertyValue float64
}

// NewStatistics measures a centerline.
func NewStatistics(c *Centerline) Statistics {
	size := 0.0
	for i := 1; i < c.Len(); i++ {
		size += EuclideanDistance(c.nodes[i].Key.Point, c.nodes[i-1].Key.Point)
	}

	tortuosity := 0.0
	if c.Len() > 0 {
		endsDistance := EuclideanDistance(c.nodes[0].Key.Point, c.nodes[c.Len()-1].Key.Point)
		switch {
		case endsDistance > 0:
			tortuosity = size/endsDistance - 1.0
		case size > 0:
			tortuosity = math.Inf(1)
		}
	}

	average := 0.0
	count := 0.0
	for _, node := range c.nodes {
		count += 1.0
		average += (math.Sqrt(node.Key.Property) - average) / count
	}

	return Statistics{Size: size, Tortuosity: tortuosity, AveragePropertyValue: average}
}
