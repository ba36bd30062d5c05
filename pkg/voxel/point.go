// Package voxel provides the integer voxel model used throughout the
// pipeline: 3D points, the 26-neighbourhood adjacency predicates and
// deterministic neighbour enumeration.
package voxel

// Point is a voxel position as integer (x, y, z) coordinates.
type Point [3]int

// Pt builds a Point from its three coordinates.
func Pt(x, y, z int) Point {
	return Point{x, y, z}
}

// Coord returns the i-th coordinate of the point.
func (p Point) Coord(i int) int {
	return p[i]
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

// Less orders points lexicographically by (x, y, z).
func (p Point) Less(q Point) bool {
	for i := 0; i < 3; i++ {
		if p[i] != q[i] {
			return p[i] < q[i]
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// deltas returns the per-axis absolute differences and their sum, with
// ok = false when any axis differs by more than one voxel. Every
// adjacency predicate below is false in that case.
func (p Point) deltas(q Point) (sum int, ok bool) {
	for i := 0; i < 3; i++ {
		d := abs(p[i] - q[i])
		if d > 1 {
			return 0, false
		}
		sum += d
	}
	return sum, true
}

// IsFaceNeighbour reports whether q shares a face with p
// (6-neighbourhood, L1 distance exactly 1).
func (p Point) IsFaceNeighbour(q Point) bool {
	sum, ok := p.deltas(q)
	return ok && sum == 1
}

// IsEdgeNeighbour reports whether q shares an edge with p
// (12-neighbourhood, L1 distance exactly 2 with no axis delta above 1).
func (p Point) IsEdgeNeighbour(q Point) bool {
	sum, ok := p.deltas(q)
	return ok && sum == 2
}

// IsVertexNeighbour reports whether q shares only a corner with p
// (the 8 diagonal neighbours, L1 distance exactly 3).
func (p Point) IsVertexNeighbour(q Point) bool {
	sum, ok := p.deltas(q)
	return ok && sum == 3
}

// IsNeighbour reports whether q is any of the 26 neighbours of p.
func (p Point) IsNeighbour(q Point) bool {
	sum, ok := p.deltas(q)
	return ok && sum >= 1 && sum <= 3
}

// Neighbours26 enumerates the 26 points around p, excluding p itself.
// The order is deterministic: nested loops over dx, dy, dz in
// {-1, 0, +1}.
func (p Point) Neighbours26() []Point {
	out := make([]Point, 0, 26)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out = append(out, Point{p[0] + dx, p[1] + dy, p[2] + dz})
			}
		}
	}
	return out
}

// NeighboursInPlane enumerates the 8 neighbours of p inside the plane
// obtained by fixing the coordinate along the given axis.
func (p Point) NeighboursInPlane(axis int) []Point {
	out := make([]Point, 0, 8)
	for da := -1; da <= 1; da++ {
		for db := -1; db <= 1; db++ {
			if da == 0 && db == 0 {
				continue
			}
			q := p
			q[(axis+1)%3] += da
			q[(axis+2)%3] += db
			out = append(out, q)
		}
	}
	return out
}
