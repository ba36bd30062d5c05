package centerline

import (
	"porestream/pkg/graph"
	"porestream/pkg/voxel"
)

// Set accumulates the centerlines extracted from one or more search
// results. It tracks which voxels are already part of a centerline so
// overlapping paths only contribute their fresh segments, and which
// voxels are branch points where paths meet.
type Set struct {
	paths      []Centerline
	statistics []Statistics
	used       map[voxel.Point]struct{}
	branches   map[voxel.Point]struct{}
}

// NewSet returns an empty centerline set.
func NewSet() *Set {
	return &Set{
		used:     make(map[voxel.Point]struct{}),
		branches: make(map[voxel.Point]struct{}),
	}
}

// Len returns the number of centerlines.
func (s *Set) Len() int {
	return len(s.paths)
}

// Path returns the i-th centerline.
func (s *Set) Path(i int) *Centerline {
	return &s.paths[i]
}

// Statistics returns one entry per centerline, in path order.
func (s *Set) Statistics() []Statistics {
	return s.statistics
}

// IsBranch reports whether p is a recorded branch point.
func (s *Set) IsBranch(p voxel.Point) bool {
	_, ok := s.branches[p]
	return ok
}

func (s *Set) isNotUsed(p voxel.Point) bool {
	_, ok := s.used[p]
	return !ok
}

func (s *Set) markUsed(p voxel.Point) {
	s.used[p] = struct{}{}
}

func (s *Set) markBranch(p voxel.Point) {
	s.branches[p] = struct{}{}
}

func (s *Set) addPaths(paths []Centerline) {
	for _, path := range paths {
		path := path
		s.paths = append(s.paths, path)
		s.statistics = append(s.statistics, NewStatistics(&path))
	}
}

// handleNewNode appends the current node to the builder when it is
// unused, closing the open segment otherwise. It reports whether the
// walk is extending a fresh segment.
func (s *Set) handleNewNode(builder *[]Node, centerlines *[]Centerline,
	point graph.Key, annotation *graph.Annotation,
	prevPoint graph.Key, prevAnnotation *graph.Annotation,
	addPrev, isBuilding *bool) bool {
	*addPrev = false
	if s.isNotUsed(point.Point) {
		if !*isBuilding {
			*builder = append(*builder, Node{Key: prevPoint, Distance: prevAnnotation.Distance})
			*addPrev = true
		}
		*isBuilding = true
		*builder = append(*builder, Node{Key: point, Distance: annotation.Distance})
		return true
	}
	if len(*builder) > 0 {
		if *isBuilding {
			*builder = append(*builder, Node{Key: point, Distance: annotation.Distance})
			*centerlines = append(*centerlines, NewCenterline(*builder))
			*builder = nil
		}
		*isBuilding = false
		return false
	}
	*isBuilding = false
	return false
}

// segments walks the predecessor chain from endPoint back to the
// source and cuts it into the sub-paths not yet present in the set.
// The voxel where a segment closes against already-used territory is
// a branch point.
func (s *Set) segments(annotated graph.Graph, endPoint graph.Key) []Centerline {
	var builder []Node
	var centerlines []Centerline
	point := endPoint
	prevPoint := endPoint
	annotation := annotated.Annotation(endPoint.Point)
	prevAnnotation := annotation
	isEndPoint := true
	isBuilding := true
	addPrev := false
	for annotation.Predecessor != nil {
		wasBuilding := isBuilding
		if !s.handleNewNode(&builder, &centerlines, point, annotation,
			prevPoint, prevAnnotation, &addPrev, &isBuilding) {
			if wasBuilding && !isBuilding && !isEndPoint {
				s.markBranch(point.Point)
			}
		}
		if addPrev {
			s.markBranch(prevPoint.Point)
		}
		s.markUsed(point.Point)

		prevPoint = point
		prevAnnotation = annotation
		point = *annotation.Predecessor
		annotation = annotated.Annotation(point.Point)
		isEndPoint = false
	}
	// add source
	if s.handleNewNode(&builder, &centerlines, point, annotation,
		prevPoint, prevAnnotation, &addPrev, &isBuilding) {
		if addPrev {
			s.markBranch(prevPoint.Point)
		}
		centerlines = append(centerlines, NewCenterline(builder))
		s.markUsed(point.Point)
	}
	return centerlines
}

// Add extracts the centerline ending at endPoint from a search result
// and adds its fresh segments to the set. Unreached end points are
// skipped silently.
func (s *Set) Add(annotated graph.Graph, endPoint graph.Key) {
	if !annotated.Has(endPoint.Point) {
		return
	}
	if annotated.Annotation(endPoint.Point).Distance >= InfiniteDistance {
		return
	}
	s.addPaths(s.segments(annotated, endPoint))
}

// buildLMPath joins the two predecessor chains of a candidate pair
// into a single path running local maximum to local maximum through
// the a-b link.
func (s *Set) buildLMPath(annotated, g graph.Graph, a, b graph.Key) []graph.Key {
	stack := []graph.Key{a}
	annotation := annotated.Annotation(a.Point)
	for annotation.Predecessor != nil {
		if graph.IsLocalMaximum(g, stack[len(stack)-1]) {
			break
		}
		stack = append(stack, *annotation.Predecessor)
		annotation = annotated.Annotation(stack[len(stack)-1].Point)
	}
	lmPath := make([]graph.Key, 0, len(stack)+1)
	for i := len(stack) - 1; i >= 0; i-- {
		lmPath = append(lmPath, stack[i])
	}

	annotation = annotated.Annotation(b.Point)
	lmPath = append(lmPath, b)
	for annotation.Predecessor != nil {
		if graph.IsLocalMaximum(g, lmPath[len(lmPath)-1]) {
			break
		}
		lmPath = append(lmPath, *annotation.Predecessor)
		annotation = annotated.Annotation(lmPath[len(lmPath)-1].Point)
	}
	return lmPath
}

func checkProperty3(vertexI, vertexI1, vertexI2 graph.Key) bool {
	if vertexI.Point.IsEdgeNeighbour(vertexI2.Point) ||
		vertexI.Point.IsFaceNeighbour(vertexI2.Point) {
		return false
	}
	if !(vertexI.Point.IsEdgeNeighbour(vertexI1.Point) ||
		vertexI.Point.IsFaceNeighbour(vertexI1.Point)) ||
		!(vertexI1.Point.IsEdgeNeighbour(vertexI2.Point) ||
			vertexI1.Point.IsFaceNeighbour(vertexI2.Point)) {
		return false
	}
	return true
}

func checkProperty4(vertexI, vertexI1, vertexI2, neighbour graph.Key, g graph.Graph) bool {
	if neighbour.Point.IsFaceNeighbour(vertexI1.Point) &&
		!graph.IsLocalMaximum(g, neighbour) &&
		neighbour.Point != vertexI.Point &&
		neighbour.Point != vertexI2.Point &&
		neighbour.Property > vertexI1.Property {
		return false
	}
	return true
}

func checkProperty5(vertexI, vertexI1, vertexI2, neighbour graph.Key) bool {
	if (neighbour.Point.IsFaceNeighbour(vertexI1.Point) ||
		neighbour.Point.IsEdgeNeighbour(vertexI1.Point)) &&
		!neighbour.Point.IsFaceNeighbour(vertexI.Point) &&
		!neighbour.Point.IsEdgeNeighbour(vertexI.Point) &&
		neighbour.Point != vertexI1.Point &&
		neighbour.Point != vertexI.Point &&
		neighbour.Property > vertexI2.Property {
		return false
	}
	return true
}

func (s *Set) checkPropertyThin(vertex0, vertexI1, vertexM, neighbour graph.Key) bool {
	if neighbour.Point.IsFaceNeighbour(vertexI1.Point) &&
		neighbour.Point != vertex0.Point &&
		neighbour.Point != vertexM.Point &&
		!s.isNotUsed(vertexI1.Point) {
		return false
	}
	return true
}

// validateLMPath checks the joined path against the thinness
// properties of Pudney (1998): a closing link is accepted only when
// no step skips an adjacent higher-valued voxel and the path does not
// run alongside already-used centerline voxels.
func (s *Set) validateLMPath(g graph.Graph, lmPath []graph.Key) bool {
	if lmPath[0].Point == lmPath[len(lmPath)-1].Point {
		return false
	}

	if len(lmPath) == 3 {
		if !checkProperty3(lmPath[0], lmPath[1], lmPath[2]) {
			return false
		}
		for _, neighbour := range g.Neighbours(lmPath[1].Point) {
			if !s.checkPropertyThin(lmPath[0], lmPath[1], lmPath[2], neighbour) {
				return false
			}
			if neighbour.Point.IsFaceNeighbour(lmPath[1].Point) &&
				neighbour.Point != lmPath[0].Point &&
				neighbour.Point != lmPath[2].Point &&
				neighbour.Property > lmPath[1].Property {
				return false
			}
			if !neighbour.Point.IsVertexNeighbour(lmPath[1].Point) &&
				neighbour.Point != lmPath[1].Point &&
				neighbour.Point != lmPath[0].Point &&
				neighbour.Property > lmPath[2].Property {
				return false
			}
		}
		return true
	}

	if len(lmPath) > 3 {
		for i := 0; i != len(lmPath)-3; i++ {
			if !checkProperty3(lmPath[i], lmPath[i+1], lmPath[i+2]) {
				return false
			}
			for _, neighbour := range g.Neighbours(lmPath[i+1].Point) {
				if !s.checkPropertyThin(lmPath[0], lmPath[i+1], lmPath[len(lmPath)-1], neighbour) {
					return false
				}
				if !checkProperty4(lmPath[i], lmPath[i+1], lmPath[i+2], neighbour, g) {
					return false
				}
				valid := false
				if lmPath[i].Property < lmPath[i+1].Property ||
					lmPath[i+1].Property < lmPath[i+2].Property {
					valid = checkProperty5(lmPath[i], lmPath[i+1], lmPath[i+2], neighbour)
				} else {
					valid = checkProperty5(lmPath[i+2], lmPath[i+1], lmPath[i], neighbour)
				}
				if !valid {
					return false
				}
			}
		}
		return true
	}
	return false
}

// AddPair validates the cycle-closing link between a candidate pair
// and, when the joined path is thin, adds the fresh segments of both
// predecessor chains.
func (s *Set) AddPair(annotated, g graph.Graph, a, b graph.Key) {
	lmPath := s.buildLMPath(annotated, g, a, b)
	if !s.validateLMPath(g, lmPath) {
		return
	}
	s.addPaths(s.segments(annotated, a))
	s.addPaths(s.segments(annotated, b))
}

// SplitByBranchPoints cuts every centerline at the first branch point
// in its interior, appending the tail as a new centerline which is
// itself scanned again, and recomputes all statistics.
func (s *Set) SplitByBranchPoints() {
	for j := 0; j < len(s.paths); j++ {
		for i := 0; i < s.paths[j].Len(); i++ {
			if s.IsBranch(s.paths[j].Node(i).Key.Point) {
				newPath := s.paths[j].Split(i)
				if newPath.Len() > 0 {
					s.paths = append(s.paths, newPath)
					break
				}
			}
		}
	}

	s.statistics = s.statistics[:0]
	for i := range s.paths {
		s.statistics = append(s.statistics, NewStatistics(&s.paths[i]))
	}
}
