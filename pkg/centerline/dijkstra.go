package centerline

import (
	"github.com/flywave/go3d/float64/vec3"

	"porestream/pkg/graph"
	"porestream/pkg/voxel"
)

// cycleCandidateTolerance gates the step penalty below which a link
// into already-removed territory is recorded as a cycle candidate.
const cycleCandidateTolerance = 0.1

// PairCandidate is a link between the searched tree and a vertex that
// was already removed, a candidate closing point of a pore cycle.
type PairCandidate struct {
	Reference graph.Key
	Candidate graph.Key
}

// Dijkstra runs a single-source shortest path search over the pore
// graph. The gradient variant modifies the edge relaxation so that
// the path distance prefers wide voxels first and gradient-aligned
// steps second, which keeps the search on the medial axis.
//
// One instance owns its working state for the duration of a run; the
// input graph and cluster labels are read-only to it.
type Dijkstra struct {
	graph    graph.Graph
	clusters *graph.ClusterSet

	main        graph.Graph
	accumulated graph.Graph
	penalties   graph.Graph
	labels      graph.Graph

	pairLabels    map[int]struct{}
	endCandidates []PairCandidate
}

// NewDijkstra returns a search engine over the annotated pore graph
// and its cluster labeling.
func NewDijkstra(g graph.Graph, clusters *graph.ClusterSet) *Dijkstra {
	return &Dijkstra{graph: g, clusters: clusters}
}

// Result returns the main working graph of the last run: every
// reached vertex carries its path distance and predecessor.
func (d *Dijkstra) Result() graph.Graph {
	return d.main
}

// EndCandidates returns the cycle candidate pairs recorded by the
// last gradient run.
func (d *Dijkstra) EndCandidates() []PairCandidate {
	return d.endCandidates
}

func (d *Dijkstra) clusterLabel(p voxel.Point) int {
	return d.graph.Annotation(p).ClusterID
}

// LabelPath returns the cluster label propagated along the shortest
// path to p, or -1 when the search never labelled it.
func (d *Dijkstra) LabelPath(p voxel.Point) int {
	if !d.labels.Has(p) {
		return -1
	}
	return d.labels.Annotation(p).ClusterID
}

func (d *Dijkstra) setPathLabel(k graph.Key, label int) {
	if !d.labels.Has(k.Point) {
		d.labels.Insert(graph.Key{Point: k.Point})
	}
	d.labels.Annotation(k.Point).ClusterID = label
}

func (d *Dijkstra) isPairVisited(labelA, labelB int) bool {
	if labelA == labelB {
		return true
	}
	_, ok := d.pairLabels[d.clusters.PairKey(labelA, labelB)]
	return ok
}

func (d *Dijkstra) setPairVisited(labelA, labelB int) {
	if labelA == labelB {
		return
	}
	d.pairLabels[d.clusters.PairKey(labelA, labelB)] = struct{}{}
}

func (d *Dijkstra) initialise(source graph.Key, h *graph.Heap) {
	d.main = d.graph.NewLike()
	d.accumulated = d.graph.NewLike()
	d.penalties = d.graph.NewLike()
	d.labels = d.graph.NewLike()
	d.pairLabels = make(map[int]struct{})
	d.endCandidates = nil

	d.main.Insert(source)
	a := d.main.Annotation(source.Point)
	a.Distance = 0
	a.Handle = h.Push(source, 0, 0)
	d.setPathLabel(source, d.clusterLabel(source.Point))
}

// insertWorking adds a vertex to the three value-carrying working
// graphs with an infinite initial distance.
func (d *Dijkstra) insertWorking(k graph.Key) {
	d.main.Insert(k)
	d.main.Annotation(k.Point).Distance = InfiniteDistance
	d.accumulated.Insert(k)
	d.accumulated.Annotation(k.Point).Distance = InfiniteDistance
	d.penalties.Insert(k)
	d.penalties.Annotation(k.Point).Distance = InfiniteDistance
}

// accumulatedOf reads an accumulator value for the reference vertex.
// A vertex without a predecessor there contributes zero.
func accumulatedOf(g graph.Graph, p voxel.Point) float64 {
	if !g.Has(p) {
		return 0
	}
	a := g.Annotation(p)
	if a.Predecessor == nil {
		return 0
	}
	return a.Distance
}

// Execute runs the unmodified algorithm: plain 26-neighbour
// relaxation with the vertex weight as the edge cost. Returns false
// when the source is not a graph vertex.
func (d *Dijkstra) Execute(source graph.Key) bool {
	if !d.graph.Has(source.Point) {
		return false
	}
	h := graph.NewHeap()
	d.initialise(source, h)
	for h.Len() > 0 {
		item := h.PopMin()
		d.main.Annotation(item.Key.Point).Removed = true
		d.relaxNeighbours(item.Key, h)
	}
	return true
}

func (d *Dijkstra) relaxNeighbours(ref graph.Key, h *graph.Heap) {
	refAnn := d.main.Annotation(ref.Point)
	for _, candidate := range d.graph.Neighbours(ref.Point) {
		newVertex := false
		if !d.main.Has(candidate.Point) {
			d.insertWorking(candidate)
			newVertex = true
		}
		candAnn := d.main.Annotation(candidate.Point)
		if candAnn.Removed {
			continue
		}
		distance := refAnn.Distance + Weight(candidate)
		if candAnn.Distance <= distance {
			continue
		}
		candAnn.Distance = distance
		candAnn.Predecessor = &graph.Key{Point: ref.Point, Property: ref.Property}
		if newVertex {
			candAnn.Handle = h.Push(candidate, candAnn.Distance, 0)
		} else {
			h.Decrease(candAnn.Handle, candAnn.Distance, 0)
		}
	}
}

// ExecuteGradient runs the modified algorithm guided by the gradient
// calculator. Returns false when the source is not a graph vertex.
func (d *Dijkstra) ExecuteGradient(source graph.Key, gc *GradientCalculator) bool {
	if !d.graph.Has(source.Point) {
		return false
	}
	h := graph.NewHeap()
	d.initialise(source, h)
	for h.Len() > 0 {
		item := h.PopMin()
		d.main.Annotation(item.Key.Point).Removed = true
		d.relaxNeighboursGradient(item.Key, h, gc)
	}
	return true
}

// computeVertexDistance returns the path distance of the step from
// reference to candidate together with the candidate's accumulators.
// The penalties differ by the local-maximality of the reference: a
// non-maximal reference pays for deviating from the gradient, a
// maximal one pays for changing direction and for the step length, so
// the path prefers to cross plateaus in a straight line.
func (d *Dijkstra) computeVertexDistance(gc *GradientCalculator, gradient vec3.T,
	ref, cand graph.Key, refAcc, refAccPen float64) (path, candAcc, candAccPen float64) {
	penalties := 0.0
	weight := Weight(cand)
	refAnn := d.main.Annotation(ref.Point)

	if !graph.IsLocalMaximum(d.graph, ref) {
		penalty := gc.StepPenalty(ref.Point, cand.Point, gradient)
		nextStepPenalty := 0.0
		if refAnn.Predecessor != nil {
			stepGradient := gc.GradientIgnoring(cand.Point, ref.Point)
			nextStepPenalty = gc.StepPenalty(ref.Point, cand.Point, stepGradient)
		}
		penalties = penalty + nextStepPenalty

		candAccPen = 0.5 + penalty*weight + weight
		// dominanceFactor guarantees that the vertex weight is
		// prioritized and penalties only break ties.
		path = 1 + refAccPen + candAccPen + dominanceFactor*weight
	} else {
		penaltyDirection := 0.0
		if refAnn.Predecessor != nil {
			vectorA := DirectionVector(refAnn.Predecessor.Point, ref.Point)
			vectorB := DirectionVector(cand.Point, ref.Point)
			if !SumsToZero(vectorA, vectorB) {
				penaltyDirection = 0.5
			}
			if !graph.IsLocalMaximum(d.graph, cand) {
				stepGradient := gc.GradientIgnoring(cand.Point, ref.Point)
				penaltyDirection += gc.StepPenalty(ref.Point, cand.Point, stepGradient)
			}
		}
		penaltyDirection += EuclideanDistance(ref.Point, cand.Point)

		candAccPen = penaltyDirection*weight + penalties*weight + weight
		path = refAccPen + candAccPen + dominanceFactor*weight
	}
	candAcc = refAcc + weight
	return path, candAcc, candAccPen
}

func (d *Dijkstra) relaxGradient(ref, cand graph.Key, gc *GradientCalculator, gradient vec3.T) bool {
	refAcc := accumulatedOf(d.accumulated, ref.Point)
	refAccPen := accumulatedOf(d.penalties, ref.Point)

	path, candAcc, candAccPen := d.computeVertexDistance(gc, gradient, ref, cand, refAcc, refAccPen)

	candAnn := d.main.Annotation(cand.Point)
	if candAnn.Distance <= path {
		return false
	}
	pred := &graph.Key{Point: ref.Point, Property: ref.Property}
	candAnn.Distance = path
	candAnn.Predecessor = pred

	penAnn := d.penalties.Annotation(cand.Point)
	penAnn.Distance = candAccPen
	penAnn.Predecessor = pred

	accAnn := d.accumulated.Annotation(cand.Point)
	accAnn.Distance = candAcc
	accAnn.Predecessor = pred

	if label := d.clusterLabel(cand.Point); label >= 0 {
		d.setPathLabel(cand, label)
	} else {
		d.setPathLabel(cand, d.LabelPath(ref.Point))
	}
	return true
}

// buildValidList filters the candidate steps out of a reference
// vertex so that a centerline step never skips an adjacent
// higher-valued voxel. The strict list is preferred; when it comes
// out empty the relaxed list is used, and failing that the raw
// neighbour set, so the search never dead-ends on filtering alone.
func (d *Dijkstra) buildValidList(predecessor, reference graph.Key) []graph.Key {
	neighbours := d.graph.Neighbours(reference.Point)
	var validList, relaxedList []graph.Key
	if graph.IsLocalMaximum(d.graph, reference) {
		for _, candidate := range neighbours {
			if candidate.Point.IsVertexNeighbour(reference.Point) {
				continue
			}
			if !candidate.Point.IsFaceNeighbour(predecessor.Point) {
				validList = append(validList, candidate)
			}
		}
	} else {
		for _, candidate := range neighbours {
			if candidate.Point.IsVertexNeighbour(reference.Point) {
				continue
			}
			if candidate.Point.IsFaceNeighbour(predecessor.Point) {
				continue
			}
			valid := true
			for _, other := range neighbours {
				if other.Point.IsVertexNeighbour(reference.Point) {
					continue
				}
				if other.Point == predecessor.Point || other.Point == candidate.Point {
					continue
				}
				if other.Point.IsFaceNeighbour(reference.Point) &&
					other.Property > reference.Property {
					valid = false
					break
				}
				if other.Property > reference.Property &&
					(other.Point.IsEdgeNeighbour(predecessor.Point) ||
						other.Point.IsFaceNeighbour(predecessor.Point)) &&
					(other.Point.IsEdgeNeighbour(candidate.Point) ||
						other.Point.IsFaceNeighbour(candidate.Point)) {
					valid = false
					break
				}
			}
			if valid {
				validList = append(validList, candidate)
			}
			relaxedList = append(relaxedList, candidate)
		}
	}

	if len(validList) > 0 {
		return validList
	}
	if len(relaxedList) > 0 {
		return relaxedList
	}
	return neighbours
}

func (d *Dijkstra) buildValidNeighbours(reference graph.Key) []graph.Key {
	ann := d.main.Annotation(reference.Point)
	if ann.Predecessor != nil {
		return d.buildValidList(*ann.Predecessor, reference)
	}
	return d.graph.Neighbours(reference.Point)
}

func (d *Dijkstra) relaxNeighboursGradient(ref graph.Key, h *graph.Heap, gc *GradientCalculator) {
	refAnn := d.main.Annotation(ref.Point)
	validNeighbours := d.buildValidNeighbours(ref)

	var gradient vec3.T
	if refAnn.Predecessor == nil {
		gradient = gc.GradientIgnoring(ref.Point, ref.Point)
	} else {
		gradient = gc.GradientIgnoring(ref.Point, refAnn.Predecessor.Point)
		d.setPairVisited(d.LabelPath(ref.Point), d.LabelPath(refAnn.Predecessor.Point))
	}

	for _, candidate := range validNeighbours {
		newVertex := false
		if !d.main.Has(candidate.Point) {
			d.insertWorking(candidate)
			newVertex = true
		}
		candAnn := d.main.Annotation(candidate.Point)

		if candAnn.Removed {
			refLabel := d.LabelPath(ref.Point)
			candLabel := d.LabelPath(candidate.Point)
			if !d.isPairVisited(refLabel, candLabel) {
				localGradient := gc.GradientIgnoring(candidate.Point, ref.Point)
				penalty := gc.StepPenalty(ref.Point, candidate.Point, localGradient)
				if penalty < cycleCandidateTolerance {
					d.setPairVisited(refLabel, candLabel)
					d.endCandidates = append(d.endCandidates, PairCandidate{
						Reference: ref,
						Candidate: candidate,
					})
				}
			}
			continue
		}

		if d.relaxGradient(ref, candidate, gc, gradient) {
			pen := d.penalties.Annotation(candidate.Point).Distance
			if newVertex {
				candAnn.Handle = h.Push(candidate, candAnn.Distance, pen)
			} else {
				h.Decrease(candAnn.Handle, candAnn.Distance, pen)
			}
		}
	}
}
