package centerline

import (
	"math"

	"github.com/flywave/go3d/float64/vec3"

	"porestream/internal/models"
	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

const (
	// gradientTolerance bounds the per-component magnitude below
	// which two gradients are considered to sum to zero.
	gradientTolerance = 1.0e-5

	// normaliseTolerance is the squared norm below which a gradient
	// is left as the zero vector instead of being normalised.
	normaliseTolerance = 1.0e-10
)

// GradientCalculator computes, for pore voxels, the direction that
// points away from the nearest pore wall, weighting each neighbour
// offset by the neighbour's squared boundary distance. The calculator
// keeps a visited set so consumed voxels stop contributing; it is
// exclusively owned by one search run.
type GradientCalculator struct {
	volume  *models.Volume
	img     *skeleton.Image
	visited map[voxel.Point]struct{}
}

// NewGradientCalculator returns a calculator over the pore volume and
// its distance transform.
func NewGradientCalculator(volume *models.Volume, img *skeleton.Image) *GradientCalculator {
	return &GradientCalculator{
		volume:  volume,
		img:     img,
		visited: make(map[voxel.Point]struct{}),
	}
}

// MarkVisited removes a voxel from future gradient sums.
func (g *GradientCalculator) MarkVisited(p voxel.Point) {
	g.visited[p] = struct{}{}
}

// IsVisited reports whether p has been consumed.
func (g *GradientCalculator) IsVisited(p voxel.Point) bool {
	_, ok := g.visited[p]
	return ok
}

func normalise(v *vec3.T) {
	if sq := v.LengthSqr(); sq > normaliseTolerance {
		length := math.Sqrt(sq)
		v[0] /= length
		v[1] /= length
		v[2] /= length
	}
}

// Gradient returns the normalised gradient at p, summing over the
// unvisited annotated pore neighbours of p. Vertex-neighbours do not
// contribute.
func (g *GradientCalculator) Gradient(p voxel.Point) vec3.T {
	var grad vec3.T
	for _, n := range p.Neighbours26() {
		if n.IsVertexNeighbour(p) {
			continue
		}
		if !g.volume.IsPore(n) || !g.img.Has(n) || g.IsVisited(n) {
			continue
		}
		distance := float64(g.img.Get(n).Distance)
		for i := 0; i < 3; i++ {
			grad[i] += float64(n[i]-p[i]) * distance
		}
	}
	normalise(&grad)
	return grad
}

// GradientIgnoring returns the normalised gradient at p with the
// ignored point excluded from the sum. Vertex-neighbours of p are
// excluded as well.
func (g *GradientCalculator) GradientIgnoring(p, ignored voxel.Point) vec3.T {
	var grad vec3.T
	for _, n := range p.Neighbours26() {
		if !g.volume.IsPore(n) || !g.img.Has(n) || n == ignored || n.IsVertexNeighbour(p) {
			continue
		}
		distance := float64(g.img.Get(n).Distance)
		for i := 0; i < 3; i++ {
			grad[i] += float64(n[i]-p[i]) * distance
		}
	}
	normalise(&grad)
	return grad
}

// StepPenalty measures how far the step from one voxel to another
// deviates from the gradient direction: 1 - (g . d)^2 with d the unit
// step direction. Zero for a step parallel to the gradient, one for a
// perpendicular step.
func (g *GradientCalculator) StepPenalty(from, to voxel.Point, gradient vec3.T) float64 {
	direction := vec3.T{
		float64(to[0] - from[0]),
		float64(to[1] - from[1]),
		float64(to[2] - from[2]),
	}
	normalise(&direction)
	dot := vec3.Dot(&direction, &gradient)
	return 1.0 - dot*dot
}

// DirectionVector returns from - to as a real vector.
func DirectionVector(from, to voxel.Point) vec3.T {
	return vec3.T{
		float64(from[0] - to[0]),
		float64(from[1] - to[1]),
		float64(from[2] - to[2]),
	}
}

// SumsToZero reports whether every component of a+b is within
// tolerance of zero, the antiparallel test used on direction vectors.
func SumsToZero(a, b vec3.T) bool {
	for i := 0; i < 3; i++ {
		s := a[i] + b[i]
		if s < -gradientTolerance || s > gradientTolerance {
			return false
		}
	}
	return true
}
