package centerline

import (
	"fmt"
	"log/slog"

	"porestream/internal/models"
	"porestream/pkg/graph"
	"porestream/pkg/skeleton"
	"porestream/pkg/voxel"
)

// Manager drives the full centerline extraction: distance transform,
// graph construction, cluster discovery, the gradient searches and
// the export of the results.
type Manager struct {
	flavor graph.Flavor
	logger *slog.Logger
}

// NewManager returns a manager building graphs of the given flavor.
func NewManager(flavor graph.Flavor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{flavor: flavor, logger: logger}
}

func (m *Manager) computeForSources(alg *Dijkstra, g graph.Graph,
	sources, sinks []FacePoint, gc *GradientCalculator) *Set {
	m.logger.Info("start of centerlines extraction")

	centerlines := NewSet()
	for _, source := range sources {
		key, ok := g.Key(source.Point)
		if !ok {
			continue
		}
		if !alg.ExecuteGradient(key, gc) {
			continue
		}
		m.logger.Info("search done", "source", source.Point)

		result := alg.Result()
		for _, sink := range sinks {
			if sinkKey, ok := g.Key(sink.Point); ok {
				centerlines.Add(result, sinkKey)
			}
		}
		for _, pair := range alg.EndCandidates() {
			centerlines.AddPair(result, g, pair.Reference, pair.Candidate)
		}
		break
	}

	m.logger.Info("end of centerlines extraction")
	centerlines.SplitByBranchPoints()
	return centerlines
}

// ComputeCenterlines extracts the centerline set of a binary pore
// volume.
func (m *Manager) ComputeCenterlines(v *models.Volume) (*Set, error) {
	m.logger.Info("computing distance transform")
	img := skeleton.Skeletonize(v)

	m.logger.Info("building graph", "flavor", string(m.flavor), "vertices", img.Len())
	g, err := graph.New(m.flavor, v.Shape)
	if err != nil {
		return nil, fmt.Errorf("centerline: %w", err)
	}
	graph.BuildFromSkeleton(g, img)

	m.logger.Info("discovering maximal clusters")
	clusters := graph.DiscoverClusters(g)
	m.logger.Info("clusters discovered", "count", clusters.Count)

	discoverer := NewCenterpointDiscoverer(v, img)
	sources := discoverer.SourcePoints()
	sinks := discoverer.EndPoints()
	m.logger.Info("face centerpoints discovered",
		"sources", len(sources), "sinks", len(sinks))

	alg := NewDijkstra(g, clusters)
	gc := NewGradientCalculator(v, img)
	return m.computeForSources(alg, g, sources, sinks, gc), nil
}

// FillImages rasterizes a centerline set into three sparse voxel
// images: the marks image flags end nodes with 2 and interior nodes
// with 1, the distance and merged images carry the squared boundary
// radius. A voxel shared by several centerlines keeps its first
// value.
func FillImages(s *Set) (marks, dist, merged map[voxel.Point]int32) {
	marks = make(map[voxel.Point]int32)
	dist = make(map[voxel.Point]int32)
	merged = make(map[voxel.Point]int32)
	for i := 0; i < s.Len(); i++ {
		path := s.Path(i)
		for index := 0; index < path.Len(); index++ {
			node := path.Node(index)
			p := node.Key.Point
			if _, ok := marks[p]; ok {
				continue
			}
			dist[p] = int32(node.Key.Property)
			if index == 0 || index == path.Len()-1 {
				marks[p] = 2
			} else {
				marks[p] = 1
			}
			merged[p] = int32(node.Key.Property)
		}
	}
	return marks, dist, merged
}
