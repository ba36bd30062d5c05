package graph

// ClusterSet is the result of the maximal-cluster discovery pass.
// Every local-maximum vertex carries a non-negative cluster id in its
// annotation; non-maxima keep -1.
type ClusterSet struct {
	// Count is the total number of clusters found.
	Count int
}

// DiscoverClusters labels the connected components of local-maximum
// vertices. Two maxima share a label iff they are connected through a
// chain of face or edge adjacencies among local maxima; plateaus of
// equal-valued voxels therefore collapse into a single cluster.
func DiscoverClusters(g Graph) *ClusterSet {
	next := 0
	g.Each(func(k Key, a *Annotation) {
		if a.ClusterID >= 0 || !IsLocalMaximum(g, k) {
			return
		}

		// BFS over face/edge-adjacent local maxima
		a.ClusterID = next
		queue := []Key{k}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range g.Neighbours(cur.Point) {
				if cur.Point.IsVertexNeighbour(n.Point) {
					continue
				}
				na := g.Annotation(n.Point)
				if na.ClusterID >= 0 || !IsLocalMaximum(g, n) {
					continue
				}
				na.ClusterID = next
				queue = append(queue, n)
			}
		}
		next++
	})
	return &ClusterSet{Count: next}
}

// PairKey folds an unordered cluster-id pair into a single integer,
// used to deduplicate candidate connections between clusters.
func (cs *ClusterSet) PairKey(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return a*cs.Count + b
}
