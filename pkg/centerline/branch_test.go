package centerline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"porestream/pkg/graph"
	"porestream/pkg/voxel"
)

// annotateChain records a predecessor chain into a result graph,
// endpoint first, source last. Vertices already present keep their
// earlier annotation, so chains sharing a suffix merge.
func annotateChain(annotated graph.Graph, chain []graph.Key) {
	for i, k := range chain {
		if annotated.Has(k.Point) {
			continue
		}
		annotated.Insert(k)
		a := annotated.Annotation(k.Point)
		a.Distance = float64(len(chain) - 1 - i)
		if i+1 < len(chain) {
			next := chain[i+1]
			a.Predecessor = &graph.Key{Point: next.Point, Property: next.Property}
		}
	}
}

func key(x, y, z int) graph.Key {
	return graph.Key{Point: voxel.Pt(x, y, z)}
}

func resultGraph(t *testing.T) graph.Graph {
	t.Helper()
	g, err := graph.New(graph.FlavorMemory, [3]int{})
	require.NoError(t, err)
	return g
}

func TestAddGuards(t *testing.T) {
	annotated := resultGraph(t)
	annotated.Insert(key(0, 0, 0))

	s := NewSet()
	s.Add(annotated, key(9, 9, 9))
	s.Add(annotated, key(0, 0, 0))

	assert.Zero(t, s.Len(), "absent and unreached end points are skipped")
}

func TestAddMergingChains(t *testing.T) {
	annotated := resultGraph(t)
	trunk := []graph.Key{key(4, 0, 0), key(3, 0, 0), key(2, 0, 0), key(1, 0, 0), key(0, 0, 0)}
	side := []graph.Key{key(2, 2, 0), key(2, 1, 0), key(2, 0, 0), key(1, 0, 0), key(0, 0, 0)}
	annotateChain(annotated, trunk)
	annotateChain(annotated, side)

	s := NewSet()
	s.Add(annotated, trunk[0])
	s.Add(annotated, side[0])

	require.Equal(t, 2, s.Len())
	assert.Equal(t, 5, s.Path(0).Len())

	merged := s.Path(1)
	require.Equal(t, 3, merged.Len(), "the side chain stops where it joins the trunk")
	assert.Equal(t, voxel.Pt(2, 2, 0), merged.Node(0).Key.Point)
	assert.Equal(t, voxel.Pt(2, 0, 0), merged.Node(2).Key.Point)

	assert.True(t, s.IsBranch(voxel.Pt(2, 0, 0)))
	assert.False(t, s.IsBranch(voxel.Pt(1, 0, 0)))

	t.Run("splitting cuts the trunk at the junction", func(t *testing.T) {
		s.SplitByBranchPoints()
		require.Equal(t, 3, s.Len())
		require.Len(t, s.Statistics(), 3)

		head := s.Path(0)
		require.Equal(t, 3, head.Len())
		assert.Equal(t, voxel.Pt(4, 0, 0), head.Node(0).Key.Point)
		assert.Equal(t, voxel.Pt(2, 0, 0), head.Node(2).Key.Point)

		tail := s.Path(2)
		require.Equal(t, 3, tail.Len())
		assert.Equal(t, voxel.Pt(2, 0, 0), tail.Node(0).Key.Point, "the junction is shared by both halves")
		assert.Equal(t, voxel.Pt(0, 0, 0), tail.Node(2).Key.Point)
	})
}

// lineGraph builds a pore graph holding a straight x-line of the
// given properties starting at the origin.
func lineGraph(t *testing.T, properties ...float64) graph.Graph {
	t.Helper()
	g, err := graph.New(graph.FlavorMemory, [3]int{})
	require.NoError(t, err)
	for x, property := range properties {
		g.Insert(graph.Key{Point: voxel.Pt(x, 0, 0), Property: property})
	}
	return g
}

func TestValidateLMPath(t *testing.T) {
	v0 := graph.Key{Point: voxel.Pt(0, 0, 0), Property: 1}
	v1 := graph.Key{Point: voxel.Pt(1, 0, 0), Property: 1}
	v2 := graph.Key{Point: voxel.Pt(2, 0, 0), Property: 1}
	v3 := graph.Key{Point: voxel.Pt(3, 0, 0), Property: 1}

	t.Run("accepts a thin straight join", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		assert.True(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2}))
	})

	t.Run("rejects coincident ends", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v0}))
	})

	t.Run("rejects a two-vertex path", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1}))
	})

	t.Run("rejects adjacent ends", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		diagonal := graph.Key{Point: voxel.Pt(1, 1, 0), Property: 1}
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, diagonal}),
			"the outer vertices may not be neighbours themselves")
	})

	t.Run("rejects a middle that skips a wider face neighbour", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		g.Insert(graph.Key{Point: voxel.Pt(1, 1, 0), Property: 5})
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2}))
	})

	t.Run("tolerates a narrower side neighbour", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		g.Insert(graph.Key{Point: voxel.Pt(1, 1, 0), Property: 0.5})
		assert.True(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2}))
	})

	t.Run("rejects a used middle running alongside a centerline", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1)
		g.Insert(graph.Key{Point: voxel.Pt(1, 1, 0), Property: 0.5})
		s := NewSet()
		s.markUsed(v1.Point)
		assert.False(t, s.validateLMPath(g, []graph.Key{v0, v1, v2}))
	})

	t.Run("accepts a straight four-vertex path", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1, 1)
		assert.True(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2, v3}))
	})

	t.Run("rejects a skipped wider non-maximal neighbour", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1, 1)
		g.Insert(graph.Key{Point: voxel.Pt(1, 1, 0), Property: 5})
		g.Insert(graph.Key{Point: voxel.Pt(1, 2, 0), Property: 9})
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2, v3}))
	})

	t.Run("rejects a wider sideways neighbour past the ends", func(t *testing.T) {
		g := lineGraph(t, 1, 1, 1, 1)
		g.Insert(graph.Key{Point: voxel.Pt(0, 1, 0), Property: 5})
		assert.False(t, NewSet().validateLMPath(g, []graph.Key{v0, v1, v2, v3}))
	})
}

func TestAddPair(t *testing.T) {
	m0 := graph.Key{Point: voxel.Pt(0, 0, 0), Property: 2}
	a := graph.Key{Point: voxel.Pt(1, 0, 0), Property: 1}
	b := graph.Key{Point: voxel.Pt(2, 0, 0), Property: 2}

	build := func(t *testing.T) (annotated, g graph.Graph) {
		g = resultGraph(t)
		g.Insert(m0)
		g.Insert(a)
		g.Insert(b)

		annotated = resultGraph(t)
		annotateChain(annotated, []graph.Key{a, m0})
		annotateChain(annotated, []graph.Key{b, a, m0})
		return annotated, g
	}

	t.Run("a validated pair closes the cycle", func(t *testing.T) {
		annotated, g := build(t)
		s := NewSet()
		s.AddPair(annotated, g, a, b)

		require.Equal(t, 2, s.Len())
		first := s.Path(0)
		require.Equal(t, 2, first.Len())
		assert.Equal(t, a.Point, first.Node(0).Key.Point)
		assert.Equal(t, m0.Point, first.Node(1).Key.Point)

		second := s.Path(1)
		require.Equal(t, 2, second.Len())
		assert.Equal(t, b.Point, second.Node(0).Key.Point)
		assert.Equal(t, a.Point, second.Node(1).Key.Point)

		assert.True(t, s.IsBranch(a.Point), "the closing walk rejoins at a")
	})

	t.Run("an invalid joined path adds nothing", func(t *testing.T) {
		annotated, g := build(t)
		g.Insert(graph.Key{Point: voxel.Pt(1, 1, 0), Property: 5})

		s := NewSet()
		s.AddPair(annotated, g, a, b)
		assert.Zero(t, s.Len())
		assert.False(t, s.IsBranch(a.Point))
	})
}
