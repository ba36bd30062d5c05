package network

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"porestream/pkg/voxel"
)

func lineImage() map[voxel.Point]int32 {
	return map[voxel.Point]int32{
		voxel.Pt(0, 0, 0): 4,
		voxel.Pt(1, 0, 0): 9,
		voxel.Pt(2, 0, 0): 4,
	}
}

func TestBuild(t *testing.T) {
	t.Run("nodes are numbered in point order", func(t *testing.T) {
		n := Build(lineImage())
		require.Len(t, n.Nodes, 3)
		for i, node := range n.Nodes {
			assert.Equal(t, i, node.ID)
			assert.Equal(t, voxel.Pt(i, 0, 0), node.Point)
		}
		assert.Equal(t, int32(9), n.Nodes[1].SquaredRadius)
	})

	t.Run("neighbouring nodes are linked once", func(t *testing.T) {
		n := Build(lineImage())
		require.Len(t, n.Links, 2)
		for i, link := range n.Links {
			assert.Equal(t, i, link.ID)
			assert.Less(t, link.Source, link.Target)
			assert.InDelta(t, 1.0, link.Length, 1e-12)
		}
	})

	t.Run("diagonal neighbours are linked too", func(t *testing.T) {
		n := Build(map[voxel.Point]int32{
			voxel.Pt(0, 0, 0): 1,
			voxel.Pt(1, 1, 1): 1,
		})
		require.Len(t, n.Links, 1)
		assert.InDelta(t, math.Sqrt(3), n.Links[0].Length, 1e-12)
	})

	t.Run("distant nodes are not linked", func(t *testing.T) {
		n := Build(map[voxel.Point]int32{
			voxel.Pt(0, 0, 0): 1,
			voxel.Pt(3, 0, 0): 1,
		})
		assert.Empty(t, n.Links)
	})

	t.Run("link radius combines both node radii", func(t *testing.T) {
		n := Build(lineImage())
		expected := math.Sqrt2 * 4 * 9 / math.Sqrt(4*4+9*9)
		assert.InDelta(t, expected, n.Links[0].SquaredRadius, 1e-12)
	})

	t.Run("zero radius nodes yield a zero radius link", func(t *testing.T) {
		n := Build(map[voxel.Point]int32{
			voxel.Pt(0, 0, 0): 0,
			voxel.Pt(1, 0, 0): 0,
		})
		require.Len(t, n.Links, 1)
		assert.Zero(t, n.Links[0].SquaredRadius)
	})

	t.Run("empty image yields an empty network", func(t *testing.T) {
		n := Build(map[voxel.Point]int32{})
		assert.Empty(t, n.Nodes)
		assert.Empty(t, n.Links)
	})
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centerlines.json")
	n := Build(lineImage())
	require.NoError(t, n.ExportJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Graph struct {
			Metadata struct {
				NumberOfNodes int `json:"number_of_nodes"`
				NumberOfLinks int `json:"number_of_links"`
			} `json:"metadata"`
			Nodes []struct {
				ID       string `json:"id"`
				Metadata struct {
					NodeSquaredRadius int32 `json:"node_squared_radius"`
					NodeCoordinates   struct {
						X int `json:"x"`
						Y int `json:"y"`
						Z int `json:"z"`
					} `json:"node_coordinates"`
				} `json:"metadata"`
			} `json:"nodes"`
			Edges []struct {
				ID       string `json:"id"`
				Source   string `json:"source"`
				Target   string `json:"target"`
				Metadata struct {
					LinkLength        float64 `json:"link_length"`
					LinkSquaredRadius float64 `json:"link_squared_radius"`
				} `json:"metadata"`
			} `json:"edges"`
		} `json:"graph"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, 3, doc.Graph.Metadata.NumberOfNodes)
	assert.Equal(t, 2, doc.Graph.Metadata.NumberOfLinks)
	require.Len(t, doc.Graph.Nodes, 3)
	assert.Equal(t, "1", doc.Graph.Nodes[1].ID)
	assert.Equal(t, int32(9), doc.Graph.Nodes[1].Metadata.NodeSquaredRadius)
	assert.Equal(t, 1, doc.Graph.Nodes[1].Metadata.NodeCoordinates.X)
	require.Len(t, doc.Graph.Edges, 2)
	assert.Equal(t, "0", doc.Graph.Edges[0].Source)
	assert.Equal(t, "1", doc.Graph.Edges[0].Target)
	assert.InDelta(t, 1.0, doc.Graph.Edges[0].Metadata.LinkLength, 1e-12)
}
