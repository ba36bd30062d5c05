package network

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// JSON Graph Format, http://jsongraphformat.info. Node and edge ids
// are decimal strings per the format.

type jsonCoordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type jsonNodeMetadata struct {
	NodeSquaredRadius int32           `json:"node_squared_radius"`
	NodeCoordinates   jsonCoordinates `json:"node_coordinates"`
}

type jsonNode struct {
	ID       string           `json:"id"`
	Metadata jsonNodeMetadata `json:"metadata"`
}

type jsonEdgeMetadata struct {
	LinkLength        float64 `json:"link_length"`
	LinkSquaredRadius float64 `json:"link_squared_radius"`
}

type jsonEdge struct {
	ID       string           `json:"id"`
	Source   string           `json:"source"`
	Target   string           `json:"target"`
	Metadata jsonEdgeMetadata `json:"metadata"`
}

type jsonGraphMetadata struct {
	NumberOfNodes int `json:"number_of_nodes"`
	NumberOfLinks int `json:"number_of_links"`
}

type jsonGraph struct {
	Metadata jsonGraphMetadata `json:"metadata"`
	Nodes    []jsonNode        `json:"nodes"`
	Edges    []jsonEdge        `json:"edges"`
}

type jsonDocument struct {
	Graph jsonGraph `json:"graph"`
}

func buildDocument(n *Network) jsonDocument {
	doc := jsonDocument{
		Graph: jsonGraph{
			Metadata: jsonGraphMetadata{
				NumberOfNodes: len(n.Nodes),
				NumberOfLinks: len(n.Links),
			},
			Nodes: make([]jsonNode, 0, len(n.Nodes)),
			Edges: make([]jsonEdge, 0, len(n.Links)),
		},
	}
	for _, node := range n.Nodes {
		doc.Graph.Nodes = append(doc.Graph.Nodes, jsonNode{
			ID: strconv.Itoa(node.ID),
			Metadata: jsonNodeMetadata{
				NodeSquaredRadius: node.SquaredRadius,
				NodeCoordinates: jsonCoordinates{
					X: node.Point[0],
					Y: node.Point[1],
					Z: node.Point[2],
				},
			},
		})
	}
	for _, link := range n.Links {
		doc.Graph.Edges = append(doc.Graph.Edges, jsonEdge{
			ID:     strconv.Itoa(link.ID),
			Source: strconv.Itoa(link.Source),
			Target: strconv.Itoa(link.Target),
			Metadata: jsonEdgeMetadata{
				LinkLength:        link.Length,
				LinkSquaredRadius: link.SquaredRadius,
			},
		})
	}
	return doc
}

// ExportJSON writes the network to path in JSON Graph Format.
func (n *Network) ExportJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export network: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(buildDocument(n)); err != nil {
		return fmt.Errorf("export network: %w", err)
	}
	return f.Close()
}
