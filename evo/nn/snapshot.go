package nn

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Snapshot is a read-only copy of a network's topology and state, for
// renderers and other observers that must not hold the live network.
type Snapshot struct {
	LayerSizes  []int
	Weights     []float64   // canonical edge order
	Activations [][]float64 // [layer][node]
}

// Snapshot copies the network's current state.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{
		LayerSizes:  n.LayerSizes(),
		Weights:     n.Weights(),
		Activations: make([][]float64, len(n.layers)),
	}
	for i, layer := range n.layers {
		s.Activations[i] = make([]float64, len(layer))
		for j := range layer {
			s.Activations[i][j] = layer[j].value
		}
	}
	return s
}

// NodeID returns the flat id of node (layer, index): nodes are numbered
// layer by layer starting from 0.
func (s Snapshot) NodeID(layer, index int) int64 {
	id := 0
	for i := 0; i < layer; i++ {
		id += s.LayerSizes[i]
	}
	return int64(id + index)
}

// Graph returns the network as a weighted directed graph keyed by NodeID.
func (s Snapshot) Graph() *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for layer, size := range s.LayerSizes {
		for i := 0; i < size; i++ {
			g.AddNode(simple.Node(s.NodeID(layer, i)))
		}
	}

	e := 0
	for j := 0; j < len(s.LayerSizes)-1; j++ {
		for k := 0; k < s.LayerSizes[j]; k++ {
			for l := 0; l < s.LayerSizes[j+1]; l++ {
				from := g.Node(s.NodeID(j, k))
				to := g.Node(s.NodeID(j+1, l))
				g.SetWeightedEdge(g.NewWeightedEdge(from, to, s.Weights[e]))
				e++
			}
		}
	}
	return g
}

// Order returns node ids in a stable topological order, which for a layered
// network visits every layer before the next.
func (s Snapshot) Order() ([]int64, error) {
	sorted, err := topo.SortStabilized(s.Graph(), func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("network graph is not acyclic: %w", err)
	}
	ids := make([]int64, len(sorted))
	for i, n := range sorted {
		ids[i] = n.ID()
	}
	return ids, nil
}
