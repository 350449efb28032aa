package nn

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTopology reports a layer-size sequence that cannot form a network.
	ErrTopology = errors.New("invalid network topology")
	// ErrEdgeIndex reports a canonical edge index outside [0, CountEdges()).
	ErrEdgeIndex = errors.New("edge index out of range")
	// ErrInputIndex reports an input node index or input vector of the wrong size.
	ErrInputIndex = errors.New("input index out of range")
)

// Edge is a weighted connection from node (Layer, Src) to node (Layer+1, Dst).
type Edge struct {
	Layer  int
	Src    int
	Dst    int
	Weight float64
}

// update is the outcome of delivering one contribution to a node.
type update int

const (
	unchanged update = iota // same contribution as last time, nothing to do
	absorbed                // contribution stored, activation did not move
	changed                 // activation moved, outgoing edges must fire
)

// node keeps the last contribution received from each incoming edge,
// indexed by the source node's position in the previous layer.
type node struct {
	value float64
	in    []float64
}

func (n *node) receive(src int, contribution float64, act ActivationType) update {
	if n.in[src] == contribution {
		return unchanged
	}
	n.in[src] = contribution
	v := act(floats.Sum(n.in))
	if v == n.value {
		return absorbed
	}
	n.value = v
	return changed
}

// Stats counts propagation work since construction or the last ResetStats.
type Stats struct {
	Deliveries    int // edge contributions delivered to a destination node
	ShortCircuits int // deliveries that matched the stored contribution
	Recomputes    int // aggregate activations recomputed
	Cascades      int // nodes whose activation changed and notified their outgoing edges
}

// Network is a layered, fully connected feed-forward graph evaluated
// incrementally: changing an input only recomputes what the change reaches,
// and a node whose inputs or activation did not move stops the cascade.
//
// Nodes live in per-layer arenas and edges in one slice in canonical order
// (source layer, then source index, then destination index), so the
// outgoing edges of node (j, k) are a contiguous run of that slice.
type Network struct {
	sizes   []int
	layers  [][]node
	edges   []Edge
	offsets []int // offsets[j] is the canonical index of the first edge leaving layer j
	act     ActivationType
	queue   []int
	stats   Stats
}

// New builds a network using the default tanh activation.
func New(sizes ...int) (*Network, error) {
	return NewWithActivation(Tanh, sizes...)
}

// NewWithActivation builds a network whose non-input nodes use fn.
// All edge weights start at 0 and all activations at 0, so fn(0) must be 0.
func NewWithActivation(fn ActivationType, sizes ...int) (*Network, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil activation function", ErrTopology)
	}
	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", ErrTopology, len(sizes))
	}
	for i, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: layer %d has size %d", ErrTopology, i, size)
		}
	}

	n := &Network{
		sizes:   append([]int(nil), sizes...),
		layers:  make([][]node, len(sizes)),
		offsets: make([]int, len(sizes)),
		act:     fn,
	}
	for i, size := range sizes {
		n.layers[i] = make([]node, size)
		if i == 0 {
			continue
		}
		for j := range n.layers[i] {
			n.layers[i][j].in = make([]float64, sizes[i-1])
		}
	}

	n.edges = make([]Edge, 0, countEdges(sizes))
	for j := 0; j < len(sizes)-1; j++ {
		n.offsets[j] = len(n.edges)
		for k := 0; k < sizes[j]; k++ {
			for l := 0; l < sizes[j+1]; l++ {
				n.edges = append(n.edges, Edge{Layer: j, Src: k, Dst: l})
			}
		}
	}
	n.offsets[len(sizes)-1] = len(n.edges)
	return n, nil
}

func countEdges(sizes []int) int {
	count := 0
	for i := 0; i < len(sizes)-1; i++ {
		count += sizes[i] * sizes[i+1]
	}
	return count
}

// CountEdges returns the number of edges, which is also the genome length.
func (n *Network) CountEdges() int {
	return len(n.edges)
}

// LayerSizes returns a copy of the layer-size sequence.
func (n *Network) LayerSizes() []int {
	return append([]int(nil), n.sizes...)
}

// InputNode is a handle on one node of the first layer.
type InputNode struct {
	net   *Network
	index int
}

// Index returns the node's position in the input layer.
func (in InputNode) Index() int { return in.index }

// Value returns the node's current activation.
func (in InputNode) Value() float64 { return in.net.layers[0][in.index].value }

// SetValue clamps v to [0, 1] and propagates it. It reports whether the
// activation changed; setting the current value propagates nothing.
func (in InputNode) SetValue(v float64) bool {
	return in.net.setInput(in.index, v)
}

// Inputs returns handles on the input layer, in order.
func (n *Network) Inputs() []InputNode {
	inputs := make([]InputNode, n.sizes[0])
	for i := range inputs {
		inputs[i] = InputNode{net: n, index: i}
	}
	return inputs
}

// SetInput is InputNode.SetValue addressed by index.
func (n *Network) SetInput(i int, v float64) (bool, error) {
	if i < 0 || i >= n.sizes[0] {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrInputIndex, i, n.sizes[0])
	}
	return n.setInput(i, v), nil
}

func (n *Network) setInput(i int, v float64) bool {
	v = math.Max(0, math.Min(v, 1))
	in := &n.layers[0][i]
	if in.value == v {
		return false
	}
	in.value = v
	n.notify(0, i)
	n.drain()
	return true
}

// Outputs returns the activations of the last layer, in order.
func (n *Network) Outputs() []float64 {
	last := n.layers[len(n.layers)-1]
	out := make([]float64, len(last))
	for i := range last {
		out[i] = last[i].value
	}
	return out
}

// Value returns the activation of node (layer, index).
func (n *Network) Value(layer, index int) float64 {
	return n.layers[layer][index].value
}

// SetWeight sets the weight of the edge at canonical position index and
// delivers the edge's new contribution, so the network stays at rest.
func (n *Network) SetWeight(index int, w float64) error {
	if index < 0 || index >= len(n.edges) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrEdgeIndex, index, len(n.edges))
	}
	n.edges[index].Weight = w
	n.queue = append(n.queue, index)
	n.drain()
	return nil
}

// Weight returns the weight of the edge at canonical position index.
func (n *Network) Weight(index int) (float64, error) {
	if index < 0 || index >= len(n.edges) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrEdgeIndex, index, len(n.edges))
	}
	return n.edges[index].Weight, nil
}

// Weights returns all edge weights in canonical order.
func (n *Network) Weights() []float64 {
	w := make([]float64, len(n.edges))
	for i, e := range n.edges {
		w[i] = e.Weight
	}
	return w
}

// Edges returns a copy of the edges in canonical order.
func (n *Network) Edges() []Edge {
	return append([]Edge(nil), n.edges...)
}

// Stats returns the propagation counters.
func (n *Network) Stats() Stats { return n.stats }

// ResetStats zeroes the propagation counters.
func (n *Network) ResetStats() { n.stats = Stats{} }

// notify queues every outgoing edge of node (layer, index).
func (n *Network) notify(layer, index int) {
	if layer >= len(n.sizes)-1 {
		return
	}
	fanout := n.sizes[layer+1]
	start := n.offsets[layer] + index*fanout
	for e := start; e < start+fanout; e++ {
		n.queue = append(n.queue, e)
	}
}

// drain processes queued edges until the network reaches a fixed point.
func (n *Network) drain() {
	for head := 0; head < len(n.queue); head++ {
		e := &n.edges[n.queue[head]]
		src := n.layers[e.Layer][e.Src].value
		dst := &n.layers[e.Layer+1][e.Dst]
		n.stats.Deliveries++
		switch dst.receive(e.Src, e.Weight*src, n.act) {
		case unchanged:
			n.stats.ShortCircuits++
		case absorbed:
			n.stats.Recomputes++
		case changed:
			n.stats.Recomputes++
			n.stats.Cascades++
			n.notify(e.Layer+1, e.Dst)
		}
	}
	n.queue = n.queue[:0]
}
