package graph

import (
	"fmt"
	"slices"

	"github.com/afcarl/mcdp/internal/dp"
)

// Option configures canonicalization.
type Option func(*options)

type options struct {
	maxCutStates int
}

// WithMaxCutStates bounds the minimum-cut search. Zero disables the bound.
func WithMaxCutStates(n int) Option {
	return func(o *options) {
		o.maxCutStates = n
	}
}

// Canonical is the result of canonicalizing a composite.
type Canonical struct {
	// Flat is the validated, flattened graph.
	Flat *Composite

	// Rewired is Flat with the Cut connections replaced by external port
	// pairs. It is acyclic.
	Rewired *Composite

	// Cut lists the removed connections, in the order of their port pairs.
	Cut []Connection

	// Cycles is the number of simple cycles found in Flat.
	Cycles int
}

// Canonicalize flattens g, finds its simple cycles and rewires a
// minimum-weight set of connections that breaks all of them.
func Canonicalize(g *Composite, opts ...Option) (*Canonical, error) {
	o := options{maxCutStates: DefaultMaxCutStates}
	for _, opt := range opts {
		opt(&o)
	}
	flat, err := Flatten(g)
	if err != nil {
		return nil, err
	}
	cycles := newNodeGraph(flat).simpleCycles()
	weights, err := connectionWeights(flat)
	if err != nil {
		return nil, err
	}
	cut, err := minimumCut(cycles, weights, o.maxCutStates)
	if err != nil {
		return nil, err
	}
	rewired, removed := rewire(flat, cut)
	return &Canonical{Flat: flat, Rewired: rewired, Cut: removed, Cycles: len(cycles)}, nil
}

// Rewire replaces the given connections of a flat graph with external port
// pairs, in the order given.
func Rewire(g *Composite, cut []Connection) (*Composite, error) {
	idx := make([]int, len(cut))
	for j, c := range cut {
		i := slices.Index(g.Connections, c)
		if i < 0 {
			return nil, wiring(dp.ErrCodeUnknownNode, c.DP1, c.S1, "no connection %s to cut", c)
		}
		idx[j] = i
	}
	out, _ := rewire(g, idx)
	return out, nil
}

// Build compiles g into a single DP: the network of the canonical graph
// with one Loop2 closing each cut connection.
func Build(c *dp.Context, g *Composite, opts ...Option) (dp.DP, error) {
	can, err := Canonicalize(g, opts...)
	if err != nil {
		return nil, err
	}
	net, err := NewNetwork(can.Rewired)
	if err != nil {
		return nil, fmt.Errorf("building network: %w", err)
	}
	d, err := closeLoops(net, len(can.Flat.Functions), len(can.Flat.Resources), len(can.Cut), false)
	if err != nil {
		return nil, fmt.Errorf("closing loops: %w", err)
	}
	c.Log().Info("graph built",
		"nodes", len(can.Flat.Nodes),
		"connections", len(can.Flat.Connections),
		"cycles", can.Cycles,
		"cut", len(can.Cut))
	return d, nil
}

// ReferenceDP gives g its direct fixed-point semantics without flattening:
// every connection between nodes becomes feedback and a single loop closes
// all of them. Nested composites get the same treatment recursively.
func ReferenceDP(g *Composite) (dp.DP, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return reference(g)
}

func reference(g *Composite) (dp.DP, error) {
	level := g.clone()
	for _, name := range g.NodeNames() {
		n := g.Nodes[name]
		if n.IsLeaf() {
			continue
		}
		d, err := reference(n.Graph)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		level.Nodes[name] = LeafNode(d, n.Functions, n.Resources)
	}
	var internal []int
	for i, c := range level.Connections {
		if c.DP1 != Boundary && c.DP2 != Boundary {
			internal = append(internal, i)
		}
	}
	rewired, _ := rewire(level, internal)
	net, err := NewNetwork(rewired)
	if err != nil {
		return nil, err
	}
	return closeLoops(net, len(g.Functions), len(g.Resources), len(internal), true)
}
