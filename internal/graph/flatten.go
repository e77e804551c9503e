package graph

import (
	"cmp"
	"slices"

	"github.com/hashicorp/go-set/v3"

	"github.com/afcarl/mcdp/internal/dp"
)

// Flatten validates g and inlines every nested composite. A node n of a
// nested composite c becomes "c/n"; connections through the boundary of c
// are resolved to the nodes on either side. The result has only leaf nodes
// and its connections are sorted.
func Flatten(g *Composite) (*Composite, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return flatten(g)
}

func flatten(g *Composite) (*Composite, error) {
	out := New()
	out.Functions = slices.Clone(g.Functions)
	out.Resources = slices.Clone(g.Resources)

	children := make(map[string]*Composite)
	for _, name := range g.NodeNames() {
		n := g.Nodes[name]
		if n.IsLeaf() {
			out.Nodes[name] = n
			continue
		}
		child, err := flatten(n.Graph)
		if err != nil {
			return nil, err
		}
		children[name] = child
		for cname, cn := range child.Nodes {
			out.Nodes[name+Separator+cname] = cn
		}
	}

	r := &resolver{parent: g, children: children}
	seen := set.New[Connection](len(g.Connections))
	add := func(c Connection) {
		if seen.Insert(c) {
			out.Connections = append(out.Connections, c)
		}
	}
	for _, name := range g.NodeNames() {
		child, ok := children[name]
		if !ok {
			continue
		}
		for _, c := range child.Connections {
			if c.DP1 != Boundary && c.DP2 != Boundary {
				add(Connection{DP1: name + Separator + c.DP1, S1: c.S1, DP2: name + Separator + c.DP2, S2: c.S2})
			}
		}
	}
	for _, pc := range g.Connections {
		src, err := r.source(pc.DP1, pc.S1, nil)
		if err != nil {
			return nil, err
		}
		dsts, err := r.dests(pc.DP2, pc.S2, nil)
		if err != nil {
			return nil, err
		}
		for _, d := range dsts {
			add(Connection{DP1: src.node, S1: src.port, DP2: d.node, S2: d.port})
		}
	}
	sortConnections(out.Connections)
	return out, nil
}

// resolver maps endpoints of a parent graph onto the flattened nodes of
// its nested composites.
type resolver struct {
	parent   *Composite
	children map[string]*Composite
}

// source resolves the resource endpoint node.port to a flat endpoint.
func (r *resolver) source(node, port string, visiting []endpoint) (endpoint, error) {
	child, ok := r.children[node]
	if !ok {
		return endpoint{node, port}, nil
	}
	here := endpoint{node, port}
	if slices.Contains(visiting, here) {
		return endpoint{}, wiring(dp.ErrCodeDisconnected, node, port, "resource passes through a cycle of boundaries")
	}
	visiting = append(visiting, here)
	for _, c := range child.Connections {
		if c.DP2 != Boundary || c.S2 != port {
			continue
		}
		if c.DP1 != Boundary {
			return endpoint{node + Separator + c.DP1, c.S1}, nil
		}
		for _, pc := range r.parent.Connections {
			if pc.DP2 == node && pc.S2 == c.S1 {
				return r.source(pc.DP1, pc.S1, visiting)
			}
		}
	}
	return endpoint{}, wiring(dp.ErrCodeDisconnected, node, port, "resource not produced inside the composite")
}

// dests resolves the functionality endpoint node.port to the flat
// endpoints it feeds.
func (r *resolver) dests(node, port string, visiting []endpoint) ([]endpoint, error) {
	child, ok := r.children[node]
	if !ok {
		return []endpoint{{node, port}}, nil
	}
	here := endpoint{node, port}
	if slices.Contains(visiting, here) {
		return nil, wiring(dp.ErrCodeDisconnected, node, port, "functionality passes through a cycle of boundaries")
	}
	visiting = append(visiting, here)
	var out []endpoint
	for _, c := range child.Connections {
		if c.DP1 != Boundary || c.S1 != port {
			continue
		}
		if c.DP2 != Boundary {
			out = append(out, endpoint{node + Separator + c.DP2, c.S2})
			continue
		}
		for _, pc := range r.parent.Connections {
			if pc.DP1 == node && pc.S1 == c.S2 {
				ds, err := r.dests(pc.DP2, pc.S2, visiting)
				if err != nil {
					return nil, err
				}
				out = append(out, ds...)
			}
		}
	}
	return out, nil
}

func sortConnections(cs []Connection) {
	slices.SortFunc(cs, func(a, b Connection) int {
		return cmp.Or(
			cmp.Compare(a.DP1, b.DP1),
			cmp.Compare(a.S1, b.S1),
			cmp.Compare(a.DP2, b.DP2),
			cmp.Compare(a.S2, b.S2),
		)
	})
}
