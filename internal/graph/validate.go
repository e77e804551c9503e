package graph

import (
	"fmt"
	"strings"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// Validate checks that g and every nested composite are completely wired:
//   - node and port names are unique and well formed
//   - port counts match the node spaces
//   - every connection joins existing ports of the same space
//   - every functionality port and external resource is fed exactly once
//   - every resource port and external functionality is used at least once
func Validate(g *Composite) error {
	return validate(g, "", false)
}

// validate checks g. Flattened graphs set paths to allow node names that
// contain Separator.
func validate(g *Composite, prefix string, paths bool) error {
	if len(g.duplicates) > 0 {
		return wiring(dp.ErrCodeDuplicateName, prefix+g.duplicates[0], "", "duplicate node name")
	}
	if err := checkPorts(prefix+Boundary, "functionality", g.Functions); err != nil {
		return err
	}
	if err := checkPorts(prefix+Boundary, "resource", g.Resources); err != nil {
		return err
	}

	funSpaces := make(map[string][]poset.Poset, len(g.Nodes))
	resSpaces := make(map[string][]poset.Poset, len(g.Nodes))
	for _, name := range g.NodeNames() {
		n := g.Nodes[name]
		where := prefix + name
		if name == "" || name == Boundary || (!paths && strings.Contains(name, Separator)) {
			return wiring(dp.ErrCodeUnknownNode, where, "", "invalid node name")
		}
		if n.IsLeaf() == (n.DP == nil) {
			return wiring(dp.ErrCodeUnknownNode, where, "", "node must hold exactly one of a DP or a graph")
		}
		if !n.IsLeaf() {
			if err := validate(n.Graph, where+Separator, false); err != nil {
				return err
			}
		}
		fs, err := n.funSpaces()
		if err != nil {
			return wiring(dp.ErrCodeSpaceMismatch, where, "", "functionality ports: %v", err)
		}
		rs, err := n.resSpaces()
		if err != nil {
			return wiring(dp.ErrCodeSpaceMismatch, where, "", "resource ports: %v", err)
		}
		if err := checkNames(where, n.Functions); err != nil {
			return err
		}
		if err := checkNames(where, n.Resources); err != nil {
			return err
		}
		funSpaces[name], resSpaces[name] = fs, rs
	}

	source := func(node, port string) (poset.Poset, error) {
		if node == Boundary {
			if i := portIndex(g.Functions, port); i >= 0 {
				return g.Functions[i].Space, nil
			}
			return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, port, "no external functionality")
		}
		n, ok := g.Nodes[node]
		if !ok {
			return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, "", "no such node")
		}
		for i, r := range n.Resources {
			if r == port {
				return resSpaces[node][i], nil
			}
		}
		return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, port, "no such resource")
	}
	dest := func(node, port string) (poset.Poset, error) {
		if node == Boundary {
			if i := portIndex(g.Resources, port); i >= 0 {
				return g.Resources[i].Space, nil
			}
			return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, port, "no external resource")
		}
		n, ok := g.Nodes[node]
		if !ok {
			return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, "", "no such node")
		}
		for i, f := range n.Functions {
			if f == port {
				return funSpaces[node][i], nil
			}
		}
		return nil, wiring(dp.ErrCodeUnknownNode, prefix+node, port, "no such functionality")
	}

	fed := make(map[endpoint]int)
	used := make(map[endpoint]int)
	for _, c := range g.Connections {
		ps, err := source(c.DP1, c.S1)
		if err != nil {
			return err
		}
		pd, err := dest(c.DP2, c.S2)
		if err != nil {
			return err
		}
		if !poset.SameSpace(ps, pd) {
			return wiring(dp.ErrCodeSpaceMismatch, prefix+c.DP2, c.S2, "%s carries %s, port expects %s", c, ps, pd)
		}
		used[endpoint{c.DP1, c.S1}]++
		fed[endpoint{c.DP2, c.S2}]++
	}

	checkFed := func(node, port string) error {
		switch fed[endpoint{node, port}] {
		case 0:
			return wiring(dp.ErrCodeDisconnected, prefix+node, port, "not connected")
		case 1:
			return nil
		default:
			return wiring(dp.ErrCodeDuplicateConnection, prefix+node, port, "fed by %d connections", fed[endpoint{node, port}])
		}
	}
	checkUsed := func(node, port string) error {
		if used[endpoint{node, port}] == 0 {
			return wiring(dp.ErrCodeDisconnected, prefix+node, port, "never used")
		}
		return nil
	}
	for _, p := range g.Resources {
		if err := checkFed(Boundary, p.Name); err != nil {
			return err
		}
	}
	for _, p := range g.Functions {
		if err := checkUsed(Boundary, p.Name); err != nil {
			return err
		}
	}
	for _, name := range g.NodeNames() {
		n := g.Nodes[name]
		for _, f := range n.Functions {
			if err := checkFed(name, f); err != nil {
				return err
			}
		}
		for _, r := range n.Resources {
			if err := checkUsed(name, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkPorts(where, kind string, ports []Port) error {
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.Name == "" || seen[p.Name] {
			return wiring(dp.ErrCodeDuplicateName, where, p.Name, "%s port name empty or repeated", kind)
		}
		if p.Space == nil {
			return wiring(dp.ErrCodeSpaceMismatch, where, p.Name, "%s port has no space", kind)
		}
		seen[p.Name] = true
	}
	return nil
}

func checkNames(where string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			return wiring(dp.ErrCodeDuplicateName, where, n, "port name empty or repeated")
		}
		seen[n] = true
	}
	return nil
}

// endpoint is a (node, port) pair.
type endpoint struct {
	node, port string
}

func (e endpoint) String() string { return fmt.Sprintf("%s.%s", e.node, e.port) }
