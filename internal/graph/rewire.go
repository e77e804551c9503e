package graph

import (
	"fmt"
	"slices"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/loop"
	"github.com/afcarl/mcdp/internal/poset"
)

// cutPortName names the external port pair that replaces cut connection j.
func cutPortName(j int, c Connection) string {
	return fmt.Sprintf("~%d:%s.%s", j, c.DP1, c.S1)
}

// rewire removes the connections at the given indices. Connection j of the
// cut becomes a new external functionality feeding its destination and a
// new external resource fed by its source, appended after the existing
// external ports.
func rewire(g *Composite, cut []int) (*Composite, []Connection) {
	out := g.clone()
	out.Connections = nil
	removed := make([]Connection, 0, len(cut))
	for i, c := range g.Connections {
		if !slices.Contains(cut, i) {
			out.Connections = append(out.Connections, c)
		}
	}
	for _, i := range cut {
		removed = append(removed, g.Connections[i])
	}
	for j, c := range removed {
		space := g.resourceSpace(c.DP1, c.S1)
		name := cutPortName(j, c)
		out.AddFunction(name, space)
		out.AddResource(name, space)
		out.Connect(Boundary, name, c.DP2, c.S2)
		out.Connect(c.DP1, c.S1, Boundary, name)
	}
	sortConnections(out.Connections)
	return out, removed
}

// resourceSpace is the space of a source endpoint of a validated graph.
func (g *Composite) resourceSpace(node, port string) poset.Poset {
	if node == Boundary {
		return g.Functions[portIndex(g.Functions, port)].Space
	}
	n := g.Nodes[node]
	spaces, _ := n.resSpaces()
	return spaces[slices.Index(n.Resources, port)]
}

// layout relates the flat port list of a rewired network (ext external
// ports followed by one port per cut) to the nested shape the feedback
// loops expect. Nested, cut j is closed by loop j, the last cut by the
// innermost loop:
//
//	(((ext, cut0), cut1), ..., cutK-1)
//
// When grouped, all cuts share one loop: (ext, (cut0, ..., cutK-1)).
type layout struct {
	ext, cuts int
	grouped   bool
}

func (l layout) total() int { return l.ext + l.cuts }

// nestedPath is the path of flat port i inside the nested value.
func (l layout) nestedPath(i int) []int {
	if l.grouped {
		if i >= l.ext {
			return []int{1, i - l.ext}
		}
		if l.ext == 1 {
			return []int{0}
		}
		return []int{0, i}
	}
	if i >= l.ext {
		j := i - l.ext
		return append(make([]int, l.cuts-1-j), 1)
	}
	path := make([]int, l.cuts)
	if l.ext > 1 {
		path = append(path, i)
	}
	return path
}

// flat addresses port i of the flat layout.
func (l layout) flat(i int) dp.Coord {
	if l.total() == 1 {
		return dp.Leaf()
	}
	return dp.Leaf(i)
}

func (l layout) extCoord() dp.Coord {
	switch l.ext {
	case 0:
		return dp.Group()
	case 1:
		return l.flat(0)
	}
	coords := make([]dp.Coord, l.ext)
	for i := range coords {
		coords[i] = l.flat(i)
	}
	return dp.Group(coords...)
}

// nestedCoord builds the nested value out of a flat one.
func (l layout) nestedCoord() dp.Coord {
	cur := l.extCoord()
	if l.grouped {
		cuts := make([]dp.Coord, l.cuts)
		for j := range cuts {
			cuts[j] = l.flat(l.ext + j)
		}
		return dp.Group(cur, dp.Group(cuts...))
	}
	for j := range l.cuts {
		cur = dp.Group(cur, l.flat(l.ext+j))
	}
	return cur
}

// flatCoord builds the flat value out of a nested one.
func (l layout) flatCoord() dp.Coord {
	if l.total() == 1 {
		return dp.Leaf(l.nestedPath(0)...)
	}
	coords := make([]dp.Coord, l.total())
	for i := range coords {
		coords[i] = dp.Leaf(l.nestedPath(i)...)
	}
	return dp.Group(coords...)
}

// closeLoops wraps a network whose last cuts ports on both sides are
// feedback into the loops that close them.
func closeLoops(network dp.DP, extFun, extRes, cuts int, grouped bool) (dp.DP, error) {
	if cuts == 0 {
		return network, nil
	}
	fl := layout{ext: extFun, cuts: cuts, grouped: grouped}
	rl := layout{ext: extRes, cuts: cuts, grouped: grouped}

	// a mux from the flat functionality gives the nested functionality
	// space; its inverse layout feeds the network
	nested, err := dp.NewMux(network.FunSpace(), fl.nestedCoord())
	if err != nil {
		return nil, err
	}
	toFlat, err := dp.NewMux(nested.ResSpace(), fl.flatCoord())
	if err != nil {
		return nil, err
	}
	toNested, err := dp.NewMux(network.ResSpace(), rl.nestedCoord())
	if err != nil {
		return nil, err
	}
	head, err := dp.NewSeries(toFlat, network)
	if err != nil {
		return nil, err
	}
	d, err := dp.NewSeries(head, toNested)
	if err != nil {
		return nil, err
	}
	var out dp.DP = d
	loops := cuts
	if grouped {
		loops = 1
	}
	for range loops {
		lp, err := loop.NewLoop2(out)
		if err != nil {
			return nil, err
		}
		out = lp
	}
	return out, nil
}
