package graph

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// Boundary is the node name of the enclosing composite.
const Boundary = "_"

// Separator joins path components of flattened node names.
const Separator = "/"

// Port is a named, typed external port.
type Port struct {
	Name  string
	Space poset.Poset
}

// Connection says that resource S1 of DP1 is provided by functionality S2
// of DP2.
type Connection struct {
	DP1, S1 string
	DP2, S2 string
}

func (c Connection) String() string {
	return fmt.Sprintf("%s.%s → %s.%s", c.DP1, c.S1, c.DP2, c.S2)
}

// Node is either a leaf DP or a nested composite.
type Node struct {
	// DP is set for leaves.
	DP dp.DP

	// Graph is set for nested composites.
	Graph *Composite

	// Functions and Resources name the ports in order. For a leaf with one
	// port the port carries the whole space; with several ports the space
	// must be a product with one component per port.
	Functions []string
	Resources []string
}

// LeafNode wraps a DP with named ports.
func LeafNode(d dp.DP, functions, resources []string) Node {
	return Node{DP: d, Functions: normalizeAll(functions), Resources: normalizeAll(resources)}
}

// GraphNode wraps a nested composite. Its ports are the external ports of g.
func GraphNode(g *Composite) Node {
	n := Node{Graph: g}
	for _, p := range g.Functions {
		n.Functions = append(n.Functions, p.Name)
	}
	for _, p := range g.Resources {
		n.Resources = append(n.Resources, p.Name)
	}
	return n
}

// IsLeaf reports whether the node wraps a DP.
func (n Node) IsLeaf() bool { return n.Graph == nil }

// funSpaces returns the space of each functionality port.
func (n Node) funSpaces() ([]poset.Poset, error) {
	if !n.IsLeaf() {
		return portSpaces(n.Graph.Functions), nil
	}
	return splitSpace(n.DP.FunSpace(), len(n.Functions))
}

// resSpaces returns the space of each resource port.
func (n Node) resSpaces() ([]poset.Poset, error) {
	if !n.IsLeaf() {
		return portSpaces(n.Graph.Resources), nil
	}
	return splitSpace(n.DP.ResSpace(), len(n.Resources))
}

// Composite is a graph of named nodes and connections with ordered
// external ports.
type Composite struct {
	Nodes       map[string]Node
	Connections []Connection
	Functions   []Port
	Resources   []Port

	duplicates []string
}

// New returns an empty composite.
func New() *Composite {
	return &Composite{Nodes: make(map[string]Node)}
}

// AddNode adds a node. Names are NFC-normalized; duplicates are reported by
// Validate.
func (g *Composite) AddNode(name string, n Node) *Composite {
	name = norm.NFC.String(name)
	if _, ok := g.Nodes[name]; ok {
		g.duplicates = append(g.duplicates, name)
	}
	g.Nodes[name] = n
	return g
}

// AddFunction appends an external functionality port.
func (g *Composite) AddFunction(name string, space poset.Poset) *Composite {
	g.Functions = append(g.Functions, Port{Name: norm.NFC.String(name), Space: space})
	return g
}

// AddResource appends an external resource port.
func (g *Composite) AddResource(name string, space poset.Poset) *Composite {
	g.Resources = append(g.Resources, Port{Name: norm.NFC.String(name), Space: space})
	return g
}

// Connect adds the connection dp1.s1 → dp2.s2.
func (g *Composite) Connect(dp1, s1, dp2, s2 string) *Composite {
	g.Connections = append(g.Connections, Connection{
		DP1: norm.NFC.String(dp1), S1: norm.NFC.String(s1),
		DP2: norm.NFC.String(dp2), S2: norm.NFC.String(s2),
	})
	return g
}

// NodeNames returns the node names sorted.
func (g *Composite) NodeNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FunSpace is the space of the external functionality: the port space if
// there is exactly one port, the product of the port spaces otherwise.
func (g *Composite) FunSpace() poset.Poset { return packSpace(portSpaces(g.Functions)) }

// ResSpace is the space of the external resources.
func (g *Composite) ResSpace() poset.Poset { return packSpace(portSpaces(g.Resources)) }

func (g *Composite) clone() *Composite {
	out := New()
	for name, n := range g.Nodes {
		out.Nodes[name] = n
	}
	out.Connections = slices.Clone(g.Connections)
	out.Functions = slices.Clone(g.Functions)
	out.Resources = slices.Clone(g.Resources)
	return out
}

func portSpaces(ports []Port) []poset.Poset {
	out := make([]poset.Poset, len(ports))
	for i, p := range ports {
		out[i] = p.Space
	}
	return out
}

func portIndex(ports []Port, name string) int {
	return slices.IndexFunc(ports, func(p Port) bool { return p.Name == name })
}

// packSpace is the port-list layout: one port carries its own space,
// otherwise the ports form a product.
func packSpace(spaces []poset.Poset) poset.Poset {
	if len(spaces) == 1 {
		return spaces[0]
	}
	return poset.NewProduct(spaces...)
}

// splitSpace is the inverse of packSpace for n ports.
func splitSpace(p poset.Poset, n int) ([]poset.Poset, error) {
	if n == 1 {
		return []poset.Poset{p}, nil
	}
	prod, ok := p.(poset.Product)
	if !ok || prod.Len() != n {
		return nil, fmt.Errorf("space %s does not split into %d ports", p, n)
	}
	return slices.Clone(prod.Components), nil
}

// pack builds a point in the port-list layout.
func pack(values []poset.Point) poset.Point {
	if len(values) == 1 {
		return values[0]
	}
	return poset.Tuple(slices.Clone(values))
}

// unpack splits a point in the port-list layout.
func unpack(x poset.Point, n int) []poset.Point {
	if n == 1 {
		return []poset.Point{x}
	}
	return []poset.Point(x.(poset.Tuple))
}

func normalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = norm.NFC.String(n)
	}
	return out
}
