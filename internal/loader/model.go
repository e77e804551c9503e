package loader

import (
	"strings"

	"cuelang.org/go/cue"

	"github.com/afcarl/mcdp/internal/graph"
	"github.com/afcarl/mcdp/internal/poset"
)

// compiler turns the "model" struct of a document into composites,
// resolving model references on demand.
type compiler struct {
	models   map[string]cue.Value
	universe *poset.TypesUniverse
	done     map[string]*graph.Composite
	failed   map[string]error
	visiting []string
}

func newCompiler(models map[string]cue.Value, u *poset.TypesUniverse) *compiler {
	return &compiler{
		models:   models,
		universe: u,
		done:     make(map[string]*graph.Composite),
		failed:   make(map[string]error),
	}
}

// model compiles (once) and validates the named model.
func (c *compiler) model(name string, ref cue.Value) (*graph.Composite, error) {
	if g, ok := c.done[name]; ok {
		return g, nil
	}
	if err, ok := c.failed[name]; ok {
		return nil, err
	}
	v, ok := c.models[name]
	if !ok {
		return nil, loadErr(ErrCodeUnknownModel, ref.Pos(), "unknown model %q", name)
	}
	for i, m := range c.visiting {
		if m == name {
			cycle := append(append([]string{}, c.visiting[i:]...), name)
			return nil, loadErr(ErrCodeModelCycle, ref.Pos(), "models reference each other: %s", strings.Join(cycle, " → "))
		}
	}
	c.visiting = append(c.visiting, name)
	defer func() { c.visiting = c.visiting[:len(c.visiting)-1] }()

	g, err := c.compile(v)
	if err == nil {
		if verr := graph.Validate(g); verr != nil {
			err = &LoadError{Code: ErrCodeInvalidGraph, Message: verr.Error(), Pos: v.Pos(), Err: verr}
		}
	}
	if err != nil {
		c.failed[name] = err
		return nil, err
	}
	c.done[name] = g
	return g, nil
}

func (c *compiler) compile(v cue.Value) (*graph.Composite, error) {
	if err := v.Err(); err != nil {
		return nil, fromCUE(ErrCodeBuildFailed, err)
	}
	g := graph.New()
	if err := ports(field(v, "functions"), g.AddFunction); err != nil {
		return nil, err
	}
	if err := ports(field(v, "resources"), g.AddResource); err != nil {
		return nil, err
	}

	nodes := field(v, "nodes")
	if nodes.Exists() {
		iter, err := nodes.Fields()
		if err != nil {
			return nil, fromCUE(ErrCodeBuildFailed, err)
		}
		for iter.Next() {
			n, err := c.node(iter.Value())
			if err != nil {
				return nil, err
			}
			g.AddNode(iter.Label(), n)
		}
	}

	conns := field(v, "connections")
	if conns.Exists() {
		iter, err := conns.List()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidConnection, err)
		}
		for iter.Next() {
			cv := iter.Value()
			dp1, s1, err := endpoint(field(cv, "from"))
			if err != nil {
				return nil, err
			}
			dp2, s2, err := endpoint(field(cv, "to"))
			if err != nil {
				return nil, err
			}
			g.Connect(dp1, s1, dp2, s2)
		}
	}
	return g, nil
}

func (c *compiler) node(v cue.Value) (graph.Node, error) {
	if ref := field(v, "model"); ref.Exists() {
		name, err := ref.String()
		if err != nil {
			return graph.Node{}, fromCUE(ErrCodeUnknownModel, err)
		}
		sub, err := c.model(name, ref)
		if err != nil {
			return graph.Node{}, err
		}
		return graph.GraphNode(sub), nil
	}

	leaf := field(v, "dp")
	if !leaf.Exists() {
		return graph.Node{}, loadErr(ErrCodeInvalidDP, v.Pos(), "node needs either dp or model")
	}
	d, err := compileLeaf(leaf, c.universe)
	if err != nil {
		return graph.Node{}, err
	}
	fs, err := portNames(field(v, "functions"))
	if err != nil {
		return graph.Node{}, err
	}
	rs, err := portNames(field(v, "resources"))
	if err != nil {
		return graph.Node{}, err
	}
	return graph.LeafNode(d, fs, rs), nil
}

// ports reads a list of {name, space} external ports.
func ports(v cue.Value, add func(string, poset.Poset) *graph.Composite) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.List()
	if err != nil {
		return fromCUE(ErrCodeInvalidPort, err)
	}
	for iter.Next() {
		pv := iter.Value()
		name, err := field(pv, "name").String()
		if err != nil {
			return fromCUE(ErrCodeInvalidPort, err)
		}
		space, err := parseSpace(field(pv, "space"))
		if err != nil {
			return err
		}
		add(name, space)
	}
	return nil
}

// portNames reads the port names of a leaf node; absent means none.
func portNames(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	return stringList(v, ErrCodeInvalidPort)
}

// endpoint splits "node.port" at the first dot.
func endpoint(v cue.Value) (string, string, error) {
	s, err := v.String()
	if err != nil {
		return "", "", fromCUE(ErrCodeInvalidConnection, err)
	}
	node, port, ok := strings.Cut(s, ".")
	if !ok || node == "" || port == "" {
		return "", "", loadErr(ErrCodeInvalidConnection, v.Pos(), "endpoint %q must be node.port", s)
	}
	return node, port, nil
}
