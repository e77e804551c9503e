package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// Network is the DP of an acyclic graph of leaf nodes. Its functionality
// and resources follow the external port layout of the graph; its
// implementations are tuples with one witness per node in topological
// order.
type Network struct {
	names []string
	nodes []netNode

	fun, res poset.Poset
	imp      poset.SpaceProduct

	// Sources are external functions followed by node resource ports.
	// srcProducer is -1 for external functions.
	srcSpaces   []poset.Poset
	srcNames    []string
	srcProducer []int
	srcDests    [][]int
	srcLastUse  []int

	// Dests are external resources followed by node function ports.
	// destConsumer is len(nodes) for external resources.
	destSrc      []int
	destConsumer []int

	extFun, extRes int
}

type netNode struct {
	name string
	dp   dp.DP

	// in holds the source feeding each functionality port, inDest the
	// dest id of that port.
	in, inDest []int

	// out holds the source id of each resource port.
	out []int
}

// NewNetwork builds the DP of a flat acyclic composite. Nodes are ordered
// topologically, ties broken by name.
func NewNetwork(g *Composite) (*Network, error) {
	if err := validate(g, "", true); err != nil {
		return nil, err
	}
	for _, name := range g.NodeNames() {
		if !g.Nodes[name].IsLeaf() {
			return nil, wiring(dp.ErrCodeUnknownNode, name, "", "network nodes must be leaves; flatten first")
		}
	}
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	n := &Network{
		names:  order,
		fun:    g.FunSpace(),
		res:    g.ResSpace(),
		extFun: len(g.Functions),
		extRes: len(g.Resources),
	}
	srcID := make(map[endpoint]int)
	for _, p := range g.Functions {
		srcID[endpoint{Boundary, p.Name}] = len(n.srcSpaces)
		n.srcSpaces = append(n.srcSpaces, p.Space)
		n.srcNames = append(n.srcNames, Boundary+"."+p.Name)
		n.srcProducer = append(n.srcProducer, -1)
	}
	imps := make([]poset.Space, len(order))
	for k, name := range order {
		node := g.Nodes[name]
		rs, _ := node.resSpaces()
		nn := netNode{name: name, dp: node.DP}
		for i, r := range node.Resources {
			srcID[endpoint{name, r}] = len(n.srcSpaces)
			nn.out = append(nn.out, len(n.srcSpaces))
			n.srcSpaces = append(n.srcSpaces, rs[i])
			n.srcNames = append(n.srcNames, name+"."+r)
			n.srcProducer = append(n.srcProducer, k)
		}
		n.nodes = append(n.nodes, nn)
		imps[k] = node.DP.ImpSpace()
	}
	n.imp = poset.NewSpaceProduct(imps...)

	feeds := make(map[endpoint]int, len(g.Connections))
	for _, c := range g.Connections {
		feeds[endpoint{c.DP2, c.S2}] = srcID[endpoint{c.DP1, c.S1}]
	}
	n.srcDests = make([][]int, len(n.srcSpaces))
	n.srcLastUse = make([]int, len(n.srcSpaces))
	addDest := func(src, consumer int) int {
		d := len(n.destSrc)
		n.destSrc = append(n.destSrc, src)
		n.destConsumer = append(n.destConsumer, consumer)
		n.srcDests[src] = append(n.srcDests[src], d)
		n.srcLastUse[src] = max(n.srcLastUse[src], consumer)
		return d
	}
	for _, p := range g.Resources {
		addDest(feeds[endpoint{Boundary, p.Name}], len(order))
	}
	for k, name := range order {
		for _, f := range g.Nodes[name].Functions {
			s := feeds[endpoint{name, f}]
			n.nodes[k].in = append(n.nodes[k].in, s)
			n.nodes[k].inDest = append(n.nodes[k].inDest, addDest(s, k))
		}
	}
	return n, nil
}

// topoSort orders the nodes with Kahn's algorithm, smallest name first.
func topoSort(g *Composite) ([]string, error) {
	indegree := make(map[string]int, len(g.Nodes))
	succ := make(map[string][]string)
	for _, c := range g.Connections {
		if c.DP1 == Boundary || c.DP2 == Boundary {
			continue
		}
		indegree[c.DP2]++
		succ[c.DP1] = append(succ[c.DP1], c.DP2)
	}
	var ready, order []string
	for _, name := range g.NodeNames() {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, next := range succ[name] {
			indegree[next]--
			if indegree[next] == 0 {
				i, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, i, next)
			}
		}
	}
	if len(order) != len(g.Nodes) {
		return nil, dp.NewStructureError(dp.ErrCodeMalformedLoop, "network",
			fmt.Sprintf("%d nodes lie on cycles", len(g.Nodes)-len(order)), nil)
	}
	return order, nil
}

func (n *Network) String() string {
	parts := make([]string, len(n.nodes))
	for i, nn := range n.nodes {
		parts[i] = nn.name + ": " + nn.dp.String()
	}
	return "Network(" + strings.Join(parts, ", ") + ")"
}

func (n *Network) Kind() string { return "Network" }

func (n *Network) Children() []dp.DP {
	out := make([]dp.DP, len(n.nodes))
	for i, nn := range n.nodes {
		out[i] = nn.dp
	}
	return out
}

// NodeNames returns the node names in evaluation order.
func (n *Network) NodeNames() []string { return slices.Clone(n.names) }

func (n *Network) FunSpace() poset.Poset { return n.fun }
func (n *Network) ResSpace() poset.Poset { return n.res }
func (n *Network) ImpSpace() poset.Space { return n.imp }

func (n *Network) values(a []poset.Point, ids []int) []poset.Point {
	out := make([]poset.Point, len(ids))
	for i, id := range ids {
		out[i] = a[id]
	}
	return out
}

func (n *Network) resultOf(a []poset.Point) poset.Point {
	vals := make([]poset.Point, n.extRes)
	for i := range vals {
		vals[i] = a[n.destSrc[i]]
	}
	return pack(vals)
}

// forward propagates f through the nodes. Each assignment maps source ids
// to values. Unless keepAll is set, assignments are pruned after every node
// to those minimal on the sources still to be consumed.
func (n *Network) forward(c *dp.Context, f poset.Point, keepAll bool) ([][]poset.Point, error) {
	start := make([]poset.Point, len(n.srcSpaces))
	copy(start, unpack(f, n.extFun))
	assignments := [][]poset.Point{start}
	for k, nn := range n.nodes {
		var next [][]poset.Point
		for _, a := range assignments {
			u, err := dp.Solve(c, nn.dp, pack(n.values(a, nn.in)))
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nn.name, err)
			}
			for _, r := range u.Minimals() {
				b := slices.Clone(a)
				for i, v := range unpack(r, len(nn.out)) {
					b[nn.out[i]] = v
				}
				next = append(next, b)
			}
		}
		if !keepAll {
			next = n.pruneSources(next, k)
		}
		c.Log().Debug("network forward", "node", nn.name, "assignments", len(next))
		assignments = next
	}
	return assignments, nil
}

func (n *Network) pruneSources(assignments [][]poset.Point, k int) [][]poset.Point {
	var live []int
	for s := range n.srcSpaces {
		if n.srcProducer[s] <= k && n.srcLastUse[s] > k {
			live = append(live, s)
		}
	}
	return keepUndominated(assignments, live, n.srcSpaces, false)
}

// keepUndominated drops the assignments strictly dominated on the live ids,
// keeping the first of equivalent ones. With upward set, larger is better.
func keepUndominated(assignments [][]poset.Point, live []int, spaces []poset.Poset, upward bool) [][]poset.Point {
	below := func(a, b []poset.Point) bool {
		for _, id := range live {
			x, y := a[id], b[id]
			if upward {
				x, y = y, x
			}
			if !spaces[id].Leq(x, y) {
				return false
			}
		}
		return true
	}
	out := make([][]poset.Point, 0, len(assignments))
	for i, a := range assignments {
		dominated := false
		for j, b := range assignments {
			if i != j && below(b, a) && (!below(a, b) || j < i) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, a)
		}
	}
	return out
}

func (n *Network) Solve(c *dp.Context, f poset.Point) (poset.UpperSet, error) {
	assignments, err := n.forward(c, f, false)
	if err != nil {
		return poset.UpperSet{}, err
	}
	out := make([]poset.Point, len(assignments))
	for i, a := range assignments {
		out[i] = n.resultOf(a)
	}
	return poset.UpperSetFrom(n.res, out), nil
}

// meetOf is the meet of the dest values fed by source s.
func (n *Network) meetOf(a []poset.Point, s int) (poset.Point, error) {
	vals := make([]poset.Point, 0, len(n.srcDests[s]))
	for _, d := range n.srcDests[s] {
		vals = append(vals, a[d])
	}
	return meetAll(n.srcSpaces[s], vals)
}

// meetAll folds vals with Meet. Only an empty list needs the top of space.
func meetAll(space poset.Poset, vals []poset.Point) (poset.Point, error) {
	if len(vals) == 0 {
		return space.Top()
	}
	acc := vals[0]
	for _, v := range vals[1:] {
		var err error
		if acc, err = space.Meet(acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// SolveR runs the nodes in reverse. Each assignment maps dest ids to
// values; a resource port's budget is the meet of the dests it feeds.
func (n *Network) SolveR(c *dp.Context, r poset.Point) (poset.LowerSet, error) {
	destSpaces := make([]poset.Poset, len(n.destSrc))
	for d, s := range n.destSrc {
		destSpaces[d] = n.srcSpaces[s]
	}
	start := make([]poset.Point, len(n.destSrc))
	copy(start, unpack(r, n.extRes))
	assignments := [][]poset.Point{start}
	for k := len(n.nodes) - 1; k >= 0; k-- {
		nn := n.nodes[k]
		var next [][]poset.Point
		for _, a := range assignments {
			budget := make([]poset.Point, len(nn.out))
			for i, s := range nn.out {
				v, err := n.meetOf(a, s)
				if err != nil {
					return poset.LowerSet{}, fmt.Errorf("node %s: budget for %s: %w", nn.name, n.srcNames[s], err)
				}
				budget[i] = v
			}
			l, err := dp.SolveR(c, nn.dp, pack(budget))
			if err != nil {
				return poset.LowerSet{}, fmt.Errorf("node %s: %w", nn.name, err)
			}
			for _, fk := range l.Maximals() {
				b := slices.Clone(a)
				for i, v := range unpack(fk, len(nn.inDest)) {
					b[nn.inDest[i]] = v
				}
				next = append(next, b)
			}
		}
		var live []int
		for d, s := range n.destSrc {
			if n.destConsumer[d] >= k && n.srcProducer[s] < k {
				live = append(live, d)
			}
		}
		next = keepUndominated(next, live, destSpaces, true)
		c.Log().Debug("network backward", "node", nn.name, "assignments", len(next))
		assignments = next
	}
	out := make([]poset.Point, 0, len(assignments))
	for _, a := range assignments {
		vals := make([]poset.Point, n.extFun)
		for e := range vals {
			v, err := n.meetOf(a, e)
			if err != nil {
				return poset.LowerSet{}, fmt.Errorf("external %s: %w", n.srcNames[e], err)
			}
			vals[e] = v
		}
		out = append(out, pack(vals))
	}
	return poset.LowerSetFrom(n.fun, out), nil
}

// Evaluate combines the node evaluations whose values agree across every
// internal connection. An external functionality provides the meet of
// what its consumers provide.
func (n *Network) Evaluate(c *dp.Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := n.imp.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	t := m.(poset.Tuple)
	choices := make([][]poset.Point, len(n.nodes))
	for k, nn := range n.nodes {
		lf, ur, err := nn.dp.Evaluate(c, t[k])
		if err != nil {
			return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("node %s: %w", nn.name, err)
		}
		for _, f := range lf.Maximals() {
			for _, r := range ur.Minimals() {
				choices[k] = append(choices[k], poset.Tuple{f, r})
			}
		}
	}

	var fs, rs []poset.Point
	for _, combo := range poset.Cartesian(choices) {
		pairs := combo.(poset.Tuple)
		src := make([]poset.Point, len(n.srcSpaces))
		dst := make([]poset.Point, len(n.destSrc))
		for k, nn := range n.nodes {
			pair := pairs[k].(poset.Tuple)
			for i, v := range unpack(pair[1], len(nn.out)) {
				src[nn.out[i]] = v
			}
			for i, v := range unpack(pair[0], len(nn.inDest)) {
				dst[nn.inDest[i]] = v
			}
		}
		consistent := true
		for d := n.extRes; d < len(n.destSrc) && consistent; d++ {
			s := n.destSrc[d]
			if n.srcProducer[s] >= 0 && !n.srcSpaces[s].Leq(src[s], dst[d]) {
				consistent = false
			}
		}
		if !consistent {
			continue
		}
		vals := make([]poset.Point, n.extFun)
		for e := range vals {
			var consumed []poset.Point
			for _, d := range n.srcDests[e] {
				if d >= n.extRes {
					consumed = append(consumed, dst[d])
				}
			}
			acc, err := meetAll(n.srcSpaces[e], consumed)
			if err != nil {
				return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("external %s: %w", n.srcNames[e], err)
			}
			vals[e], src[e] = acc, acc
		}
		fs = append(fs, pack(vals))
		rs = append(rs, n.resultOf(src))
	}
	if len(fs) == 0 {
		return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("%s: %w: connections disagree for %s", n, dp.ErrNotFeasible, n.imp.Format(m))
	}
	return poset.LowerSetFrom(n.fun, fs), poset.UpperSetFrom(n.res, rs), nil
}

// Implementations replays every forward assignment that fits within r and
// combines the witnesses of each node.
func (n *Network) Implementations(c *dp.Context, f, r poset.Point) ([]poset.Point, error) {
	assignments, err := n.forward(c, f, true)
	if err != nil {
		return nil, err
	}
	ws := dp.NewWitnessSet()
	for _, a := range assignments {
		if !n.res.Leq(n.resultOf(a), r) {
			continue
		}
		lists := make([][]poset.Point, len(n.nodes))
		for k, nn := range n.nodes {
			ms, err := nn.dp.Implementations(c, pack(n.values(a, nn.in)), pack(n.values(a, nn.out)))
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nn.name, err)
			}
			lists[k] = ms
		}
		ws.Add(poset.Cartesian(lists)...)
	}
	if ws.Len() == 0 {
		return nil, fmt.Errorf("%s: %w for f=%s r=%s", n, dp.ErrNotFeasible, n.fun.Format(f), n.res.Format(r))
	}
	return ws.Points(), nil
}

func (n *Network) NormalForm(*dp.Context) (dp.NormalForm, error) {
	return dp.StatelessNormalForm(n), nil
}
