package graph

import (
	"slices"
)

// nodeGraph is the connection multigraph between the nodes of a flat
// composite. Boundary connections are not edges.
type nodeGraph struct {
	nodes []string
	conns []Connection

	// out maps a node to the indices of its outgoing connections.
	out map[string][]int
}

func newNodeGraph(g *Composite) *nodeGraph {
	ng := &nodeGraph{nodes: g.NodeNames(), conns: g.Connections, out: make(map[string][]int)}
	for i, c := range g.Connections {
		if c.DP1 == Boundary || c.DP2 == Boundary {
			continue
		}
		ng.out[c.DP1] = append(ng.out[c.DP1], i)
	}
	return ng
}

func (ng *nodeGraph) hasSelfLoop(node string) bool {
	for _, i := range ng.out[node] {
		if ng.conns[i].DP2 == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the result is deterministic.
func (ng *nodeGraph) tarjanSCC() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range ng.out[v] {
			w := ng.conns[e].DP2
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range ng.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclicComponents returns the SCCs that contain a cycle: more than one
// node, or a single node with a self-loop.
func (ng *nodeGraph) cyclicComponents() [][]string {
	var out [][]string
	for _, scc := range ng.tarjanSCC() {
		if len(scc) > 1 || ng.hasSelfLoop(scc[0]) {
			out = append(out, scc)
		}
	}
	return out
}

// simpleCycles enumerates every simple cycle as a list of connection
// indices. Parallel connections give distinct cycles. Each cycle is
// reported once, rooted at its smallest node.
func (ng *nodeGraph) simpleCycles() [][]int {
	var cycles [][]int
	for _, scc := range ng.cyclicComponents() {
		rank := make(map[string]int, len(scc))
		for i, n := range scc {
			rank[n] = i
		}
		for s, start := range scc {
			onPath := map[string]bool{start: true}
			var path []int
			var walk func(v string)
			walk = func(v string) {
				for _, e := range ng.out[v] {
					w := ng.conns[e].DP2
					r, inSCC := rank[w]
					if !inSCC || r < s {
						continue
					}
					if w == start {
						cycles = append(cycles, append(slices.Clone(path), e))
						continue
					}
					if onPath[w] {
						continue
					}
					onPath[w] = true
					path = append(path, e)
					walk(w)
					path = path[:len(path)-1]
					onPath[w] = false
				}
			}
			walk(start)
		}
	}
	return cycles
}

// cycleNodes renders a cycle as the node sequence it visits.
func (ng *nodeGraph) cycleNodes(cycle []int) []string {
	out := make([]string, 0, len(cycle)+1)
	for _, e := range cycle {
		out = append(out, ng.conns[e].DP1)
	}
	if len(cycle) > 0 {
		out = append(out, ng.conns[cycle[0]].DP1)
	}
	return out
}
