// Package xpgraph implements the explanation engine for eXplanation Graphs
// (XpGs): rooted DAG representations of Boolean classifiers whose internal
// nodes test features and whose terminals carry a class label. Given one
// instance whose predicted class is 1, the package computes abductive
// explanations (AXps), contrastive explanations (CXps), and answers feature
// membership queries.
//
// The graph itself is immutable and read-only after construction (see
// NewBuilder), and may be shared by multiple concurrent explanation queries;
// each query owns its own mutable state (masks, variable pools, SAT
// sessions) and releases it on return.
package xpgraph

import "fmt"

// NodeKind distinguishes internal (feature-testing) nodes from terminals.
type NodeKind uint8

const (
	// Internal nodes test a feature and branch on its value.
	Internal NodeKind = iota
	// Terminal nodes carry a class label and have no outgoing edges.
	Terminal
)

// noVar and noTarget mark the "not applicable" field of a node of the other
// kind, e.g. a terminal's vr entry.
const (
	noVar    = -1
	noTarget = -1
)

// XpG is an immutable rooted DAG representing a Boolean classifier, stored
// CSR-style: a node's outgoing edges are a contiguous slice of edgeSucc /
// edgeLabel indexed by edgeStart, so path_to_zero's BFS never touches a map.
type XpG struct {
	kind   []NodeKind
	vr     []int   // feature index per internal node, noVar for terminals
	target []int8  // class label per terminal node, noTarget for internals
	instEd []int32 // the unique label=1 successor per internal node, -1 for terminals

	edgeStart []int32
	edgeSucc  []int32
	edgeLabel []uint8

	root int
	nv   int
	feat []string

	classes []string
	yhat    int
}

// NumNodes returns the number of nodes in the graph.
func (g *XpG) NumNodes() int { return len(g.kind) }

// NumFeatures returns the number of features (nv).
func (g *XpG) NumFeatures() int { return g.nv }

// Root returns the root node id.
func (g *XpG) Root() int { return g.root }

// Kind returns the kind of node v.
func (g *XpG) Kind(v int) NodeKind { return g.kind[v] }

// Var returns the feature index tested by internal node v. Panics if v is a
// terminal; callers should check Kind first.
func (g *XpG) Var(v int) int {
	if g.kind[v] != Internal {
		panic(fmt.Sprintf("xpgraph: Var called on terminal node %d", v))
	}
	return g.vr[v]
}

// Target returns the class label of terminal node v. Panics if v is
// internal.
func (g *XpG) Target(v int) int {
	if g.kind[v] != Terminal {
		panic(fmt.Sprintf("xpgraph: Target called on internal node %d", v))
	}
	return int(g.target[v])
}

// FeatureName returns the display name of feature i.
func (g *XpG) FeatureName(i int) string { return g.feat[i] }

// Classes returns the predicted-class metadata carried through from the
// source file. It is display-only and never consulted by the core.
func (g *XpG) Classes() []string { return g.classes }

// Yhat returns the predicted-class index carried through from the source
// file. Display-only.
func (g *XpG) Yhat() int { return g.yhat }

// ForEachEdge calls fn once per outgoing edge of v, in insertion order.
// Exported so encoders (horn.go, membership.go) can walk the CSR structure
// without XpG exposing its internal slices.
func (g *XpG) ForEachEdge(v int, fn func(succ int, label uint8)) {
	start, end := g.edgeStart[v], g.edgeStart[v+1]
	for e := start; e < end; e++ {
		fn(int(g.edgeSucc[e]), g.edgeLabel[e])
	}
}

// PathToZero answers the reachability oracle at the heart of every
// deletion-based minimizer: given a feature mask univ (univ[i] true means
// feature i is "universal", i.e. free to vary; false means "fixed" to the
// instance value), does some live path from root reach a target=0 terminal?
//
// At a free internal node every outgoing edge is live. At a fixed internal
// node only the instance edge (the outgoing edge whose label is 1) is live;
// by construction (see Builder.Build) this edge always exists, but
// PathToZero still checks defensively and reports ErrStructural rather than
// silently producing a wrong answer, since this oracle's contract must be
// airtight for every minimizer and enumerator built on top of it.
//
// Complexity is O(|V|+|E|): a single BFS over live edges.
func (g *XpG) PathToZero(univ []bool) (bool, error) {
	if len(univ) != g.nv {
		return false, fmt.Errorf("xpgraph: PathToZero: mask has %d entries, want %d: %w", len(univ), g.nv, ErrStructural)
	}
	n := len(g.kind)
	visited := make([]bool, n)
	queue := make([]int, 0, n)
	queue = append(queue, g.root)
	visited[g.root] = true

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		switch g.kind[v] {
		case Terminal:
			if g.target[v] == 0 {
				return true, nil
			}
		case Internal:
			i := g.vr[v]
			if univ[i] {
				g.ForEachEdge(v, func(succ int, _ uint8) {
					if !visited[succ] {
						visited[succ] = true
						queue = append(queue, succ)
					}
				})
			} else {
				succ := g.instEd[v]
				if succ < 0 {
					return false, fmt.Errorf("xpgraph: node %d (feature %d) has no instance edge: %w", v, i, ErrStructural)
				}
				if !visited[succ] {
					visited[succ] = true
					queue = append(queue, int(succ))
				}
			}
		}
	}
	return false, nil
}

// DecisionPath returns the ordered list of internal nodes on the instance's
// live path: starting at root, at each internal node follow the unique
// label=1 successor, stopping before the terminal. Used to seed CXp
// minimization.
func (g *XpG) DecisionPath() ([]int, error) {
	var path []int
	v := g.root
	for {
		switch g.kind[v] {
		case Terminal:
			return path, nil
		case Internal:
			path = append(path, v)
			succ := g.instEd[v]
			if succ < 0 {
				return nil, fmt.Errorf("xpgraph: node %d has no instance edge: %w", v, ErrStructural)
			}
			v = int(succ)
		}
	}
}

// DecisionFeatures returns the set of feature indices named by nodes on the
// decision path, used to seed CXp.Explain's default universal mask.
func (g *XpG) DecisionFeatures() ([]int, error) {
	path, err := g.DecisionPath()
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(path))
	var feats []int
	for _, v := range path {
		i := g.vr[v]
		if !seen[i] {
			seen[i] = true
			feats = append(feats, i)
		}
	}
	return feats, nil
}
