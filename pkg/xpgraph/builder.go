package xpgraph

import "fmt"

// builderEdge is a single outgoing edge recorded during construction, before
// the builder flattens everything into the CSR arrays XpG stores.
type builderEdge struct {
	to    int
	label uint8
}

// Builder accumulates nodes, edges, and feature names for an XpG under
// construction, then validates and flattens them into CSR form on Build.
// Builder is the single entry point for constructing an XpG: the parser in
// internal/xpgfile and property-test generators both go through it, so the
// structural invariants are enforced in exactly one place.
type Builder struct {
	kind   []NodeKind
	vr     []int
	target []int8
	edges  [][]builderEdge

	root    int
	rootSet bool

	feat []string

	classes []string
	yhat    int
}

// NewBuilder creates a builder for a graph with exactly n nodes, ids 0..n-1.
func NewBuilder(n int) *Builder {
	b := &Builder{
		kind:   make([]NodeKind, n),
		vr:     make([]int, n),
		target: make([]int8, n),
		edges:  make([][]builderEdge, n),
		yhat:   -1,
	}
	for i := range b.vr {
		b.vr[i] = noVar
		b.target[i] = noTarget
	}
	return b
}

// SetRoot designates node id as the graph's root.
func (b *Builder) SetRoot(id int) *Builder {
	b.root = id
	b.rootSet = true
	return b
}

// SetInternal marks node id as an internal node testing feature varIdx.
func (b *Builder) SetInternal(id, varIdx int) *Builder {
	b.kind[id] = Internal
	b.vr[id] = varIdx
	return b
}

// SetTerminal marks node id as a terminal carrying class label target.
func (b *Builder) SetTerminal(id int, target int) *Builder {
	b.kind[id] = Terminal
	b.target[id] = int8(target)
	return b
}

// AddEdge records an outgoing edge from -> to with the given 0/1 label.
func (b *Builder) AddEdge(from, to int, label uint8) *Builder {
	b.edges[from] = append(b.edges[from], builderEdge{to: to, label: label})
	return b
}

// SetFeatures sets the ordered feature-name list; its length fixes nv.
func (b *Builder) SetFeatures(names []string) *Builder {
	b.feat = append([]string(nil), names...)
	return b
}

// SetClasses sets the predicted-class metadata, carried through unused by
// the core.
func (b *Builder) SetClasses(classes []string, yhat int) *Builder {
	b.classes = append([]string(nil), classes...)
	b.yhat = yhat
	return b
}

// Build validates every structural invariant from spec §3/§7 and flattens
// the builder's state into an immutable, CSR-backed XpG. Any invariant
// violation is reported as ErrStructural, wrapped with the offending node
// or feature id.
func (b *Builder) Build() (*XpG, error) {
	n := len(b.kind)
	if !b.rootSet {
		return nil, fmt.Errorf("xpgraph: no root set: %w", ErrStructural)
	}
	if b.root < 0 || b.root >= n {
		return nil, fmt.Errorf("xpgraph: root %d out of range [0,%d): %w", b.root, n, ErrStructural)
	}

	g := &XpG{
		kind:    b.kind,
		vr:      b.vr,
		target:  b.target,
		instEd:  make([]int32, n),
		root:    b.root,
		nv:      len(b.feat),
		feat:    b.feat,
		classes: b.classes,
		yhat:    b.yhat,
	}

	// Flatten edges into CSR arrays and compute each internal node's unique
	// instance (label=1) edge.
	g.edgeStart = make([]int32, n+1)
	total := 0
	for v := 0; v < n; v++ {
		g.edgeStart[v] = int32(total)
		total += len(b.edges[v])
	}
	g.edgeStart[n] = int32(total)
	g.edgeSucc = make([]int32, total)
	g.edgeLabel = make([]uint8, total)

	for v := 0; v < n; v++ {
		g.instEd[v] = -1
		start := int(g.edgeStart[v])
		for k, e := range b.edges[v] {
			g.edgeSucc[start+k] = int32(e.to)
			g.edgeLabel[start+k] = e.label

			if b.kind[v] != Internal {
				return nil, fmt.Errorf("xpgraph: terminal node %d has outgoing edges: %w", v, ErrStructural)
			}
			if e.to < 0 || e.to >= n {
				return nil, fmt.Errorf("xpgraph: node %d has edge to out-of-range node %d: %w", v, e.to, ErrStructural)
			}
			if e.label == 1 {
				if g.instEd[v] != -1 {
					return nil, fmt.Errorf("xpgraph: node %d has more than one instance (label=1) edge: %w", v, ErrStructural)
				}
				g.instEd[v] = int32(e.to)
			} else if e.label != 0 {
				return nil, fmt.Errorf("xpgraph: node %d has edge with label %d, want 0 or 1: %w", v, e.label, ErrStructural)
			}
		}
	}

	for v := 0; v < n; v++ {
		switch b.kind[v] {
		case Internal:
			if len(b.edges[v]) == 0 {
				return nil, fmt.Errorf("xpgraph: internal node %d has out-degree 0: %w", v, ErrStructural)
			}
			if g.instEd[v] == -1 {
				return nil, fmt.Errorf("xpgraph: internal node %d has no instance edge: %w", v, ErrStructural)
			}
			if b.vr[v] < 0 || b.vr[v] >= g.nv {
				return nil, fmt.Errorf("xpgraph: internal node %d tests out-of-range feature %d: %w", v, b.vr[v], ErrStructural)
			}
		case Terminal:
			if b.target[v] != 0 && b.target[v] != 1 {
				return nil, fmt.Errorf("xpgraph: terminal node %d has target %d, want 0 or 1: %w", v, b.target[v], ErrStructural)
			}
		}
	}

	if err := checkReachableAndAcyclic(g); err != nil {
		return nil, err
	}

	return g, nil
}

// checkReachableAndAcyclic verifies invariant 3 of spec §3 (a DFS from root
// reaches every node) and that the graph is acyclic, using a single
// iterative DFS with an explicit stack and a three-color visit state.
func checkReachableAndAcyclic(g *XpG) error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // fully explored
	)
	n := len(g.kind)
	color := make([]uint8, n)

	type frame struct {
		node int
		next int32 // next outgoing-edge index to explore
	}
	stack := []frame{{node: g.root}}
	color[g.root] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		start, end := g.edgeStart[top.node], g.edgeStart[top.node+1]
		idx := start + top.next
		if idx >= end {
			color[top.node] = black
			stack = stack[:len(stack)-1]
			continue
		}
		top.next++
		succ := int(g.edgeSucc[idx])
		switch color[succ] {
		case white:
			color[succ] = gray
			stack = append(stack, frame{node: succ})
		case gray:
			return fmt.Errorf("xpgraph: cycle detected through node %d: %w", succ, ErrStructural)
		case black:
			// already fully explored via another path, fine in a DAG
		}
	}

	for v := 0; v < n; v++ {
		if color[v] == white {
			return fmt.Errorf("xpgraph: node %d is unreachable from root %d: %w", v, g.root, ErrStructural)
		}
	}
	return nil
}
