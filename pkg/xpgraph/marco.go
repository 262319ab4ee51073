package xpgraph

// MarcoEnumerator enumerates every AXp and every CXp of an XpG by walking a
// map-solver over the "universal" feature vector u_0..u_{n-1}: each model is
// classified as a CXp witness (reachable to a 0-terminal) or an AXp witness
// (not reachable), minimized, and blocked so the map-solver never revisits
// a superset (for CXps) or subset-of-complement (for AXps) of an already
// emitted explanation.
//
// The enumerator owns a long-lived map-solver for the duration of one
// Enumerate call (spec §3, "Lifecycles"); blocking clauses are added
// monotonically and the map-solver is never reset.
type MarcoEnumerator struct {
	g       *XpG
	axp     *AxpEngine
	cxp     *CxpEngine
	backend Backend
	ms      Solver
	u       []int // map-solver variable id per feature
}

// NewMarcoEnumerator creates an enumerator over g. useHorn selects the AXp
// back-end used to minimize each AXp-side sample (the CXp side always uses
// graph traversal, per spec §4.5/§4.6).
func NewMarcoEnumerator(g *XpG, useHorn bool) *MarcoEnumerator {
	backend := BackendTraverse
	if useHorn {
		backend = BackendHorn
	}
	ms := NewSolver()
	u := make([]int, g.NumFeatures())
	for i := range u {
		u[i] = ms.NewVar()
	}
	return &MarcoEnumerator{
		g:       g,
		axp:     NewAxpEngine(g),
		cxp:     NewCxpEngine(g),
		backend: backend,
		ms:      ms,
		u:       u,
	}
}

// Close releases the enumerator's map-solver and AXp engine's Horn cache.
func (m *MarcoEnumerator) Close() {
	m.axp.Close()
	m.ms.Close()
}

// Enumerate drives the map-solver to exhaustion, returning every AXp and
// every CXp of the graph. Termination and completeness follow from spec
// §4.6: every iteration blocks either a down-set (an AXp's blocking clause)
// or an up-set (a CXp's), and the map-solver's cube is finite.
func (m *MarcoEnumerator) Enumerate() (axps, cxps [][]int, err error) {
	for {
		sat, err := m.ms.Solve()
		if err != nil {
			return nil, nil, err
		}
		if !sat {
			return axps, cxps, nil
		}

		univ := make([]bool, len(m.u))
		for i, v := range m.u {
			univ[i] = m.ms.Value(v)
		}

		flips, err := m.g.PathToZero(univ)
		if err != nil {
			return nil, nil, err
		}

		if flips {
			c, err := m.cxp.Explain(trueIndices(univ))
			if err != nil {
				return nil, nil, err
			}
			cxps = append(cxps, c)
			m.blockCxp(c)
		} else {
			fix := negateMask(univ)
			a, err := m.axp.Explain(m.backend, fixedIndices(fix))
			if err != nil {
				return nil, nil, err
			}
			axps = append(axps, a)
			m.blockAxp(a)
		}
	}
}

// blockCxp asserts OR_{i in c} !u_i, ruling out every model that has all of
// c universal — i.e. every superset of c as a freed set.
func (m *MarcoEnumerator) blockCxp(c []int) {
	lits := make([]int, len(c))
	for k, i := range c {
		lits[k] = -m.u[i]
	}
	m.ms.AddClause(lits...)
}

// blockAxp asserts OR_{i in a} u_i, ruling out every model that has all of
// a fixed — i.e. every subset of a's complement as a freed set.
func (m *MarcoEnumerator) blockAxp(a []int) {
	lits := make([]int, len(a))
	for k, i := range a {
		lits[k] = m.u[i]
	}
	m.ms.AddClause(lits...)
}
