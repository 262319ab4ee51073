package xpgraph

// HornEncoder builds, once per XpG, the Horn CNF H of spec §4.3: a
// reachability variable b_v per node and a control literal u_i per feature,
// such that asserting u_i := univ[i] as an assumption makes H satisfiable
// iff the instance's prediction stays 1 under that mask, i.e. iff
// !PathToZero(univ).
//
// An AXp engine using the Horn back-end owns exactly one HornEncoder per
// XpG and reuses it across every minimization call on that graph (spec §9
// Design Notes, "Horn-cache lifetime"); its SAT session's lifetime equals
// the encoder's.
type HornEncoder struct {
	g      *XpG
	pool   *VarPool
	solver Solver
	ctrl   []int // control variable id per feature, ctrl[i] = pool id of u_i
}

// NewHornEncoder builds H over g and returns an encoder owning its own
// VarPool and Solver.
func NewHornEncoder(g *XpG) *HornEncoder {
	pool := NewVarPool()
	solver := NewSolver()

	ctrl := make([]int, g.NumFeatures())
	for i := range ctrl {
		ctrl[i] = pool.Get(keyU(i))
	}

	rootLit := pool.Get(keyB(g.Root()))

	for v := 0; v < g.NumNodes(); v++ {
		switch g.Kind(v) {
		case Terminal:
			bv := pool.Get(keyB(v))
			if g.Target(v) == 1 {
				solver.AddClause(bv)
			} else {
				solver.AddClause(-bv)
			}
		case Internal:
			bv := pool.Get(keyB(v))
			ui := ctrl[g.Var(v)]
			g.ForEachEdge(v, func(succ int, label uint8) {
				bc := pool.Get(keyB(succ))
				if label == 1 {
					solver.AddClause(-bv, bc)
				} else {
					solver.AddClause(-bv, -ui, bc)
				}
			})
		}
	}
	solver.AddClause(rootLit)

	solver.GrowTo(pool.Len())

	return &HornEncoder{g: g, pool: pool, solver: solver, ctrl: ctrl}
}

// ControlVar returns the SAT variable id of feature i's control literal u_i.
func (h *HornEncoder) ControlVar(i int) int { return h.ctrl[i] }

// Holds reports whether H is satisfiable with u_i assumed equal to
// fix[i]==false (i.e. univ[i]) for every feature i — equivalently, whether
// the prediction stays 1 under the mask univ = !fix. This is the
// assumption-driven equivalent of !PathToZero(!fix) used by the AXp
// engine's Horn back-end.
func (h *HornEncoder) Holds(fix []bool) (bool, error) {
	assumps := make([]int, len(fix))
	for i, f := range fix {
		if f {
			assumps[i] = -h.ctrl[i]
		} else {
			assumps[i] = h.ctrl[i]
		}
	}
	return h.solver.Solve(assumps...)
}

// Close releases the encoder's SAT session.
func (h *HornEncoder) Close() {
	h.solver.Close()
}
