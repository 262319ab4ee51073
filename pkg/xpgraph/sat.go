package xpgraph

// Solver is the abstract incremental CDCL API every encoder in this package
// is written against. Literals are signed integers: a positive literal v
// asserts variable v true, -v asserts it false; variable ids start at 1
// (NewVar never returns 0).
//
// Implementations need only provide add_clause / solve(assumptions) /
// get_model, per spec §6's SAT-backend contract; a host may swap incrSolver
// for a real CDCL binding without touching any encoder in this package.
type Solver interface {
	// NewVar allocates and returns a fresh variable id.
	NewVar() int
	// GrowTo ensures at least n variables have been allocated (ids 1..n),
	// used by encoders that allocate ids through a VarPool and then need
	// the solver's own variable count to match it.
	GrowTo(n int)
	// AddClause asserts the disjunction of lits. Safe to call after a
	// previous Solve returned false (UNSAT) when the solver was created
	// with NewSolverWithProof.
	AddClause(lits ...int)
	// Solve runs the search under the given assumption literals (each
	// forced true for this call only) and reports satisfiability.
	Solve(assumptions ...int) (bool, error)
	// Value reports the polarity variable v was assigned in the model of
	// the most recent satisfiable Solve call. Undefined after an
	// unsatisfiable call.
	Value(v int) bool
	// Close releases the solver's resources. Safe to call once, at the
	// end of the scope that created the solver (see spec §5's scoped
	// acquisition model).
	Close()
}

// incrSolver is an in-house incremental solver: unit propagation plus
// chronological backtracking over the full clause set, re-derived on every
// Solve call. No example repo in the retrieved corpus ships a CDCL/SAT
// library to bind against (see DESIGN.md), so this package owns a small,
// correctness-focused implementation rather than fabricating bindings to an
// unverified third-party API. It is not watched-literal-fast, but the
// formulas this package builds are Horn or near-Horn and the graphs spec §8
// targets (up to ~12 features) keep it well within a simple backtracking
// search's reach.
type incrSolver struct {
	nvars   int
	clauses [][]int32
	assign  []int8 // 0 unassigned, 1 true, -1 false; indexed by variable id
	trail   []int32
}

// NewSolver returns a fresh incremental solver.
func NewSolver() Solver { return &incrSolver{} }

// NewSolverWithProof returns a solver explicitly prepared for clauses added
// after an UNSAT result (spec §4.8's "with_proof=true" requirement).
// incrSolver always re-derives satisfiability from its full clause set on
// every Solve call, so this is functionally identical to NewSolver; it
// exists so call sites can state the requirement explicitly.
func NewSolverWithProof() Solver { return &incrSolver{} }

func (s *incrSolver) NewVar() int {
	s.nvars++
	return s.nvars
}

func (s *incrSolver) GrowTo(n int) {
	for s.nvars < n {
		s.nvars++
	}
}

func (s *incrSolver) AddClause(lits ...int) {
	cl := make([]int32, len(lits))
	for i, l := range lits {
		cl[i] = int32(l)
	}
	s.clauses = append(s.clauses, cl)
}

func (s *incrSolver) Value(v int) bool {
	return s.assign[v] == 1
}

func (s *incrSolver) Close() {
	s.clauses = nil
	s.assign = nil
	s.trail = nil
}

func (s *incrSolver) Solve(assumptions ...int) (bool, error) {
	s.assign = make([]int8, s.nvars+1)
	s.trail = s.trail[:0]

	for _, a := range assumptions {
		if !s.assumeLiteral(int32(a)) {
			return false, nil
		}
	}
	if !s.propagate() {
		return false, nil
	}
	return s.search(), nil
}

func (s *incrSolver) assumeLiteral(lit int32) bool {
	v := litVar(lit)
	want := litPolarity(lit)
	if s.assign[v] != 0 {
		return (s.assign[v] == 1) == want
	}
	s.assign[v] = polarityVal(want)
	s.trail = append(s.trail, lit)
	return true
}

// search performs the recursive decide/propagate/backtrack loop: pick the
// first unassigned variable, try it false then true, propagating and
// recursing after each choice, undoing the trail on failure.
func (s *incrSolver) search() bool {
	v := s.pickUnassigned()
	if v == 0 {
		return true
	}

	// Try false before true: with an empty or lightly constrained clause
	// set this yields the all-false model first, which is what gives
	// MARCO's map-solver its documented initial seed (univ = 0^n, spec
	// §4.6) without any special-casing in the enumerator.
	mark := len(s.trail)
	s.assign[v] = -1
	s.trail = append(s.trail, int32(-v))
	if s.propagate() && s.search() {
		return true
	}
	s.undoTo(mark)

	s.assign[v] = 1
	s.trail = append(s.trail, int32(v))
	if s.propagate() && s.search() {
		return true
	}
	s.undoTo(mark)

	return false
}

func (s *incrSolver) pickUnassigned() int {
	for v := 1; v <= s.nvars; v++ {
		if s.assign[v] == 0 {
			return v
		}
	}
	return 0
}

func (s *incrSolver) undoTo(mark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		s.assign[litVar(s.trail[i])] = 0
	}
	s.trail = s.trail[:mark]
}

// propagate runs unit propagation to a fixed point over the full clause
// set, assigning any clause with exactly one unassigned, not-yet-falsified
// literal. Reports false on a clause falsified under the current
// assignment.
func (s *incrSolver) propagate() bool {
	for {
		progressed := false
		for _, cl := range s.clauses {
			sat, conflict, unit, unassignedCount := s.evalClause(cl)
			if conflict {
				return false
			}
			if sat || unassignedCount != 1 {
				continue
			}
			v := litVar(unit)
			if s.assign[v] == 0 {
				s.assign[v] = polarityVal(litPolarity(unit))
				s.trail = append(s.trail, unit)
				progressed = true
			}
		}
		if !progressed {
			return true
		}
	}
}

// evalClause classifies a clause under the current assignment: satisfied,
// conflicting (every literal false), or — when exactly one literal remains
// unassigned and no literal is yet satisfied — unit, returning that literal.
func (s *incrSolver) evalClause(cl []int32) (sat, conflict bool, unit int32, unassignedCount int) {
	for _, lit := range cl {
		v := litVar(lit)
		val := s.assign[v]
		if val == 0 {
			unassignedCount++
			unit = lit
			continue
		}
		if (val == 1) == litPolarity(lit) {
			return true, false, 0, unassignedCount
		}
	}
	if unassignedCount == 0 {
		return false, true, 0, 0
	}
	return false, false, unit, unassignedCount
}

func litVar(lit int32) int {
	if lit < 0 {
		return int(-lit)
	}
	return int(lit)
}

func litPolarity(lit int32) bool { return lit > 0 }

func polarityVal(positive bool) int8 {
	if positive {
		return 1
	}
	return -1
}
