package xpgraph

import "sort"

// MembershipBruteForce answers "does feature f belong to some AXp?" by
// iterating subsets S of [0,n)\{f} in order of increasing size and testing
// whether S ∪ {f} is an AXp via CheckOneAxp. It is the brute-force baseline
// of spec §4.7: worst-case exponential, used only as ground truth.
func MembershipBruteForce(g *XpG, f int, guessOne bool) ([][]int, error) {
	n := g.NumFeatures()
	rest := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != f {
			rest = append(rest, i)
		}
	}

	var result [][]int
	for k := 0; k <= len(rest); k++ {
		for _, subset := range combinations(rest, k) {
			s := append(append([]int(nil), subset...), f)
			sort.Ints(s)

			ok, err := CheckOneAxp(g, s)
			if err != nil {
				return nil, err
			}
			if ok {
				result = append(result, s)
				if guessOne {
					return result, nil
				}
			}
		}
	}
	return result, nil
}

// combinations returns every k-element subset of items, as index-ordered
// slices, via straightforward recursive choice.
func combinations(items []int, k int) [][]int {
	var out [][]int
	var pick func(start int, chosen []int)
	pick = func(start int, chosen []int) {
		if len(chosen) == k {
			out = append(out, append([]int(nil), chosen...))
			return
		}
		for i := start; i < len(items); i++ {
			pick(i+1, append(chosen, items[i]))
		}
	}
	pick(0, nil)
	return out
}

// MembershipCNF answers the same membership query as MembershipBruteForce
// via the replicated CNF encoding of spec §4.8: n+1 copies of the graph's
// reachability equations sharing a single set of feature control literals
// u_0..u_{n-1}, such that every satisfying assignment's fixed set
// {i : !u_i} is exactly an AXp containing f. The solver runs in proof mode
// (clauses may be added after an UNSAT result), though this package's
// in-house solver always re-derives from scratch so that only matters for
// documenting the requirement explicitly (see sat.go).
func MembershipCNF(g *XpG, f int, guessOne bool) ([][]int, error) {
	pool := NewVarPool()
	solver := NewSolverWithProof()

	n := g.NumFeatures()
	for i := 0; i < n; i++ {
		pool.Get(keyU(i))
	}

	// Replica 0: sufficiency.
	zeros0 := buildReplica(g, pool, solver, 0, -1)
	ev0 := pool.Get(keyEv(0))
	encodeAndGate(solver, ev0, zeros0)
	solver.AddClause(ev0)
	solver.AddClause(-pool.Get(keyU(f)))

	// Replicas 1..n: per-feature minimality witness.
	for k := 1; k <= n; k++ {
		zerosK := buildReplica(g, pool, solver, k, k-1)
		evK := pool.Get(keyEv(k))
		encodeAndGate(solver, evK, zerosK)
		uKm1 := pool.Get(keyU(k - 1))
		// Mirrors the source's literal clause shapes exactly (spec §9,
		// "Open question"): [u_{k-1}, !ev_k] and [ev_k, !u_{k-1}].
		solver.AddClause(uKm1, -evK)
		solver.AddClause(evK, -uKm1)
	}

	solver.GrowTo(pool.Len())
	defer solver.Close()

	var result [][]int
	for {
		sat, err := solver.Solve()
		if err != nil {
			return nil, err
		}
		if !sat {
			break
		}

		s := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if !solver.Value(pool.Get(keyU(i))) {
				s = append(s, i)
			}
		}

		ok, err := CheckOneAxp(g, s)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvariant
		}
		result = append(result, s)

		lits := make([]int, len(s))
		for k, i := range s {
			lits[k] = pool.Get(keyU(i))
		}
		solver.AddClause(lits...)

		if guessOne {
			break
		}
	}
	return result, nil
}

// buildReplica encodes one copy of the graph's reachability equations:
// replica 0 uses the shared b_v variables; replica k>=1 (freeFeature =
// k-1) uses fresh n_{k,v} variables and forces feature freeFeature's
// non-instance edges live regardless of u_{freeFeature}. It returns the
// reachability variables of every target=0 terminal in this replica.
func buildReplica(g *XpG, pool *VarPool, solver Solver, replicaK, freeFeature int) []int {
	reach := func(v int) int {
		if replicaK == 0 {
			return pool.Get(keyB(v))
		}
		return pool.Get(keyN(replicaK, v))
	}

	n := g.NumNodes()
	incoming := make(map[int][]int, n)

	for p := 0; p < n; p++ {
		if g.Kind(p) != Internal {
			continue
		}
		i := g.Var(p)
		bp := reach(p)
		g.ForEachEdge(p, func(v int, label uint8) {
			if label == 0 && int(g.instEd[p]) == v {
				// A label-0 edge parallel to p's instance edge adds nothing
				// (v is reached whenever p is) and would share r's key.
				return
			}
			r := pool.Get(keyR(replicaK, p, v))
			switch {
			case label == 1:
				encodeIff(solver, r, bp)
			case replicaK >= 1 && i == freeFeature:
				encodeIff(solver, r, bp)
			default:
				ui := pool.Get(keyU(i))
				encodeIffAnd(solver, r, bp, ui)
			}
			incoming[v] = append(incoming[v], r)
		})
	}

	for v := 0; v < n; v++ {
		if v == g.Root() {
			continue
		}
		encodeOrGate(solver, reach(v), incoming[v])
	}
	solver.AddClause(reach(g.Root()))

	var zeros []int
	for v := 0; v < n; v++ {
		if g.Kind(v) == Terminal && g.Target(v) == 0 {
			zeros = append(zeros, reach(v))
		}
	}
	return zeros
}

// encodeIff asserts x ↔ y.
func encodeIff(solver Solver, x, y int) {
	solver.AddClause(-x, y)
	solver.AddClause(-y, x)
}

// encodeIffAnd asserts x ↔ (a ∧ b).
func encodeIffAnd(solver Solver, x, a, b int) {
	solver.AddClause(-x, a)
	solver.AddClause(-x, b)
	solver.AddClause(x, -a, -b)
}

// encodeOrGate asserts x ↔ (lits[0] ∨ lits[1] ∨ ...). lits is always
// non-empty here: Builder.Build already proved every non-root node has at
// least one incoming edge.
func encodeOrGate(solver Solver, x int, lits []int) {
	if len(lits) == 0 {
		solver.AddClause(-x)
		return
	}
	big := make([]int, 0, len(lits)+1)
	big = append(big, -x)
	big = append(big, lits...)
	solver.AddClause(big...)
	for _, l := range lits {
		solver.AddClause(-l, x)
	}
}

// encodeAndGate asserts ev ↔ (AND over vars of !v), i.e. ev is true iff
// every variable in vars is false. Used for ev_k ↔ "no 0-terminal reached".
func encodeAndGate(solver Solver, ev int, vars []int) {
	if len(vars) == 0 {
		solver.AddClause(ev)
		return
	}
	for _, v := range vars {
		solver.AddClause(-ev, -v)
	}
	big := make([]int, 0, len(vars)+1)
	big = append(big, ev)
	big = append(big, vars...)
	solver.AddClause(big...)
}
