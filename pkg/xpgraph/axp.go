package xpgraph

import "sort"

// Backend selects which oracle an AXp/CXp minimization drives: direct graph
// traversal (PathToZero) or the cached Horn/SAT encoding.
type Backend int

const (
	// BackendTraverse drives minimization directly off XpG.PathToZero.
	BackendTraverse Backend = iota
	// BackendHorn drives minimization off a cached Horn encoding solved
	// incrementally via assumption literals.
	BackendHorn
)

// AxpEngine computes abductive explanations for one XpG. It lazily builds
// and caches a HornEncoder the first time BackendHorn is used, and reuses
// it for every subsequent call — the cache's lifetime equals the engine's,
// per spec §9's "Horn-cache lifetime" note.
type AxpEngine struct {
	g    *XpG
	horn *HornEncoder
}

// NewAxpEngine creates an engine over g. The graph is read-only and may be
// shared by other engines; the AxpEngine itself owns all mutable state
// (fix vectors, the Horn cache and its SAT session) and that state never
// escapes the engine.
func NewAxpEngine(g *XpG) *AxpEngine {
	return &AxpEngine{g: g}
}

// Close releases the engine's cached Horn/SAT session, if one was built.
func (e *AxpEngine) Close() {
	if e.horn != nil {
		e.horn.Close()
		e.horn = nil
	}
}

// Explain computes one AXp via deletion-based linear search starting from
// the all-fixed mask, or from seedFixed if non-nil (a list of feature
// indices to start fixed; every other feature starts freed). Returns the
// sorted indices still fixed after one oracle call per initially fixed
// feature (NumFeatures calls when seedFixed is nil).
func (e *AxpEngine) Explain(backend Backend, seedFixed []int) ([]int, error) {
	fix := e.seedMask(seedFixed)

	holds, err := e.oracle(backend)
	if err != nil {
		return nil, err
	}

	for i, f := range fix {
		if !f {
			continue
		}
		fix[i] = false
		good, err := holds(fix)
		if err != nil {
			return nil, err
		}
		if !good {
			fix[i] = true
		}
	}

	result := fixedIndices(fix)
	if len(result) == 0 {
		return nil, ErrEmptyExplanation
	}
	return result, nil
}

// seedMask builds the initial fix vector: all true (all-fixed) when
// seedFixed is nil, else true exactly at the given indices.
func (e *AxpEngine) seedMask(seedFixed []int) []bool {
	fix := make([]bool, e.g.NumFeatures())
	if seedFixed == nil {
		for i := range fix {
			fix[i] = true
		}
		return fix
	}
	for _, i := range seedFixed {
		fix[i] = true
	}
	return fix
}

// oracle returns a function reporting whether the prediction still holds
// at 1 under the mask implied by fix (univ = !fix), using the requested
// back-end.
func (e *AxpEngine) oracle(backend Backend) (func(fix []bool) (bool, error), error) {
	switch backend {
	case BackendTraverse:
		return func(fix []bool) (bool, error) {
			univ := negateMask(fix)
			flips, err := e.g.PathToZero(univ)
			if err != nil {
				return false, err
			}
			return !flips, nil
		}, nil
	case BackendHorn:
		if e.horn == nil {
			e.horn = NewHornEncoder(e.g)
		}
		h := e.horn
		return func(fix []bool) (bool, error) {
			sat, err := h.Holds(fix)
			if err != nil {
				return false, err
			}
			return sat, nil
		}, nil
	default:
		panic("xpgraph: unknown Backend")
	}
}

func negateMask(fix []bool) []bool {
	univ := make([]bool, len(fix))
	for i, f := range fix {
		univ[i] = !f
	}
	return univ
}

func fixedIndices(fix []bool) []int {
	var out []int
	for i, f := range fix {
		if f {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// CheckOneAxp reports whether S is an AXp of g: sufficient
// (!PathToZero(univ = !S)) and subset-minimal (freeing any single member of
// S makes PathToZero true). Used as ground truth by the membership engines
// and by property tests.
func CheckOneAxp(g *XpG, s []int) (bool, error) {
	fix := make([]bool, g.NumFeatures())
	for _, i := range s {
		fix[i] = true
	}

	univ := negateMask(fix)
	flips, err := g.PathToZero(univ)
	if err != nil {
		return false, err
	}
	if flips {
		return false, nil
	}

	for _, i := range s {
		fix[i] = false
		univ := negateMask(fix)
		flips, err := g.PathToZero(univ)
		if err != nil {
			return false, err
		}
		fix[i] = true
		if !flips {
			return false, nil
		}
	}
	return true, nil
}
