package xpgraph

import "sort"

// CxpEngine computes contrastive explanations for one XpG via deletion-based
// minimization over direct graph traversal, seeded from the instance's
// decision path.
type CxpEngine struct {
	g *XpG
}

// NewCxpEngine creates an engine over g.
func NewCxpEngine(g *XpG) *CxpEngine {
	return &CxpEngine{g: g}
}

// Explain computes one CXp starting from every feature named on the
// decision path marked universal (all others fixed), or from seedUniv if
// non-nil (a list of feature indices to start universal). Returns the
// sorted indices still universal after minimization.
func (e *CxpEngine) Explain(seedUniv []int) ([]int, error) {
	univ, err := e.seedMask(seedUniv)
	if err != nil {
		return nil, err
	}

	for i, u := range univ {
		if !u {
			continue
		}
		univ[i] = false
		flips, err := e.g.PathToZero(univ)
		if err != nil {
			return nil, err
		}
		if !flips {
			univ[i] = true
		}
	}

	result := trueIndices(univ)
	if len(result) == 0 {
		return nil, ErrEmptyExplanation
	}
	return result, nil
}

func (e *CxpEngine) seedMask(seedUniv []int) ([]bool, error) {
	univ := make([]bool, e.g.NumFeatures())
	if seedUniv != nil {
		for _, i := range seedUniv {
			univ[i] = true
		}
		return univ, nil
	}
	feats, err := e.g.DecisionFeatures()
	if err != nil {
		return nil, err
	}
	for _, i := range feats {
		univ[i] = true
	}
	return univ, nil
}

func trueIndices(mask []bool) []int {
	var out []int
	for i, b := range mask {
		if b {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
