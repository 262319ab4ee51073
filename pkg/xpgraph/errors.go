package xpgraph

import "errors"

// Sentinel errors identifying the error taxonomy of the explanation engine.
// All of them are fatal to the operation in progress: nothing here is
// retried, the caller is expected to propagate the error. Use fmt.Errorf
// with %w to attach the offending node, feature, or file line before
// returning one of these up the stack.
var (
	// ErrFormat means a .xpg file violates the section grammar.
	ErrFormat = errors.New("xpgraph: malformed .xpg file")

	// ErrStructural means a loaded graph violates a structural invariant:
	// a cycle, an unreachable node, an internal node missing its instance
	// edge, or a terminal with outgoing edges.
	ErrStructural = errors.New("xpgraph: structural invariant violated")

	// ErrEmptyExplanation means a minimizer produced the empty set, which
	// can only happen if the prediction does not actually depend on any
	// feature — a structural bug in the input graph.
	ErrEmptyExplanation = errors.New("xpgraph: minimizer produced an empty explanation")

	// ErrInvariant means a SAT result contradicted an assertion the
	// encoding is supposed to guarantee (e.g. a CNF-enumerated set failed
	// CheckOneAxp).
	ErrInvariant = errors.New("xpgraph: invariant violation")

	// ErrBackend means the SAT solver reported an internal error.
	ErrBackend = errors.New("xpgraph: SAT backend error")
)
