// Package xpgfile implements the plain-text .xpg loader and serializer
// described in spec §6. It is an external collaborator to the core
// explanation engine (pkg/xpgraph): it produces a fully validated XpG and
// otherwise has no say in how explanations are computed.
package xpgfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gitrdm/xpgraph/pkg/xpgraph"
)

// Load reads and parses the .xpg file at path.
func Load(path string) (*xpgraph.XpG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xpgfile: open %s: %w", path, err)
	}
	defer f.Close()
	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("xpgfile: %s: %w", path, err)
	}
	return g, nil
}

// reader walks the non-blank, non-comment lines of a .xpg file one at a
// time, tracking the 1-based source line number of the last line returned
// so format errors can name it.
type reader struct {
	lines []string
	nos   []int
	pos   int
}

func newReader(r io.Reader) (*reader, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	var nos []int
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
		nos = append(nos, lineNo)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &reader{lines: lines, nos: nos}, nil
}

func (r *reader) done() bool { return r.pos >= len(r.lines) }

func (r *reader) peek() (string, bool) {
	if r.done() {
		return "", false
	}
	return r.lines[r.pos], true
}

func (r *reader) next() (string, int, error) {
	if r.done() {
		return "", 0, fmt.Errorf("unexpected end of file: %w", xpgraph.ErrFormat)
	}
	line, no := r.lines[r.pos], r.nos[r.pos]
	r.pos++
	return line, no, nil
}

// keyword consumes a line that must start with kw, returning the remainder
// of the line (its "payload") with surrounding whitespace trimmed.
func (r *reader) keyword(kw string) (string, error) {
	line, no, err := r.next()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, kw) {
		return "", fmt.Errorf("line %d: expected %q, got %q: %w", no, kw, line, xpgraph.ErrFormat)
	}
	return strings.TrimSpace(strings.TrimPrefix(line, kw)), nil
}

var sectionKeywords = []string{"NN:", "Root:", "T:", "TDef:", "NT:", "NTDef:", "NV:", "VarDef:"}

func isKeywordLine(line string) bool {
	for _, kw := range sectionKeywords {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// Parse reads the .xpg grammar of spec §6 from r and builds a validated
// XpG: NN, Root, T/TDef, NT/NTDef, NV/VarDef. TDef holds one line per T
// label and VarDef one line per NT label; NTDef's edge lines run until the
// next keyword line or end of file.
func Parse(r io.Reader) (*xpgraph.XpG, error) {
	lr, err := newReader(r)
	if err != nil {
		return nil, err
	}

	nnPayload, err := lr.keyword("NN:")
	if err != nil {
		return nil, err
	}
	nn, err := strconv.Atoi(strings.TrimSpace(nnPayload))
	if err != nil {
		return nil, fmt.Errorf("NN: not an integer: %q: %w", nnPayload, xpgraph.ErrFormat)
	}

	rootPayload, err := lr.keyword("Root:")
	if err != nil {
		return nil, err
	}
	root, err := strconv.Atoi(strings.TrimSpace(rootPayload))
	if err != nil {
		return nil, fmt.Errorf("Root: not an integer: %q: %w", rootPayload, xpgraph.ErrFormat)
	}

	tPayload, err := lr.keyword("T:")
	if err != nil {
		return nil, err
	}
	classes := strings.Fields(tPayload)

	if _, err := lr.keyword("TDef:"); err != nil {
		return nil, err
	}
	type termDef struct{ id, target int }
	terms := make([]termDef, 0, len(classes))
	for i := 0; i < len(classes); i++ {
		line, no, err := lr.next()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: TDef entry wants 2 fields, got %d: %w", no, len(fields), xpgraph.ErrFormat)
		}
		id, err1 := strconv.Atoi(fields[0])
		target, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("line %d: TDef entry not integers: %q: %w", no, line, xpgraph.ErrFormat)
		}
		terms = append(terms, termDef{id: id, target: target})
	}

	ntPayload, err := lr.keyword("NT:")
	if err != nil {
		return nil, err
	}
	ntLabels := strings.Fields(ntPayload)

	if _, err := lr.keyword("NTDef:"); err != nil {
		return nil, err
	}
	type edgeDef struct{ parent, child int; label uint8 }
	var edges []edgeDef
	for {
		line, ok := lr.peek()
		if !ok || isKeywordLine(line) {
			break
		}
		line, no, err := lr.next()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: NTDef entry wants 3 fields, got %d: %w", no, len(fields), xpgraph.ErrFormat)
		}
		parent, err1 := strconv.Atoi(fields[0])
		child, err2 := strconv.Atoi(fields[1])
		label, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("line %d: NTDef entry malformed: %q: %w", no, line, xpgraph.ErrFormat)
		}
		edges = append(edges, edgeDef{parent: parent, child: child, label: uint8(label)})
	}

	nvPayload, err := lr.keyword("NV:")
	if err != nil {
		return nil, err
	}
	nv, err := strconv.Atoi(strings.TrimSpace(nvPayload))
	if err != nil {
		return nil, fmt.Errorf("NV: not an integer: %q: %w", nvPayload, xpgraph.ErrFormat)
	}

	if _, err := lr.keyword("VarDef:"); err != nil {
		return nil, err
	}
	type varDef struct{ id int; name string }
	vars := make([]varDef, 0, len(ntLabels))
	for i := 0; i < len(ntLabels); i++ {
		line, no, err := lr.next()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: VarDef entry wants id + feature name: %q: %w", no, line, xpgraph.ErrFormat)
		}
		id, err1 := strconv.Atoi(fields[0])
		if err1 != nil {
			return nil, fmt.Errorf("line %d: VarDef id not an integer: %q: %w", no, line, xpgraph.ErrFormat)
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		vars = append(vars, varDef{id: id, name: name})
	}

	if len(classes)+len(ntLabels) != nn {
		return nil, fmt.Errorf("NN=%d but |T|+|NT|=%d+%d: %w", nn, len(classes), len(ntLabels), xpgraph.ErrFormat)
	}

	// Assign feature indices in order of first appearance in VarDef.
	featIndex := make(map[string]int)
	var feat []string
	for _, v := range vars {
		if _, ok := featIndex[v.name]; !ok {
			featIndex[v.name] = len(feat)
			feat = append(feat, v.name)
		}
	}
	if len(feat) != nv {
		return nil, fmt.Errorf("NV=%d but VarDef names %d distinct features: %w", nv, len(feat), xpgraph.ErrFormat)
	}

	b := xpgraph.NewBuilder(nn)
	b.SetRoot(root)
	b.SetClasses(classes, -1)
	b.SetFeatures(feat)
	for _, t := range terms {
		b.SetTerminal(t.id, t.target)
	}
	for _, v := range vars {
		b.SetInternal(v.id, featIndex[v.name])
	}
	for _, e := range edges {
		b.AddEdge(e.parent, e.child, e.label)
	}

	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Save serializes g back into the .xpg grammar. The result is semantically
// equivalent to the source file (same nodes, edges, features, root) but is
// not guaranteed byte-identical: display-only names not stored on XpG (the
// NT section's labels) are synthesized as placeholders.
func Save(w io.Writer, g *xpgraph.XpG) error {
	bw := bufio.NewWriter(w)

	var terminals, internals []int
	for v := 0; v < g.NumNodes(); v++ {
		if g.Kind(v) == xpgraph.Terminal {
			terminals = append(terminals, v)
		} else {
			internals = append(internals, v)
		}
	}

	classes := g.Classes()
	if len(classes) != len(terminals) {
		classes = make([]string, len(terminals))
		for i := range classes {
			classes[i] = fmt.Sprintf("c%d", i)
		}
	}
	ntLabels := make([]string, len(internals))
	for i := range ntLabels {
		ntLabels[i] = fmt.Sprintf("nt%d", i)
	}

	fmt.Fprintf(bw, "NN: %d\n", g.NumNodes())
	fmt.Fprintf(bw, "Root: %d\n", g.Root())
	fmt.Fprintf(bw, "T: %s\n", strings.Join(classes, " "))
	fmt.Fprintln(bw, "TDef:")
	for _, v := range terminals {
		fmt.Fprintf(bw, "%d %d\n", v, g.Target(v))
	}
	fmt.Fprintf(bw, "NT: %s\n", strings.Join(ntLabels, " "))
	fmt.Fprintln(bw, "NTDef:")
	for _, v := range internals {
		g.ForEachEdge(v, func(succ int, label uint8) {
			fmt.Fprintf(bw, "%d %d %d\n", v, succ, label)
		})
	}
	fmt.Fprintf(bw, "NV: %d\n", g.NumFeatures())
	fmt.Fprintln(bw, "VarDef:")
	for _, v := range internals {
		fmt.Fprintf(bw, "%d %s\n", v, g.FeatureName(g.Var(v)))
	}

	return bw.Flush()
}
