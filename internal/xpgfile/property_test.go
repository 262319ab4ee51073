package xpgfile_test

import (
	"bytes"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/gitrdm/xpgraph/internal/xpgfile"
	"github.com/gitrdm/xpgraph/pkg/xpgraph"
)

type genNode struct {
	leaf        bool
	target      int
	feat        int
	left, right int
}

// genGraph builds a random tree-shaped XpG, independent of (and deliberately
// not shared with) pkg/xpgraph's own generator: xpgfile sits outside the
// core package and should validate round-tripping against its own
// understanding of what a well-formed graph looks like.
func genGraph(t *rapid.T) *xpgraph.XpG {
	nFeatures := rapid.IntRange(1, 4).Draw(t, "nFeatures")
	maxDepth := rapid.IntRange(1, 3).Draw(t, "maxDepth")

	var nodes []genNode
	var build func(depth int) int
	build = func(depth int) int {
		id := len(nodes)
		nodes = append(nodes, genNode{})
		if depth == maxDepth || rapid.Bool().Draw(t, "leaf") {
			nodes[id] = genNode{leaf: true, target: rapid.IntRange(0, 1).Draw(t, "target")}
			return id
		}
		feat := rapid.IntRange(0, nFeatures-1).Draw(t, "feat")
		left := build(depth + 1)
		right := build(depth + 1)
		nodes[id] = genNode{feat: feat, left: left, right: right}
		return id
	}
	root := build(0)

	b := xpgraph.NewBuilder(len(nodes))
	b.SetRoot(root)
	for id, n := range nodes {
		if n.leaf {
			b.SetTerminal(id, n.target)
			continue
		}
		b.SetInternal(id, n.feat)
		b.AddEdge(id, n.left, 1)
		b.AddEdge(id, n.right, 0)
	}
	feat := make([]string, nFeatures)
	for i := range feat {
		feat[i] = fmt.Sprintf("feature_%d", i)
	}
	b.SetFeatures(feat)
	b.SetClasses([]string{"neg", "pos"}, -1)

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestPropertyRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)

		var buf bytes.Buffer
		if err := xpgfile.Save(&buf, g); err != nil {
			t.Fatalf("Save: %v", err)
		}
		g2, err := xpgfile.Parse(&buf)
		if err != nil {
			t.Fatalf("Parse(Save(g)): %v\n%s", err, buf.String())
		}

		if g2.NumNodes() != g.NumNodes() {
			t.Fatalf("NumNodes: %d != %d", g2.NumNodes(), g.NumNodes())
		}
		if g2.NumFeatures() != g.NumFeatures() {
			t.Fatalf("NumFeatures: %d != %d", g2.NumFeatures(), g.NumFeatures())
		}
		if g2.Root() != g.Root() {
			t.Fatalf("Root: %d != %d", g2.Root(), g.Root())
		}
		for v := 0; v < g.NumNodes(); v++ {
			if g.Kind(v) != g2.Kind(v) {
				t.Fatalf("node %d: kind %v != %v", v, g.Kind(v), g2.Kind(v))
			}
			if g.Kind(v) == xpgraph.Terminal {
				if g.Target(v) != g2.Target(v) {
					t.Fatalf("node %d: target %d != %d", v, g.Target(v), g2.Target(v))
				}
				continue
			}
			if g.FeatureName(g.Var(v)) != g2.FeatureName(g2.Var(v)) {
				t.Fatalf("node %d: feature name mismatch", v)
			}
		}

		// A second Save/Parse round trip must be idempotent.
		var buf2 bytes.Buffer
		if err := xpgfile.Save(&buf2, g2); err != nil {
			t.Fatalf("Save (2nd): %v", err)
		}
		g3, err := xpgfile.Parse(&buf2)
		if err != nil {
			t.Fatalf("Parse (2nd): %v", err)
		}
		if g3.NumNodes() != g2.NumNodes() || g3.NumFeatures() != g2.NumFeatures() {
			t.Fatal("second round trip changed the graph")
		}
	})
}
