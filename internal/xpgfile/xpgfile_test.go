package xpgfile_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/gitrdm/xpgraph/internal/xpgfile"
	"github.com/gitrdm/xpgraph/pkg/xpgraph"
)

func TestLoadS1(t *testing.T) {
	g, err := xpgfile.Load("../../examples/fixtures/s1.xpg")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.NumNodes() != 3 || g.NumFeatures() != 1 {
		t.Fatalf("got %d nodes, %d features; want 3, 1", g.NumNodes(), g.NumFeatures())
	}
	if g.Root() != 0 {
		t.Fatalf("Root() = %d, want 0", g.Root())
	}

	axp, err := xpgraph.NewAxpEngine(g).Explain(xpgraph.BackendTraverse, nil)
	if err != nil {
		t.Fatalf("Explain AXp: %v", err)
	}
	if len(axp) != 1 || axp[0] != 0 {
		t.Fatalf("AXp = %v, want [0]", axp)
	}
}

func TestLoadS2(t *testing.T) {
	g, err := xpgfile.Load("../../examples/fixtures/s2.xpg")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	axp, err := xpgraph.NewAxpEngine(g).Explain(xpgraph.BackendTraverse, nil)
	if err != nil {
		t.Fatalf("Explain AXp: %v", err)
	}
	if got := formatInts(axp); got != "[0 1 2]" {
		t.Fatalf("AXp = %s, want [0 1 2]", got)
	}

	m := xpgraph.NewMarcoEnumerator(g, false)
	defer m.Close()
	axps, cxps, err := m.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(axps) != 1 {
		t.Fatalf("got %d AXps, want 1", len(axps))
	}
	if len(cxps) != 3 {
		t.Fatalf("got %d CXps, want 3", len(cxps))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, path := range []string{"../../examples/fixtures/s1.xpg", "../../examples/fixtures/s2.xpg"} {
		g, err := xpgfile.Load(path)
		if err != nil {
			t.Fatalf("%s: Load: %v", path, err)
		}

		var buf bytes.Buffer
		if err := xpgfile.Save(&buf, g); err != nil {
			t.Fatalf("%s: Save: %v", path, err)
		}

		g2, err := xpgfile.Parse(&buf)
		if err != nil {
			t.Fatalf("%s: Parse(Save(g)): %v", path, err)
		}

		if g2.NumNodes() != g.NumNodes() || g2.NumFeatures() != g.NumFeatures() || g2.Root() != g.Root() {
			t.Fatalf("%s: round trip mismatch: nodes %d/%d feats %d/%d root %d/%d",
				path, g.NumNodes(), g2.NumNodes(), g.NumFeatures(), g2.NumFeatures(), g.Root(), g2.Root())
		}
		for v := 0; v < g.NumNodes(); v++ {
			if g.Kind(v) != g2.Kind(v) {
				t.Fatalf("%s: node %d kind mismatch", path, v)
			}
		}
	}
}

func TestParseRejectsBadNN(t *testing.T) {
	bad := `NN: 3
Root: 0
T: a
TDef:
1 0
NT: n0
NTDef:
0 1 0
NV: 1
VarDef:
0 f0
`
	_, err := xpgfile.Parse(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected a format error, got nil")
	}
	if !strings.Contains(err.Error(), "xpgraph") {
		t.Fatalf("expected error wrapping xpgraph.ErrFormat, got: %v", err)
	}
}

func formatInts(xs []int) string {
	return fmt.Sprint(xs)
}
