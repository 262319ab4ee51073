// Command xpgctl is the reference CLI for the explanation engine: it loads
// a .xpg file and prints AXps, CXps, or answers a feature-membership query,
// per SPEC_FULL.md §4.14.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/gitrdm/xpgraph/internal/xpgfile"
	"github.com/gitrdm/xpgraph/internal/xpglog"
	"github.com/gitrdm/xpgraph/pkg/xpgraph"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := pflag.NewFlagSet("xpgctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	all := fs.BoolP("all", "a", false, "enumerate every AXp and CXp via the MARCO-style dual enumerator")
	horn := fs.BoolP("Horn", "H", false, "drive AXp minimization off the cached Horn/SAT encoding instead of direct graph traversal")
	xtype := fs.StringP("xtype", "x", "AXp", "explanation kind for a single-explanation query: AXp or CXp")
	feature := fs.IntP("feature", "f", -1, "run a feature-membership query for this feature index instead of computing an explanation")
	guessOne := fs.BoolP("guess-one", "g", false, "stop a membership query at the first witness instead of enumerating all of them")
	cnf := fs.BoolP("cnf", "c", false, "answer a membership query with the replicated-CNF encoding instead of the brute-force baseline")
	saveExp := fs.StringP("save-exp", "s", "", "write the result to this path instead of stdout")
	verbCount := fs.CountP("verb", "v", "increase logging verbosity (repeatable)")
	help := fs.BoolP("help", "h", false, "show usage")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		fmt.Fprintf(stderr, "usage: xpgctl [flags] FILE.xpg\n\n")
		fs.PrintDefaults()
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "xpgctl: expected exactly one .xpg file argument")
		return 2
	}

	log := xpglog.New(stderr, xpglog.LevelFromCount(*verbCount))

	g, err := xpgfile.Load(fs.Arg(0))
	if err != nil {
		log.Errorf("load: %v", err)
		return 1
	}
	log.Infof("loaded %s: %d nodes, %d features", fs.Arg(0), g.NumNodes(), g.NumFeatures())

	out := stdout
	if *saveExp != "" {
		f, err := os.Create(*saveExp)
		if err != nil {
			log.Errorf("save-exp: %v", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	switch {
	case *feature >= 0:
		return runMembership(g, *feature, *cnf, *guessOne, log, out)
	case *all:
		return runEnumerate(g, *horn, log, out)
	default:
		return runSingle(g, *xtype, *horn, log, out)
	}
}

func runSingle(g *xpgraph.XpG, xtype string, horn bool, log *xpglog.Logger, out *os.File) int {
	start := time.Now()
	switch strings.ToLower(xtype) {
	case "axp":
		backend := xpgraph.BackendTraverse
		if horn {
			backend = xpgraph.BackendHorn
		}
		e := xpgraph.NewAxpEngine(g)
		defer e.Close()
		axp, err := e.Explain(backend, nil)
		log.Debugf("AXp computed in %s", time.Since(start))
		if err != nil {
			log.Errorf("AXp: %v", err)
			return 1
		}
		fmt.Fprintf(out, "AXp: %s\n", formatFeatures(g, axp))
		return 0
	case "cxp":
		e := xpgraph.NewCxpEngine(g)
		cxp, err := e.Explain(nil)
		log.Debugf("CXp computed in %s", time.Since(start))
		if err != nil {
			log.Errorf("CXp: %v", err)
			return 1
		}
		fmt.Fprintf(out, "CXp: %s\n", formatFeatures(g, cxp))
		return 0
	default:
		log.Errorf("xtype: want AXp or CXp, got %q", xtype)
		return 2
	}
}

func runEnumerate(g *xpgraph.XpG, horn bool, log *xpglog.Logger, out *os.File) int {
	start := time.Now()
	m := xpgraph.NewMarcoEnumerator(g, horn)
	defer m.Close()
	axps, cxps, err := m.Enumerate()
	log.Debugf("enumeration finished in %s", time.Since(start))
	if err != nil {
		log.Errorf("enumerate: %v", err)
		return 1
	}
	for _, a := range axps {
		fmt.Fprintf(out, "AXp: %s\n", formatFeatures(g, a))
	}
	for _, c := range cxps {
		fmt.Fprintf(out, "CXp: %s\n", formatFeatures(g, c))
	}
	log.Infof("%d AXp(s), %d CXp(s)", len(axps), len(cxps))
	return 0
}

func runMembership(g *xpgraph.XpG, feature int, cnf, guessOne bool, log *xpglog.Logger, out *os.File) int {
	if feature >= g.NumFeatures() {
		log.Errorf("feature: index %d out of range [0,%d)", feature, g.NumFeatures())
		return 2
	}
	start := time.Now()
	var (
		axps [][]int
		err  error
	)
	if cnf {
		axps, err = xpgraph.MembershipCNF(g, feature, guessOne)
	} else {
		axps, err = xpgraph.MembershipBruteForce(g, feature, guessOne)
	}
	log.Debugf("membership query finished in %s", time.Since(start))
	if err != nil {
		log.Errorf("membership: %v", err)
		return 1
	}
	if len(axps) == 0 {
		fmt.Fprintf(out, "feature %s belongs to no AXp\n", g.FeatureName(feature))
		return 0
	}
	for _, a := range axps {
		fmt.Fprintf(out, "AXp: %s\n", formatFeatures(g, a))
	}
	return 0
}

func formatFeatures(g *xpgraph.XpG, idx []int) string {
	names := make([]string, len(idx))
	for i, f := range idx {
		names[i] = g.FeatureName(f)
	}
	return strings.Join(names, ", ")
}
