// Package reggen compiles a grammar description into a parser: a
// single-pass lexical DFA built by the position/followpos method, an
// LALR(1) parsing automaton built via the two-stage LR(0)-then-extended-
// grammar technique, and an AST-construction handle bound to every
// production, all driven at runtime by a shift-reduce loop that writes
// its result into a caller-supplied arena.
package reggen

import (
	"fmt"

	"github.com/CanftIn/reggen/ast"
	"github.com/CanftIn/reggen/driver"
	"github.com/CanftIn/reggen/dsl"
	"github.com/CanftIn/reggen/lexical"
	"github.com/CanftIn/reggen/lr"
	"github.com/CanftIn/reggen/meta"
	"github.com/CanftIn/reggen/reggenerr"
)

// buildConfig holds the options a Build call was given.
type buildConfig struct {
	report bool
}

// BuildOption configures a Build call, the same functional-options shape
// the teacher's compiler uses for its own CompileOption.
type BuildOption func(*buildConfig)

// WithReport makes Build return a non-nil *Report alongside the compiled
// Parser, summarizing the grammar and automaton it just built.
func WithReport() BuildOption {
	return func(c *buildConfig) { c.report = true }
}

// Report summarizes a successful Build: symbol and production counts, and
// the LR and DFA state counts. A grammar whose LALR(1) table would have
// needed a shift/reduce or reduce/reduce resolution never reaches this
// point — lr.Build fails the construction instead (see lr.Conflict).
type Report struct {
	NumTerminals       int
	NumNonTerminals    int
	NumProductions     int
	NumLRStates        int
	NumDFAStates       int
	NumIgnoredPatterns int
}

// Build compiles grammar description source text into a ready-to-use
// *driver.Parser. registry must carry a Proxy for every node type the
// grammar declares; Build reports every missing
// one at once rather than stopping at the first.
func Build(src []byte, registry *ast.Registry, opts ...BuildOption) (*driver.Parser, *Report, error) {
	cfg := &buildConfig{}
	for _, o := range opts {
		o(cfg)
	}

	file, err := dsl.Parse(src)
	if err != nil {
		return nil, nil, dsl.ToConstructionErrors(src, err)
	}

	gram, errs := meta.Resolve(file)
	if len(errs) > 0 {
		return nil, nil, wrapErrors(errs)
	}

	if missing := registry.MissingTypes(nodeTypeNames(gram.Types)); len(missing) > 0 {
		var list reggenerr.List
		for _, m := range missing {
			list = append(list, &reggenerr.ConstructionError{
				Cause: fmt.Errorf("reggen: no proxy registered for node type %q", m),
			})
		}
		return nil, nil, list
	}

	dfa, err := lexical.Compile(gram.AllPatterns())
	if err != nil {
		return nil, nil, reggenerr.List{&reggenerr.ConstructionError{Cause: err}}
	}

	table, err := lr.Build(gram.Productions, gram.Symbols)
	if err != nil {
		return nil, nil, reggenerr.List{&reggenerr.ConstructionError{Cause: err}}
	}

	p := driver.NewParser(dfa, table, gram, registry)

	var report *Report
	if cfg.report {
		report = &Report{
			NumTerminals:       gram.Symbols.NumTerminals(),
			NumNonTerminals:    gram.Symbols.NumNonTerminals(),
			NumProductions:     len(gram.Productions.All()),
			NumLRStates:        table.NumStates,
			NumDFAStates:       dfa.NumStates,
			NumIgnoredPatterns: len(gram.IgnorePatterns),
		}
	}
	return p, report, nil
}

func wrapErrors(errs []error) reggenerr.List {
	var list reggenerr.List
	for _, e := range errs {
		list = append(list, &reggenerr.ConstructionError{Cause: e})
	}
	return list
}

func nodeTypeNames(types *meta.TypeRegistry) []string {
	out := make([]string, 0, len(types.Nodes))
	for name := range types.Nodes {
		out = append(out, name)
	}
	return out
}
