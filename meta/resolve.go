package meta

import (
	"fmt"

	"github.com/CanftIn/reggen/dsl"
	"github.com/CanftIn/reggen/lexical"
	"github.com/CanftIn/reggen/regex"
)

// Grammar is the fully resolved result of compiling a dsl.File: a symbol
// table and production set ready for LR table construction, a type
// registry and production-indexed handle table ready for AST-construction
// binding, and the lexical patterns (both ordinary and ignored tokens)
// ready for DFA compilation.
type Grammar struct {
	Symbols     *SymbolTable
	Types       *TypeRegistry
	Productions *ProductionSet
	Handles     map[ProductionID]*Handle

	// TokenPatterns and IgnorePatterns are in declaration order; that
	// order is also each one's lexical.Pattern.Priority, so an
	// earlier-declared token wins a same-length tie against a
	// later-declared one.
	TokenPatterns  []lexical.Pattern
	IgnorePatterns []lexical.Pattern

	// TokenNames maps a lexical.Pattern.ID back to the terminal Symbol it
	// was declared for. Ignore patterns have no entry: they never reach
	// the parser as a terminal.
	TokenNames map[int]Symbol
}

// AllPatterns returns every lexical pattern, ordinary tokens followed by
// ignored tokens, ready to compile into a single DFA: the scanner needs
// both kinds recognized together so a longest match never prefers an
// ignored token's shorter or longer competing span inconsistently.
func (g *Grammar) AllPatterns() []lexical.Pattern {
	out := make([]lexical.Pattern, 0, len(g.TokenPatterns)+len(g.IgnorePatterns))
	out = append(out, g.TokenPatterns...)
	out = append(out, g.IgnorePatterns...)
	return out
}

// IsIgnorePattern reports whether patternID names an ignored token rather
// than an ordinary one.
func (g *Grammar) IsIgnorePattern(patternID int) bool {
	_, ok := g.TokenNames[patternID]
	return !ok
}

// Resolve compiles a parsed grammar description into a Grammar, running
// the same kind of staged validation the teacher's GrammarBuilder.Build
// does: spelling/uniqueness checks first, then symbol table and lexical
// pattern generation, then production and handle generation. Resolve
// collects every error a stage produces before returning; it doesn't stop
// at the first one within a stage, but a stage that produced any errors
// means later stages don't run, since they'd just cascade-fail against an
// incomplete symbol table.
func Resolve(file *dsl.File) (*Grammar, []error) {
	var errs []error

	if err := checkUniqueNames(file); err != nil {
		errs = append(errs, err...)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	types, typeErrs := resolveTypes(file)
	errs = append(errs, typeErrs...)

	symbols, patterns, ignorePatterns, tokenNames, symErrs := resolveSymbolsAndPatterns(file)
	errs = append(errs, symErrs...)

	if len(errs) > 0 {
		return nil, errs
	}

	varTypes, varErrs := resolveVariableTypes(file)
	errs = append(errs, varErrs...)
	if len(errs) > 0 {
		return nil, errs
	}

	prods, handles, prodErrs := resolveProductionsAndHandles(file, symbols, types, varTypes)
	errs = append(errs, prodErrs...)
	if len(errs) > 0 {
		return nil, errs
	}

	return &Grammar{
		Symbols:        symbols,
		Types:          types,
		Productions:    prods,
		Handles:        handles,
		TokenPatterns:  patterns,
		IgnorePatterns: ignorePatterns,
		TokenNames:     tokenNames,
	}, nil
}

func checkUniqueNames(file *dsl.File) []error {
	var errs []error
	seen := map[string]string{} // name -> kind it was first seen as

	check := func(kind, name string) {
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("meta: %q is declared as both a %s and a %s", name, prev, kind))
			return
		}
		seen[name] = kind
	}

	for _, t := range file.Tokens {
		check("token", t.Name)
	}
	for _, t := range file.Ignores {
		check("ignored token", t.Name)
	}
	for _, e := range file.Enums {
		check("enum", e.Name)
	}
	for _, b := range file.Bases {
		check("base type", b.Name)
	}
	for _, n := range file.Nodes {
		check("node type", n.Name)
	}
	// A rule head may share a spelling with a type declaration (a rule
	// commonly produces the node of the same name), but not with a token.
	reportedHeads := map[string]bool{}
	for _, r := range file.Rules {
		if seen[r.Head] == "token" && !reportedHeads[r.Head] {
			reportedHeads[r.Head] = true
			errs = append(errs, fmt.Errorf("meta: %q is declared as both a token and a rule", r.Head))
		}
	}
	return errs
}

func resolveTypes(file *dsl.File) (*TypeRegistry, []error) {
	var errs []error
	types := NewTypeRegistry()

	for _, t := range file.Tokens {
		types.Tokens[t.Name] = true
	}
	for _, e := range file.Enums {
		members := map[string]bool{}
		for _, m := range e.Members {
			if members[m] {
				errs = append(errs, fmt.Errorf("meta: enum %q declares member %q more than once", e.Name, m))
				continue
			}
			members[m] = true
		}
		types.Enums[e.Name] = &EnumType{Name: e.Name, Members: e.Members}
	}
	for _, b := range file.Bases {
		types.Bases[b.Name] = &BaseType{Name: b.Name}
	}
	for _, n := range file.Nodes {
		nt := &NodeType{Name: n.Name, Base: n.Base}
		fieldNames := map[string]bool{}
		for _, f := range n.Fields {
			if fieldNames[f.Name] {
				errs = append(errs, fmt.Errorf("meta: node %q declares field %q more than once", n.Name, f.Name))
				continue
			}
			fieldNames[f.Name] = true
			nt.Fields = append(nt.Fields, FieldType{Name: f.Name, Type: f.Type.Type, Vector: f.Type.Vector, Optional: f.Type.Optional})
		}
		types.Nodes[n.Name] = nt
	}

	// Cross-reference: every node's Base, and every field's Type, must
	// name something declared (or the built-in "string").
	for _, n := range file.Nodes {
		if n.Base != "" {
			if _, ok := types.Bases[n.Base]; !ok {
				errs = append(errs, fmt.Errorf("meta: node %q extends undeclared base type %q", n.Name, n.Base))
			}
		}
		for _, f := range n.Fields {
			if err := types.checkFieldType(n.Name, f.Name, f.Type.Type); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return types, errs
}

func resolveSymbolsAndPatterns(file *dsl.File) (*SymbolTable, []lexical.Pattern, []lexical.Pattern, map[int]Symbol, []error) {
	var errs []error
	symbols := NewSymbolTable()
	tokenNames := map[int]Symbol{}

	var patterns, ignorePatterns []lexical.Pattern
	nextPatternID := 0
	nextPriority := 0

	for _, t := range file.Tokens {
		sym, err := symbols.RegisterTerminal(t.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tree, err := regex.Parse([]byte(t.Pattern))
		if err != nil {
			errs = append(errs, fmt.Errorf("meta: token %q: %w", t.Name, err))
			continue
		}
		id := nextPatternID
		nextPatternID++
		patterns = append(patterns, lexical.Pattern{ID: id, Priority: nextPriority, Tree: tree})
		nextPriority++
		tokenNames[id] = sym
	}
	for _, t := range file.Ignores {
		tree, err := regex.Parse([]byte(t.Pattern))
		if err != nil {
			errs = append(errs, fmt.Errorf("meta: ignored token %q: %w", t.Name, err))
			continue
		}
		id := nextPatternID
		nextPatternID++
		ignorePatterns = append(ignorePatterns, lexical.Pattern{ID: id, Priority: nextPriority, Tree: tree})
		nextPriority++
	}

	if len(file.Rules) == 0 {
		errs = append(errs, fmt.Errorf("meta: grammar declares no rules"))
		return symbols, patterns, ignorePatterns, tokenNames, errs
	}

	// A variable can be declared across several RuleStmts (one per
	// alternative), so the root isn't "the first rule statement" but
	// "the last distinct variable name to appear" — track first
	// occurrence order and register the last name in that order.
	var headOrder []string
	seenHead := map[string]bool{}
	for _, r := range file.Rules {
		if !seenHead[r.Head] {
			seenHead[r.Head] = true
			headOrder = append(headOrder, r.Head)
		}
	}
	for i, name := range headOrder {
		if _, err := symbols.RegisterNonTerminal(name, i == len(headOrder)-1); err != nil {
			errs = append(errs, err)
		}
	}

	return symbols, patterns, ignorePatterns, tokenNames, errs
}

// resolveVariableTypes resolves each distinct rule head's own declared
// VariableType, checked for consistency across every RuleStmt that shares
// the head: a variable's type is declared once, not per alternative.
func resolveVariableTypes(file *dsl.File) (map[string]VariableType, []error) {
	var errs []error
	vars := map[string]VariableType{}
	for _, r := range file.Rules {
		vt := VariableType{TypeName: r.Type.Type, Vector: r.Type.Vector, Optional: r.Type.Optional}
		if prev, ok := vars[r.Head]; ok {
			if prev != vt {
				errs = append(errs, fmt.Errorf("meta: rule %q is declared with inconsistent types (%q vs %q)", r.Head, prev.TypeName, vt.TypeName))
			}
			continue
		}
		vars[r.Head] = vt
	}
	return vars, errs
}

func resolveProductionsAndHandles(file *dsl.File, symbols *SymbolTable, types *TypeRegistry, varTypes map[string]VariableType) (*ProductionSet, map[ProductionID]*Handle, []error) {
	var errs []error
	prods := NewProductionSet()
	handles := map[ProductionID]*Handle{}

	resolveSymbol := func(name string) (Symbol, error) {
		s, ok := symbols.Lookup(name)
		if !ok {
			return 0, fmt.Errorf("meta: %q is neither a declared token nor a rule head", name)
		}
		return s, nil
	}

	for _, r := range file.Rules {
		head, ok := symbols.LookupNonTerminal(r.Head)
		if !ok {
			errs = append(errs, fmt.Errorf("meta: internal error resolving rule head %q", r.Head))
			continue
		}
		rhs := make([]Symbol, 0, len(r.RHS))
		good := true
		for _, sym := range r.RHS {
			s, err := resolveSymbol(sym.Name)
			if err != nil {
				errs = append(errs, err)
				good = false
				continue
			}
			rhs = append(rhs, s)
		}
		if !good {
			continue
		}
		if _, dup := prods.ByID(computeProductionID(head, rhs)); dup {
			errs = append(errs, fmt.Errorf("meta: rule %q declares the same right-hand side more than once", r.Head))
			continue
		}
		prod := prods.Add(head, rhs)
		h, err := buildHandle(prod, r, r.RHS, varTypes[r.Head], types)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles[prod.ID] = h
	}

	return prods, handles, errs
}
