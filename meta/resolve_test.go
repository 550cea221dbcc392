package meta

import (
	"testing"

	"github.com/CanftIn/reggen/dsl"
)

const arithGrammar = `
token NUM = "[0-9]+";
token PLUS = "\+";
token STAR = "\*";
token LPAREN = "\(";
token RPAREN = "\)";
ignore WS = "[ \t\n]+";

enum Op { Add; Mul; }

base Expr;

node BinExpr : Expr {
	Expr left;
	Op op;
	Expr right;
}

rule AddOp : Op = PLUS -> Add;
rule MulOp : Op = STAR -> Mul;

rule Expr : Expr = Expr:left AddOp:op Expr:right -> BinExpr;
rule Expr : Expr = Expr:left MulOp:op Expr:right -> BinExpr;
rule Expr : Expr = LPAREN Expr! RPAREN;
rule Expr : Expr = NUM! ;
`

func mustResolve(t *testing.T) *Grammar {
	t.Helper()
	f, err := dsl.Parse([]byte(arithGrammar))
	if err != nil {
		t.Fatalf("dsl.Parse: %v", err)
	}
	g, errs := Resolve(f)
	if len(errs) > 0 {
		t.Fatalf("Resolve: %v", errs)
	}
	return g
}

func TestResolveSymbols(t *testing.T) {
	g := mustResolve(t)
	if g.Symbols.NumNonTerminals() != 3 {
		t.Fatalf("got %d nonterminals, want 3 (AddOp, MulOp, Expr)", g.Symbols.NumNonTerminals())
	}
	// $eof plus the five declared tokens.
	if g.Symbols.NumTerminals() != 6 {
		t.Fatalf("got %d terminals, want 6", g.Symbols.NumTerminals())
	}
	start, ok := g.Symbols.LookupNonTerminal("Expr")
	if !ok || start != g.Symbols.Start() {
		t.Fatalf("Expr should be the start symbol, being the last-declared variable")
	}
}

func TestResolveRootIsLastDeclaredVariable(t *testing.T) {
	f, err := dsl.Parse([]byte(`
token A = "a";
rule Expr : Expr = A! ;
rule Start : Expr = Expr! ;
`))
	if err != nil {
		t.Fatalf("dsl.Parse: %v", err)
	}
	g, errs := Resolve(f)
	if len(errs) > 0 {
		t.Fatalf("Resolve: %v", errs)
	}
	start, ok := g.Symbols.LookupNonTerminal("Start")
	if !ok || start != g.Symbols.Start() {
		t.Fatal("Start, the last-declared variable, should be the start symbol, not Expr")
	}
}

func TestResolveProductionsAndHandles(t *testing.T) {
	g := mustResolve(t)
	if len(g.Productions.All()) != 6 {
		t.Fatalf("got %d productions, want 6", len(g.Productions.All()))
	}
	for _, p := range g.Productions.All() {
		if _, ok := g.Handles[p.ID]; !ok {
			t.Fatalf("production %q has no handle", g.Productions.String(p, g.Symbols))
		}
	}
}

func TestResolveRejectsUnknownFieldType(t *testing.T) {
	f, err := dsl.Parse([]byte(`
token A = "a";
node N { Bogus x; }
rule S : N = A:x -> _;
`))
	if err != nil {
		t.Fatalf("dsl.Parse: %v", err)
	}
	_, errs := Resolve(f)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for the undeclared field type")
	}
}

func TestResolveRejectsUnknownFieldName(t *testing.T) {
	f, err := dsl.Parse([]byte(`
token A = "a";
node N { A y; }
rule S : N = A:x -> _;
`))
	if err != nil {
		t.Fatalf("dsl.Parse: %v", err)
	}
	_, errs := Resolve(f)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for a ':field' mark naming a field N doesn't declare")
	}
}

func TestResolveRejectsMissingSelectorAndHint(t *testing.T) {
	f, err := dsl.Parse([]byte(`
token A = "a";
node N { A x; }
rule S : N = A:x ;
`))
	if err != nil {
		t.Fatalf("dsl.Parse: %v", err)
	}
	_, errs := Resolve(f)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error: rule has a ':field' mark but no '!' selector and no hint")
	}
}
