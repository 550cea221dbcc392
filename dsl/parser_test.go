package dsl

import "testing"

const sampleGrammar = `
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

rule Expr : Expr = Expr:left PLUS Expr:right -> BinExpr;
rule Expr : Expr = Expr:left STAR Expr:right -> BinExpr;
rule Expr : Expr = LPAREN Expr! RPAREN;
rule Expr : Expr = NUM! ;
`

func TestParseSampleGrammar(t *testing.T) {
	f, err := Parse([]byte(sampleGrammar))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Tokens) != 5 {
		t.Fatalf("got %d tokens, want 5", len(f.Tokens))
	}
	if len(f.Ignores) != 1 {
		t.Fatalf("got %d ignored tokens, want 1", len(f.Ignores))
	}
	if len(f.Enums) != 1 || len(f.Enums[0].Members) != 2 {
		t.Fatalf("got enums %+v, want one enum with two members", f.Enums)
	}

	var exprRules int
	for _, r := range f.Rules {
		if r.Head == "Expr" {
			exprRules++
		}
	}
	if exprRules != 4 {
		t.Fatalf("got %d Expr rule statements, want 4", exprRules)
	}

	r0 := f.Rules[0]
	if r0.Hint == nil || r0.Hint.Kind != HintName || r0.Hint.Name != "BinExpr" {
		t.Fatalf("got hint %+v, want a BinExpr type-name hint", r0.Hint)
	}
	if len(r0.RHS) != 3 {
		t.Fatalf("got %d right-hand-side symbols, want 3", len(r0.RHS))
	}
}

func TestParseSelectMark(t *testing.T) {
	f, err := Parse([]byte(`
token A = "a";
rule S : A = A! ;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := f.Rules[0]
	if r.Hint != nil {
		t.Fatalf("got hint %+v, want none (omitted hint selects via '!')", r.Hint)
	}
	if len(r.RHS) != 1 || r.RHS[0].Mark != MarkSelect {
		t.Fatalf("got rhs %+v, want one '!'-marked symbol", r.RHS)
	}
}

func TestParseAppendMark(t *testing.T) {
	f, err := Parse([]byte(`
token A = "a";
node List { A 'vec items; }
rule S : A 'vec = A& ;
rule S : A 'vec = S! A& ;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(f.Rules))
	}
	second := f.Rules[1]
	if len(second.RHS) != 2 || second.RHS[0].Mark != MarkSelect || second.RHS[1].Mark != MarkAppend {
		t.Fatalf("got rhs %+v, want [!, &]", second.RHS)
	}
}

func TestParseOptionalHint(t *testing.T) {
	f, err := Parse([]byte(`
token A = "a";
node N { N 'opt inner; }
rule S : N 'opt = A S:inner -> _;
rule S : N 'opt = -> _'opt;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	hint := f.Rules[1].Hint
	if hint == nil || hint.Kind != HintOptional {
		t.Fatalf("got hint %+v, want Optional", hint)
	}
}

func TestParseFieldMark(t *testing.T) {
	f, err := Parse([]byte(`
token A = "a";
node N { A value; }
rule S : N = A:value -> _;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sym := f.Rules[0].RHS[0]
	if sym.Mark != MarkField || sym.Field != "value" {
		t.Fatalf("got symbol %+v, want a ':value' field mark", sym)
	}
}

func TestParseFieldDeclOrderIsTypeFirst(t *testing.T) {
	f, err := Parse([]byte(`
token A = "a";
node N { A 'vec items; A 'opt tail; }
rule S : N = A:items -> _;
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Nodes) != 1 || len(f.Nodes[0].Fields) != 2 {
		t.Fatalf("got nodes %+v, want one node with two fields", f.Nodes)
	}
	items := f.Nodes[0].Fields[0]
	if items.Name != "items" || items.Type.Type != "A" || !items.Type.Vector {
		t.Fatalf("got field %+v, want a vector-qualified A field named items", items)
	}
	tail := f.Nodes[0].Fields[1]
	if tail.Name != "tail" || tail.Type.Type != "A" || !tail.Type.Optional {
		t.Fatalf("got field %+v, want an optional-qualified A field named tail", tail)
	}
}

func TestParseReportsMultipleErrors(t *testing.T) {
	_, err := Parse([]byte(`
token = "a";
rule;
`))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	el, ok := err.(errList)
	if !ok {
		t.Fatalf("got error type %T, want errList", err)
	}
	if len(el) < 2 {
		t.Fatalf("got %d errors, want at least 2 (one per malformed declaration)", len(el))
	}
}
