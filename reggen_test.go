package reggen

import (
	"testing"

	"github.com/CanftIn/reggen/arena"
	"github.com/CanftIn/reggen/ast"
)

// argList is the Go type backing the ArgList node declared in
// argListGrammar below: a simple, unambiguous left-recursive list rule,
// exercising the vector-gen/vector-merger handle path end to end.
type argList struct {
	Items [][]byte
}

type argListProxy struct{}

func (argListProxy) New(a ast.Allocator) ast.Item {
	a.Alloc(32)
	return ast.Item{Kind: ast.Object, Value: &argList{}, TypeName: "ArgList"}
}

func (argListProxy) SetField(obj ast.Item, field string, value ast.Item) error {
	return &ast.ErrUnknownField{TypeName: "ArgList", Field: field}
}

func (argListProxy) NewVector(a ast.Allocator) ast.Item {
	a.Alloc(32)
	return ast.Item{Kind: ast.Vector, Value: &argList{}, TypeName: "ArgList"}
}

func (argListProxy) Push(vec ast.Item, value ast.Item) error {
	l := vec.Value.(*argList)
	l.Items = append(l.Items, value.Value.([]byte))
	return nil
}

const argListGrammar = `
token ID = "[a-zA-Z_][a-zA-Z0-9_]*";
token COMMA = ",";
ignore WS = "[ \t\n]+";

node ArgList { ID 'vec items; }

rule ArgList : ArgList 'vec = ID& -> _;
rule ArgList : ArgList 'vec = ArgList! COMMA ID& ;
`

func TestBuildAndParseArgList(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("ArgList", argListProxy{})

	p, report, err := Build([]byte(argListGrammar), reg, WithReport())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.NumProductions != 2 {
		t.Fatalf("report.NumProductions = %d, want 2", report.NumProductions)
	}

	a := arena.New()
	defer a.Destroy()

	item, err := p.Parse(a, []byte("a, b , c"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if item.Kind != ast.Vector || item.TypeName != "ArgList" {
		t.Fatalf("got item %+v, want an ArgList vector", item)
	}
	list := item.Value.(*argList)
	if len(list.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(list.Items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(list.Items[i]) != want {
			t.Errorf("item %d = %q, want %q", i, list.Items[i], want)
		}
	}
}

func TestBuildAndParseArgListRejectsTrailingComma(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("ArgList", argListProxy{})

	p, _, err := Build([]byte(argListGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	if _, err := p.Parse(a, []byte("a,")); err == nil {
		t.Fatal("expected a parse error for a trailing comma")
	}
}

func TestBuildReportsMissingProxy(t *testing.T) {
	reg := ast.NewRegistry()
	if _, _, err := Build([]byte(argListGrammar), reg); err == nil {
		t.Fatal("expected Build to fail when no proxy is registered for ArgList")
	}
}

// group is the Go type backing the Group node declared in parenGrammar: a
// depth counter built by unwrapping nested parens, exercising a purely
// recursive (non-left-recursive) object-gen handle chain.
type group struct {
	Depth int
}

type groupProxy struct{}

func (groupProxy) New(a ast.Allocator) ast.Item {
	a.Alloc(16)
	return ast.Item{Kind: ast.Object, Value: &group{}, TypeName: "Group"}
}

func (groupProxy) SetField(obj ast.Item, field string, value ast.Item) error {
	g := obj.Value.(*group)
	switch field {
	case "inner":
		g.Depth = value.Value.(*group).Depth + 1
		return nil
	default:
		return &ast.ErrUnknownField{TypeName: "Group", Field: field}
	}
}

func (groupProxy) NewVector(a ast.Allocator) ast.Item {
	return ast.Item{}
}

func (groupProxy) Push(vec ast.Item, value ast.Item) error {
	return &ast.ErrNotAVector{TypeName: "Group"}
}

const parenGrammar = `
token LPAREN = "\(";
token RPAREN = "\)";
ignore WS = "[ \t\n]+";

node Group { Group 'opt inner; }

rule Group : Group = LPAREN Group:inner RPAREN -> _;
rule Group : Group = -> _;
`

func TestBuildAndParseBalancedParens(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("Group", groupProxy{})

	p, _, err := Build([]byte(parenGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	item, err := p.Parse(a, []byte("((()))"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g := item.Value.(*group)
	if g.Depth != 3 {
		t.Fatalf("got depth %d, want 3", g.Depth)
	}
}

func TestBuildAndParseBalancedParensRejectsUnbalancedInput(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("Group", groupProxy{})

	p, _, err := Build([]byte(parenGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	if _, err := p.Parse(a, []byte("((()")); err == nil {
		t.Fatal("expected a parse error for an unbalanced input")
	}
}

// stmt is the Go type backing the Stmt node declared in
// danglingElseGrammar: it tags which alternative a Stmt reduced through,
// so a test can confirm an else clause binds to the nearest enclosing if.
type stmt struct {
	IsOther bool
	Inner   *stmt
	Else    *stmt
}

type stmtProxy struct{}

func (stmtProxy) New(a ast.Allocator) ast.Item {
	a.Alloc(48)
	return ast.Item{Kind: ast.Object, Value: &stmt{}, TypeName: "Stmt"}
}

func (stmtProxy) SetField(obj ast.Item, field string, value ast.Item) error {
	s := obj.Value.(*stmt)
	switch field {
	case "other":
		s.IsOther = true
		return nil
	case "inner":
		s.Inner = value.Value.(*stmt)
		return nil
	case "else":
		s.Else = value.Value.(*stmt)
		return nil
	default:
		return &ast.ErrUnknownField{TypeName: "Stmt", Field: field}
	}
}

func (stmtProxy) NewVector(a ast.Allocator) ast.Item {
	return ast.Item{}
}

func (stmtProxy) Push(vec ast.Item, value ast.Item) error {
	return &ast.ErrNotAVector{TypeName: "Stmt"}
}

// danglingElseGrammar disambiguates "if s else s" / "if s" the classic way,
// splitting Stmt into a Matched alternative (every enclosed if already has
// its own else) and an Unmatched one (its innermost if doesn't yet), so the
// grammar carries no shift/reduce conflict in the first place: there's
// never more than one way to parse "if if x else x".
const danglingElseGrammar = `
token IF = "if";
token ELSE = "else";
token OTHER = "x";
ignore WS = "[ \t\n]+";

node Stmt { Stmt 'opt other; Stmt 'opt inner; Stmt 'opt else; }

rule Matched : Stmt = IF Matched:inner ELSE Matched:else -> _;
rule Matched : Stmt = OTHER:other -> _;

rule Unmatched : Stmt = IF Stmt:inner -> _;
rule Unmatched : Stmt = IF Matched:inner ELSE Unmatched:else -> _;

rule Stmt : Stmt = Matched! ;
rule Stmt : Stmt = Unmatched! ;
`

func TestBuildAndParseDanglingElseSingleIf(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("Stmt", stmtProxy{})

	p, _, err := Build([]byte(danglingElseGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	item, err := p.Parse(a, []byte("if x else x"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer := item.Value.(*stmt)
	if outer.Else == nil {
		t.Fatal("expected the else clause to bind to the only if, producing a non-nil Else")
	}
}

// cell is the Go type backing the Cell node declared in cellChainGrammar:
// a right-recursive list whose tail field is stored as the raw ast.Item
// the Rest rule reduced to, rather than unwrapped, so the test can inspect
// the terminating item's Kind directly.
type cell struct {
	Value []byte
	Rest  *ast.Item
}

type cellProxy struct{}

func (cellProxy) New(a ast.Allocator) ast.Item {
	a.Alloc(32)
	return ast.Item{Kind: ast.Object, Value: &cell{}, TypeName: "Cell"}
}

func (cellProxy) SetField(obj ast.Item, field string, value ast.Item) error {
	c := obj.Value.(*cell)
	switch field {
	case "value":
		c.Value = value.Value.([]byte)
		return nil
	case "rest":
		c.Rest = &value
		return nil
	default:
		return &ast.ErrUnknownField{TypeName: "Cell", Field: field}
	}
}

func (cellProxy) NewVector(a ast.Allocator) ast.Item {
	return ast.Item{}
}

func (cellProxy) Push(vec ast.Item, value ast.Item) error {
	return &ast.ErrNotAVector{TypeName: "Cell"}
}

// cellChainGrammar pairs an ordinary select alternative with a `_'opt`
// hint on the same rule, so Rest's empty alternative exercises the
// optional-gen handle directly: its item is the construct-optional
// sentinel, not a Cell object at all.
const cellChainGrammar = `
token A = "a";
ignore WS = "[ \t\n]+";

node Cell { A value; Cell 'opt rest; }

rule Rest : Cell 'opt = Cell! ;
rule Rest : Cell 'opt = -> _'opt;

rule Cell : Cell = A:value Rest:rest -> _;
`

func TestBuildAndParseCellChainEndsInOptional(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("Cell", cellProxy{})

	p, _, err := Build([]byte(cellChainGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	item, err := p.Parse(a, []byte("a a a"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	c := item.Value.(*cell)
	var depth int
	for c.Rest != nil && c.Rest.Kind == ast.Object {
		c = c.Rest.Value.(*cell)
		depth++
	}
	if depth != 2 {
		t.Fatalf("got %d chained cells after the head, want 2", depth)
	}
	if c.Rest == nil {
		t.Fatal("expected the chain's tail field to be set to the terminating Rest item")
	}
	if c.Rest.Kind != ast.Optional {
		t.Fatalf("got terminating item kind %v, want Optional", c.Rest.Kind)
	}
	if c.Rest.IsPresent() {
		t.Fatal("expected the terminating optional item to be absent")
	}
}

func TestBuildAndParseDanglingElseWithNestedIf(t *testing.T) {
	reg := ast.NewRegistry()
	reg.Register("Stmt", stmtProxy{})

	p, _, err := Build([]byte(danglingElseGrammar), reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := arena.New()
	defer a.Destroy()

	// Without disambiguation, the else could attach to either if; the
	// Matched/Unmatched split forces it onto the nearer (inner) one.
	item, err := p.Parse(a, []byte("if if x else x"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer := item.Value.(*stmt)
	if outer.Else != nil {
		t.Fatal("outer if has no else of its own")
	}
	if outer.Inner == nil || outer.Inner.Else == nil {
		t.Fatal("expected the else clause to bind to the inner if")
	}
}
