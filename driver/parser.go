package driver

import (
	"github.com/CanftIn/reggen/arena"
	"github.com/CanftIn/reggen/ast"
	"github.com/CanftIn/reggen/lexical"
	"github.com/CanftIn/reggen/lr"
	"github.com/CanftIn/reggen/meta"
	"github.com/CanftIn/reggen/reggenerr"
)

// Parser is a compiled, immutable parser: the lexical DFA, the LALR(1)
// parsing table, the resolved grammar (symbol table, productions,
// AST-construction handles), and the caller's type-proxy registry. A
// Parser is safe for concurrent use by multiple goroutines, each parsing
// into its own Arena; the Arena, not the Parser, is the part that isn't
// shared.
type Parser struct {
	dfa      *lexical.DFA
	table    *lr.Table
	grammar  *meta.Grammar
	registry *ast.Registry

	productionsByNum []*meta.Production
}

func NewParser(dfa *lexical.DFA, table *lr.Table, grammar *meta.Grammar, registry *ast.Registry) *Parser {
	all := grammar.Productions.All()
	byNum := make([]*meta.Production, len(all))
	for _, p := range all {
		byNum[p.Num] = p
	}
	return &Parser{dfa: dfa, table: table, grammar: grammar, registry: registry, productionsByNum: byNum}
}

// Parse recognizes src against p's grammar, building its result out of a.
// On success it returns the Item the grammar's start symbol reduced to.
// On failure it returns a *reggenerr.RuntimeError and stops at the first
// error — there is no error recovery; a caller that wants a second
// attempt re-parses from scratch, optionally after editing src.
func (p *Parser) Parse(a *arena.Arena, src []byte) (ast.Item, error) {
	scanner := NewScanner(p.dfa, p.grammar.TokenNames, p.grammar.IsIgnorePattern, p.grammar.Symbols.EOF(), src)

	stateStack := []int{0}
	itemStack := []ast.Item{}

	tok, err := scanner.Next()
	if err != nil {
		return ast.Item{}, err
	}

	for {
		state := stateStack[len(stateStack)-1]

		var action lr.Action
		if tok.Sym.IsEOF() {
			action = p.table.EOFAction[state]
		} else {
			action = p.table.Action(state, tok.Sym)
		}

		switch action.Kind {
		case lr.ActionShift:
			itemStack = append(itemStack, ast.Item{Kind: ast.Token, Value: tok.Lexeme, Span: tok.Span})
			stateStack = append(stateStack, action.Target)
			tok, err = scanner.Next()
			if err != nil {
				return ast.Item{}, err
			}

		case lr.ActionReduce:
			prod := p.productionsByNum[action.Target]
			n := len(prod.RHS)

			rhs := itemStack[len(itemStack)-n:]
			itemStack = itemStack[:len(itemStack)-n]
			stateStack = stateStack[:len(stateStack)-n]

			handle := p.grammar.Handles[prod.ID]
			item, err := buildItem(handle, rhs, p.registry, a, ast.Span{Offset: tok.Span.Offset})
			if err != nil {
				return ast.Item{}, err
			}

			top := stateStack[len(stateStack)-1]
			next := p.table.Goto(top, prod.Head)
			itemStack = append(itemStack, item)
			stateStack = append(stateStack, next)

		case lr.ActionAccept:
			return itemStack[len(itemStack)-1], nil

		default:
			return ast.Item{}, &reggenerr.RuntimeError{
				Kind: reggenerr.UnexpectedToken,
				Pos:  reggenerr.Position{Offset: tok.Span.Offset},
			}
		}
	}
}
