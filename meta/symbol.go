// Package meta resolves a parsed grammar description (dsl.File) into the
// symbol table, production set, type registry, and AST-construction
// handles the LR table builder and the runtime driver operate on. This is
// where every name in the grammar description gets checked for spelling
// consistency and cross-referenced against the rest of the file before any
// automaton construction begins.
package meta

import "fmt"

// Symbol is a compact, comparable identifier for one terminal or
// nonterminal, bit-packed the way the teacher's grammar package packs its
// own symbol type: the low bit marks terminal vs. nonterminal, the next
// bit marks the distinguished start symbol or (for terminals) the
// end-of-input marker, and the remaining bits hold a dense, zero-based
// number assigned in declaration order. Packing the flags into the
// integer itself keeps Symbol a plain, hashable value usable directly as a
// map key and as a table index.
type Symbol uint16

const (
	symKindMask   = 0x1
	symSpecialBit = 0x2
	symNumberBits = 2
)

func makeSymbol(num int, nonTerminal, special bool) Symbol {
	s := Symbol(num) << symNumberBits
	if nonTerminal {
		s |= 1
	}
	if special {
		s |= symSpecialBit
	}
	return s
}

// IsNonTerminal reports whether s identifies a nonterminal.
func (s Symbol) IsNonTerminal() bool { return s&symKindMask == 1 }

// IsTerminal reports whether s identifies a terminal.
func (s Symbol) IsTerminal() bool { return !s.IsNonTerminal() }

// IsStart reports whether s is the grammar's distinguished start symbol.
// Only meaningful for nonterminals.
func (s Symbol) IsStart() bool { return s.IsNonTerminal() && s&symSpecialBit != 0 }

// IsEOF reports whether s is the end-of-input terminal. Only meaningful
// for terminals.
func (s Symbol) IsEOF() bool { return s.IsTerminal() && s&symSpecialBit != 0 }

// Num returns s's dense, zero-based number within its kind (terminal or
// nonterminal), suitable for indexing a per-kind table.
func (s Symbol) Num() int { return int(s >> symNumberBits) }

// SymbolTable interns symbol names to Symbol values and back, the way the
// teacher's symbolTable does, split into independent terminal and
// nonterminal namespaces (a token and a rule may share a spelling without
// colliding, though the resolver rejects that as a likely mistake; see
// resolve.go).
type SymbolTable struct {
	text2Term map[string]Symbol
	term2Text []string
	terms     []Symbol

	text2NonTerm map[string]Symbol
	nonTerm2Text []string
	nonTerms     []Symbol

	eof   Symbol
	start Symbol
}

// NewSymbolTable returns an empty table with the end-of-input terminal
// already registered under the name "$eof", the way the teacher's table
// reserves a slot for its own EOF symbol up front.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		text2Term:    map[string]Symbol{},
		text2NonTerm: map[string]Symbol{},
	}
	t.eof = makeSymbol(len(t.term2Text), false, true)
	t.term2Text = append(t.term2Text, "$eof")
	t.terms = append(t.terms, t.eof)
	t.text2Term["$eof"] = t.eof
	return t
}

func (t *SymbolTable) RegisterTerminal(name string) (Symbol, error) {
	if _, ok := t.text2Term[name]; ok {
		return 0, fmt.Errorf("meta: terminal %q is declared more than once", name)
	}
	s := makeSymbol(len(t.term2Text), false, false)
	t.term2Text = append(t.term2Text, name)
	t.terms = append(t.terms, s)
	t.text2Term[name] = s
	return s, nil
}

func (t *SymbolTable) RegisterNonTerminal(name string, isStart bool) (Symbol, error) {
	if _, ok := t.text2NonTerm[name]; ok {
		return 0, fmt.Errorf("meta: nonterminal %q is declared more than once", name)
	}
	s := makeSymbol(len(t.nonTerm2Text), true, isStart)
	if isStart {
		t.start = s
	}
	t.nonTerm2Text = append(t.nonTerm2Text, name)
	t.nonTerms = append(t.nonTerms, s)
	t.text2NonTerm[name] = s
	return s, nil
}

func (t *SymbolTable) LookupTerminal(name string) (Symbol, bool) {
	s, ok := t.text2Term[name]
	return s, ok
}

func (t *SymbolTable) LookupNonTerminal(name string) (Symbol, bool) {
	s, ok := t.text2NonTerm[name]
	return s, ok
}

// Lookup checks both namespaces, terminals first, matching how a rule's
// right-hand side resolves a bare name to either kind of symbol.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	if s, ok := t.text2Term[name]; ok {
		return s, true
	}
	if s, ok := t.text2NonTerm[name]; ok {
		return s, true
	}
	return 0, false
}

func (t *SymbolTable) Text(s Symbol) string {
	if s.IsTerminal() {
		return t.term2Text[s.Num()]
	}
	return t.nonTerm2Text[s.Num()]
}

func (t *SymbolTable) EOF() Symbol   { return t.eof }
func (t *SymbolTable) Start() Symbol { return t.start }

func (t *SymbolTable) NumTerminals() int    { return len(t.term2Text) }
func (t *SymbolTable) NumNonTerminals() int { return len(t.nonTerm2Text) }

// NewNonTerminalSymbol constructs a Symbol directly from a dense number
// without registering it in any table. The LR automaton builder uses this
// to synthesize the augmented grammar's start symbol, which exists only
// to seed the automaton's initial item set and is never looked up by
// name.
func NewNonTerminalSymbol(num int, start bool) Symbol { return makeSymbol(num, true, start) }

// Terminals returns every registered terminal in declaration order
// (including $eof at index 0).
func (t *SymbolTable) Terminals() []Symbol { return t.terms }

// NonTerminals returns every registered nonterminal in declaration order.
func (t *SymbolTable) NonTerminals() []Symbol { return t.nonTerms }
