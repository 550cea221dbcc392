package lr

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/CanftIn/reggen/meta"
	"github.com/CanftIn/reggen/reggenerr"
)

// ActionKind discriminates one cell of the parsing action table.
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// Action is one action-table cell: either nothing (ActionError), a state
// to shift to, a production number to reduce by, or ActionAccept.
type Action struct {
	Kind   ActionKind
	Target int
}

// ConflictKind distinguishes the two ways two actions can compete for the
// same table cell.
type ConflictKind int

const (
	ShiftReduceConflict ConflictKind = iota
	ReduceReduceConflict
)

// Conflict records a table cell a second action tried to occupy. Every
// conflict is a construction error: the table holds whichever action was
// inserted first, and Build fails once the full table has been walked,
// reporting every such cell rather than stopping at the first.
type Conflict struct {
	Kind   ConflictKind
	State  int
	Symbol meta.Symbol
	First  Action
	Second Action
}

func (c Conflict) Error() string {
	if c.Kind == ShiftReduceConflict {
		return fmt.Sprintf("lr: state %d has both a shift and a reduce action on symbol %d", c.State, c.Symbol.Num())
	}
	return fmt.Sprintf("lr: state %d has more than one reduce action on symbol %d", c.State, c.Symbol.Num())
}

// Table is the dense, state-indexed action and goto table the runtime
// driver indexes into directly: ActionTable[state*NumTerminals+term.Num()]
// and GotoTable[state*NumNonTerminals+nt.Num()], with a separate row for
// the end-of-input column since $eof never shows up in ordinary shifts.
type Table struct {
	NumStates       int
	NumTerminals    int
	NumNonTerminals int

	ActionTable []Action
	EOFAction   []Action
	GotoTable   []int

	conflicts []Conflict
}

func (t *Table) Action(state int, term meta.Symbol) Action {
	return t.ActionTable[state*t.NumTerminals+term.Num()]
}

func (t *Table) Goto(state int, nt meta.Symbol) int {
	return t.GotoTable[state*t.NumNonTerminals+nt.Num()]
}

// Build runs the full two-stage construction: BuildLR0 over prods and
// symbols, then the extended-grammar analysis over the resulting
// automaton to assign each reduce item its LALR(1) lookahead set, then
// assembles the dense tables. A second action claiming an already-filled
// (state, symbol) cell is a construction error, not something the builder
// resolves: a grammar that needs the reading a shift-wins or a
// lowest-production-wins policy would otherwise produce has to be
// factored so no cell is ever double-claimed in the first place.
func Build(prods *meta.ProductionSet, symbols *meta.SymbolTable) (*Table, error) {
	aut := BuildLR0(prods, symbols)

	ext := buildExtendedGrammar(aut)
	startNT := ExtendedNonTerminal{Base: aut.AugmentedHead, Origin: aut.StartState}
	analysis := analyzeExtendedGrammar(ext, startNT, symbols.EOF())

	lookaheads, err := collectLookaheads(ext, analysis, aut)
	if err != nil {
		return nil, err
	}

	t := &Table{
		NumStates:       len(aut.States),
		NumTerminals:    symbols.NumTerminals(),
		NumNonTerminals: symbols.NumNonTerminals(),
	}
	t.ActionTable = make([]Action, t.NumStates*t.NumTerminals)
	t.EOFAction = make([]Action, t.NumStates)
	t.GotoTable = make([]int, t.NumStates*t.NumNonTerminals)
	for i := range t.GotoTable {
		t.GotoTable[i] = -1
	}

	for _, s := range aut.States {
		for sym, next := range s.Goto {
			if sym.IsNonTerminal() {
				t.GotoTable[s.Num*t.NumNonTerminals+sym.Num()] = next
				continue
			}
			t.setAction(s.Num, sym, Action{Kind: ActionShift, Target: next}, symbols)
		}

		for _, it := range s.Reducible() {
			if it.Prod.ID == aut.AugmentedProd.ID {
				t.setAction(s.Num, symbols.EOF(), Action{Kind: ActionAccept}, symbols)
				continue
			}
			la := lookaheads[reduceKey{prod: it.Prod.ID, state: s.Num}]
			for term := range la {
				t.setAction(s.Num, term, Action{Kind: ActionReduce, Target: it.Prod.Num}, symbols)
			}
		}
	}

	if len(t.conflicts) > 0 {
		// Map iteration over s.Goto and over each lookahead set makes the
		// order conflicts get detected in nondeterministic across runs; a
		// construction error list should read the same way every time it's
		// built from the same grammar.
		slices.SortFunc(t.conflicts, func(a, b Conflict) bool {
			if a.State != b.State {
				return a.State < b.State
			}
			return a.Symbol.Num() < b.Symbol.Num()
		})
		var list reggenerr.List
		for _, c := range t.conflicts {
			list = append(list, &reggenerr.ConstructionError{Cause: c})
		}
		return nil, list
	}

	return t, nil
}

func (t *Table) setAction(state int, term meta.Symbol, act Action, symbols *meta.SymbolTable) {
	if term.IsEOF() {
		cur := t.EOFAction[state]
		if cur.Kind != ActionError {
			t.conflicts = append(t.conflicts, conflictBetween(cur, act, state, term))
			return
		}
		t.EOFAction[state] = act
		return
	}
	idx := state*t.NumTerminals + term.Num()
	cur := t.ActionTable[idx]
	if cur.Kind != ActionError {
		t.conflicts = append(t.conflicts, conflictBetween(cur, act, state, term))
		return
	}
	t.ActionTable[idx] = act
}

func conflictBetween(first, second Action, state int, sym meta.Symbol) Conflict {
	kind := ReduceReduceConflict
	if first.Kind == ActionShift || second.Kind == ActionShift {
		kind = ShiftReduceConflict
	}
	return Conflict{Kind: kind, State: state, Symbol: sym, First: first, Second: second}
}

type reduceKey struct {
	prod  meta.ProductionID
	state int
}

// collectLookaheads maps each (production, state) reduce item to its
// LALR(1) lookahead set, merging FOLLOW(A_origin) across every origin
// state that an extended production for that (production, finalState)
// pair was built from — the merge is exactly what makes this LALR(1)
// rather than the more precise but larger canonical LR(1): two contexts
// that happen to collapse onto the same LR(0) core share one lookahead
// set instead of keeping their own.
func collectLookaheads(ext []*extendedProduction, analysis *extendedAnalysis, aut *Automaton) (map[reduceKey]terminalSet, error) {
	out := map[reduceKey]terminalSet{}
	for _, p := range ext {
		if p.origin.ID == aut.AugmentedProd.ID {
			continue
		}
		key := reduceKey{prod: p.origin.ID, state: p.finalState}
		set, ok := out[key]
		if !ok {
			set = terminalSet{}
			out[key] = set
		}
		set.addAll(analysis.follow[p.lhs])
	}
	if len(out) == 0 && len(ext) > 1 {
		return nil, fmt.Errorf("lr: no reduce lookaheads were derived from a non-trivial grammar")
	}
	return out, nil
}
