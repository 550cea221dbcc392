package lr

import (
	"fmt"

	"github.com/CanftIn/reggen/meta"
)

// ExtendedNonTerminal is a nonterminal tagged with the LR(0) state its
// particular occurrence's derivation begins in. Renaming every nonterminal
// this way turns the LR(0) automaton's collection of item sets into an
// ordinary context-free grammar (the "extended grammar") whose FOLLOW sets
// give exactly the LALR(1) lookahead for reducing by the production that
// occurrence came from — state-splitting is what recovers the precision
// an LR(0)-only reduction would lose.
type ExtendedNonTerminal struct {
	Base   meta.Symbol
	Origin int
}

// extendedSymbol is one RHS position of an extended production: either a
// plain terminal (terminals aren't split by state — a shifted token's
// FIRST set is itself regardless of where it was shifted from) or an
// ExtendedNonTerminal.
type extendedSymbol struct {
	terminal meta.Symbol
	isTerm   bool
	nt       ExtendedNonTerminal
}

// extendedProduction is one production of the extended grammar, built by
// walking the LR(0) automaton's GOTO transitions along a real production's
// right-hand side starting from the state that predicted it (origin).
// finalState is the LR(0) state the walk ends in — exactly the state
// holding the reduce item this extended production's lookahead applies to.
type extendedProduction struct {
	lhs        ExtendedNonTerminal
	rhs        []extendedSymbol
	origin     *meta.Production
	finalState int
}

// buildExtendedGrammar enumerates one extended production per (production,
// predicting state) pair: for every state p and every item [A -> . gamma]
// in p's closure with the dot at the start (freshly predicted, not
// inherited from the kernel's own history), the walk from p along gamma's
// symbols gives that production's extended form rooted at p.
func buildExtendedGrammar(aut *Automaton) []*extendedProduction {
	type key struct {
		prod   meta.ProductionID
		origin int
	}
	seen := map[key]bool{}
	var out []*extendedProduction

	for _, p0 := range aut.States {
		for _, it := range p0.Closure {
			if it.Dot != 0 {
				continue
			}
			k := key{prod: it.Prod.ID, origin: p0.Num}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, walkProduction(aut, p0.Num, it.Prod))
		}
	}
	return out
}

func walkProduction(aut *Automaton, origin int, prod *meta.Production) *extendedProduction {
	cur := origin
	rhs := make([]extendedSymbol, len(prod.RHS))
	for i, sym := range prod.RHS {
		if sym.IsTerminal() {
			rhs[i] = extendedSymbol{isTerm: true, terminal: sym}
		} else {
			rhs[i] = extendedSymbol{nt: ExtendedNonTerminal{Base: sym, Origin: cur}}
		}
		next, ok := aut.States[cur].Goto[sym]
		if !ok {
			// A predicted item always has a live GOTO on its first RHS
			// symbol (and every symbol after, once shifted); this would
			// only fail if the automaton were malformed.
			panic(fmt.Sprintf("lr: no transition from state %d on symbol %v while building the extended grammar", cur, sym))
		}
		cur = next
	}
	return &extendedProduction{lhs: ExtendedNonTerminal{Base: prod.Head, Origin: origin}, rhs: rhs, origin: prod, finalState: cur}
}

// terminalSet is a small set of terminal symbols, used for FIRST and
// FOLLOW sets over the extended grammar.
type terminalSet map[meta.Symbol]bool

func (s terminalSet) addAll(other terminalSet) bool {
	changed := false
	for t := range other {
		if !s[t] {
			s[t] = true
			changed = true
		}
	}
	return changed
}

// extendedAnalysis holds the fixpoint results of analyzing the extended
// grammar: nullability, FIRST, and FOLLOW per ExtendedNonTerminal.
type extendedAnalysis struct {
	prods    []*extendedProduction
	byLHS    map[ExtendedNonTerminal][]*extendedProduction
	nullable map[ExtendedNonTerminal]bool
	first    map[ExtendedNonTerminal]terminalSet
	follow   map[ExtendedNonTerminal]terminalSet
}

func analyzeExtendedGrammar(prods []*extendedProduction, startNT ExtendedNonTerminal, eof meta.Symbol) *extendedAnalysis {
	a := &extendedAnalysis{
		prods:    prods,
		byLHS:    map[ExtendedNonTerminal][]*extendedProduction{},
		nullable: map[ExtendedNonTerminal]bool{},
		first:    map[ExtendedNonTerminal]terminalSet{},
		follow:   map[ExtendedNonTerminal]terminalSet{},
	}
	for _, p := range prods {
		a.byLHS[p.lhs] = append(a.byLHS[p.lhs], p)
		if _, ok := a.first[p.lhs]; !ok {
			a.first[p.lhs] = terminalSet{}
		}
		if _, ok := a.follow[p.lhs]; !ok {
			a.follow[p.lhs] = terminalSet{}
		}
	}

	a.computeNullable()
	a.computeFirst()
	a.follow[startNT] = terminalSet{eof: true}
	a.computeFollow()
	return a
}

func (a *extendedAnalysis) computeNullable() {
	for changed := true; changed; {
		changed = false
		for _, p := range a.prods {
			if a.nullable[p.lhs] {
				continue
			}
			if a.rhsNullable(p.rhs) {
				a.nullable[p.lhs] = true
				changed = true
			}
		}
	}
}

func (a *extendedAnalysis) rhsNullable(rhs []extendedSymbol) bool {
	for _, s := range rhs {
		if s.isTerm {
			return false
		}
		if !a.nullable[s.nt] {
			return false
		}
	}
	return true
}

func (a *extendedAnalysis) computeFirst() {
	for changed := true; changed; {
		changed = false
		for _, p := range a.prods {
			set := a.first[p.lhs]
			for _, s := range p.rhs {
				if s.isTerm {
					if !set[s.terminal] {
						set[s.terminal] = true
						changed = true
					}
					break
				}
				if set.addAll(a.first[s.nt]) {
					changed = true
				}
				if !a.nullable[s.nt] {
					break
				}
			}
		}
	}
}

// firstOfSuffix returns FIRST of the symbol sequence rhs[from:], and
// whether that whole suffix is nullable.
func (a *extendedAnalysis) firstOfSuffix(rhs []extendedSymbol, from int) (terminalSet, bool) {
	set := terminalSet{}
	for i := from; i < len(rhs); i++ {
		s := rhs[i]
		if s.isTerm {
			set[s.terminal] = true
			return set, false
		}
		set.addAll(a.first[s.nt])
		if !a.nullable[s.nt] {
			return set, false
		}
	}
	return set, true
}

func (a *extendedAnalysis) computeFollow() {
	for changed := true; changed; {
		changed = false
		for _, p := range a.prods {
			for i, s := range p.rhs {
				if s.isTerm {
					continue
				}
				suffixFirst, suffixNullable := a.firstOfSuffix(p.rhs, i+1)
				if a.follow[s.nt].addAll(suffixFirst) {
					changed = true
				}
				if suffixNullable {
					if a.follow[s.nt].addAll(a.follow[p.lhs]) {
						changed = true
					}
				}
			}
		}
	}
}
