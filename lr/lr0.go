package lr

import "github.com/CanftIn/reggen/meta"

// Automaton is the complete LR(0) item-set automaton: every state reachable
// from the augmented start state, and the production that rule was wrapped
// in (AugmentedProd), whose reduction in the initial state's successor
// marks acceptance.
type Automaton struct {
	States        []*State
	StartState    int
	AugmentedHead meta.Symbol
	AugmentedProd *meta.Production
}

// BuildLR0 constructs the canonical LR(0) automaton for prods, augmented
// with a synthetic S' -> Start production so the automaton has a single,
// unambiguous accepting state: the state reached from the start state by
// shifting Start, whose kernel holds S' -> Start· (alongside any other
// items that advance past Start).
func BuildLR0(prods *meta.ProductionSet, symbols *meta.SymbolTable) *Automaton {
	augHead := meta.NewNonTerminalSymbol(symbols.NumNonTerminals(), false)
	augProd := meta.NewAugmentedProduction(augHead, symbols.Start())

	startKernel := []Item{{Prod: augProd, Dot: 0}}
	startClosure := closure(startKernel, prods)

	states := []*State{{Num: 0, Kernel: startKernel, Closure: startClosure, Goto: map[meta.Symbol]int{}}}
	index := map[KernelID]int{kernelID(startKernel): 0}

	queue := []int{0}
	for len(queue) > 0 {
		num := queue[0]
		queue = queue[1:]
		s := states[num]

		for _, sym := range symbolsAfterDot(s.Closure) {
			k := gotoKernel(s.Closure, sym)
			if len(k) == 0 {
				continue
			}
			id := kernelID(k)
			next, ok := index[id]
			if !ok {
				next = len(states)
				index[id] = next
				states = append(states, &State{
					Num:     next,
					Kernel:  k,
					Closure: closure(k, prods),
					Goto:    map[meta.Symbol]int{},
				})
				queue = append(queue, next)
			}
			s.Goto[sym] = next
		}
	}

	return &Automaton{States: states, StartState: 0, AugmentedHead: augHead, AugmentedProd: augProd}
}

// closure computes the closure of a kernel item set: repeatedly adding,
// for every item [A -> alpha . B beta] with B a nonterminal, every item
// [B -> . gamma] for each of B's productions, until no more items can be
// added.
func closure(kernel []Item, prods *meta.ProductionSet) []Item {
	seen := map[itemID]Item{}
	var queue []Item

	add := func(it Item) {
		id := it.id()
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = it
		queue = append(queue, it)
	}

	for _, it := range kernel {
		add(it)
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		sym, ok := it.DotSymbol()
		if !ok || sym.IsTerminal() {
			continue
		}
		for _, p := range prods.ByHead(sym) {
			add(Item{Prod: p, Dot: 0})
		}
	}

	out := make([]Item, 0, len(seen))
	for _, it := range seen {
		out = append(out, it)
	}
	sortItems(out)
	return out
}

// symbolsAfterDot returns, in a stable order, every distinct symbol that
// appears immediately after the dot in some item of closureItems — the
// set of symbols a state has an outgoing transition on.
func symbolsAfterDot(closureItems []Item) []meta.Symbol {
	seen := map[meta.Symbol]bool{}
	var out []meta.Symbol
	for _, it := range closureItems {
		sym, ok := it.DotSymbol()
		if !ok || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// gotoKernel computes GOTO(closureItems, sym): the kernel of the state
// reached by shifting sym, i.e. every item in closureItems whose dot sits
// immediately before sym, with the dot advanced past it.
func gotoKernel(closureItems []Item, sym meta.Symbol) []Item {
	var out []Item
	for _, it := range closureItems {
		dotSym, ok := it.DotSymbol()
		if !ok || dotSym != sym {
			continue
		}
		out = append(out, Item{Prod: it.Prod, Dot: it.Dot + 1})
	}
	return out
}
