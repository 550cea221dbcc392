package lr

import (
	"testing"

	"github.com/CanftIn/reggen/meta"
)

// buildListGrammar builds the classic left-recursive list grammar
//
//	List -> List COMMA ID
//	List -> ID
//
// directly against the meta package, independent of the DSL front end, so
// these tests exercise BuildLR0 and Build in isolation.
func buildListGrammar(t *testing.T) (*meta.SymbolTable, *meta.ProductionSet, meta.Symbol, meta.Symbol, meta.Symbol) {
	t.Helper()
	symbols := meta.NewSymbolTable()
	id, err := symbols.RegisterTerminal("ID")
	if err != nil {
		t.Fatal(err)
	}
	comma, err := symbols.RegisterTerminal("COMMA")
	if err != nil {
		t.Fatal(err)
	}
	list, err := symbols.RegisterNonTerminal("List", true)
	if err != nil {
		t.Fatal(err)
	}

	prods := meta.NewProductionSet()
	prods.Add(list, []meta.Symbol{id})
	prods.Add(list, []meta.Symbol{list, comma, id})

	return symbols, prods, id, comma, list
}

func TestBuildLR0StateCount(t *testing.T) {
	symbols, prods, _, _, _ := buildListGrammar(t)
	aut := BuildLR0(prods, symbols)

	// States: {List'->.List}, {List'->List., List->List.COMMA ID},
	// {List->ID.}, {List->List COMMA . ID}, {List->List COMMA ID.}.
	if len(aut.States) != 5 {
		t.Fatalf("got %d LR(0) states, want 5", len(aut.States))
	}
	if aut.StartState != 0 {
		t.Fatalf("StartState = %d, want 0", aut.StartState)
	}
}

func TestBuildLR0DeduplicatesEquivalentStates(t *testing.T) {
	symbols, prods, _, _, _ := buildListGrammar(t)
	aut := BuildLR0(prods, symbols)
	seen := map[KernelID]int{}
	for _, s := range aut.States {
		id := kernelID(s.Kernel)
		if other, ok := seen[id]; ok {
			t.Fatalf("states %d and %d share a kernel id", other, s.Num)
		}
		seen[id] = s.Num
	}
}

func TestClosureAddsPredictedItems(t *testing.T) {
	symbols, prods, id, _, list := buildListGrammar(t)
	aut := BuildLR0(prods, symbols)
	_ = id

	start := aut.States[aut.StartState]
	predicted := 0
	for _, it := range start.Closure {
		if it.Prod.Head == list && it.Dot == 0 {
			predicted++
		}
	}
	if predicted != 2 {
		t.Fatal("start state's closure should predict both List productions from dot 0")
	}
}
