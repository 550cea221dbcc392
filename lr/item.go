// Package lr builds the LALR(1) parsing automaton in two stages: an
// ordinary LR(0) item-set automaton (lr0.go), then an extended grammar
// over (symbol, origin-state) pairs whose FOLLOW sets give each LR(0)
// reduce item its LALR(1) lookahead set (extended.go), assembled into the
// dense action/goto tables the runtime driver indexes into directly
// (table.go).
package lr

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/exp/slices"

	"github.com/CanftIn/reggen/meta"
)

// Item is an LR(0) item: a production with a dot position marking how
// much of its right-hand side has been matched so far.
type Item struct {
	Prod *meta.Production
	Dot  int
}

// AtEnd reports whether the dot has reached the end of the production's
// right-hand side, meaning this item is reducible.
func (it Item) AtEnd() bool { return it.Dot == len(it.Prod.RHS) }

// DotSymbol returns the symbol immediately after the dot and true, or
// the zero Symbol and false if the item is AtEnd.
func (it Item) DotSymbol() (meta.Symbol, bool) {
	if it.AtEnd() {
		return 0, false
	}
	return it.Prod.RHS[it.Dot], true
}

// itemID identifies an item by the content hash of its production id and
// dot position, the same style the teacher hashes lr0ItemID with.
type itemID [sha256.Size]byte

func (it Item) id() itemID {
	buf := make([]byte, len(it.Prod.ID)+4)
	copy(buf, it.Prod.ID[:])
	binary.BigEndian.PutUint32(buf[len(it.Prod.ID):], uint32(it.Dot))
	return sha256.Sum256(buf)
}

func sortItems(items []Item) {
	slices.SortFunc(items, func(x, y Item) bool {
		a, b := x.id(), y.id()
		return bytes.Compare(a[:], b[:]) < 0
	})
}

// KernelID identifies a state by the content hash of its sorted kernel
// items' ids, the same style the teacher hashes kernelID with: two
// independently constructed kernels with the same item set always compare
// equal without needing a canonical pointer.
type KernelID [sha256.Size]byte

func kernelID(items []Item) KernelID {
	sorted := append([]Item(nil), items...)
	sortItems(sorted)
	h := sha256.New()
	for _, it := range sorted {
		id := it.id()
		h.Write(id[:])
	}
	var out KernelID
	copy(out[:], h.Sum(nil))
	return out
}

// State is one node of the LR(0) automaton: its kernel (the items that
// define it, before closure), its full closure (kernel plus every item
// the closure operation adds), and its GOTO transitions to other states.
type State struct {
	Num     int
	Kernel  []Item
	Closure []Item
	Goto    map[meta.Symbol]int
}

// Reducible returns every item in s's closure that's AtEnd, i.e. every
// production this state can reduce by.
func (s *State) Reducible() []Item {
	var out []Item
	for _, it := range s.Closure {
		if it.AtEnd() {
			out = append(out, it)
		}
	}
	return out
}
