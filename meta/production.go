package meta

import (
	"crypto/sha256"
	"encoding/binary"
)

// ProductionID identifies a production by the content hash of its LHS and
// RHS symbols, the same scheme the teacher uses for its own lr0ItemID,
// kernelID, and productionID: two productions built from the same symbols
// compare equal by id without needing a canonical pointer, which matters
// once LR item sets start deduplicating productions built independently
// across different parts of the table-construction pipeline.
type ProductionID [sha256.Size]byte

// Production is one grammar rule: Head -> RHS (possibly empty).
type Production struct {
	ID   ProductionID
	Num  int // dense, zero-based, assigned in the order Add is called
	Head Symbol
	RHS  []Symbol
}

func computeProductionID(head Symbol, rhs []Symbol) ProductionID {
	buf := make([]byte, 2+len(rhs)*2)
	binary.BigEndian.PutUint16(buf[0:2], uint16(head))
	for i, s := range rhs {
		binary.BigEndian.PutUint16(buf[2+i*2:4+i*2], uint16(s))
	}
	return sha256.Sum256(buf)
}

// ProductionSet collects every production of a grammar, indexed by id, by
// head symbol, and by dense number.
type ProductionSet struct {
	byID   map[ProductionID]*Production
	byHead map[Symbol][]*Production
	all    []*Production
}

func NewProductionSet() *ProductionSet {
	return &ProductionSet{
		byID:   map[ProductionID]*Production{},
		byHead: map[Symbol][]*Production{},
	}
}

// Add registers a new production and returns it, or returns the
// already-registered production with the same head and RHS if one exists
// (two rule alternatives that happen to produce an identical RHS under a
// different head are distinct productions; an identical head+RHS pair
// appearing twice in the same file is almost certainly a copy-paste
// mistake the resolver flags separately).
func (ps *ProductionSet) Add(head Symbol, rhs []Symbol) *Production {
	id := computeProductionID(head, rhs)
	if p, ok := ps.byID[id]; ok {
		return p
	}
	p := &Production{ID: id, Num: len(ps.all), Head: head, RHS: append([]Symbol(nil), rhs...)}
	ps.byID[id] = p
	ps.byHead[head] = append(ps.byHead[head], p)
	ps.all = append(ps.all, p)
	return p
}

// NewAugmentedProduction builds a standalone production that's never
// registered in a ProductionSet, for the LR automaton builder's synthetic
// S' -> Start rule: the augmented grammar's single production, whose
// reduction marks acceptance and which exists only to give the start
// state a item to close over.
func NewAugmentedProduction(head, start Symbol) *Production {
	rhs := []Symbol{start}
	return &Production{ID: computeProductionID(head, rhs), Num: -1, Head: head, RHS: rhs}
}

func (ps *ProductionSet) ByID(id ProductionID) (*Production, bool) {
	p, ok := ps.byID[id]
	return p, ok
}

func (ps *ProductionSet) ByHead(head Symbol) []*Production {
	return ps.byHead[head]
}

func (ps *ProductionSet) All() []*Production {
	return ps.all
}

func (ps *ProductionSet) String(p *Production, t *SymbolTable) string {
	s := t.Text(p.Head) + " ->"
	if len(p.RHS) == 0 {
		return s + " ε"
	}
	for _, sym := range p.RHS {
		s += " " + t.Text(sym)
	}
	return s
}
