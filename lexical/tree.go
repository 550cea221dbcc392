// Package lexical compiles a set of regular-expression token patterns into
// a single deterministic byte-driven DFA, using the position/followpos
// (McNaughton-Yamada-Thompson) construction: every leaf of every pattern's
// parse tree is assigned a distinct position, an end-marker position is
// appended per pattern tagged with that pattern's priority, and the
// standard nullable/firstpos/lastpos/followpos tables drive a subset
// construction directly over those positions — no NFA is ever built.
package lexical

import "github.com/CanftIn/reggen/regex"

// position identifies a single leaf (or end marker) in the combined
// byte-tree built from every pattern being compiled together.
type position int

// byteNode is a node of the combined byte-tree: regex.Node augmented with
// the per-node tables the DFA construction needs. Unlike regex.Node, a
// byteNode's leaves are single byte-value sets (class alternatives are
// expanded into an altNode of symbolNodes during conversion) so every leaf
// can be assigned exactly one position.
type byteNode interface {
	nullable() bool
	firstpos() []position
	lastpos() []position
}

type symbolNode struct {
	pos    position
	lo, hi byte // matches any byte in [lo, hi]
}

func (n *symbolNode) nullable() bool      { return false }
func (n *symbolNode) firstpos() []position { return []position{n.pos} }
func (n *symbolNode) lastpos() []position  { return []position{n.pos} }

// endMarkerNode terminates one pattern's subtree. Its position participates
// in firstpos/lastpos/followpos exactly like a symbolNode's; reaching it in
// a DFA state's position set means that state accepts the pattern it
// belongs to.
type endMarkerNode struct {
	pos       position
	patternID int
	priority  int
}

func (n *endMarkerNode) nullable() bool      { return false }
func (n *endMarkerNode) firstpos() []position { return []position{n.pos} }
func (n *endMarkerNode) lastpos() []position  { return []position{n.pos} }

type concatNode struct {
	kids []byteNode
}

func (n *concatNode) nullable() bool {
	for _, k := range n.kids {
		if !k.nullable() {
			return false
		}
	}
	return true
}

func (n *concatNode) firstpos() []position {
	var out []position
	for _, k := range n.kids {
		out = append(out, k.firstpos()...)
		if !k.nullable() {
			break
		}
	}
	return out
}

func (n *concatNode) lastpos() []position {
	var out []position
	for i := len(n.kids) - 1; i >= 0; i-- {
		k := n.kids[i]
		out = append(out, k.lastpos()...)
		if !k.nullable() {
			break
		}
	}
	return out
}

type altNode struct {
	kids []byteNode
}

func (n *altNode) nullable() bool {
	for _, k := range n.kids {
		if k.nullable() {
			return true
		}
	}
	return false
}

func (n *altNode) firstpos() []position {
	var out []position
	for _, k := range n.kids {
		out = append(out, k.firstpos()...)
	}
	return out
}

func (n *altNode) lastpos() []position {
	var out []position
	for _, k := range n.kids {
		out = append(out, k.lastpos()...)
	}
	return out
}

// repeatNode is the Kleene star: zero or more repetitions of kid.
type repeatNode struct {
	kid byteNode
}

func (n *repeatNode) nullable() bool       { return true }
func (n *repeatNode) firstpos() []position { return n.kid.firstpos() }
func (n *repeatNode) lastpos() []position  { return n.kid.lastpos() }

// optionNode makes kid nullable without repetition.
type optionNode struct {
	kid byteNode
}

func (n *optionNode) nullable() bool       { return true }
func (n *optionNode) firstpos() []position { return n.kid.firstpos() }
func (n *optionNode) lastpos() []position  { return n.kid.lastpos() }

// followTable maps a position to the set of positions that can immediately
// follow it in some matching string, per the standard concat/repeat
// followpos rules: for a concat node, every position in lastpos(left) gets
// firstpos(right) added to its followpos; for a repeat node, every position
// in lastpos(kid) gets firstpos(kid) added to its followpos (the repetition
// can loop back to its own start).
type followTable map[position]map[position]bool

func (t followTable) add(from position, to []position) {
	set := t[from]
	if set == nil {
		set = map[position]bool{}
		t[from] = set
	}
	for _, p := range to {
		set[p] = true
	}
}

func calcFollow(root byteNode, t followTable) {
	switch n := root.(type) {
	case *concatNode:
		for i := 0; i < len(n.kids)-1; i++ {
			for _, p := range n.kids[i].lastpos() {
				t.add(p, n.kids[i+1].firstpos())
			}
		}
		for _, k := range n.kids {
			calcFollow(k, t)
		}
	case *altNode:
		for _, k := range n.kids {
			calcFollow(k, t)
		}
	case *repeatNode:
		for _, p := range n.kid.lastpos() {
			t.add(p, n.kid.firstpos())
		}
		calcFollow(n.kid, t)
	case *optionNode:
		calcFollow(n.kid, t)
	}
}

// convert turns a regex.Node parse tree into a byteNode tree, expanding
// Class nodes into an alternation of single-byte symbolNodes and Plus nodes
// into kid followed by a repeat of kid (x+ == x x*). Positions aren't
// assigned here; assignPositions does that in a second, separate pass so
// every pattern compiled together shares one position space.
func convert(n *regex.Node) byteNode {
	switch n.Kind {
	case regex.Literal:
		return &symbolNode{lo: n.Literal, hi: n.Literal}
	case regex.Class:
		var kids []byteNode
		for _, r := range n.Normalize() {
			kids = append(kids, &symbolNode{lo: r.Lo, hi: r.Hi})
		}
		if len(kids) == 1 {
			return kids[0]
		}
		return &altNode{kids: kids}
	case regex.Concat:
		kids := make([]byteNode, len(n.Kids))
		for i, k := range n.Kids {
			kids[i] = convert(k)
		}
		return &concatNode{kids: kids}
	case regex.Alt:
		kids := make([]byteNode, len(n.Kids))
		for i, k := range n.Kids {
			kids[i] = convert(k)
		}
		return &altNode{kids: kids}
	case regex.Star:
		return &repeatNode{kid: convert(n.Kids[0])}
	case regex.Plus:
		kid := convert(n.Kids[0])
		return &concatNode{kids: []byteNode{kid, &repeatNode{kid: kid}}}
	case regex.Option:
		return &optionNode{kid: convert(n.Kids[0])}
	default:
		panic("lexical: unhandled regex node kind in convert")
	}
}

// assignPositions walks root in a fixed left-to-right, post-order-compatible
// order and assigns every symbolNode and endMarkerNode a distinct position
// starting from next, returning the position one past the last one
// assigned. Sharing this counter across every pattern compiled together is
// what lets a single followTable and a single DFA cover all of them.
func assignPositions(root byteNode, next position) position {
	switch n := root.(type) {
	case *symbolNode:
		n.pos = next
		return next + 1
	case *endMarkerNode:
		n.pos = next
		return next + 1
	case *concatNode:
		for _, k := range n.kids {
			next = assignPositions(k, next)
		}
		return next
	case *altNode:
		for _, k := range n.kids {
			next = assignPositions(k, next)
		}
		return next
	case *repeatNode:
		return assignPositions(n.kid, next)
	case *optionNode:
		return assignPositions(n.kid, next)
	}
	return next
}

func collectSymbolNodes(root byteNode, out map[position]*symbolNode) {
	switch n := root.(type) {
	case *symbolNode:
		out[n.pos] = n
	case *endMarkerNode:
		// not a symbol; carries no byte range
	case *concatNode:
		for _, k := range n.kids {
			collectSymbolNodes(k, out)
		}
	case *altNode:
		for _, k := range n.kids {
			collectSymbolNodes(k, out)
		}
	case *repeatNode:
		collectSymbolNodes(n.kid, out)
	case *optionNode:
		collectSymbolNodes(n.kid, out)
	}
}

func collectEndMarkers(root byteNode, out map[position]*endMarkerNode) {
	switch n := root.(type) {
	case *endMarkerNode:
		out[n.pos] = n
	case *concatNode:
		for _, k := range n.kids {
			collectEndMarkers(k, out)
		}
	case *altNode:
		for _, k := range n.kids {
			collectEndMarkers(k, out)
		}
	case *repeatNode:
		collectEndMarkers(n.kid, out)
	case *optionNode:
		collectEndMarkers(n.kid, out)
	}
}
