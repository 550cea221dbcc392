// Package regex implements the hand-rolled regular-expression parser that
// compiles a token literal's pattern text into a parse tree, restricted to
// the 7-bit ASCII byte range. Concatenation, alternation, grouping, the
// postfix quantifiers ?, *, and +, and character classes (with negation and
// ranges) are supported; Unicode code points, character properties, and
// fragment references are not, since the grammar description language this
// module compiles never needs more than 7-bit bytes.
package regex

// NodeKind discriminates a parse-tree node.
type NodeKind int

const (
	Concat NodeKind = iota
	Alt
	Star
	Plus
	Option
	Literal
	Class
)

// Node is a regex parse-tree node. Concat and Alt are n-ary; Star, Plus, and
// Option have exactly one child (Kids[0]); Literal and Class are leaves.
type Node struct {
	Kind NodeKind
	Kids []*Node

	// Literal holds the single byte value a Literal node matches.
	Literal byte

	// Ranges holds the inclusive [lo, hi] byte ranges a Class node matches.
	// Negated inverts the set: the class matches every byte in [0, 127]
	// that isn't covered by Ranges.
	Ranges  []ByteRange
	Negated bool
}

// ByteRange is an inclusive byte range used by a Class node.
type ByteRange struct {
	Lo, Hi byte
}

func concat(kids ...*Node) *Node {
	kids = flattenKids(Concat, kids)
	if len(kids) == 1 {
		return kids[0]
	}
	return &Node{Kind: Concat, Kids: kids}
}

func alt(kids ...*Node) *Node {
	kids = flattenKids(Alt, kids)
	if len(kids) == 1 {
		return kids[0]
	}
	return &Node{Kind: Alt, Kids: kids}
}

func flattenKids(kind NodeKind, kids []*Node) []*Node {
	var out []*Node
	for _, k := range kids {
		if k == nil {
			continue
		}
		if k.Kind == kind {
			out = append(out, k.Kids...)
			continue
		}
		out = append(out, k)
	}
	return out
}

// Normalize resolves a Class's negation against the 7-bit byte space,
// returning an equivalent, non-negated set of ranges. It's used by the
// lexical package when converting a parse tree into position-annotated
// byte-tree nodes, which don't themselves represent negation.
func (n *Node) Normalize() []ByteRange {
	if n.Kind != Class {
		panic("regex: Normalize called on a non-Class node")
	}
	if !n.Negated {
		return n.Ranges
	}
	return subtractRanges(ByteRange{0, 127}, n.Ranges)
}

func subtractRanges(universe ByteRange, holes []ByteRange) []ByteRange {
	covered := make([]bool, int(universe.Hi)-int(universe.Lo)+1)
	for _, h := range holes {
		lo, hi := h.Lo, h.Hi
		if lo < universe.Lo {
			lo = universe.Lo
		}
		if hi > universe.Hi {
			hi = universe.Hi
		}
		for b := int(lo); b <= int(hi); b++ {
			covered[b-int(universe.Lo)] = true
		}
	}
	var out []ByteRange
	start := -1
	for i, c := range covered {
		if c {
			if start >= 0 {
				out = append(out, ByteRange{byte(start + int(universe.Lo)), byte(i - 1 + int(universe.Lo))})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, ByteRange{byte(start + int(universe.Lo)), byte(len(covered) - 1 + int(universe.Lo))})
	}
	return out
}
