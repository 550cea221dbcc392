package meta

import (
	"fmt"

	"github.com/CanftIn/reggen/dsl"
)

// GeneratorKind is the half of a Handle that decides what kind of item a
// reduction produces. Exactly one fires per production.
type GeneratorKind int

const (
	// GenSelect passes one right-hand-side child straight through,
	// unchanged, as the reduction's result.
	GenSelect GeneratorKind = iota
	// GenObject allocates a new node object of TypeName.
	GenObject
	// GenVector allocates a new node vector of TypeName.
	GenVector
	// GenOptional produces the construct-optional sentinel: an absent
	// Optional item with no inner value.
	GenOptional
	// GenEnum produces an enum item carrying EnumOrdinal.
	GenEnum
)

// MutatorKind is the half of a Handle that decides how the generated item
// gets filled in, independent of which GeneratorKind produced it: a
// select'd vector still gets extended by a vector-merger mutator, for
// instance, without a fresh vector-gen on every step of a left-recursive
// list.
type MutatorKind int

const (
	// MutNone leaves the generated item exactly as produced.
	MutNone MutatorKind = iota
	// MutObjectSetter assigns each Assignments pair into the generated
	// object's fields.
	MutObjectSetter
	// MutVectorMerger pushes each AppendIndices child, in order, onto
	// the generated vector.
	MutVectorMerger
)

// FieldAssignment binds one field of a generated object to a right-hand-
// side position, resolved from a `:field`-marked dsl.RHSSymbol.
type FieldAssignment struct {
	Field    string
	RHSIndex int // 1-based
}

// Handle is a production's fully resolved AST-construction directive, the
// pairing of an independent generator and mutator the spec's handle model
// describes. The driver invokes the matching ast.Proxy through this
// description at runtime.
type Handle struct {
	Production *Production

	Generator   GeneratorKind
	SelectIndex int    // GenSelect
	TypeName    string // GenObject, GenVector
	EnumOrdinal int    // GenEnum
	EnumMember  string // GenEnum, for error messages

	Mutator       MutatorKind
	Assignments   []FieldAssignment // MutObjectSetter
	AppendIndices []int             // MutVectorMerger
}

// buildHandle resolves one dsl.RuleStmt's marks and hint into a Handle
// bound to prod, following the generator-selection precedence the
// grammar-description language's hint and mark syntax is built around:
//
//  1. no hint and a unique `!` mark         -> select
//  2. hint is `_'opt`                        -> optional-gen
//  3. hint names a member of varType's enum  -> enum-gen
//  4. varType is vector-qualified            -> vector-gen
//  5. otherwise                              -> object-gen
//
// Mutator selection is independent of which of those branches fired: it's
// driven purely by which marks (`:field` vs `&`) appear in rhs.
func buildHandle(prod *Production, rule *dsl.RuleStmt, rhs []dsl.RHSSymbol, varType VariableType, types *TypeRegistry) (*Handle, error) {
	rhsLen := len(rhs)

	type fieldMark struct {
		sym dsl.RHSSymbol
		idx int // 1-based
	}

	var selectIdx int
	numSelect := 0
	var fieldMarks []fieldMark
	var appendIdx []int
	for i, sym := range rhs {
		switch sym.Mark {
		case dsl.MarkSelect:
			numSelect++
			selectIdx = i + 1
		case dsl.MarkField:
			fieldMarks = append(fieldMarks, fieldMark{sym: sym, idx: i + 1})
		case dsl.MarkAppend:
			appendIdx = append(appendIdx, i+1)
		}
	}
	if numSelect > 1 {
		return nil, fmt.Errorf("meta: %s has multiple '!' selectors", typeLabel(prod))
	}
	if len(fieldMarks) > 0 && len(appendIdx) > 0 {
		return nil, fmt.Errorf("meta: %s mixes ':field' and '&' marks", typeLabel(prod))
	}
	if len(appendIdx) > 0 && !varType.Vector {
		return nil, fmt.Errorf("meta: %s uses '&' but variable %q is not vector-qualified", typeLabel(prod), varType.TypeName)
	}

	h := &Handle{Production: prod}

	hint := rule.Hint
	switch {
	case hint == nil && numSelect == 1:
		h.Generator = GenSelect
		h.SelectIndex = selectIdx

	case hint != nil && hint.Kind == dsl.HintOptional:
		if !varType.Optional {
			return nil, fmt.Errorf("meta: %s has hint \"_'opt\" but variable %q is not optional-qualified", typeLabel(prod), varType.TypeName)
		}
		h.Generator = GenOptional

	case hint != nil && hint.Kind == dsl.HintName && enumHasMember(types, varType.TypeName, hint.Name):
		enum := types.Enums[varType.TypeName]
		ordinal, _ := enum.IndexOf(hint.Name)
		h.Generator = GenEnum
		h.EnumOrdinal = ordinal
		h.EnumMember = hint.Name

	case varType.Vector:
		h.Generator = GenVector
		h.TypeName = varType.TypeName

	default:
		typeName := varType.TypeName
		if hint != nil && hint.Kind == dsl.HintName {
			node, ok := types.Nodes[hint.Name]
			if !ok {
				return nil, fmt.Errorf("meta: %s has hint %q, which names neither a node type nor an enum value of %q", typeLabel(prod), hint.Name, varType.TypeName)
			}
			typeName = node.Name
		} else if hint == nil && numSelect == 0 && !varType.Vector {
			return nil, fmt.Errorf("meta: %s has no '!' selector and no hint", typeLabel(prod))
		}
		node, ok := types.Nodes[typeName]
		if !ok {
			return nil, fmt.Errorf("meta: %s constructs undeclared node type %q", typeLabel(prod), typeName)
		}
		h.Generator = GenObject
		h.TypeName = node.Name
	}

	if len(fieldMarks) > 0 {
		h.Mutator = MutObjectSetter
		nodeName := h.TypeName
		if h.Generator == GenSelect {
			nodeName = varType.TypeName
		}
		node, hasNode := types.Nodes[nodeName]
		seen := map[string]bool{}
		for _, fm := range fieldMarks {
			field := fm.sym.Field
			if seen[field] {
				return nil, fmt.Errorf("meta: %s assigns field %q more than once", typeLabel(prod), field)
			}
			seen[field] = true
			if h.Generator == GenObject {
				if !hasNode {
					return nil, fmt.Errorf("meta: %s constructs undeclared node type %q", typeLabel(prod), nodeName)
				}
				if _, ok := node.Field(field); !ok {
					return nil, fmt.Errorf("meta: node %q has no field %q", nodeName, field)
				}
			}
			h.Assignments = append(h.Assignments, FieldAssignment{Field: field, RHSIndex: fm.idx})
		}
	} else if len(appendIdx) > 0 {
		h.Mutator = MutVectorMerger
		h.AppendIndices = appendIdx
	}

	if err := checkRHSIndices(h, rhsLen, prod); err != nil {
		return nil, err
	}
	return h, nil
}

func enumHasMember(types *TypeRegistry, typeName, member string) bool {
	enum, ok := types.Enums[typeName]
	if !ok {
		return false
	}
	return enum.HasMember(member)
}

func checkRHSIndices(h *Handle, rhsLen int, prod *Production) error {
	if h.Generator == GenSelect {
		if err := checkRHSIndex(h.SelectIndex, rhsLen); err != nil {
			return err
		}
	}
	for _, fa := range h.Assignments {
		if err := checkRHSIndex(fa.RHSIndex, rhsLen); err != nil {
			return err
		}
	}
	for _, idx := range h.AppendIndices {
		if err := checkRHSIndex(idx, rhsLen); err != nil {
			return err
		}
	}
	return nil
}

func checkRHSIndex(idx, rhsLen int) error {
	if idx < 1 || idx > rhsLen {
		return fmt.Errorf("meta: construction hint references position %d, but the right-hand side has %d symbols", idx, rhsLen)
	}
	return nil
}

func typeLabel(prod *Production) string {
	return fmt.Sprintf("production #%d", prod.Num)
}
