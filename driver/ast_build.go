package driver

import (
	"fmt"

	"github.com/CanftIn/reggen/ast"
	"github.com/CanftIn/reggen/meta"
)

// buildItem runs a production's Handle against the items its right-hand
// side reduced to, producing the single item the reduction leaves on the
// parse stack. generate decides what item comes out and mutate decides
// how it gets filled in — the two are independent, so a left-recursive
// list rule's select-generator can still extend the very same vector item
// a vector-merger mutator built on an earlier reduction, rather than
// allocating a fresh vector every step.
func buildItem(h *meta.Handle, rhs []ast.Item, reg *ast.Registry, alloc ast.Allocator, emptySpan ast.Span) (ast.Item, error) {
	item, err := generate(h, rhs, reg, alloc, emptySpan)
	if err != nil {
		return ast.Item{}, err
	}
	if err := mutate(h, &item, rhs, reg); err != nil {
		return ast.Item{}, err
	}
	return item, nil
}

func generate(h *meta.Handle, rhs []ast.Item, reg *ast.Registry, alloc ast.Allocator, emptySpan ast.Span) (ast.Item, error) {
	switch h.Generator {
	case meta.GenSelect:
		return rhs[h.SelectIndex-1], nil

	case meta.GenObject:
		proxy, ok := reg.Lookup(h.TypeName)
		if !ok {
			return ast.Item{}, fmt.Errorf("driver: no proxy registered for type %q", h.TypeName)
		}
		obj := proxy.New(alloc)
		obj.Span = joinRHSSpans(rhs, emptySpan)
		obj.TypeName = h.TypeName
		return obj, nil

	case meta.GenVector:
		proxy, ok := reg.Lookup(h.TypeName)
		if !ok {
			return ast.Item{}, fmt.Errorf("driver: no proxy registered for type %q", h.TypeName)
		}
		vec := proxy.NewVector(alloc)
		vec.Span = joinRHSSpans(rhs, emptySpan)
		vec.TypeName = h.TypeName
		return vec, nil

	case meta.GenOptional:
		return ast.Item{Kind: ast.Optional, Value: nil, Span: emptySpan}, nil

	case meta.GenEnum:
		return ast.Item{Kind: ast.Enum, Value: h.EnumOrdinal, Span: joinRHSSpans(rhs, emptySpan)}, nil

	default:
		return ast.Item{}, fmt.Errorf("driver: unrecognized generator kind")
	}
}

func mutate(h *meta.Handle, item *ast.Item, rhs []ast.Item, reg *ast.Registry) error {
	switch h.Mutator {
	case meta.MutNone:
		return nil

	case meta.MutObjectSetter:
		proxy, ok := reg.Lookup(item.TypeName)
		if !ok {
			return fmt.Errorf("driver: no proxy registered for type %q", item.TypeName)
		}
		for _, fa := range h.Assignments {
			if err := proxy.SetField(*item, fa.Field, rhs[fa.RHSIndex-1]); err != nil {
				return err
			}
		}
		return nil

	case meta.MutVectorMerger:
		proxy, ok := reg.Lookup(item.TypeName)
		if !ok {
			return fmt.Errorf("driver: no proxy registered for type %q", item.TypeName)
		}
		for _, idx := range h.AppendIndices {
			if err := proxy.Push(*item, rhs[idx-1]); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("driver: unrecognized mutator kind")
	}
}

func joinRHSSpans(rhs []ast.Item, empty ast.Span) ast.Span {
	if len(rhs) == 0 {
		return empty
	}
	span := rhs[0].Span
	for _, it := range rhs[1:] {
		span = span.Join(it.Span)
	}
	return span
}
