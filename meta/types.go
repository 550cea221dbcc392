package meta

import "fmt"

// EnumType is a resolved enum declaration: a name and its ordered members.
type EnumType struct {
	Name    string
	Members []string
}

func (e *EnumType) HasMember(name string) bool {
	_, ok := e.IndexOf(name)
	return ok
}

// IndexOf returns the declaration-order ordinal of member name, the same
// integer payload enum-gen carries at runtime (spec.md's
// construct-enum(integer) proxy operation).
func (e *EnumType) IndexOf(name string) (int, bool) {
	for i, m := range e.Members {
		if m == name {
			return i, true
		}
	}
	return 0, false
}

// BaseType is a resolved abstract node type: just a name other node types
// can extend and fields can be typed with.
type BaseType struct {
	Name string
}

// FieldType is a resolved field of a NodeType: the name of the type the
// field holds (a token, enum, base, or node type name, or the built-in
// "string"), plus Vector/Optional wrapping exactly as declared.
type FieldType struct {
	Name     string
	Type     string
	Vector   bool
	Optional bool
}

// NodeType is a resolved concrete node declaration.
type NodeType struct {
	Name   string
	Base   string // empty if this node extends no base type
	Fields []FieldType
}

func (n *NodeType) Field(name string) (FieldType, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldType{}, false
}

// VariableType is a rule variable's own declared type — the `: TypeSpec`
// that follows its name in every `rule Name : TypeSpec = ...;` statement.
// Every statement sharing the same Name must declare the same VariableType;
// buildHandle consults it (rather than any one alternative's RHS) to decide
// which generator a hint or mark combination is even allowed to pick.
type VariableType struct {
	TypeName string
	Vector   bool
	Optional bool
}

// TypeRegistry is the resolved type system a grammar description declares:
// every enum, base, and node type, keyed by name, plus the declared token
// names and the built-in "string" pseudo-type a field can reference without
// a node/base/enum declaration.
type TypeRegistry struct {
	Enums  map[string]*EnumType
	Bases  map[string]*BaseType
	Nodes  map[string]*NodeType
	Tokens map[string]bool
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		Enums:  map[string]*EnumType{},
		Bases:  map[string]*BaseType{},
		Nodes:  map[string]*NodeType{},
		Tokens: map[string]bool{},
	}
}

// IsDeclaredType reports whether name refers to any declared enum, base,
// or node type, used when validating a field's or a construction hint's
// type reference.
func (r *TypeRegistry) IsDeclaredType(name string) bool {
	if _, ok := r.Enums[name]; ok {
		return true
	}
	if _, ok := r.Bases[name]; ok {
		return true
	}
	if _, ok := r.Nodes[name]; ok {
		return true
	}
	return false
}

// NodesExtending returns every node type whose Base is baseName.
func (r *TypeRegistry) NodesExtending(baseName string) []*NodeType {
	var out []*NodeType
	for _, n := range r.Nodes {
		if n.Base == baseName {
			out = append(out, n)
		}
	}
	return out
}

func (r *TypeRegistry) checkFieldType(owner, field, typeName string) error {
	if typeName == "string" {
		return nil
	}
	if r.IsDeclaredType(typeName) {
		return nil
	}
	if r.Tokens[typeName] {
		return nil
	}
	return fmt.Errorf("meta: node %q field %q has undeclared type %q", owner, field, typeName)
}
