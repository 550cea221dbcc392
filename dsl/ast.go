// Package dsl parses the grammar description language: a text format
// declaring a lexical vocabulary (tokens and ignored tokens, each a quoted
// regular expression), a small type system (enums, base types, node types
// with typed fields), and a set of rules. Each rule statement declares one
// production for one variable, the variable's own declared type, and a
// right-hand side whose symbols carry `!`/`&`/`:field` marks describing how
// the driver should build an AST item out of it when that production
// reduces.
package dsl

// Pos is a byte offset into the source text a declaration, symbol, or hint
// was parsed from, used to build a construction error with a line/column
// and source snippet.
type Pos int

// File is the top-level parse result: every declaration in source order.
type File struct {
	Tokens  []*TokenDecl
	Ignores []*TokenDecl
	Enums   []*EnumDecl
	Bases   []*BaseDecl
	Nodes   []*NodeDecl
	Rules   []*RuleStmt
}

// TokenDecl declares a lexical pattern: `token name = "regex";` or
// `ignore name = "regex";`. Ignored tokens (File.Ignores) are recognized and
// discarded by the scanner before the driver ever sees them; ordinary
// tokens (File.Tokens) are handed to the driver as terminal symbols.
type TokenDecl struct {
	Pos     Pos
	Name    string
	Pattern string
}

// EnumDecl declares a named enumeration and its constant members, in
// declaration order (`enum Name { V1; V2; ... }`).
type EnumDecl struct {
	Pos     Pos
	Name    string
	Members []string
}

// BaseDecl declares an abstract node type (`base Name;`): a type name that
// one or more NodeDecls extend, used as a field or variable type when it
// can hold any of several concrete node kinds.
type BaseDecl struct {
	Pos  Pos
	Name string
}

// NodeDecl declares a concrete, constructible node type
// (`node Name [: Base] { TypeSpec field; ... }`): a Go struct the caller
// registers a Proxy for, with a fixed set of named, typed fields.
type NodeDecl struct {
	Pos    Pos
	Name   string
	Base   string // empty if this node extends no base type
	Fields []FieldDecl
}

// TypeSpec is a type name plus an optional 'vec/'opt qualifier: the shape
// shared by a node field's declared type and a rule's own declared
// variable type (`ident ['vec | 'opt]`).
type TypeSpec struct {
	Type     string
	Vector   bool
	Optional bool
}

// FieldDecl is one field of a NodeDecl: `TypeSpec field;`.
type FieldDecl struct {
	Pos  Pos
	Name string
	Type TypeSpec
}

// MarkKind is the annotation a rule's right-hand-side symbol carries,
// `assign` in spec terms.
type MarkKind int

const (
	// MarkNone is an unmarked symbol: it contributes nothing to the
	// handle synthesized for the alternative it appears in.
	MarkNone MarkKind = iota
	// MarkSelect is `!`: this symbol's item is the one the generator
	// passes straight through when the rule has no hint.
	MarkSelect
	// MarkAppend is `&`: this symbol's item is pushed into the
	// rule's vector-merger mutator.
	MarkAppend
	// MarkField is `:field`: this symbol's item is assigned to the
	// named field of the rule's constructed object.
	MarkField
)

// RHSSymbol is one symbol of a rule statement's right-hand side, with its
// assign mark.
type RHSSymbol struct {
	Pos   Pos
	Name  string
	Mark  MarkKind
	Field string // valid when Mark == MarkField
}

// HintKind distinguishes the three concrete spellings a rule's `-> Hint`
// suffix can take.
type HintKind int

const (
	// HintNone is an explicit `_`. An omitted `-> Hint` suffix is not a
	// Hint at all (RuleStmt.Hint is nil).
	HintNone HintKind = iota
	// HintName is a bare identifier: either a node TypeName (picking a
	// concrete class for a base-typed variable) or an EnumValue (one of
	// the variable's own enum type's members) — which one it resolves
	// to depends on the variable's declared type, decided during
	// meta-info resolution, not here.
	HintName
	// HintOptional is `_'opt`.
	HintOptional
)

// Hint is the optional `-> Hint` suffix of a rule statement.
type Hint struct {
	Pos  Pos
	Kind HintKind
	Name string // valid when Kind == HintName
}

// RuleStmt is a single `rule Name : TypeSpec = Sym1[assign] Sym2[assign]
// ... [-> Hint];` statement: exactly one production for Name. Multiple
// RuleStmts sharing the same Head are that variable's alternatives; they
// must all declare the same Type.
type RuleStmt struct {
	Pos  Pos
	Head string
	Type TypeSpec
	RHS  []RHSSymbol
	Hint *Hint // nil if "-> Hint" was omitted; not the same as an explicit "_" (see meta.buildHandle)
}
