package dsl

import "fmt"

// Parse compiles grammar description source text into a File. It reports
// every declaration-level error it finds in List form before giving up,
// rather than stopping at the first one, except for a lexical error (a
// malformed token), which always stops the parse immediately since nothing
// downstream of a broken token stream can be trusted.
func Parse(src []byte) (*File, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	f := &File{}

	var errs errList
	for p.cur().kind != tEOF {
		err := p.parseDecl(f)
		if err != nil {
			errs = append(errs, err)
			p.skipToRecoveryPoint()
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

type errList []error

func (e errList) Error() string {
	s := ""
	for i, err := range e {
		if i > 0 {
			s += "\n"
		}
		s += err.Error()
	}
	return s
}

func tokenize(src []byte) ([]tok, error) {
	l := newLexer(src)
	var toks []tok
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tEOF {
			return toks, nil
		}
	}
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) cur() tok { return p.toks[p.pos] }

func (p *parser) advance() tok {
	t := p.cur()
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokKind, what string) (tok, error) {
	if p.cur().kind != k {
		return tok{}, fmt.Errorf("dsl: %d: expected %s", p.cur().pos, what)
	}
	return p.advance(), nil
}

// skipToRecoveryPoint advances past the offending declaration up to (and
// including) the next semicolon or closing brace, so a later declaration
// in the same file still gets a chance to parse cleanly and its own errors
// can be reported in the same pass.
func (p *parser) skipToRecoveryPoint() {
	for p.cur().kind != tEOF {
		t := p.advance()
		if t.kind == tSemicolon || t.kind == tRBrace {
			return
		}
	}
}

func (p *parser) parseDecl(f *File) error {
	switch p.cur().kind {
	case tKwToken:
		d, err := p.parseTokenDecl()
		if err != nil {
			return err
		}
		f.Tokens = append(f.Tokens, d)
		return nil
	case tKwIgnore:
		d, err := p.parseIgnoreDecl()
		if err != nil {
			return err
		}
		f.Ignores = append(f.Ignores, d)
		return nil
	case tKwEnum:
		d, err := p.parseEnumDecl()
		if err != nil {
			return err
		}
		f.Enums = append(f.Enums, d)
		return nil
	case tKwBase:
		d, err := p.parseBaseDecl()
		if err != nil {
			return err
		}
		f.Bases = append(f.Bases, d)
		return nil
	case tKwNode:
		d, err := p.parseNodeDecl()
		if err != nil {
			return err
		}
		f.Nodes = append(f.Nodes, d)
		return nil
	case tKwRule:
		d, err := p.parseRuleStmt()
		if err != nil {
			return err
		}
		f.Rules = append(f.Rules, d)
		return nil
	default:
		t := p.advance()
		return fmt.Errorf("dsl: %d: expected a declaration, got %q", t.pos, t.text)
	}
}

func (p *parser) parseTokenDecl() (*TokenDecl, error) {
	start := p.advance().pos // 'token'
	name, err := p.expect(tIdent, "a token name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tEquals, "'='"); err != nil {
		return nil, err
	}
	pattern, err := p.expect(tString, "a quoted regular expression")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemicolon, "';'"); err != nil {
		return nil, err
	}
	return &TokenDecl{Pos: start, Name: name.text, Pattern: pattern.text}, nil
}

func (p *parser) parseIgnoreDecl() (*TokenDecl, error) {
	start := p.advance().pos // 'ignore'
	name, err := p.expect(tIdent, "a token name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tEquals, "'='"); err != nil {
		return nil, err
	}
	pattern, err := p.expect(tString, "a quoted regular expression")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemicolon, "';'"); err != nil {
		return nil, err
	}
	return &TokenDecl{Pos: start, Name: name.text, Pattern: pattern.text}, nil
}

func (p *parser) parseEnumDecl() (*EnumDecl, error) {
	start := p.advance().pos // 'enum'
	name, err := p.expect(tIdent, "an enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	d := &EnumDecl{Pos: start, Name: name.text}
	for p.cur().kind != tRBrace {
		m, err := p.expect(tIdent, "an enum member name")
		if err != nil {
			return nil, err
		}
		d.Members = append(d.Members, m.text)
		if _, err := p.expect(tSemicolon, "';'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tRBrace, "'}'"); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *parser) parseBaseDecl() (*BaseDecl, error) {
	start := p.advance().pos // 'base'
	name, err := p.expect(tIdent, "a base type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemicolon, "';'"); err != nil {
		return nil, err
	}
	return &BaseDecl{Pos: start, Name: name.text}, nil
}

func (p *parser) parseNodeDecl() (*NodeDecl, error) {
	start := p.advance().pos // 'node'
	name, err := p.expect(tIdent, "a node type name")
	if err != nil {
		return nil, err
	}
	d := &NodeDecl{Pos: start, Name: name.text}
	if p.cur().kind == tColon {
		p.advance()
		base, err := p.expect(tIdent, "a base type name")
		if err != nil {
			return nil, err
		}
		d.Base = base.text
	}
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	for p.cur().kind != tRBrace {
		fd, err := p.parseFieldDecl()
		if err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, *fd)
	}
	if _, err := p.expect(tRBrace, "'}'"); err != nil {
		return nil, err
	}
	return d, nil
}

// parseFieldDecl reads `TypeSpec field;` — the type (and optional 'vec/
// 'opt qualifier) comes first, the field name last.
func (p *parser) parseFieldDecl() (*FieldDecl, error) {
	start := p.cur().pos
	typ, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(tIdent, "a field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tSemicolon, "';'"); err != nil {
		return nil, err
	}
	return &FieldDecl{Pos: start, Name: name.text, Type: *typ}, nil
}

// parseTypeSpec reads `ident ['vec | 'opt]`.
func (p *parser) parseTypeSpec() (*TypeSpec, error) {
	name, err := p.expect(tIdent, "a type name")
	if err != nil {
		return nil, err
	}
	ts := &TypeSpec{Type: name.text}
	if p.cur().kind == tQualifier {
		q := p.advance()
		switch q.text {
		case "vec":
			ts.Vector = true
		case "opt":
			ts.Optional = true
		}
	}
	return ts, nil
}

// parseRuleStmt reads `rule Name : TypeSpec = Sym1[assign] ... [-> Hint];`.
func (p *parser) parseRuleStmt() (*RuleStmt, error) {
	start := p.advance().pos // 'rule'
	head, err := p.expect(tIdent, "a rule name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tColon, "':'"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tEquals, "'='"); err != nil {
		return nil, err
	}

	d := &RuleStmt{Pos: start, Head: head.text, Type: *typ}
	for p.cur().kind == tIdent {
		sym, err := p.parseRHSSymbol()
		if err != nil {
			return nil, err
		}
		d.RHS = append(d.RHS, *sym)
	}
	if p.cur().kind == tArrow {
		p.advance()
		hint, err := p.parseHint()
		if err != nil {
			return nil, err
		}
		d.Hint = hint
	}
	if _, err := p.expect(tSemicolon, "';'"); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *parser) parseRHSSymbol() (*RHSSymbol, error) {
	name := p.advance() // ident
	sym := &RHSSymbol{Pos: name.pos, Name: name.text}
	switch p.cur().kind {
	case tBang:
		p.advance()
		sym.Mark = MarkSelect
	case tAmp:
		p.advance()
		sym.Mark = MarkAppend
	case tColon:
		p.advance()
		field, err := p.expect(tIdent, "a field name")
		if err != nil {
			return nil, err
		}
		sym.Mark = MarkField
		sym.Field = field.text
	}
	return sym, nil
}

// parseHint reads the `_`, `TypeName`/`EnumValue`, or `_'opt` token
// following `->`.
func (p *parser) parseHint() (*Hint, error) {
	start := p.cur().pos
	name, err := p.expect(tIdent, "a construction hint ('_', a type name, or an enum value)")
	if err != nil {
		return nil, err
	}
	if name.text == "_" {
		if p.cur().kind == tQualifier {
			q := p.advance()
			if q.text != "opt" {
				return nil, fmt.Errorf("dsl: %d: only \"_'opt\" is a valid qualified hint", q.pos)
			}
			return &Hint{Pos: start, Kind: HintOptional}, nil
		}
		return &Hint{Pos: start, Kind: HintNone}, nil
	}
	return &Hint{Pos: start, Kind: HintName, Name: name.text}, nil
}
