package driver

import (
	"testing"

	"github.com/CanftIn/reggen/lexical"
	"github.com/CanftIn/reggen/meta"
	"github.com/CanftIn/reggen/regex"
)

func mustDFA(t *testing.T, patterns ...string) *lexical.DFA {
	t.Helper()
	var ps []lexical.Pattern
	for i, p := range patterns {
		tree, err := regex.Parse([]byte(p))
		if err != nil {
			t.Fatalf("regex.Parse(%q): %v", p, err)
		}
		ps = append(ps, lexical.Pattern{ID: i, Priority: i, Tree: tree})
	}
	dfa, err := lexical.Compile(ps)
	if err != nil {
		t.Fatalf("lexical.Compile: %v", err)
	}
	return dfa
}

func TestScannerSkipsIgnoredTokens(t *testing.T) {
	// Pattern 0 is ID, pattern 1 is whitespace, ignored.
	dfa := mustDFA(t, "[a-z]+", "[ \t]+")
	names := map[int]meta.Symbol{0: 7}
	isIgnore := func(id int) bool { return id == 1 }
	eof := meta.NewSymbolTable().EOF()

	s := NewScanner(dfa, names, isIgnore, eof, []byte("ab  cd"))

	tok, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(tok.Lexeme) != "ab" || tok.Sym != 7 {
		t.Fatalf("got token %+v, want lexeme ab", tok)
	}

	tok, err = s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(tok.Lexeme) != "cd" {
		t.Fatalf("got token %+v, want lexeme cd (whitespace should have been skipped)", tok)
	}
	if tok.Span.Offset != 4 {
		t.Fatalf("got offset %d, want 4", tok.Span.Offset)
	}

	tok, err = s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Lexeme != nil {
		t.Fatalf("got token %+v at end of input, want an empty token", tok)
	}
	if tok.Sym != eof {
		t.Fatalf("got Sym %v at end of input, want the eof symbol %v", tok.Sym, eof)
	}
}

func TestScannerRejectsUnrecognizedInput(t *testing.T) {
	dfa := mustDFA(t, "[a-z]+")
	eof := meta.NewSymbolTable().EOF()
	s := NewScanner(dfa, map[int]meta.Symbol{0: 7}, func(int) bool { return false }, eof, []byte("123"))
	if _, err := s.Next(); err == nil {
		t.Fatal("expected an error scanning input no pattern matches")
	}
}

func TestScannerLongestMatchWins(t *testing.T) {
	dfa := mustDFA(t, "if", "[a-z]+")
	eof := meta.NewSymbolTable().EOF()
	s := NewScanner(dfa, map[int]meta.Symbol{0: 1, 1: 2}, func(int) bool { return false }, eof, []byte("iffy"))
	tok, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(tok.Lexeme) != "iffy" || tok.Sym != 2 {
		t.Fatalf("got token %+v, want the longer identifier match to win", tok)
	}
}
