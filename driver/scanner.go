// Package driver implements the runtime recognizer: a scanner that turns
// input bytes into a token stream by running the compiled DFA with
// longest-match-and-revert, and a shift-reduce parser that drives the
// compiled LALR(1) table and, alongside it, the AST-handle engine that
// builds the caller's typed result in the caller's arena.
package driver

import (
	"github.com/CanftIn/reggen/ast"
	"github.com/CanftIn/reggen/lexical"
	"github.com/CanftIn/reggen/meta"
	"github.com/CanftIn/reggen/reggenerr"
)

// Token is one lexeme the scanner recognized, tagged with the terminal
// Symbol the grammar's meta-info resolution bound its pattern to.
type Token struct {
	Sym    meta.Symbol
	Lexeme []byte
	Span   ast.Span
}

// Scanner recognizes a byte slice as a sequence of Tokens using a single
// combined DFA over both ordinary and ignored token patterns, skipping
// every ignored match before returning the next ordinary one. It
// implements the same longest-match-with-revert algorithm as the
// teacher's own driver lexer: advance through the DFA one byte at a time,
// remember the position and pattern of the last accepting state visited,
// and on a dead transition (or end of input), emit that last-recorded
// match and resume scanning right after it. Reaching a dead transition
// with no accepting state recorded anywhere along the way is an invalid
// token.
type Scanner struct {
	dfa        *lexical.DFA
	tokenNames map[int]meta.Symbol
	isIgnore   func(patternID int) bool
	eof        meta.Symbol

	src []byte
	pos int
}

func NewScanner(dfa *lexical.DFA, tokenNames map[int]meta.Symbol, isIgnore func(int) bool, eof meta.Symbol, src []byte) *Scanner {
	return &Scanner{dfa: dfa, tokenNames: tokenNames, isIgnore: isIgnore, eof: eof, src: src}
}

// Next returns the next ordinary token, skipping any number of ignored
// tokens first. At end of input it returns a Token whose Sym is the
// grammar's end-of-input symbol and whose Lexeme is nil; the parser never
// calls Next again afterward.
func (s *Scanner) Next() (Token, error) {
	for {
		if s.pos >= len(s.src) {
			return Token{Sym: s.eof, Span: ast.Span{Offset: s.pos, Length: 0}}, nil
		}

		start := s.pos
		patternID, end, err := s.longestMatch()
		if err != nil {
			return Token{}, err
		}

		lexeme := s.src[start:end]
		s.pos = end

		if s.isIgnore(patternID) {
			continue
		}
		sym, ok := s.tokenNames[patternID]
		if !ok {
			return Token{}, &reggenerr.RuntimeError{
				Kind: reggenerr.InvalidToken,
				Pos:  reggenerr.Position{Offset: start},
			}
		}
		return Token{Sym: sym, Lexeme: lexeme, Span: ast.Span{Offset: start, Length: end - start}}, nil
	}
}

func (s *Scanner) longestMatch() (patternID int, end int, err error) {
	state := 0
	pos := s.pos

	lastAcceptPattern := -1
	lastAcceptPos := -1

	for {
		if state == lexical.DeadState {
			break
		}
		if s.dfa.Accept[state] != lexical.NoAccept {
			lastAcceptPattern = s.dfa.Accept[state]
			lastAcceptPos = pos
		}
		if pos >= len(s.src) {
			break
		}
		b := s.src[pos]
		if b > 127 {
			return 0, 0, &reggenerr.RuntimeError{
				Kind:   reggenerr.InvalidToken,
				Pos:    reggenerr.Position{Offset: pos},
				Detail: "byte is outside the 7-bit range this module recognizes",
			}
		}
		state = s.dfa.Transition[state][b]
		pos++
	}

	if lastAcceptPattern < 0 {
		return 0, 0, &reggenerr.RuntimeError{
			Kind: reggenerr.InvalidToken,
			Pos:  reggenerr.Position{Offset: s.pos},
		}
	}
	return lastAcceptPattern, lastAcceptPos, nil
}
