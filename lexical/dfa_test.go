package lexical

import (
	"testing"

	"github.com/CanftIn/reggen/regex"
)

func mustParse(t *testing.T, src string) *regex.Node {
	t.Helper()
	n, err := regex.Parse([]byte(src))
	if err != nil {
		t.Fatalf("regex.Parse(%q): %v", src, err)
	}
	return n
}

func run(dfa *DFA, s string) (accept int, consumed int) {
	state := 0
	lastAccept, lastPos := NoAccept, -1
	for i := 0; i <= len(s); i++ {
		if state == DeadState {
			break
		}
		if dfa.Accept[state] != NoAccept {
			lastAccept, lastPos = dfa.Accept[state], i
		}
		if i == len(s) {
			break
		}
		state = dfa.Transition[state][s[i]]
	}
	return lastAccept, lastPos
}

func TestCompileSinglePattern(t *testing.T) {
	dfa, err := Compile([]Pattern{{ID: 0, Priority: 0, Tree: mustParse(t, "ab+c")}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, ok := range []string{"abc", "abbbc"} {
		accept, consumed := run(dfa, ok)
		if accept != 0 || consumed != len(ok) {
			t.Errorf("run(%q) = (%d, %d), want (0, %d)", ok, accept, consumed, len(ok))
		}
	}
	accept, _ := run(dfa, "ac")
	if accept != NoAccept {
		t.Errorf("run(%q) matched, want no match (the '+' requires at least one b)", "ac")
	}
}

func TestCompilePriorityBreaksTies(t *testing.T) {
	// A keyword declared before a general identifier pattern wins when
	// both match the same lexeme.
	dfa, err := Compile([]Pattern{
		{ID: 0, Priority: 0, Tree: mustParse(t, "if")},
		{ID: 1, Priority: 1, Tree: mustParse(t, "[a-z]+")},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	accept, consumed := run(dfa, "if")
	if accept != 0 || consumed != 2 {
		t.Fatalf("run(%q) = (%d, %d), want the keyword pattern (0, 2) to win", "if", accept, consumed)
	}
	accept, consumed = run(dfa, "ifx")
	if accept != 1 || consumed != 3 {
		t.Fatalf("run(%q) = (%d, %d), want the identifier pattern (1, 3) on the longer match", "ifx", accept, consumed)
	}
}

func TestCompileCharClass(t *testing.T) {
	dfa, err := Compile([]Pattern{{ID: 0, Priority: 0, Tree: mustParse(t, "[0-9]+")}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	accept, consumed := run(dfa, "1234")
	if accept != 0 || consumed != 4 {
		t.Fatalf("run(%q) = (%d, %d), want (0, 4)", "1234", accept, consumed)
	}
}
