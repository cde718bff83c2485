package expr

import (
	"errors"
	"strings"
	"testing"
)

func evalString(t *testing.T, s string, regs RegLookup, mem MemRead) (uint32, error) {
	t.Helper()
	toks, err := Lex(s)
	if err != nil {
		t.Fatalf("Lex(%q): %v", s, err)
	}
	Fixup(toks)
	return Eval(toks, regs, mem)
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want uint32
	}{
		{"1+2", 3},
		{"2*3+4", 10},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10-3-2", 5}, // left-associative
		{"-5+10", 5},
		{"+5", 5},
		{"1==1", 1},
		{"1==2", 0},
		{"1!=2", 1},
		{"3<=3", 1},
		{"4<=3", 0},
		{"1&&0", 0},
		{"1&&1", 1},
		{"0||0", 0},
		{"0||1", 1},
		{"0x10+1", 17},
		{"--5", 5},
		{"-+5", 0xfffffffb},
		{"1+-2", 0xffffffff},
	}
	for _, c := range cases {
		got, err := evalString(t, c.expr, nil, nil)
		if err != nil {
			t.Errorf("eval(%q) error: %v", c.expr, err)
			continue
		}
		if got != c.want {
			t.Errorf("eval(%q) = %d, want %d", c.expr, got, c.want)
		}
	}
}

func TestDivByZeroFlag(t *testing.T) {
	_, err := evalString(t, "1/0", nil, nil)
	if !errors.Is(err, ErrDivByZero) {
		t.Errorf("eval(1/0) error = %v, want ErrDivByZero", err)
	}
}

func TestRegisterLookup(t *testing.T) {
	regs := func(name string) (uint32, error) {
		if name == "a0" {
			return 42, nil
		}
		return 0, errors.New("no such register")
	}
	got, err := evalString(t, "$a0+1", regs, nil)
	if err != nil {
		t.Fatalf("eval($a0+1): %v", err)
	}
	if got != 43 {
		t.Errorf("eval($a0+1) = %d, want 43", got)
	}
}

func TestDereference(t *testing.T) {
	mem := func(addr uint32) (uint32, error) {
		if addr == 0x100 {
			return 0xcafebabe, nil
		}
		return 0, errors.New("bad address")
	}
	got, err := evalString(t, "*0x100", nil, mem)
	if err != nil {
		t.Fatalf("eval(*0x100): %v", err)
	}
	if got != 0xcafebabe {
		t.Errorf("eval(*0x100) = 0x%x, want 0xcafebabe", got)
	}
}

func TestShortCircuitAvoidsDivByZero(t *testing.T) {
	// The right side of && is never evaluated once the left side is 0,
	// so a 1/0 on the right must not surface as an error.
	_, err := evalString(t, "0&&1/0", nil, nil)
	if err != nil {
		t.Errorf("short-circuited && should not evaluate 1/0: %v", err)
	}
}

func TestEqualityEvaluatesBothSidesEagerly(t *testing.T) {
	// Unlike && / ||, == must evaluate both operands even if the result
	// is already determined structurally — this is what lets bne-style
	// comparisons observe a divide-by-zero on either side.
	_, err := evalString(t, "1==1/0", nil, nil)
	if !errors.Is(err, ErrDivByZero) {
		t.Errorf("eval(1==1/0) error = %v, want ErrDivByZero", err)
	}
}

func TestFixupUnaryVsBinary(t *testing.T) {
	toks, err := Lex("2-3")
	if err != nil {
		t.Fatal(err)
	}
	Fixup(toks)
	if toks[1].Kind != KindMinus {
		t.Errorf("2-3: middle token = %v, want binary KindMinus", toks[1].Kind)
	}

	toks, err = Lex("-3")
	if err != nil {
		t.Fatal(err)
	}
	Fixup(toks)
	if toks[0].Kind != KindNeg {
		t.Errorf("-3: first token = %v, want KindNeg", toks[0].Kind)
	}
}

func TestMalformedExpression(t *testing.T) {
	cases := []string{"", "1+", "+", "((1)", "1 2"}
	for _, c := range cases {
		if _, err := evalString(t, c, nil, nil); err == nil {
			t.Errorf("eval(%q) should fail", c)
		}
	}
}

func TestFixupIdempotent(t *testing.T) {
	toks, err := Lex("-(1+2)*-3")
	if err != nil {
		t.Fatal(err)
	}
	Fixup(toks)
	once := make([]Token, len(toks))
	copy(once, toks)
	Fixup(toks)
	for i := range toks {
		if toks[i] != once[i] {
			t.Fatalf("token %d changed on second Fixup: %v vs %v", i, toks[i], once[i])
		}
	}
}

func TestLexNumericRegisterForm(t *testing.T) {
	toks, err := Lex("$$10")
	if err != nil {
		t.Fatalf("Lex($$10): %v", err)
	}
	if len(toks) != 1 || toks[0].Kind != KindReg || toks[0].Text != "$10" {
		t.Errorf("Lex($$10) = %+v, want one REG token with text \"$10\"", toks)
	}
}

func TestLexErrorCarriesPosition(t *testing.T) {
	_, err := Lex("1 + #")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Lex error = %v, want *LexError", err)
	}
	if lexErr.Pos != 4 {
		t.Errorf("Pos = %d, want 4", lexErr.Pos)
	}
	if lexErr.Indicate() != "1 + #\n    ^" {
		t.Errorf("Indicate() = %q", lexErr.Indicate())
	}
}

func TestLexLexemeBound(t *testing.T) {
	long := strings.Repeat("1", 32)
	if _, err := Lex(long); err == nil {
		t.Error("a 32-digit literal should exceed the lexeme bound")
	}
	ok := strings.Repeat("1", 31)
	if _, err := Lex(ok); err != nil {
		t.Errorf("a 31-digit literal should lex: %v", err)
	}
}
