/*
 * rv32sdb - Recursive-descent expression evaluator.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package expr

import (
	"errors"
	"fmt"
)

// ErrEval is the general evaluation-failure sentinel: malformed
// expressions, unknown registers, bad memory addresses.
var ErrEval = errors.New("expr: evaluation failed")

// ErrDivByZero is returned as-is (not wrapped in ErrEval) specifically for
// division by a zero divisor, so callers such as the t_expr command can tally
// it separately from other failures.
var ErrDivByZero = errors.New("expr: division by zero")

// RegLookup resolves a $name token to its current value.
type RegLookup func(name string) (uint32, error)

// MemRead resolves a dereferenced address to the word stored there.
type MemRead func(addr uint32) (uint32, error)

// maxDepth bounds recursion so a pathological input can't blow the stack;
// it is lower than the token cap, so deeper nesting fails as an evaluation
// error.
const maxDepth = 256

// Eval parses and evaluates the whole token stream toks.
func Eval(toks []Token, regs RegLookup, mem MemRead) (uint32, error) {
	if len(toks) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrEval)
	}
	return eval(toks, 0, len(toks)-1, regs, mem, 0)
}

func eval(toks []Token, lo, hi int, regs RegLookup, mem MemRead, depth int) (uint32, error) {
	if depth > maxDepth {
		return 0, fmt.Errorf("%w: expression nested too deeply", ErrEval)
	}
	if lo > hi {
		return 0, fmt.Errorf("%w: empty subexpression", ErrEval)
	}
	if lo == hi {
		return evalLeaf(toks[lo], regs, mem)
	}
	if surroundedByBracket(toks, lo, hi) {
		return eval(toks, lo+1, hi-1, regs, mem, depth+1)
	}

	op, ok := findMainOp(toks, lo, hi)
	if !ok {
		return 0, fmt.Errorf("%w: no operator found in %q", ErrEval, tokensText(toks[lo:hi+1]))
	}

	if isUnary(toks[op].Kind) {
		if op != lo {
			return 0, fmt.Errorf("%w: unary operator not in leading position", ErrEval)
		}
		v, err := eval(toks, op+1, hi, regs, mem, depth+1)
		if err != nil {
			return 0, err
		}
		return applyUnary(toks[op].Kind, v, mem)
	}

	return evalBinary(toks, lo, op, hi, regs, mem, depth)
}

func evalLeaf(t Token, regs RegLookup, mem MemRead) (uint32, error) {
	switch t.Kind {
	case KindDec, KindHex:
		return literalValue(t)
	case KindReg:
		if regs == nil {
			return 0, fmt.Errorf("%w: no register context", ErrEval)
		}
		v, err := regs(t.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEval, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: unexpected token as leaf", ErrEval)
	}
}

func isUnary(k Kind) bool {
	return k == KindNeg || k == KindUPlus || k == KindDeref
}

func applyUnary(k Kind, v uint32, mem MemRead) (uint32, error) {
	switch k {
	case KindUPlus:
		return v, nil
	case KindNeg:
		return uint32(-int32(v)), nil
	case KindDeref:
		if mem == nil {
			return 0, fmt.Errorf("%w: no memory context", ErrEval)
		}
		val, err := mem(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEval, err)
		}
		return val, nil
	default:
		return 0, fmt.Errorf("%w: not a unary operator", ErrEval)
	}
}

// evalBinary evaluates the two sides around the chosen main operator.
// && and || short-circuit; every other operator evaluates both sides
// eagerly, including == and != (RISC-V's bne needs both operands regardless
// of what the left side turns out to be).
func evalBinary(toks []Token, lo, op, hi int, regs RegLookup, mem MemRead, depth int) (uint32, error) {
	kind := toks[op].Kind

	left, err := eval(toks, lo, op-1, regs, mem, depth+1)
	if err != nil {
		return 0, err
	}

	if kind == KindAnd {
		if left == 0 {
			return 0, nil
		}
		right, err := eval(toks, op+1, hi, regs, mem, depth+1)
		if err != nil {
			return 0, err
		}
		if right != 0 {
			return 1, nil
		}
		return 0, nil
	}
	if kind == KindOr {
		if left != 0 {
			return 1, nil
		}
		right, err := eval(toks, op+1, hi, regs, mem, depth+1)
		if err != nil {
			return 0, err
		}
		if right != 0 {
			return 1, nil
		}
		return 0, nil
	}

	right, err := eval(toks, op+1, hi, regs, mem, depth+1)
	if err != nil {
		return 0, err
	}

	switch kind {
	case KindPlus:
		return left + right, nil
	case KindMinus:
		return left - right, nil
	case KindStar:
		return left * right, nil
	case KindSlash:
		if right == 0 {
			return 0, ErrDivByZero
		}
		return uint32(int32(left) / int32(right)), nil
	case KindEq:
		if left == right {
			return 1, nil
		}
		return 0, nil
	case KindNeq:
		if left != right {
			return 1, nil
		}
		return 0, nil
	case KindLe:
		if int32(left) <= int32(right) {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown binary operator", ErrEval)
	}
}

func tokensText(toks []Token) string {
	s := ""
	for _, t := range toks {
		s += tokenText(t) + " "
	}
	return s
}

func tokenText(t Token) string {
	switch t.Kind {
	case KindDec:
		return t.Text
	case KindHex:
		return "0x" + t.Text
	case KindReg:
		return "$" + t.Text
	case KindPlus, KindUPlus:
		return "+"
	case KindMinus, KindNeg:
		return "-"
	case KindStar, KindDeref:
		return "*"
	case KindSlash:
		return "/"
	case KindLParen:
		return "("
	case KindRParen:
		return ")"
	case KindEq:
		return "=="
	case KindNeq:
		return "!="
	case KindLe:
		return "<="
	case KindAnd:
		return "&&"
	case KindOr:
		return "||"
	default:
		return "?"
	}
}
