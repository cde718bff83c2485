/*
 * rv32sdb - Operator precedence and main-operator search.
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

// priority returns an operator's binding strength, where a LOWER number
// binds TIGHTER. Unary operators bind tightest; && and || loosest. The
// inverted scale (vs. the usual "bigger number binds tighter") keeps
// findMainOp's "pick the loosest-binding operator" search reading
// naturally.
func priority(k Kind) int {
	switch k {
	case KindNeg, KindUPlus, KindDeref:
		return 2
	case KindStar, KindSlash:
		return 3
	case KindPlus, KindMinus:
		return 4
	case KindLe:
		return 6
	case KindEq, KindNeq:
		return 7
	case KindAnd, KindOr:
		return 8
	default:
		return -1
	}
}

func isOperator(k Kind) bool {
	return priority(k) >= 0
}

// findMainOp scans toks[lo:hi] outside of any parenthesis nesting and picks
// the operator with the loosest binding (highest priority number). Ties
// between binary operators are broken by taking the rightmost candidate,
// which is what makes e.g. "1-2-3" parse as (1-2)-3 rather than 1-(2-3);
// ties between unary operators keep the leftmost, so a stack like "--5"
// peels off one operator per recursion (right-associative).
func findMainOp(toks []Token, lo, hi int) (int, bool) {
	depth := 0
	best := -1
	bestPriority := -1
	for i := lo; i <= hi; i++ {
		switch toks[i].Kind {
		case KindLParen:
			depth++
			continue
		case KindRParen:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if !isOperator(toks[i].Kind) {
			continue
		}
		p := priority(toks[i].Kind)
		if p > bestPriority || (p == bestPriority && !isUnary(toks[i].Kind)) {
			bestPriority = p
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// surroundedByBracket reports whether toks[lo:hi] is wrapped in one
// redundant layer of matching parentheses, e.g. "(1+2)" but not "(1)+(2)".
//
// Both ends must be parentheses, the running depth must not return to zero
// before hi, and it must be zero at hi; an unbalanced range such as "((1)"
// fails the final check.
func surroundedByBracket(toks []Token, lo, hi int) bool {
	if toks[lo].Kind != KindLParen || toks[hi].Kind != KindRParen {
		return false
	}
	depth := 0
	for i := lo; i <= hi; i++ {
		switch toks[i].Kind {
		case KindLParen:
			depth++
		case KindRParen:
			depth--
			if depth == 0 && i != hi {
				return false
			}
		}
	}
	return depth == 0
}
