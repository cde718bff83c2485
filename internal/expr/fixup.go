/*
 * rv32sdb - Operator fix-up pass.
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

// Fixup walks the token stream once, left to right, reclassifying an
// ambiguous leading '+', '-' or '*' as its unary form (UPlus, Neg, Deref)
// whenever the previous token couldn't have left a value on the stack for
// it to be a binary operator against. It runs once, right after
// tokenizing, before any parsing begins, and is idempotent.
func Fixup(toks []Token) {
	for i := range toks {
		if !isAmbiguous(toks[i].Kind) {
			continue
		}
		if !prevAllowsUnary(toks, i) {
			continue
		}
		switch toks[i].Kind {
		case KindPlus:
			toks[i].Kind = KindUPlus
		case KindMinus:
			toks[i].Kind = KindNeg
		case KindStar:
			toks[i].Kind = KindDeref
		}
	}
}

func isAmbiguous(k Kind) bool {
	return k == KindPlus || k == KindMinus || k == KindStar
}

// prevAllowsUnary reports whether the token at i is in unary position: it
// is the first token, or the token before it cannot itself terminate an
// expression (another operator, or an open paren).
func prevAllowsUnary(toks []Token, i int) bool {
	if i == 0 {
		return true
	}
	switch toks[i-1].Kind {
	case KindDec, KindHex, KindReg, KindRParen:
		return false
	default:
		return true
	}
}
