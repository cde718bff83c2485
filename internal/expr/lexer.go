/*
 * rv32sdb - Hand-written expression lexer.
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

// Package expr implements the debugger's small expression language: a
// lexer, an operator-disambiguation pass, and a recursive-descent
// evaluator with register and memory access. The lexer is a hand-written
// state machine rather than a regex-rule table, deliberately: a fixed,
// small token set doesn't need a regex engine and a switch over runes is
// both faster and easier to reason about than a compiled rule list.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one lexical token class.
type Kind int

const (
	KindNotype Kind = iota
	KindDec         // decimal integer literal
	KindHex         // 0x-prefixed hex literal
	KindReg         // $name register reference
	KindEq          // ==
	KindNeq         // !=
	KindLe          // <=
	KindAnd         // &&
	KindOr          // ||
	KindPlus        // + (binary until fixup decides otherwise)
	KindMinus       // -
	KindStar        // *
	KindSlash       // /
	KindLParen
	KindRParen
	KindNeg   // unary -, assigned by Fixup
	KindUPlus // unary +, assigned by Fixup
	KindDeref // unary *, assigned by Fixup
)

// Token is one lexical unit. Text carries the literal for DEC/HEX (sans
// radix prefix for hex) and the bare name for REG (sans leading '$').
type Token struct {
	Kind Kind
	Text string
}

// ErrLex is returned for input the scanner cannot tokenize.
var ErrLex = errors.New("expr: invalid token")

// maxTokens bounds one expression's token stream.
const maxTokens = 1024

// maxLexeme bounds the useful characters of a literal or register lexeme.
const maxLexeme = 31

// LexError reports where lexing stopped, carrying the original input so the
// REPL can echo it back with a caret under the failing position.
type LexError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%v: %s at position %d", ErrLex, e.Msg, e.Pos)
}

func (e *LexError) Unwrap() error { return ErrLex }

// Indicate renders the input line with a caret under the failing position.
func (e *LexError) Indicate() string {
	return e.Input + "\n" + strings.Repeat(" ", e.Pos) + "^"
}

// Lex scans s into a token stream. It is a single left-to-right pass: no
// backtracking, no lookahead beyond the two-character operators (==, !=,
// <=, &&, ||).
func Lex(s string) ([]Token, error) {
	var toks []Token
	i := 0
	n := len(s)
	for i < n {
		if len(toks) >= maxTokens {
			return nil, &LexError{Input: s, Pos: i, Msg: "too many tokens"}
		}
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+':
			toks = append(toks, Token{Kind: KindPlus})
			i++
		case c == '-':
			toks = append(toks, Token{Kind: KindMinus})
			i++
		case c == '*':
			toks = append(toks, Token{Kind: KindStar})
			i++
		case c == '/':
			toks = append(toks, Token{Kind: KindSlash})
			i++
		case c == '(':
			toks = append(toks, Token{Kind: KindLParen})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: KindRParen})
			i++
		case c == '=' && i+1 < n && s[i+1] == '=':
			toks = append(toks, Token{Kind: KindEq})
			i += 2
		case c == '!' && i+1 < n && s[i+1] == '=':
			toks = append(toks, Token{Kind: KindNeq})
			i += 2
		case c == '<' && i+1 < n && s[i+1] == '=':
			toks = append(toks, Token{Kind: KindLe})
			i += 2
		case c == '&' && i+1 < n && s[i+1] == '&':
			toks = append(toks, Token{Kind: KindAnd})
			i += 2
		case c == '|' && i+1 < n && s[i+1] == '|':
			toks = append(toks, Token{Kind: KindOr})
			i += 2
		case c == '$' && i+1 < n && s[i+1] == '$':
			// $$N names a register by index directly; the first '$' is
			// stripped like any other register sigil, leaving "$N" as
			// the lexeme the register lookup resolves numerically.
			j := i + 2
			for j < n && isDigit(s[j]) {
				j++
			}
			if j == i+2 {
				return nil, &LexError{Input: s, Pos: i, Msg: "bare '$$'"}
			}
			if j-(i+1) > maxLexeme {
				return nil, &LexError{Input: s, Pos: i, Msg: "register name too long"}
			}
			toks = append(toks, Token{Kind: KindReg, Text: s[i+1 : j]})
			i = j
		case c == '$':
			j := i + 1
			for j < n && isIdentByte(s[j]) {
				j++
			}
			if j == i+1 {
				return nil, &LexError{Input: s, Pos: i, Msg: "bare '$'"}
			}
			if j-(i+1) > maxLexeme {
				return nil, &LexError{Input: s, Pos: i, Msg: "register name too long"}
			}
			toks = append(toks, Token{Kind: KindReg, Text: s[i+1 : j]})
			i = j
		case c == '0' && i+1 < n && (s[i+1] == 'x' || s[i+1] == 'X'):
			j := i + 2
			for j < n && isHexDigit(s[j]) {
				j++
			}
			if j == i+2 {
				return nil, &LexError{Input: s, Pos: i, Msg: "bare hex prefix"}
			}
			if j-(i+2) > maxLexeme {
				return nil, &LexError{Input: s, Pos: i, Msg: "hex literal too long"}
			}
			toks = append(toks, Token{Kind: KindHex, Text: s[i+2 : j]})
			i = j
		case isDigit(c):
			j := i
			for j < n && isDigit(s[j]) {
				j++
			}
			if j-i > maxLexeme {
				return nil, &LexError{Input: s, Pos: i, Msg: "decimal literal too long"}
			}
			toks = append(toks, Token{Kind: KindDec, Text: s[i:j]})
			i = j
		default:
			return nil, &LexError{Input: s, Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentByte(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// literalValue parses a DEC or HEX token's text into its numeric value.
func literalValue(t Token) (uint32, error) {
	switch t.Kind {
	case KindDec:
		v, err := strconv.ParseUint(t.Text, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrLex, t.Text)
		}
		return uint32(v), nil
	case KindHex:
		v, err := strconv.ParseUint(t.Text, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrLex, t.Text)
		}
		return uint32(v), nil
	default:
		return 0, fmt.Errorf("%w: not a literal token", ErrLex)
	}
}
