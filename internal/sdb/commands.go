/*
 * rv32sdb - Command handlers: help/c/q/si/info/x/p/w/d/t_expr.
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

package sdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/rv32sdb/internal/cpu"
	"github.com/rcornwell/rv32sdb/internal/expr"
	"github.com/rcornwell/rv32sdb/internal/watchpoint"
	hexfmt "github.com/rcornwell/rv32sdb/util/hex"
)

// ErrBadArgument is returned for malformed command arguments (a non-integer
// si count, a missing x count, etc).
var ErrBadArgument = errors.New("sdb: bad argument")

func cmdHelp(args *cmdLine, _ *Machine, out io.Writer) (bool, error) {
	name := args.getWord()
	if name == "" {
		for _, e := range cmdTable {
			fmt.Fprintln(out, e.help)
		}
		return false, nil
	}
	e := lookup(name)
	if e == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	fmt.Fprintln(out, e.help)
	return false, nil
}

func cmdQuit(_ *cmdLine, _ *Machine, _ io.Writer) (bool, error) {
	return true, nil
}

func cmdContinue(_ *cmdLine, m *Machine, out io.Writer) (bool, error) {
	res := m.Exec(-1)
	reportExec(res, m, out)
	return false, nil
}

func cmdStep(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	n := 1
	if word := args.getWord(); word != "" {
		v, err := strconv.Atoi(word)
		if err != nil || v <= 0 {
			return false, fmt.Errorf("%w: si count must be a positive integer", ErrBadArgument)
		}
		n = v
	}
	res := m.Exec(n)
	reportExec(res, m, out)
	return false, nil
}

// reportExec prints the outcome of a c/si run: a fatal error, any
// watchpoint that fired or failed to re-evaluate, or (on a clean ebreak)
// the halt code.
func reportExec(res ExecResult, m *Machine, out io.Writer) {
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "Watchpoint %d: %s - evaluation failed, skipped\n", s.No, s.Expr)
	}
	if res.Err != nil {
		fmt.Fprintln(out, res.Err.Error())
		return
	}
	for _, c := range res.Changes {
		fmt.Fprintf(out, "Watchpoint %d: %s\n\n    old value = %s\n    new value = %s\n\n",
			c.No, c.Expr, hexfmt.FormatWord32(c.OldVal), hexfmt.FormatWord32(c.NewVal))
	}
	if m.CPU.Halted {
		// ebreak has already advanced pc past itself.
		ebreakPC := m.CPU.PC() - 4
		if m.CPU.HaltVal == 0 {
			fmt.Fprintf(out, "hit ebreak at pc=%s: PASS (a0=0)\n", hexfmt.FormatAddr32(ebreakPC))
		} else {
			fmt.Fprintf(out, "hit ebreak at pc=%s: FAIL (a0=%d)\n", hexfmt.FormatAddr32(ebreakPC), m.CPU.HaltVal)
		}
	}
}

func cmdInfo(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	switch args.getWord() {
	case "r":
		printRegisters(m, out)
	case "w":
		fmt.Fprint(out, m.WP.FormatTable())
	default:
		return false, fmt.Errorf("%w: info requires r or w", ErrBadArgument)
	}
	return false, nil
}

func printRegisters(m *Machine, out io.Writer) {
	for i := 0; i < m.CPU.NumGPR(); i++ {
		name, _ := cpu.RegName(i)
		v, _ := m.CPU.Reg(i)
		fmt.Fprintf(out, "%-5s %s\n", name, hexfmt.FormatWord32(v))
	}
	fmt.Fprintf(out, "%-5s %s\n", "pc", hexfmt.FormatAddr32(m.CPU.PC()))
}

// cmdExamine implements "x N EXPR": N consecutive 32-bit words starting at
// the address EXPR names. The count parses as plain decimal and the address
// as plain hex digits (an optional 0x prefix tolerated), not through the
// general expression evaluator.
func cmdExamine(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	countWord := args.getWord()
	count, err := strconv.Atoi(countWord)
	if err != nil || count <= 0 {
		return false, fmt.Errorf("%w: x requires a positive decimal count", ErrBadArgument)
	}
	addrWord := strings.TrimSpace(args.rest())
	if addrWord == "" {
		return false, fmt.Errorf("%w: x requires an address", ErrBadArgument)
	}
	addr64, err := strconv.ParseUint(trimHexPrefix(addrWord), 16, 32)
	if err != nil {
		return false, fmt.Errorf("%w: bad address %q", ErrBadArgument, addrWord)
	}
	addr := uint32(addr64)

	words := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		v, err := m.Mem.ReadWord(addr + uint32(i)*4)
		if err != nil {
			return false, err
		}
		words = append(words, v)
	}
	var b strings.Builder
	for i, w := range words {
		if i%4 == 0 {
			if i != 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s: ", hexfmt.FormatAddr32(addr+uint32(i)*4))
		}
		hexfmt.FormatWord(&b, []uint32{w})
	}
	b.WriteByte('\n')
	fmt.Fprint(out, b.String())
	return false, nil
}

// reportEvalError prints the appropriate diagnostic for a failed
// evaluation: a lexing failure echoes the input with a caret under the
// offending position; anything else is the flat "Invalid expression".
func reportEvalError(err error, out io.Writer) {
	var lexErr *expr.LexError
	if errors.As(err, &lexErr) {
		fmt.Fprintln(out, lexErr.Indicate())
		fmt.Fprintln(out, lexErr.Error())
		return
	}
	fmt.Fprintln(out, "Invalid expression")
}

func cmdPrint(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	text := args.rest()
	v, err := m.evalExpr(text)
	if err != nil {
		reportEvalError(err, out)
		return false, nil
	}
	fmt.Fprintf(out, "%d %s\n", v, hexfmt.FormatWord32(v))
	return false, nil
}

func cmdWatch(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	text := args.rest()
	v, err := m.evalExpr(text)
	if err != nil {
		reportEvalError(err, out)
		return false, nil
	}
	no, err := m.WP.Add(text, v)
	if err != nil {
		if errors.Is(err, watchpoint.ErrPoolExhausted) {
			fmt.Fprintln(out, "No more watchpoints available")
			return false, nil
		}
		return false, err
	}
	fmt.Fprintf(out, "Watchpoint %d: %s\n", no, text)
	return false, nil
}

func cmdDelete(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	word := args.getWord()
	no, err := strconv.Atoi(word)
	if err != nil {
		return false, fmt.Errorf("%w: d requires a watchpoint number", ErrBadArgument)
	}
	if err := m.WP.Delete(no); err != nil {
		return false, err
	}
	fmt.Fprintf(out, "Deleted watchpoint %d\n", no)
	return false, nil
}

// TExprSummary tallies one t_expr run. Passed/Total exclude DivZero lines,
// which are reported separately rather than counted as failures.
type TExprSummary struct {
	Passed  int
	Total   int
	DivZero int
}

func cmdTExpr(args *cmdLine, m *Machine, out io.Writer) (bool, error) {
	path := strings.TrimSpace(args.rest())
	if path == "" {
		return false, fmt.Errorf("%w: t_expr requires a file path", ErrBadArgument)
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	summary, err := runTExpr(f, m)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(out, "passed: %d total: %d div_zero: %d\n", summary.Passed, summary.Total, summary.DivZero)
	return false, nil
}

func runTExpr(r io.Reader, m *Machine) (TExprSummary, error) {
	var sum TExprSummary
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, ' ')
		if sep < 0 {
			continue
		}
		wantStr, exprText := line[:sep], line[sep+1:]
		want, err := strconv.ParseUint(wantStr, 10, 32)
		if err != nil {
			continue
		}

		got, err := m.evalExpr(exprText)
		if errors.Is(err, expr.ErrDivByZero) {
			sum.DivZero++
			continue
		}
		sum.Total++
		if err == nil && got == uint32(want) {
			sum.Passed++
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
