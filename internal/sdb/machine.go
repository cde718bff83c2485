/*
 * rv32sdb - Debugger machine: wires CPU, memory, diff-test and watchpoints
 * together behind the step driver the command dispatcher calls.
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

// Package sdb implements the interactive source-level debugger: the command
// dispatcher (help/c/q/si/info/x/p/w/d/t_expr), the REPL built on
// github.com/peterh/liner, and the step driver that threads the CPU,
// differential-test checker and watchpoint pool together.
package sdb

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/rv32sdb/internal/cpu"
	"github.com/rcornwell/rv32sdb/internal/difftest"
	"github.com/rcornwell/rv32sdb/internal/expr"
	"github.com/rcornwell/rv32sdb/internal/memory"
	"github.com/rcornwell/rv32sdb/internal/watchpoint"
)

// Machine bundles the state a debugger session operates on. It carries no
// package-level globals; every handler reaches guest state through the
// *Machine the dispatcher hands it.
type Machine struct {
	CPU *cpu.CPU
	Mem *memory.Memory
	WP  *watchpoint.Pool
	Ref difftest.Reference // nil disables differential testing

	// fatal records the first run-ending failure (decode error, memory
	// fault, diff-test mismatch). The REPL keeps accepting inspection
	// commands after one, but the process exit status must reflect it.
	fatal error
}

// New returns a Machine ready to step. ref may be nil (the -nodifftest
// case); a non-nil reference is attached here, once, before any stepping.
// A reference that fails to attach is dropped so the session still runs,
// just without the differential check.
func New(c *cpu.CPU, m *memory.Memory, ref difftest.Reference) *Machine {
	if ref != nil {
		if err := ref.Attach(); err != nil {
			slog.Error("sdb: reference model attach failed, differential test disabled", "error", err)
			ref = nil
		}
	}
	return &Machine{CPU: c, Mem: m, WP: watchpoint.New(), Ref: ref}
}

// ExecResult reports what Exec actually did: how many instructions ran,
// any watchpoints that fired, any watchpoints whose expressions failed to
// re-evaluate, and the fatal error (decode failure, diff-test mismatch)
// that stopped the run, if any.
type ExecResult struct {
	Steps   int
	Changes []watchpoint.Change
	Skipped []watchpoint.Watch
	Err     error
}

// Exec runs n instructions, or until halted when n < 0. Each step captures
// the pre-execution PC, executes one instruction, runs the diff-test hook
// (if configured) against that PC, and re-evaluates every watchpoint; a
// watchpoint change, a halted core, or a fatal error all stop the loop
// early.
func (m *Machine) Exec(n int) ExecResult {
	var res ExecResult
	skippedSeen := make(map[int]bool)
	for n < 0 || res.Steps < n {
		if m.CPU.Halted {
			return res
		}
		pcOld := m.CPU.PC()
		if _, err := cpu.StepOnce(m.CPU, m.Mem); err != nil {
			res.Steps++
			res.Err = err
			m.fatal = err
			return res
		}
		res.Steps++

		if m.Ref != nil {
			dr, err := difftest.CheckRegs(pcOld, m.CPU.Snapshot(), m.Ref)
			if err != nil {
				res.Err = err
				m.fatal = err
				return res
			}
			if !dr.OK {
				m.CPU.Halted = true
				res.Err = errors.New(dr.Report())
				m.fatal = res.Err
				return res
			}
		}

		changes, skipped := m.WP.Update(m.evalWatchExpr)
		for _, s := range skipped {
			if !skippedSeen[s.No] {
				skippedSeen[s.No] = true
				res.Skipped = append(res.Skipped, s)
			}
		}
		if len(changes) > 0 {
			res.Changes = changes
			return res
		}
	}
	return res
}

// Fatal returns the first run-ending failure this machine hit, or nil. The
// process exit status keys off this so a crashed guest never reads as a
// clean run.
func (m *Machine) Fatal() error { return m.fatal }

// evalExpr lexes, fixes up and evaluates a full expression string against
// this machine's register file and memory. It is the one entry point command
// handlers (p, w, t_expr) and the watchpoint pool's Update all funnel
// through; x parses its address itself.
func (m *Machine) evalExpr(s string) (uint32, error) {
	toks, err := expr.Lex(s)
	if err != nil {
		return 0, err
	}
	expr.Fixup(toks)
	return expr.Eval(toks, m.regLookup, m.memRead)
}

func (m *Machine) evalWatchExpr(s string) (uint32, error) { return m.evalExpr(s) }

func (m *Machine) regLookup(name string) (uint32, error) {
	idx, ok := cpu.RegIndex(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown register %q", expr.ErrEval, name)
	}
	if idx == -1 {
		return m.CPU.PC(), nil
	}
	return m.CPU.Reg(idx)
}

func (m *Machine) memRead(addr uint32) (uint32, error) {
	return m.Mem.ReadWord(addr)
}
