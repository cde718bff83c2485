/*
 * rv32sdb - RV32IM register file.
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

// Package cpu implements a single-hart RV32IM core: register file,
// instruction decode, and execution semantics. Supervisor/machine mode,
// traps, atomics, compressed instructions, floating point and multi-hart
// execution are out of scope.
package cpu

import (
	"errors"
	"fmt"
)

// ErrBadRegister is returned when a register index is out of range for the
// current GPR file size (32 normally, 16 under the RVE option).
var ErrBadRegister = errors.New("cpu: register index out of range")

// ErrHalted is returned by Step once the core has executed an ebreak.
var ErrHalted = errors.New("cpu: halted")

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// CPU holds RV32IM architectural state: the general register file and the
// program counter. It carries no I/O or memory of its own — those are
// supplied explicitly to Step so a CPU value never hides shared state.
type CPU struct {
	gpr     [32]uint32
	pc      uint32
	rve     bool
	Halted  bool
	HaltVal uint32
}

// New returns a freshly reset CPU. rve selects the 16-register RV32E
// register-file option.
func New(rve bool) *CPU {
	return &CPU{rve: rve}
}

// NumGPR reports how many general registers this CPU exposes.
func (c *CPU) NumGPR() int {
	if c.rve {
		return 16
	}
	return 32
}

// Reset clears all registers and sets PC to entry.
func (c *CPU) Reset(entry uint32) {
	c.gpr = [32]uint32{}
	c.pc = entry
	c.Halted = false
	c.HaltVal = 0
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC overwrites the program counter.
func (c *CPU) SetPC(pc uint32) { c.pc = pc }

// Reg reads general register idx. x0 always reads as zero.
func (c *CPU) Reg(idx int) (uint32, error) {
	if idx < 0 || idx >= c.NumGPR() {
		return 0, fmt.Errorf("%w: x%d", ErrBadRegister, idx)
	}
	if idx == 0 {
		return 0, nil
	}
	return c.gpr[idx], nil
}

// SetReg writes general register idx. Writes to x0 are silently discarded,
// matching the ISA rule enforced unconditionally after every instruction.
func (c *CPU) SetReg(idx int, v uint32) error {
	if idx < 0 || idx >= c.NumGPR() {
		return fmt.Errorf("%w: x%d", ErrBadRegister, idx)
	}
	if idx == 0 {
		return nil
	}
	c.gpr[idx] = v
	return nil
}

// RegName returns the RISC-V ABI name for register idx ("zero", "ra", ...).
func RegName(idx int) (string, error) {
	if idx < 0 || idx >= 32 {
		return "", fmt.Errorf("%w: x%d", ErrBadRegister, idx)
	}
	return regNames[idx], nil
}

// RegIndex resolves an ABI name, an "xN" form, or the "$N" lexeme the
// lexer produces for a $$N expression token, to a register index. It is
// the lookup the expression evaluator's REG token uses. The pc
// pseudo-register resolves to index -1.
func RegIndex(name string) (int, bool) {
	if n, ok := parseXReg(name); ok {
		return n, true
	}
	if len(name) > 1 && name[0] == '$' {
		n := 0
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		if n >= 32 {
			return 0, false
		}
		return n, true
	}
	for i, n := range regNames {
		if n == name {
			return i, true
		}
	}
	if name == "pc" {
		return -1, true
	}
	return 0, false
}

func parseXReg(name string) (int, bool) {
	if len(name) < 2 || (name[0] != 'x' && name[0] != 'X') {
		return 0, false
	}
	n := 0
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 0 || n >= 32 {
		return 0, false
	}
	return n, true
}

// Snapshot is a point-in-time copy of CPU state, the unit the diff-test
// checker compares against a reference model.
type Snapshot struct {
	PC  uint32
	GPR []uint32
}

// Snapshot captures the current architectural state.
func (c *CPU) Snapshot() Snapshot {
	n := c.NumGPR()
	gpr := make([]uint32, n)
	copy(gpr, c.gpr[:n])
	return Snapshot{PC: c.pc, GPR: gpr}
}

// DefaultMemSize is the guest memory size main.go allocates.
const DefaultMemSize = 16 * 1024 * 1024
