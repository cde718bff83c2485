/*
 * rv32sdb - Differential-test checker.
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

// Package difftest compares the emulator's CPU state against a reference
// model after every step. It never mutates state; a mismatch is reported,
// not corrected.
package difftest

import (
	"fmt"
	"strings"

	"github.com/rcornwell/rv32sdb/internal/cpu"
)

// Reference is the contract a co-simulated reference implementation (e.g.
// a spike or QEMU process) must provide. Attach establishes the connection
// once, before stepping begins; it is a no-op for references that need no
// setup.
type Reference interface {
	Attach() error
	Snapshot() (cpu.Snapshot, error)
}

// Mismatch describes one register (or PC) that disagreed between the DUT
// and the reference model.
type Mismatch struct {
	Name string
	Got  uint32
	Want uint32
}

// Result is the outcome of one CheckRegs call.
type Result struct {
	OK        bool
	OrigPC    uint32
	PC        Mismatch
	Registers []Mismatch
}

// CheckRegs compares dut against the reference model's current snapshot.
// pcOld is the address of the instruction that was just executed (the value
// of PC before this step), reported in the mismatch header regardless of
// whether PC itself happens to be one of the disagreeing registers. It
// performs no side effects; callers decide whether a mismatch should halt
// execution.
func CheckRegs(pcOld uint32, dut cpu.Snapshot, ref Reference) (Result, error) {
	refSnap, err := ref.Snapshot()
	if err != nil {
		return Result{}, err
	}
	res := Result{OK: true, OrigPC: pcOld}
	if dut.PC != refSnap.PC {
		res.OK = false
		res.PC = Mismatch{Name: "pc", Got: dut.PC, Want: refSnap.PC}
	}
	n := len(dut.GPR)
	if len(refSnap.GPR) < n {
		n = len(refSnap.GPR)
	}
	for i := 0; i < n; i++ {
		if dut.GPR[i] != refSnap.GPR[i] {
			res.OK = false
			name, _ := cpu.RegName(i)
			res.Registers = append(res.Registers, Mismatch{Name: name, Got: dut.GPR[i], Want: refSnap.GPR[i]})
		}
	}
	return res, nil
}

// Report formats a failed Result the way sdb's diff-test output prints it:
// a one-line header followed by one line per mismatching register.
func (r Result) Report() string {
	if r.OK {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "diff-test mismatch at pc=0x%08x\n", r.OrigPC)
	if r.PC.Name != "" {
		fmt.Fprintf(&b, "  pc: dut=0x%08x ref=0x%08x\n", r.PC.Got, r.PC.Want)
	}
	for _, m := range r.Registers {
		fmt.Fprintf(&b, "  %s: dut=0x%08x ref=0x%08x\n", m.Name, m.Got, m.Want)
	}
	return b.String()
}
