/*
 * rv32sdb - RV32IM instruction decode table.
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

package cpu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDecode is returned when no entry in the pattern table matches an
// instruction word.
var ErrDecode = errors.New("cpu: illegal instruction")

// DecodeError reports the address and raw word of an undecodable
// instruction.
type DecodeError struct {
	PC   uint32
	Inst uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at pc=0x%08x: 0x%08x", ErrDecode, e.PC, e.Inst)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// format identifies which immediate-encoding rules decodeOperands applies.
type format int

const (
	fmtR format = iota
	fmtI
	fmtS
	fmtB
	fmtU
	fmtJ
	fmtN // no operand fields decoded (ebreak)
)

// execFunc performs one instruction's semantics against the decoded operand
// context. It writes the destination register through c.SetReg;
// branch/jump handlers also set dc.DNPC.
type execFunc func(c *CPU, m memWriter, dc *Decode) error

// memWriter is the minimal memory surface execute.go needs; internal/memory.Memory
// satisfies it. Declared locally so cpu does not import memory's error type
// into its own public errors.
type memWriter interface {
	ReadByte(addr uint32) (byte, error)
	WriteByte(addr uint32, v byte) error
	ReadHalf(addr uint32) (uint16, error)
	WriteHalf(addr uint32, v uint16) error
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr uint32, v uint32) error
}

type patEntry struct {
	key, mask uint32
	name      string
	format    format
	exec      execFunc
}

// patternDecode turns a space-separated bit-group string ('0'/'1' literal,
// '?' don't-care) into a (key, mask) pair.
func patternDecode(pattern string) (key, mask uint32) {
	bits := strings.ReplaceAll(pattern, " ", "")
	if len(bits) != 32 {
		panic(fmt.Sprintf("cpu: bad pattern length %d: %q", len(bits), pattern))
	}
	for i, b := range bits {
		shift := uint(31 - i)
		switch b {
		case '0':
			mask |= 1 << shift
		case '1':
			key |= 1 << shift
			mask |= 1 << shift
		case '?':
		default:
			panic(fmt.Sprintf("cpu: bad pattern char %q in %q", b, pattern))
		}
	}
	return key, mask
}

// table is built once at init time, in priority order: first match wins.
var table []patEntry

func addPat(pattern, name string, f format, fn execFunc) {
	key, mask := patternDecode(pattern)
	table = append(table, patEntry{key: key, mask: mask, name: name, format: f, exec: fn})
}

// q returns n wildcard ('?') bits, used to build fixed-width bit patterns
// below without hand-counting characters in a literal string.
func q(n int) string { return strings.Repeat("?", n) }

// rType/iType/uType/sbType/shiftType/systemType assemble a 32-bit pattern
// string for their respective RV32 instruction formats (jal uses uType). Immediate/register fields
// that decodeOperands extracts separately are left as wildcards here; only
// the opcode/funct3/funct7 bits that distinguish one instruction from
// another are given literal values.
func rType(funct7, funct3, opcode string) string {
	return funct7 + q(5) + q(5) + funct3 + q(5) + opcode
}

func iType(funct3, opcode string) string {
	return q(12) + q(5) + funct3 + q(5) + opcode
}

func shiftType(funct7, funct3, opcode string) string {
	return funct7 + q(5) + q(5) + funct3 + q(5) + opcode
}

func uType(opcode string) string {
	return q(20) + q(5) + opcode
}

func sbType(funct3, opcode string) string {
	return q(7) + q(5) + q(5) + funct3 + q(5) + opcode
}

func systemType(imm12, opcode string) string {
	return imm12 + "00000" + "000" + "00000" + opcode
}

func init() {
	const opBranch, opLoad, opStore, opImm, opOp, opSystem = "1100011", "0000011", "0100011", "0010011", "0110011", "1110011"

	// U-type
	addPat(uType("0110111"), "lui", fmtU, execLUI)
	addPat(uType("0010111"), "auipc", fmtU, execAUIPC)

	// J-type
	addPat(uType("1101111"), "jal", fmtJ, execJAL)

	// I-type jalr
	addPat(iType("000", "1100111"), "jalr", fmtI, execJALR)

	// B-type branches
	addPat(sbType("000", opBranch), "beq", fmtB, execBEQ)
	addPat(sbType("001", opBranch), "bne", fmtB, execBNE)
	addPat(sbType("100", opBranch), "blt", fmtB, execBLT)
	addPat(sbType("101", opBranch), "bge", fmtB, execBGE)
	addPat(sbType("110", opBranch), "bltu", fmtB, execBLTU)
	addPat(sbType("111", opBranch), "bgeu", fmtB, execBGEU)

	// I-type loads
	addPat(iType("000", opLoad), "lb", fmtI, execLB)
	addPat(iType("001", opLoad), "lh", fmtI, execLH)
	addPat(iType("010", opLoad), "lw", fmtI, execLW)
	addPat(iType("100", opLoad), "lbu", fmtI, execLBU)
	addPat(iType("101", opLoad), "lhu", fmtI, execLHU)

	// S-type stores
	addPat(sbType("000", opStore), "sb", fmtS, execSB)
	addPat(sbType("001", opStore), "sh", fmtS, execSH)
	addPat(sbType("010", opStore), "sw", fmtS, execSW)

	// I-type arithmetic
	addPat(iType("000", opImm), "addi", fmtI, execADDI)
	addPat(iType("010", opImm), "slti", fmtI, execSLTI)
	addPat(iType("011", opImm), "sltiu", fmtI, execSLTIU)
	addPat(iType("100", opImm), "xori", fmtI, execXORI)
	addPat(iType("110", opImm), "ori", fmtI, execORI)
	addPat(iType("111", opImm), "andi", fmtI, execANDI)
	addPat(shiftType("0000000", "001", opImm), "slli", fmtR, execSLLI)
	addPat(shiftType("0000000", "101", opImm), "srli", fmtR, execSRLI)
	addPat(shiftType("0100000", "101", opImm), "srai", fmtR, execSRAI)

	// R-type arithmetic (base ISA)
	addPat(rType("0000000", "000", opOp), "add", fmtR, execADD)
	addPat(rType("0100000", "000", opOp), "sub", fmtR, execSUB)
	addPat(rType("0000000", "001", opOp), "sll", fmtR, execSLL)
	addPat(rType("0000000", "010", opOp), "slt", fmtR, execSLT)
	addPat(rType("0000000", "011", opOp), "sltu", fmtR, execSLTU)
	addPat(rType("0000000", "100", opOp), "xor", fmtR, execXOR)
	addPat(rType("0000000", "101", opOp), "srl", fmtR, execSRL)
	addPat(rType("0100000", "101", opOp), "sra", fmtR, execSRA)
	addPat(rType("0000000", "110", opOp), "or", fmtR, execOR)
	addPat(rType("0000000", "111", opOp), "and", fmtR, execAND)

	// R-type M-extension
	addPat(rType("0000001", "000", opOp), "mul", fmtR, execMUL)
	addPat(rType("0000001", "001", opOp), "mulh", fmtR, execMULH)
	addPat(rType("0000001", "010", opOp), "mulhsu", fmtR, execMULHSU)
	addPat(rType("0000001", "011", opOp), "mulhu", fmtR, execMULHU)
	addPat(rType("0000001", "100", opOp), "div", fmtR, execDIV)
	addPat(rType("0000001", "101", opOp), "divu", fmtR, execDIVU)
	addPat(rType("0000001", "110", opOp), "rem", fmtR, execREM)
	addPat(rType("0000001", "111", opOp), "remu", fmtR, execREMU)

	// SYSTEM. ecall is deliberately left unmatched: it would require a
	// trap/syscall path, which is out of scope, so it falls through to
	// the catch-all and is reported as a decode failure like any other
	// unimplemented encoding.
	addPat(systemType("000000000001", opSystem), "ebreak", fmtN, execEBREAK)

	// Catch-all: always matches (all 32 bits wildcard), always last.
	table = append(table, patEntry{key: 0, mask: 0, name: "inv", format: fmtN, exec: execInvalid})
}

func lookup(inst uint32) *patEntry {
	for i := range table {
		e := &table[i]
		if inst&e.mask == e.key {
			return e
		}
	}
	return &table[len(table)-1]
}

// Decode is the per-instruction decode context threaded through fetch,
// decode and execute. snpc is the sequential next PC (pc+4); dnpc is the
// dynamic next PC execute handlers for branches/jumps overwrite — the
// three-PC model the fetch/decode/execute loop is built around.
type Decode struct {
	PC   uint32
	SNPC uint32
	DNPC uint32
	Inst uint32
	Name string

	Rd, Rs1, Rs2 int
	Imm          int32
}

func bitfield(inst uint32, hi, lo uint) uint32 {
	return (inst >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// decodeOperands fills in Rd/Rs1/Rs2/Imm per the instruction's format. Field
// layouts (and their sign-extension rules) follow the RISC-V base ISA
// encoding.
func decodeOperands(inst uint32, f format, dc *Decode) {
	dc.Rd = int(bitfield(inst, 11, 7))
	dc.Rs1 = int(bitfield(inst, 19, 15))
	dc.Rs2 = int(bitfield(inst, 24, 20))

	switch f {
	case fmtR:
		dc.Imm = 0
	case fmtI:
		dc.Imm = signExtend(bitfield(inst, 31, 20), 12)
	case fmtS:
		v := bitfield(inst, 31, 25)<<5 | bitfield(inst, 11, 7)
		dc.Imm = signExtend(v, 12)
	case fmtB:
		v := bitfield(inst, 31, 31)<<12 |
			bitfield(inst, 7, 7)<<11 |
			bitfield(inst, 30, 25)<<5 |
			bitfield(inst, 11, 8)<<1
		dc.Imm = signExtend(v, 13)
	case fmtU:
		dc.Imm = int32(bitfield(inst, 31, 12) << 12)
	case fmtJ:
		v := bitfield(inst, 31, 31)<<20 |
			bitfield(inst, 19, 12)<<12 |
			bitfield(inst, 20, 20)<<11 |
			bitfield(inst, 30, 21)<<1
		dc.Imm = signExtend(v, 21)
	case fmtN:
		dc.Imm = int32(bitfield(inst, 31, 20))
	}
}

// decodeInst classifies an already-fetched instruction word and fills in
// its operand fields. Step (step.go) owns the fetch and the PC bookkeeping
// around it; it is also the thing that invokes the returned execFunc.
func decodeInst(pc, inst uint32) (*Decode, execFunc) {
	e := lookup(inst)
	dc := &Decode{PC: pc, SNPC: pc + 4, Inst: inst, Name: e.name}
	dc.DNPC = dc.SNPC
	decodeOperands(inst, e.format, dc)
	return dc, e.exec
}
