package sdb

import (
	"testing"

	"github.com/rcornwell/rv32sdb/internal/cpu"
	"github.com/rcornwell/rv32sdb/internal/memory"
)

// These helpers encode the handful of instructions the scenario tests below need.
func addi(rd, rs1 int, imm int32) uint32 {
	return uint32(imm&0xfff)<<20 | uint32(rs1)<<15 | 0<<12 | uint32(rd)<<7 | 0b0010011
}

func add(rd, rs1, rs2 int) uint32 {
	return 0<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | 0<<12 | uint32(rd)<<7 | 0b0110011
}

func ebreak() uint32 {
	return 1 << 20 | 0b1110011
}

func bne(rs1, rs2 int, offset int32) uint32 {
	imm := uint32(offset)
	b11 := (imm >> 11) & 1
	b4_1 := (imm >> 1) & 0xf
	b10_5 := (imm >> 5) & 0x3f
	b12 := (imm >> 12) & 1
	return b12<<31 | b10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | 1<<12 | b4_1<<8 | b11<<7 | 0b1100011
}

func newTestMachine(t *testing.T) (*Machine, *memory.Memory) {
	t.Helper()
	mem := memory.New(4096)
	c := cpu.New(false)
	return New(c, mem, nil), mem
}

func TestExecAddSequenceHalts(t *testing.T) {
	m, mem := newTestMachine(t)
	prog := []uint32{
		addi(1, 0, 5), // x1 = 5
		addi(2, 0, 7), // x2 = 7
		add(3, 1, 2),  // x3 = x1 + x2
		ebreak(),
	}
	for i, w := range prog {
		if err := mem.WriteWord(uint32(i*4), w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}

	res := m.Exec(4)
	if res.Err != nil {
		t.Fatalf("Exec: %v", res.Err)
	}
	if res.Steps != 4 {
		t.Fatalf("Steps = %d, want 4", res.Steps)
	}
	if v, _ := m.CPU.Reg(1); v != 5 {
		t.Errorf("x1 = %d, want 5", v)
	}
	if v, _ := m.CPU.Reg(2); v != 7 {
		t.Errorf("x2 = %d, want 7", v)
	}
	if v, _ := m.CPU.Reg(3); v != 12 {
		t.Errorf("x3 = %d, want 12", v)
	}
	if !m.CPU.Halted || m.CPU.HaltVal != 0 {
		t.Errorf("expected clean halt, got Halted=%v HaltVal=%d", m.CPU.Halted, m.CPU.HaltVal)
	}
}

func TestExecLoopBne(t *testing.T) {
	m, mem := newTestMachine(t)
	// x2 = 3; loop: x1 += 1; bne x1, x2, loop; ebreak
	prog := []uint32{
		addi(2, 0, 3),
		addi(1, 1, 1),
		bne(1, 2, -4),
		ebreak(),
	}
	for i, w := range prog {
		if err := mem.WriteWord(uint32(i*4), w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}

	res := m.Exec(-1)
	if res.Err != nil {
		t.Fatalf("Exec: %v", res.Err)
	}
	if v, _ := m.CPU.Reg(1); v != 3 {
		t.Errorf("x1 = %d, want 3", v)
	}
	// The loop exits to the ebreak at 0xc, which itself advances pc by 4.
	if m.CPU.PC() != 16 {
		t.Errorf("pc = 0x%x, want 0x10, past the ebreak at 0xc", m.CPU.PC())
	}
}

func TestExecStopsOnWatchpointChange(t *testing.T) {
	m, mem := newTestMachine(t)
	prog := []uint32{
		addi(10, 0, 1), // a0 = 1 (watched)
		ebreak(),
	}
	for i, w := range prog {
		if err := mem.WriteWord(uint32(i*4), w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	if _, err := m.WP.Add("$a0", 0); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res := m.Exec(-1)
	if len(res.Changes) != 1 {
		t.Fatalf("Changes = %+v, want 1 entry", res.Changes)
	}
	if res.Changes[0].NewVal != 1 {
		t.Errorf("watchpoint new value = %d, want 1", res.Changes[0].NewVal)
	}
	// The driver halts the step loop on a watchpoint trigger, not the CPU.
	if m.CPU.Halted {
		t.Error("CPU should not be marked Halted by a watchpoint trigger")
	}
}

func TestExecDecodeFailureHalts(t *testing.T) {
	m, mem := newTestMachine(t)
	if err := mem.WriteWord(0, 0xffffffff); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}

	res := m.Exec(-1)
	if res.Err == nil {
		t.Fatal("expected a decode error")
	}
	if !m.CPU.Halted {
		t.Error("expected CPU halted after decode failure")
	}
	if m.Fatal() == nil {
		t.Error("Fatal() should report the decode failure")
	}
}

func TestExecReportsSkippedWatchpoint(t *testing.T) {
	m, mem := newTestMachine(t)
	prog := []uint32{
		addi(1, 0, 1),
		ebreak(),
	}
	for i, w := range prog {
		if err := mem.WriteWord(uint32(i*4), w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	// dereferences an address far outside the 4 KiB test memory, so every
	// re-evaluation fails
	if _, err := m.WP.Add("*0x80000000", 0); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res := m.Exec(-1)
	if res.Err != nil {
		t.Fatalf("Exec: %v", res.Err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Expr != "*0x80000000" {
		t.Errorf("Skipped = %+v, want the failing watchpoint reported once", res.Skipped)
	}
	if len(m.WP.List()) != 1 {
		t.Error("a failing watchpoint must stay on the active list")
	}
	if m.Fatal() != nil {
		t.Errorf("a skipped watchpoint is not fatal: %v", m.Fatal())
	}
}
