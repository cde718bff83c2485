package cpu

import (
	"testing"

	"github.com/rcornwell/rv32sdb/internal/memory"
)

// Small RV32 encoders used only by tests, so test cases read as assembly
// rather than raw hex.

func encR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encI(imm uint32, rs1, funct3, rd, opcode uint32) uint32 {
	return (imm&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(imm uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	return ((imm>>5)&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (imm&0x1f)<<7 | opcode
}

func encB(imm uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	b12 := (imm >> 12) & 1
	b11 := (imm >> 11) & 1
	b10_5 := (imm >> 5) & 0x3f
	b4_1 := (imm >> 1) & 0xf
	return b12<<31 | b10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | b4_1<<8 | b11<<7 | opcode
}

func encU(imm uint32, rd, opcode uint32) uint32 {
	return (imm & 0xfffff000) | rd<<7 | opcode
}

func encJ(imm uint32, rd, opcode uint32) uint32 {
	b20 := (imm >> 20) & 1
	b19_12 := (imm >> 12) & 0xff
	b11 := (imm >> 11) & 1
	b10_1 := (imm >> 1) & 0x3ff
	return b20<<31 | b10_1<<21 | b11<<20 | b19_12<<12 | rd<<7 | opcode
}

func newTestMachine(t *testing.T) (*CPU, *memory.Memory) {
	t.Helper()
	c := New(false)
	m := memory.New(4096)
	return c, m
}

func TestDecodeADDI(t *testing.T) {
	c, m := newTestMachine(t)
	if err := m.WriteWord(0, encI(5, 0, 0b000, 1, 0b0010011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce: %v", err)
	}
	v, _ := c.Reg(1)
	if v != 5 {
		t.Errorf("x1 = %d, want 5", v)
	}
	if c.PC() != 4 {
		t.Errorf("PC = %d, want 4", c.PC())
	}
}

func TestDecodeADD(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 10)
	_ = c.SetReg(2, 32)
	if err := m.WriteWord(0, encR(0, 2, 1, 0b000, 3, 0b0110011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce: %v", err)
	}
	v, _ := c.Reg(3)
	if v != 42 {
		t.Errorf("x3 = %d, want 42", v)
	}
}

func TestDecodeBranchTaken(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 7)
	_ = c.SetReg(2, 7)
	// beq x1, x2, +8
	if err := m.WriteWord(0, encB(8, 2, 1, 0b000, 0b1100011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce: %v", err)
	}
	if c.PC() != 8 {
		t.Errorf("PC = %d, want 8 (branch taken)", c.PC())
	}
}

func TestDecodeBranchNotTaken(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 7)
	_ = c.SetReg(2, 9)
	if err := m.WriteWord(0, encB(8, 2, 1, 0b000, 0b1100011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce: %v", err)
	}
	if c.PC() != 4 {
		t.Errorf("PC = %d, want 4 (branch not taken)", c.PC())
	}
}

func TestDecodeJALAndJALR(t *testing.T) {
	c, m := newTestMachine(t)
	// jal x1, +16
	if err := m.WriteWord(0, encJ(16, 1, 0b1101111)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce (jal): %v", err)
	}
	if c.PC() != 16 {
		t.Errorf("PC after jal = %d, want 16", c.PC())
	}
	ra, _ := c.Reg(1)
	if ra != 4 {
		t.Errorf("ra after jal = %d, want 4", ra)
	}

	// jalr x2, x1, 4  -> target = (ra+4) &^ 1 = 8
	if err := m.WriteWord(16, encI(4, 1, 0b000, 2, 0b1100111)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce (jalr): %v", err)
	}
	if c.PC() != 8 {
		t.Errorf("PC after jalr = %d, want 8", c.PC())
	}
}

func TestDecodeLoadStore(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 0x100) // base
	_ = c.SetReg(2, 0xcafef00d)
	// sw x2, 0(x1)
	if err := m.WriteWord(0, encS(0, 2, 1, 0b010, 0b0100011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce (sw): %v", err)
	}
	// lw x3, 0(x1)
	if err := m.WriteWord(4, encI(0, 1, 0b010, 3, 0b0000011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatalf("StepOnce (lw): %v", err)
	}
	v, _ := c.Reg(3)
	if v != 0xcafef00d {
		t.Errorf("x3 = 0x%x, want 0xcafef00d", v)
	}
}

func TestDecodeLUIAndAUIPC(t *testing.T) {
	c, m := newTestMachine(t)
	if err := m.WriteWord(0, encU(0x12345000, 1, 0b0110111)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Reg(1)
	if v != 0x12345000 {
		t.Errorf("x1 after lui = 0x%x, want 0x12345000", v)
	}

	if err := m.WriteWord(4, encU(0x1000, 2, 0b0010111)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ = c.Reg(2)
	if v != 4+0x1000 {
		t.Errorf("x2 after auipc = 0x%x, want 0x%x", v, 4+0x1000)
	}
}

func TestDivByZero(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 10)
	_ = c.SetReg(2, 0)
	if err := m.WriteWord(0, encR(0b0000001, 2, 1, 0b100, 3, 0b0110011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Reg(3)
	if int32(v) != -1 {
		t.Errorf("div by zero = %d, want -1", int32(v))
	}
}

func TestDivOverflow(t *testing.T) {
	c, m := newTestMachine(t)
	intMin, negOne := int32(-1<<31), int32(-1)
	_ = c.SetReg(1, uint32(intMin))
	_ = c.SetReg(2, uint32(negOne))
	if err := m.WriteWord(0, encR(0b0000001, 2, 1, 0b100, 3, 0b0110011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Reg(3)
	if int32(v) != int32(-1<<31) {
		t.Errorf("INT_MIN/-1 = %d, want INT_MIN", int32(v))
	}
}

func TestRemOverflow(t *testing.T) {
	c, m := newTestMachine(t)
	intMin, negOne := int32(-1<<31), int32(-1)
	_ = c.SetReg(1, uint32(intMin))
	_ = c.SetReg(2, uint32(negOne))
	if err := m.WriteWord(0, encR(0b0000001, 2, 1, 0b110, 3, 0b0110011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Reg(3)
	if v != 0 {
		t.Errorf("INT_MIN rem -1 = %d, want 0", int32(v))
	}
}

func TestSRAIsArithmetic(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(1, 0x80000000)
	_ = c.SetReg(2, 35) // only the low 5 bits count: shift by 3
	if err := m.WriteWord(0, encR(0b0100000, 2, 1, 0b101, 3, 0b0110011)); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Reg(3)
	if v != 0xf0000000 {
		t.Errorf("sra(0x80000000, 35) = 0x%08x, want 0xf0000000", v)
	}
}

func TestDivRemIdentity(t *testing.T) {
	cases := []struct{ a, b int32 }{
		{7, 3}, {-7, 3}, {7, -3}, {-7, -3}, {0, 5}, {1 << 30, 3},
	}
	for _, tc := range cases {
		q := myDiv(tc.a, tc.b)
		r := myRem(tc.a, tc.b)
		if q*tc.b+r != tc.a {
			t.Errorf("(%d/%d)*%d + (%d%%%d) = %d, want %d", tc.a, tc.b, tc.b, tc.a, tc.b, q*tc.b+r, tc.a)
		}
	}
}

func TestEbreakHalts(t *testing.T) {
	c, m := newTestMachine(t)
	_ = c.SetReg(10, 3) // a0 = 3: guest-reported failure
	if err := m.WriteWord(0, systemInstEbreak()); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err != nil {
		t.Fatal(err)
	}
	if !c.Halted {
		t.Error("ebreak should halt the CPU")
	}
	if c.HaltVal != 3 {
		t.Errorf("HaltVal = %d, want 3", c.HaltVal)
	}
	if _, err := StepOnce(c, m); err != ErrHalted {
		t.Errorf("StepOnce after halt = %v, want ErrHalted", err)
	}
}

func systemInstEbreak() uint32 {
	return encI(1, 0, 0b000, 0, 0b1110011)
}

func TestInvalidInstruction(t *testing.T) {
	c, m := newTestMachine(t)
	if err := m.WriteWord(0, 0xffffffff); err != nil {
		t.Fatal(err)
	}
	if _, err := StepOnce(c, m); err == nil {
		t.Error("all-ones word should fail to decode")
	}
}
