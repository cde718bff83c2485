/*
 * rv32sdb - RV32IM instruction execution semantics.
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

func regU(c *CPU, idx int) (uint32, error) { return c.Reg(idx) }

func regS(c *CPU, idx int) (int32, error) {
	v, err := c.Reg(idx)
	return int32(v), err
}

func execLUI(c *CPU, _ memWriter, dc *Decode) error {
	return c.SetReg(dc.Rd, uint32(dc.Imm))
}

func execAUIPC(c *CPU, _ memWriter, dc *Decode) error {
	return c.SetReg(dc.Rd, dc.PC+uint32(dc.Imm))
}

func execJAL(c *CPU, _ memWriter, dc *Decode) error {
	if err := c.SetReg(dc.Rd, dc.SNPC); err != nil {
		return err
	}
	dc.DNPC = dc.PC + uint32(dc.Imm)
	return nil
}

func execJALR(c *CPU, _ memWriter, dc *Decode) error {
	rs1, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	if err := c.SetReg(dc.Rd, dc.SNPC); err != nil {
		return err
	}
	dc.DNPC = (rs1 + uint32(dc.Imm)) &^ 1
	return nil
}

func branch(c *CPU, dc *Decode, taken bool) error {
	if taken {
		dc.DNPC = dc.PC + uint32(dc.Imm)
	}
	return nil
}

func execBEQ(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a == b)
}

func execBNE(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a != b)
}

func execBLT(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a < b)
}

func execBGE(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a >= b)
}

func execBLTU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a < b)
}

func execBGEU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return branch(c, dc, a >= b)
}

func loadAddr(c *CPU, dc *Decode) (uint32, error) {
	base, err := regU(c, dc.Rs1)
	if err != nil {
		return 0, err
	}
	return base + uint32(dc.Imm), nil
}

func execLB(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := m.ReadByte(addr)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(int32(int8(v))))
}

func execLBU(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := m.ReadByte(addr)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(v))
}

func execLH(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := m.ReadHalf(addr)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(int32(int16(v))))
}

func execLHU(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := m.ReadHalf(addr)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(v))
}

func execLW(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := m.ReadWord(addr)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, v)
}

func execSB(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return m.WriteByte(addr, byte(v))
}

func execSH(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return m.WriteHalf(addr, uint16(v))
}

func execSW(c *CPU, m memWriter, dc *Decode) error {
	addr, err := loadAddr(c, dc)
	if err != nil {
		return err
	}
	v, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return m.WriteWord(addr, v)
}

func execADDI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a+uint32(dc.Imm))
}

func execSLTI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	if a < dc.Imm {
		return c.SetReg(dc.Rd, 1)
	}
	return c.SetReg(dc.Rd, 0)
}

func execSLTIU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	if a < uint32(dc.Imm) {
		return c.SetReg(dc.Rd, 1)
	}
	return c.SetReg(dc.Rd, 0)
}

func execXORI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a^uint32(dc.Imm))
}

func execORI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a|uint32(dc.Imm))
}

func execANDI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a&uint32(dc.Imm))
}

func execSLLI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	shamt := uint32(dc.Rs2) & 0x1f
	return c.SetReg(dc.Rd, a<<shamt)
}

func execSRLI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	shamt := uint32(dc.Rs2) & 0x1f
	return c.SetReg(dc.Rd, a>>shamt)
}

func execSRAI(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	shamt := uint32(dc.Rs2) & 0x1f
	return c.SetReg(dc.Rd, uint32(a>>shamt))
}

func execADD(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a+b)
}

func execSUB(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a-b)
}

func execSLL(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a<<(b&0x1f))
}

func execSLT(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	if a < b {
		return c.SetReg(dc.Rd, 1)
	}
	return c.SetReg(dc.Rd, 0)
}

func execSLTU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	if a < b {
		return c.SetReg(dc.Rd, 1)
	}
	return c.SetReg(dc.Rd, 0)
}

func execXOR(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a^b)
}

func execSRL(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a>>(b&0x1f))
}

func execSRA(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(a>>(b&0x1f)))
}

func execOR(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a|b)
}

func execAND(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a&b)
}

func execMUL(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, a*b)
}

func execMULH(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	prod := int64(a) * int64(b)
	return c.SetReg(dc.Rd, uint32(prod>>32))
}

func execMULHSU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	prod := int64(a) * int64(int64(b))
	return c.SetReg(dc.Rd, uint32(prod>>32))
}

func execMULHU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	prod := uint64(a) * uint64(b)
	return c.SetReg(dc.Rd, uint32(prod>>32))
}

// myDiv implements RISC-V signed division's special cases: divide-by-zero
// yields -1, and INT32_MIN/-1 (the one case that would overflow a 32-bit
// signed result) yields the dividend back unchanged.
func myDiv(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == int32(-1<<31) && b == -1 {
		return a
	}
	return a / b
}

// myRem mirrors myDiv's special cases for remainder: divide-by-zero returns
// the dividend, and the INT32_MIN/-1 overflow case returns 0.
func myRem(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == int32(-1<<31) && b == -1 {
		return 0
	}
	return a % b
}

func execDIV(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(myDiv(a, b)))
}

func execDIVU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	if b == 0 {
		return c.SetReg(dc.Rd, 0xffffffff)
	}
	return c.SetReg(dc.Rd, a/b)
}

func execREM(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regS(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regS(c, dc.Rs2)
	if err != nil {
		return err
	}
	return c.SetReg(dc.Rd, uint32(myRem(a, b)))
}

func execREMU(c *CPU, _ memWriter, dc *Decode) error {
	a, err := regU(c, dc.Rs1)
	if err != nil {
		return err
	}
	b, err := regU(c, dc.Rs2)
	if err != nil {
		return err
	}
	if b == 0 {
		return c.SetReg(dc.Rd, a)
	}
	return c.SetReg(dc.Rd, a%b)
}

// execEBREAK marks the core halted. a0 (x10) becomes the halt code: a
// non-zero value is a guest-reported failure, propagated to main's exit
// status.
func execEBREAK(c *CPU, _ memWriter, dc *Decode) error {
	a0, err := regU(c, 10)
	if err != nil {
		return err
	}
	c.Halted = true
	c.HaltVal = a0
	return nil
}

func execInvalid(c *CPU, _ memWriter, dc *Decode) error {
	c.Halted = true
	return &DecodeError{PC: dc.PC, Inst: dc.Inst}
}
