/*
 * rv32sdb - Fetch/decode/execute step driver.
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

// StepOnce fetches, decodes and executes a single instruction. It returns
// the decode context for callers that need to know what just ran.
//
// x0 is reset to zero unconditionally after every instruction.
func StepOnce(c *CPU, m memWriter) (*Decode, error) {
	if c.Halted {
		return nil, ErrHalted
	}
	pc := c.pc
	inst, err := m.ReadWord(pc)
	if err != nil {
		return nil, err
	}
	dc, exec := decodeInst(pc, inst)
	if err := exec(c, m, dc); err != nil {
		return dc, err
	}
	if err := c.SetReg(0, 0); err != nil {
		return dc, err
	}
	c.pc = dc.DNPC
	return dc, nil
}

// Step runs n instructions, or until halted/an error occurs — whichever
// comes first. n < 0 means run until halted. It returns the number of
// instructions actually executed.
func Step(c *CPU, m memWriter, n int) (int, error) {
	count := 0
	for n < 0 || count < n {
		if c.Halted {
			return count, ErrHalted
		}
		if _, err := StepOnce(c, m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
