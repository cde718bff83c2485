/*
 * rv32sdb - Flat byte-addressed guest memory.
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

// Package memory models the guest's flat physical address space. Memory is
// an explicit struct rather than a package-level singleton: the rest of
// the emulator takes a *Memory rather than reaching for a shared global.
package memory

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned whenever an access falls outside the configured
// memory size.
var ErrOutOfRange = errors.New("memory: address out of range")

// Memory is a byte-addressable guest address space backed by a flat slice.
type Memory struct {
	bytes []byte
}

// New allocates a Memory of the given size in bytes.
func New(size uint32) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.bytes))
}

// CheckAddr reports whether the half-open range [addr, addr+n) is entirely
// within bounds.
func (m *Memory) CheckAddr(addr uint32, n uint32) bool {
	if n == 0 {
		return addr <= m.Size()
	}
	end := addr + n
	return end >= addr && end <= m.Size()
}

// ReadByte fetches a single byte.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	if !m.CheckAddr(addr, 1) {
		return 0, fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	return m.bytes[addr], nil
}

// WriteByte stores a single byte.
func (m *Memory) WriteByte(addr uint32, v byte) error {
	if !m.CheckAddr(addr, 1) {
		return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	m.bytes[addr] = v
	return nil
}

// ReadHalf fetches a little-endian 16-bit value.
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	if !m.CheckAddr(addr, 2) {
		return 0, fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8, nil
}

// WriteHalf stores a little-endian 16-bit value.
func (m *Memory) WriteHalf(addr uint32, v uint16) error {
	if !m.CheckAddr(addr, 2) {
		return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	return nil
}

// ReadWord fetches a little-endian 32-bit value.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if !m.CheckAddr(addr, 4) {
		return 0, fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24, nil
}

// WriteWord stores a little-endian 32-bit value.
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	if !m.CheckAddr(addr, 4) {
		return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	m.bytes[addr+2] = byte(v >> 16)
	m.bytes[addr+3] = byte(v >> 24)
	return nil
}

// LoadBytes copies data into memory starting at addr. Used by the image
// loader in main; not part of the ISA-visible surface.
func (m *Memory) LoadBytes(addr uint32, data []byte) error {
	if !m.CheckAddr(addr, uint32(len(data))) {
		return fmt.Errorf("%w: 0x%08x", ErrOutOfRange, addr)
	}
	copy(m.bytes[addr:], data)
	return nil
}
