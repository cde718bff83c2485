/*
 * rv32sdb - Hex/value formatting helpers.
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

package hex

import (
	"fmt"
	"strings"
)

var hexMap = "0123456789ABCDEF"

// FormatWord writes each 32-bit word in word as 8 hex digits, space
// separated. Used by the x command's word dump.
func FormatWord(str *strings.Builder, word []uint32) {
	for _, full := range word {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatWord32 renders a 32-bit value as a "0x"-prefixed 8-digit hex string,
// the form p and the watchpoint table print values in.
func FormatWord32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

// FormatAddr32 renders a 32-bit guest address the same way FormatWord32
// does; kept as a distinct name since callers printing an address (x, si,
// info r) read more clearly than callers printing a value even
// though the underlying format is identical.
func FormatAddr32(addr uint32) string {
	return fmt.Sprintf("0x%08x", addr)
}
