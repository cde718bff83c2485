/*
 * rv32sdb - Fixed-capacity watchpoint pool.
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

// Package watchpoint implements the debugger's watchpoint pool: a fixed
// array of 32 slots threaded into two lists (free, active) by index rather
// than by pointer, so the "every slot is on exactly one list" invariant
// stays auditable.
package watchpoint

import (
	"errors"
	"fmt"
	"strings"
)

// Capacity is the fixed number of watchpoint slots.
const Capacity = 32

// ErrPoolExhausted is returned by Add when all 32 slots are in use.
var ErrPoolExhausted = errors.New("watchpoint: pool exhausted")

// ErrNotFound is returned by Delete for an unknown watchpoint number.
var ErrNotFound = errors.New("watchpoint: no such watchpoint")

const noLink = -1

type slot struct {
	expr   string
	oldVal uint32
	inUse  bool
	next   int // index of next slot in whichever list this slot belongs to
}

// Evaluator evaluates a watchpoint expression against current machine
// state, returning its current value. Update calls this for every active
// watchpoint each time it's invoked.
type Evaluator func(expr string) (uint32, error)

// Pool is the 32-slot watchpoint pool. The zero value is not usable; call
// New.
type Pool struct {
	slots      [Capacity]slot
	freeHead   int
	activeHead int
}

// New returns a Pool with all slots threaded onto the free list.
func New() *Pool {
	p := &Pool{activeHead: noLink}
	for i := 0; i < Capacity; i++ {
		if i == Capacity-1 {
			p.slots[i].next = noLink
		} else {
			p.slots[i].next = i + 1
		}
	}
	p.freeHead = 0
	return p
}

// Watch describes one active watchpoint for listing/printing purposes.
type Watch struct {
	No     int
	Expr   string
	OldVal uint32
}

// Add allocates a watchpoint carrying expr and its initial value, inserted
// at the head of the active list (LIFO order). The slot index doubles as
// the watchpoint's externally visible number.
func (p *Pool) Add(expr string, initVal uint32) (int, error) {
	if p.freeHead == noLink {
		return 0, ErrPoolExhausted
	}
	idx := p.freeHead
	p.freeHead = p.slots[idx].next

	p.slots[idx].expr = expr
	p.slots[idx].oldVal = initVal
	p.slots[idx].inUse = true
	p.slots[idx].next = p.activeHead
	p.activeHead = idx
	return idx, nil
}

// Delete removes watchpoint no from the active list and returns its slot to
// the free list.
func (p *Pool) Delete(no int) error {
	if no < 0 || no >= Capacity || !p.slots[no].inUse {
		return fmt.Errorf("%w: %d", ErrNotFound, no)
	}
	prev := noLink
	cur := p.activeHead
	for cur != noLink {
		if cur == no {
			if prev == noLink {
				p.activeHead = p.slots[cur].next
			} else {
				p.slots[prev].next = p.slots[cur].next
			}
			p.slots[cur] = slot{}
			p.slots[cur].next = p.freeHead
			p.freeHead = cur
			return nil
		}
		prev = cur
		cur = p.slots[cur].next
	}
	return fmt.Errorf("%w: %d", ErrNotFound, no)
}

// List returns every active watchpoint, in active-list (most-recently-added
// first) order.
func (p *Pool) List() []Watch {
	var out []Watch
	for cur := p.activeHead; cur != noLink; cur = p.slots[cur].next {
		out = append(out, Watch{No: cur, Expr: p.slots[cur].expr, OldVal: p.slots[cur].oldVal})
	}
	return out
}

// FormatTable renders the watchpoint list: a fixed header, then one
// "%-3d %-36s 0x%08x" row per active watchpoint.
func (p *Pool) FormatTable() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-3s %-36s %s\n", "No", "Expr", "OldVal"))
	for _, w := range p.List() {
		fmt.Fprintf(&b, "%-3d %-36s 0x%08x\n", w.No, w.Expr, w.OldVal)
	}
	return b.String()
}

// Change reports one watchpoint whose value changed during Update.
type Change struct {
	No     int
	Expr   string
	OldVal uint32
	NewVal uint32
}

// Update re-evaluates every active watchpoint's expression. A watchpoint
// whose value changed has its stored oldVal refreshed and is returned in
// changes; a watchpoint whose expression fails to evaluate is left exactly
// as it was — never removed — and returned in skipped so the caller can
// report it.
func (p *Pool) Update(eval Evaluator) (changes []Change, skipped []Watch) {
	for cur := p.activeHead; cur != noLink; cur = p.slots[cur].next {
		v, err := eval(p.slots[cur].expr)
		if err != nil {
			skipped = append(skipped, Watch{No: cur, Expr: p.slots[cur].expr, OldVal: p.slots[cur].oldVal})
			continue
		}
		if v != p.slots[cur].oldVal {
			changes = append(changes, Change{
				No:     cur,
				Expr:   p.slots[cur].expr,
				OldVal: p.slots[cur].oldVal,
				NewVal: v,
			})
			p.slots[cur].oldVal = v
		}
	}
	return changes, skipped
}
