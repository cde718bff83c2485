package watchpoint

import (
	"errors"
	"testing"
)

func TestAddAndList(t *testing.T) {
	p := New()
	n1, err := p.Add("x1", 10)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	n2, err := p.Add("x2", 20)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	list := p.List()
	if len(list) != 2 {
		t.Fatalf("List() len = %d, want 2", len(list))
	}
	// LIFO order: most recently added first.
	if list[0].No != n2 || list[1].No != n1 {
		t.Errorf("List order = %+v, want n2 then n1", list)
	}
}

func TestPoolExhaustion(t *testing.T) {
	p := New()
	for i := 0; i < Capacity; i++ {
		if _, err := p.Add("x0", 0); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if _, err := p.Add("x0", 0); err != ErrPoolExhausted {
		t.Errorf("Add on full pool = %v, want ErrPoolExhausted", err)
	}
}

func TestDeleteRecyclesSlot(t *testing.T) {
	p := New()
	n, err := p.Add("x1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(n); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(p.List()) != 0 {
		t.Error("List() should be empty after Delete")
	}
	// the freed slot should be reusable
	for i := 0; i < Capacity; i++ {
		if _, err := p.Add("x0", 0); err != nil {
			t.Fatalf("Add #%d after Delete: %v", i, err)
		}
	}
}

func TestDeleteUnknown(t *testing.T) {
	p := New()
	if err := p.Delete(5); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(5) on empty pool = %v, want ErrNotFound", err)
	}
}

func TestUpdateReportsChangesAndSkipsFailures(t *testing.T) {
	p := New()
	na, _ := p.Add("a", 1)
	nb, _ := p.Add("b", 2)

	values := map[string]uint32{"a": 1, "b": 99}
	eval := func(expr string) (uint32, error) {
		v, ok := values[expr]
		if !ok {
			return 0, errNotEvaluable
		}
		return v, nil
	}
	changes, skipped := p.Update(eval)
	if len(changes) != 1 || changes[0].No != nb {
		t.Fatalf("changes = %+v, want one change for %d", changes, nb)
	}
	if changes[0].OldVal != 2 || changes[0].NewVal != 99 {
		t.Errorf("change = %+v", changes[0])
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %+v, want none", skipped)
	}

	// a failing expression (watchpoint removed from the eval map) must
	// survive Update untouched, not be dropped from the active list —
	// but it must come back in skipped so the caller can report it.
	delete(values, "a")
	before := p.List()
	_, skipped = p.Update(eval)
	after := p.List()
	if len(before) != len(after) {
		t.Errorf("watchpoint %d disappeared after a failing evaluation", na)
	}
	if len(skipped) != 1 || skipped[0].No != na {
		t.Errorf("skipped = %+v, want one entry for %d", skipped, na)
	}
}

var errNotEvaluable = &evalErr{}

type evalErr struct{}

func (e *evalErr) Error() string { return "cannot evaluate" }

func TestFormatTable(t *testing.T) {
	p := New()
	if _, err := p.Add("*0x100", 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	out := p.FormatTable()
	if out == "" {
		t.Fatal("FormatTable returned empty string")
	}
}
