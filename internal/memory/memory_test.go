package memory

import "testing"

func TestReadWriteWord(t *testing.T) {
	m := New(64)
	if err := m.WriteWord(4, 0xdeadbeef); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	got, err := m.ReadWord(4)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("ReadWord = 0x%08x, want 0xdeadbeef", got)
	}
}

func TestLittleEndian(t *testing.T) {
	m := New(8)
	if err := m.WriteWord(0, 0x01020304); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	cases := []struct {
		addr uint32
		want byte
	}{
		{0, 0x04},
		{1, 0x03},
		{2, 0x02},
		{3, 0x01},
	}
	for _, c := range cases {
		got, err := m.ReadByte(c.addr)
		if err != nil {
			t.Fatalf("ReadByte(%d): %v", c.addr, err)
		}
		if got != c.want {
			t.Errorf("ReadByte(%d) = 0x%02x, want 0x%02x", c.addr, got, c.want)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	m := New(16)
	if _, err := m.ReadWord(14); err == nil {
		t.Error("ReadWord at 14 (spans past end) should fail")
	}
	if _, err := m.ReadByte(16); err == nil {
		t.Error("ReadByte(16) should fail on a 16-byte memory")
	}
	if err := m.WriteByte(15, 0xff); err != nil {
		t.Errorf("WriteByte(15) should succeed: %v", err)
	}
}

func TestLoadBytes(t *testing.T) {
	m := New(16)
	if err := m.LoadBytes(4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	got, err := m.ReadWord(4)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if want := uint32(0x04030201); got != want {
		t.Errorf("ReadWord = 0x%08x, want 0x%08x", got, want)
	}
	if err := m.LoadBytes(15, []byte{1, 2}); err == nil {
		t.Error("LoadBytes spanning past end should fail")
	}
}
