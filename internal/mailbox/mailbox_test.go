package mailbox

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	v := Pack(12345, 21)
	node, sec := Unpack(v)
	if node != 12345 || sec != 21 {
		t.Fatalf("Unpack(%d) = (%d,%d), want (12345,21)", v, node, sec)
	}
}

func TestTryWriteIdempotent(t *testing.T) {
	m := NewMailbox(4)
	v := Pack(7, 10)
	if ok := m.TryWrite(v); !ok {
		t.Fatal("first write should succeed")
	}
	if ok := m.TryWrite(v); !ok {
		t.Fatal("duplicate write should be observed as already present")
	}
	if got := len(m.Snapshot()); got != 1 {
		t.Fatalf("Snapshot has %d entries, want 1", got)
	}
}

func TestTryWriteSaturates(t *testing.T) {
	m := NewMailbox(3)
	for i := uint32(0); i < 3; i++ {
		if ok := m.TryWrite(Pack(i, 0)); !ok {
			t.Fatalf("write %d should succeed", i)
		}
	}
	if ok := m.TryWrite(Pack(99, 0)); ok {
		t.Fatal("fourth distinct write should be dropped")
	}
	if got := len(m.Snapshot()); got != 3 {
		t.Fatalf("Snapshot has %d entries, want 3", got)
	}
}

func TestResetRestoresSentinel(t *testing.T) {
	m := NewMailbox(2)
	m.TryWrite(Pack(1, 2))
	m.Reset()
	if got := len(m.Snapshot()); got != 0 {
		t.Fatalf("Snapshot after Reset has %d entries, want 0", got)
	}
}

func TestUsageBitsMarkIdempotent(t *testing.T) {
	u := NewUsageBits(100)
	u.Mark(42)
	u.Mark(42)
	if !u.Test(42) {
		t.Fatal("expected bit 42 set")
	}
	if u.Test(41) {
		t.Fatal("bit 41 should not be set")
	}
}

func TestUsageBitsClear(t *testing.T) {
	u := NewUsageBits(64)
	u.Mark(5)
	u.Clear()
	if u.Test(5) {
		t.Fatal("expected bit 5 cleared")
	}
}
