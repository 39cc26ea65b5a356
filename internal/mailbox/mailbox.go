package mailbox

import "sync/atomic"

// EmptySlot is the sentinel value an unclaimed mailbox slot holds. Writing
// this value after initialisation is forbidden.
const EmptySlot uint32 = 0xFFFFFFFF

// OOBSectant signals "the MIP of this node is requested" rather than a
// specific child.
const OOBSectant = 64

// Pack combines a node index and target sectant into the mailbox's wire
// format: (node_index: 24) | (target_sectant: 8).
func Pack(nodeIndex uint32, targetSectant uint8) uint32 {
	return (nodeIndex << 8) | uint32(targetSectant)
}

// Unpack recovers the node index and target sectant from a packed value.
func Unpack(v uint32) (nodeIndex uint32, targetSectant uint8) {
	return v >> 8, uint8(v)
}

// Mailbox is a fixed-length array of atomic slots: a multi-writer,
// single-reader SET of (node, sectant) upload requests, not a queue.
// Duplicates coalesce automatically.
type Mailbox struct {
	slots []atomic.Uint32
}

// NewMailbox allocates a mailbox with capacity slots, all initialised to
// EmptySlot.
func NewMailbox(capacity int) *Mailbox {
	m := &Mailbox{slots: make([]atomic.Uint32, capacity)}
	m.Reset()
	return m
}

// Reset restores every slot to EmptySlot. Called by the host before each
// dispatch.
func (m *Mailbox) Reset() {
	for i := range m.slots {
		m.slots[i].Store(EmptySlot)
	}
}

// TryWrite attempts to publish a packed (node, sectant) request. It scans
// linearly; at each slot it attempts compare-exchange empty->value. Success
// or "slot already holds exactly this value" both report ok=true, request
// writes are idempotent. Reaching the end without
// success is a silent drop: ok is false and the caller accumulates the
// "request failed" tint instead of retrying.
func (m *Mailbox) TryWrite(value uint32) (ok bool) {
	for i := range m.slots {
		s := &m.slots[i]
		for {
			cur := s.Load()
			if cur == value {
				return true
			}
			if cur != EmptySlot {
				break // slot taken by a different request, try the next one
			}
			if s.CompareAndSwap(EmptySlot, value) {
				return true
			}
			// Lost the race for this slot; re-read and retry it before
			// moving on, since it may now hold `value` itself.
		}
	}
	return false
}

// Len returns the mailbox's slot capacity.
func (m *Mailbox) Len() int {
	return len(m.slots)
}

// Snapshot copies out every non-empty slot's packed value, for the host to
// act on after dispatch.
func (m *Mailbox) Snapshot() []uint32 {
	out := make([]uint32, 0, len(m.slots))
	for i := range m.slots {
		if v := m.slots[i].Load(); v != EmptySlot {
			out = append(out, v)
		}
	}
	return out
}
