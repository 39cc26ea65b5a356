// Package mailbox implements the only two pieces of shared mutable state
// the traversal kernel touches: the usage-bits array and
// the node request mailbox. Both are
// commutative-associative sets under OR/CAS, no linearisation point
// is ever exposed to callers, and either the CPU goroutine kernel or the
// GPU compute kernel can mutate the same backing buffers.
package mailbox

import "sync/atomic"

// UsageBits is a bit-packed array, one bit per node/brick, set atomically
// by the kernel to mark "consulted this frame". The host reads it after
// dispatch as the reference signal for its eviction policy.
type UsageBits struct {
	words []atomic.Uint32
}

// NewUsageBits allocates a bit array with room for at least n bits.
func NewUsageBits(n int) *UsageBits {
	return &UsageBits{words: make([]atomic.Uint32, (n+31)/32)}
}

// Mark sets bit i via an atomic compare-and-swap loop that terminates as
// soon as the bit is observed set. Setting is idempotent:
// multiple rays racing on the same node converge to the same result.
func (u *UsageBits) Mark(i int) {
	word, bit := i/32, uint32(1)<<uint(i%32)
	w := &u.words[word]
	for {
		old := w.Load()
		if old&bit != 0 {
			return
		}
		if w.CompareAndSwap(old, old|bit) {
			return
		}
	}
}

// Test reports whether bit i is set. Safe to call concurrently with Mark;
// intended for host-side eviction scans between frames.
func (u *UsageBits) Test(i int) bool {
	word, bit := i/32, uint32(1)<<uint(i%32)
	return u.words[word].Load()&bit != 0
}

// Clear resets every bit to zero. Called by the host between frames
// according to its own eviction cadence, never
// by the kernel.
func (u *UsageBits) Clear() {
	for i := range u.words {
		u.words[i].Store(0)
	}
}

// Len returns the number of bits the array holds.
func (u *UsageBits) Len() int {
	return len(u.words) * 32
}

// Words exposes the backing words for buffer upload to a GPU binding. The
// returned slice aliases the live bits; callers must not mutate it from
// outside the kernel's own atomic operations.
func (u *UsageBits) Words() []atomic.Uint32 {
	return u.words
}
