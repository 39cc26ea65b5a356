// Package streamer drains the kernel's request mailbox between frames and
// hands the host's loader a deduplicated batch of work: requests already
// in flight from an earlier frame are dropped rather than resubmitted,
// since a ray that asked for the same (node, sectant) twice before the
// loader answered the first ask is the common case, not the exception.
package streamer

import (
	"sync"

	set3 "github.com/TomTonic/Set3"

	"github.com/voxrt/voxrt/internal/mailbox"
	"github.com/voxrt/voxrt/internal/tree"
)

// Streamer tracks, across frames, which packed mailbox requests are
// already in flight to the loader so Drain never hands out the same
// request twice while it's outstanding.
type Streamer struct {
	mu      sync.Mutex
	pending *set3.Set3[uint32]
}

// New returns a Streamer with no in-flight requests.
func New() *Streamer {
	return &Streamer{pending: set3.Empty[uint32]()}
}

// Drain empties store's mailbox and returns the subset of requests not
// already in flight, marking each returned request in flight. Resets the
// mailbox so the next dispatch starts from an empty request set,
// mirroring the host-clears-before-dispatch contract documented on
// mailbox.Mailbox.Reset.
func (s *Streamer) Drain(store *tree.Store) []Request {
	raw := store.Mailbox.Snapshot()
	store.Mailbox.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]Request, 0, len(raw))
	for _, v := range raw {
		if s.pending.Contains(v) {
			continue
		}
		s.pending.Add(v)
		nodeIndex, sectant := mailbox.Unpack(v)
		batch = append(batch, Request{Packed: v, NodeIndex: nodeIndex, Sectant: sectant})
	}
	return batch
}

// Resolve marks a request no longer in flight: either the loader fulfilled
// it (the tree now carries real data at that node/sectant) or it gave up.
// Either way a future frame's mailbox write for the same request should be
// treated as fresh, not a duplicate.
func (s *Streamer) Resolve(packed uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.Remove(packed)
}

// Pending reports how many requests are currently in flight.
func (s *Streamer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Request is one deduplicated mailbox entry ready for the loader: either a
// specific child sectant, or (when Sectant equals mailbox.OOBSectant) the
// node's own MIP.
type Request struct {
	Packed    uint32
	NodeIndex uint32
	Sectant   uint8
}
