package corpus

import (
	"sync/atomic"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CorpusProvider = (*Holder)(nil)

// Holder publishes the active corpus snapshot. Rebuilds construct a complete
// Snapshot off to the side and Swap it in; readers always see either the old
// or the new snapshot, never a mix.
type Holder struct {
	active atomic.Pointer[Snapshot]
}

// NewHolder creates a holder serving the given snapshot
func NewHolder(snapshot *Snapshot) *Holder {
	h := &Holder{}
	h.active.Store(snapshot)
	return h
}

// Active returns the currently published snapshot
func (h *Holder) Active() driven.CorpusIndex {
	return h.active.Load()
}

// Swap atomically publishes a new snapshot and returns the previous one
func (h *Holder) Swap(snapshot *Snapshot) *Snapshot {
	return h.active.Swap(snapshot)
}
