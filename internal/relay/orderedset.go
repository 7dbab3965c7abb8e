package relay

import "github.com/txrelay/simnet/internal/gossip"

// orderedTxSet is an insertion-ordered set of TxIDs with no duplicates: the
// recon_set[p] of spec.md §3 ("ordered sequence<TxId> (no duplicates,
// insertion order preserved)"). None of the pack's set libraries
// (deckarep/golang-set included) preserve insertion order, so this is
// implemented directly on a slice+map — see DESIGN.md.
type orderedTxSet struct {
	order []gossip.TxID
	index map[gossip.TxID]int
}

func newOrderedTxSet() *orderedTxSet {
	return &orderedTxSet{index: make(map[gossip.TxID]int)}
}

// Add appends tx if it is not already present. Returns true if it was added.
func (s *orderedTxSet) Add(tx gossip.TxID) bool {
	if _, ok := s.index[tx]; ok {
		return false
	}
	s.index[tx] = len(s.order)
	s.order = append(s.order, tx)
	return true
}

// Remove deletes tx if present. Returns true if it was present.
func (s *orderedTxSet) Remove(tx gossip.TxID) bool {
	i, ok := s.index[tx]
	if !ok {
		return false
	}
	delete(s.index, tx)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

func (s *orderedTxSet) Has(tx gossip.TxID) bool {
	_, ok := s.index[tx]
	return ok
}

func (s *orderedTxSet) Len() int { return len(s.order) }

// Snapshot returns a copy of the set's contents in insertion order. Used by
// the reconciliation engine to capture "A" by value (spec.md §4.3).
func (s *orderedTxSet) Snapshot() []gossip.TxID {
	out := make([]gossip.TxID, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the set.
func (s *orderedTxSet) Clear() {
	s.order = s.order[:0]
	s.index = make(map[gossip.TxID]int)
}
