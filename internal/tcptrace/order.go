// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

// sequencer reorders hops arriving in any order into TTL order.
type sequencer struct {
	next    int
	pending map[int]Hop
	done    bool
	emit    func(Hop)
}

func newSequencer(emit func(Hop)) *sequencer {
	return &sequencer{next: 1, pending: map[int]Hop{}, emit: emit}
}

// add records h and emits every hop that now completes the sequence.
// Hops with a TTL that was already seen are ignored, as is everything
// after the first hop that reached the target.
func (s *sequencer) add(h Hop) {
	if s.done || h.TTL < s.next {
		return
	}
	if _, dup := s.pending[h.TTL]; dup {
		return
	}
	s.pending[h.TTL] = h

	for {
		hop, ok := s.pending[s.next]
		if !ok {
			return
		}
		delete(s.pending, s.next)
		s.next++
		s.emit(hop)
		if hop.Reached {
			s.done = true
			s.pending = nil
			return
		}
	}
}

// reached reports whether a hop that reached the target was emitted.
func (s *sequencer) reached() bool {
	return s.done
}
