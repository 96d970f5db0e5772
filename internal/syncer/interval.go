// Package syncer implements the interval-based synchronizer: the tip
// follower that tracks the chain head, and the history filler worker pool
// that drains the interval queue, scanning ranges and re-queueing gaps.
package syncer

import (
	"github.com/0xkanth/solana-confirmation-service/internal/queue"
)

// Split breaks [start, end] into ascending, contiguous chunks of at most
// preferred slots each. The last chunk may be smaller. Both bounds are
// inclusive; start must be <= end.
func Split(start, end, preferred uint64) []queue.Interval {
	if preferred == 0 {
		preferred = 1
	}
	var chunks []queue.Interval
	for s := start; s <= end; {
		e := s + preferred - 1
		if e > end {
			e = end
		}
		chunks = append(chunks, queue.Interval{Start: s, End: e})
		if e == end {
			break
		}
		s = e + 1
	}
	return chunks
}

// Gaps computes the sub-intervals of iv not covered by the sorted,
// strictly increasing confirmed slot list c, per spec.md §4.5: a leading
// gap before the first confirmed slot, a gap between each pair of
// confirmed slots that are not adjacent, and a trailing gap after the
// last confirmed slot. Gaps smaller than minSize are dropped rather than
// returned, matching spec.md's fragmentation-control rule.
func Gaps(iv queue.Interval, confirmed []uint64, minSize uint64) []queue.Interval {
	var gaps []queue.Interval
	add := func(s, e uint64) {
		if s > e {
			return
		}
		if e-s+1 >= minSize {
			gaps = append(gaps, queue.Interval{Start: s, End: e})
		}
	}

	if len(confirmed) == 0 {
		add(iv.Start, iv.End)
		return gaps
	}

	if confirmed[0] > iv.Start {
		add(iv.Start, confirmed[0]-1)
	}
	for i := 0; i+1 < len(confirmed); i++ {
		if confirmed[i+1]-confirmed[i] > 1 {
			add(confirmed[i]+1, confirmed[i+1]-1)
		}
	}
	last := confirmed[len(confirmed)-1]
	if last < iv.End {
		add(last+1, iv.End)
	}

	return gaps
}
