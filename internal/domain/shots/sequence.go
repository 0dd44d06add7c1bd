package shots

import (
	"fmt"

	"github.com/forPelevin/shotsplit/internal/types"
)

// Sequencer folds an ordered stream of frame hashes into distance records.
// It keeps only the previous hash.
type Sequencer struct {
	prev    types.Hash
	hasPrev bool
}

// Push records h as the hash of frame. The returned record compares frame
// with the frame pushed before it; ok is false when there is no such frame.
func (s *Sequencer) Push(frame int, h types.Hash) (rec types.DistanceRecord, ok bool, err error) {
	prev, hadPrev := s.prev, s.hasPrev
	s.prev, s.hasPrev = h, true
	if !hadPrev {
		return types.DistanceRecord{}, false, nil
	}
	d, err := prev.Distance(h)
	if err != nil {
		return types.DistanceRecord{}, false, fmt.Errorf("frame %d: %w", frame, err)
	}
	return types.DistanceRecord{Frame: frame, Distance: d}, true, nil
}

// Reset forgets the previous hash so the next push starts a new run.
func (s *Sequencer) Reset() {
	s.prev, s.hasPrev = nil, false
}
