package shots

import "github.com/forPelevin/shotsplit/internal/types"

const DefaultMinShotLength = 6

// Stats counts cut points that did not close a shot.
type Stats struct {
	// Degenerate candidates had end <= start and were dropped.
	Degenerate int
	// Merged cuts were too close to the previous shot and were absorbed
	// into the following one.
	Merged int
}

type segmentState struct {
	lastCut int
	shots   []types.Shot
	stats   Stats
}

// step applies one cut. lastCut only advances when a shot is emitted.
func (st segmentState) step(cut, minLength int) segmentState {
	if cut-st.lastCut <= minLength {
		st.stats.Merged++
		return st
	}
	shot := types.Shot{Start: st.lastCut + 1, End: cut - 1}
	if shot.End <= shot.Start {
		st.stats.Degenerate++
		return st
	}
	st.shots = append(st.shots, shot)
	st.lastCut = cut
	return st
}

// Segment converts ascending cut points into shots longer than minLength
// frames. Duplicate or adjacent cuts are tolerated.
func Segment(cuts []int, minLength int) ([]types.Shot, Stats) {
	st := segmentState{lastCut: -1}
	for _, c := range cuts {
		st = st.step(c, minLength)
	}
	return st.shots, st.stats
}
