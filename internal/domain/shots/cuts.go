package shots

import (
	"slices"

	"github.com/forPelevin/shotsplit/internal/types"
)

const DefaultThreshold = 10

// Detector turns distance records into cut points. A distance strictly above
// the threshold places a cut on the earlier frame of the pair.
type Detector struct {
	threshold int
	cuts      []int
	last      int
	seen      bool
}

func NewDetector(threshold int) *Detector {
	return &Detector{threshold: threshold}
}

// Observe consumes one record and reports whether it produced a cut.
func (d *Detector) Observe(r types.DistanceRecord) bool {
	d.last, d.seen = r.Frame, true
	if r.Distance <= d.threshold {
		return false
	}
	d.cuts = append(d.cuts, r.Frame-1)
	return true
}

// Count is the number of cuts detected so far, not counting the closing cut.
func (d *Detector) Count() int { return len(d.cuts) }

// Cuts returns the detected cuts followed by the last observed frame.
// It returns nil when no record was observed.
func (d *Detector) Cuts() []int {
	if !d.seen {
		return nil
	}
	return append(slices.Clip(d.cuts), d.last)
}

// Cuts runs a Detector over records.
func Cuts(records []types.DistanceRecord, threshold int) []int {
	d := NewDetector(threshold)
	for _, r := range records {
		d.Observe(r)
	}
	return d.Cuts()
}
