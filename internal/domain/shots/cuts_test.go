package shots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forPelevin/shotsplit/internal/types"
)

func records(pairs ...[2]int) []types.DistanceRecord {
	out := make([]types.DistanceRecord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, types.DistanceRecord{Frame: p[0], Distance: p[1]})
	}
	return out
}

func TestCuts_Table(t *testing.T) {
	tests := []struct {
		name      string
		records   []types.DistanceRecord
		threshold int
		want      []int
	}{
		{
			name:      "mixed",
			records:   records([2]int{2, 0}, [2]int{3, 15}, [2]int{4, 2}, [2]int{5, 20}, [2]int{6, 1}),
			threshold: 10,
			want:      []int{2, 4, 6},
		},
		{
			name:      "equal to threshold is not a cut",
			records:   records([2]int{2, 10}, [2]int{3, 10}),
			threshold: 10,
			want:      []int{3},
		},
		{
			name:      "adjacent cuts kept",
			records:   records([2]int{2, 30}, [2]int{3, 30}, [2]int{4, 30}),
			threshold: 10,
			want:      []int{1, 2, 3, 4},
		},
		{
			name:      "cut on last frame duplicates closing cut",
			records:   records([2]int{2, 0}, [2]int{3, 40}),
			threshold: 10,
			want:      []int{2, 3},
		},
		{
			name:      "empty",
			records:   nil,
			threshold: 10,
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cuts(tt.records, tt.threshold))
		})
	}
}

func TestCuts_LastIsFinalFrameForAnyThreshold(t *testing.T) {
	recs := records([2]int{2, 5}, [2]int{3, 64}, [2]int{4, 0}, [2]int{5, 33}, [2]int{6, 12})
	for _, threshold := range []int{1, 5, 10, 32, 63, 64} {
		got := Cuts(recs, threshold)
		if assert.NotEmpty(t, got) {
			assert.Equal(t, 6, got[len(got)-1])
		}
		assert.IsNonDecreasing(t, got)
	}
}

func TestDetector_Count(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	assert.True(t, d.Observe(types.DistanceRecord{Frame: 2, Distance: 11}))
	assert.False(t, d.Observe(types.DistanceRecord{Frame: 3, Distance: 10}))
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, []int{1, 3}, d.Cuts())
	// Cuts does not consume the detector
	assert.Equal(t, []int{1, 3}, d.Cuts())
}
