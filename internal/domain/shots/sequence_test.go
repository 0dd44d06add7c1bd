package shots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/shotsplit/internal/types"
)

func TestSequencer_SkipsFirstFrame(t *testing.T) {
	var s Sequencer
	_, ok, err := s.Push(1, types.Hash{0})
	require.NoError(t, err)
	assert.False(t, ok)

	rec, ok, err := s.Push(2, types.Hash{0b1011})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.DistanceRecord{Frame: 2, Distance: 3}, rec)

	rec, ok, err = s.Push(3, types.Hash{0b0011})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.DistanceRecord{Frame: 3, Distance: 1}, rec)
}

func TestSequencer_DistanceWithinBitWidth(t *testing.T) {
	hashes := []types.Hash{
		{0},
		{^uint64(0)},
		{0x00ff00ff00ff00ff},
		{0},
		{^uint64(0)},
	}
	var s Sequencer
	n := 0
	for i, h := range hashes {
		rec, ok, err := s.Push(i+1, h)
		require.NoError(t, err)
		if !ok {
			continue
		}
		n++
		assert.GreaterOrEqual(t, rec.Distance, 0)
		assert.LessOrEqual(t, rec.Distance, h.Bits())
	}
	assert.Equal(t, len(hashes)-1, n)
}

func TestSequencer_Reset(t *testing.T) {
	var s Sequencer
	_, _, _ = s.Push(1, types.Hash{1})
	s.Reset()
	_, ok, err := s.Push(2, types.Hash{2})
	require.NoError(t, err)
	assert.False(t, ok, "no distance may span a reset")

	_, ok, err = s.Push(3, types.Hash{2})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSequencer_WidthMismatch(t *testing.T) {
	var s Sequencer
	_, _, _ = s.Push(1, types.Hash{1})
	_, ok, err := s.Push(2, types.Hash{1, 2})
	require.Error(t, err)
	assert.False(t, ok)

	// the wider hash becomes the new reference
	rec, ok, err := s.Push(3, types.Hash{1, 3})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Distance)
}
