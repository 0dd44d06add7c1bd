package shots

import "github.com/forPelevin/shotsplit/internal/types"

// Timecode maps a shot to seconds. A shot opening on frame 1 starts at 0.
func Timecode(s types.Shot, fps float64) types.TimecodedShot {
	tc := types.TimecodedShot{Out: float64(s.End) / fps}
	if s.Start != 1 {
		tc.In = float64(s.Start) / fps
	}
	return tc
}

func Timecodes(shots []types.Shot, fps float64) []types.TimecodedShot {
	out := make([]types.TimecodedShot, 0, len(shots))
	for _, s := range shots {
		out = append(out, Timecode(s, fps))
	}
	return out
}
