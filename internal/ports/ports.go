package ports

import (
	"context"
	"image"

	"github.com/forPelevin/shotsplit/internal/types"
)

type FrameSource interface {
	Probe(ctx context.Context, path string) (types.VideoInfo, error)
	OpenFrames(ctx context.Context, info types.VideoInfo) (FrameStream, error)
}

// FrameStream yields decoded frames in order. Next returns io.EOF once the
// stream is exhausted.
type FrameStream interface {
	Next() (image.Image, error)
	Close() error
}

type Hasher interface {
	Hash(img image.Image, size int) (types.Hash, error)
}

type ClipWriter interface {
	RenderClip(ctx context.Context, inVideo string, tc types.TimecodedShot, fps float64, outPath string) error
}
