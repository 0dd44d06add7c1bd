package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/forPelevin/shotsplit/internal/domain/shots"
	"github.com/forPelevin/shotsplit/internal/ports"
	"github.com/forPelevin/shotsplit/internal/types"
)

// ErrInvalidConfig marks configuration rejected before processing starts.
var ErrInvalidConfig = errors.New("invalid configuration")

type Deps struct {
	Frames ports.FrameSource
	Hasher ports.Hasher
	Clips  ports.ClipWriter
	Logger *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Usecase{d: d}
}

// FrameEvent is passed to observers once per decoded frame.
type FrameEvent struct {
	Frame int
	Total int
	Cuts  int
	Image image.Image
}

// FrameObserver returns false to end the hashing pass early.
type FrameObserver func(FrameEvent) bool

type SegmentInput struct {
	Video         string
	MinShotLength int
	Threshold     int
	// FPS overrides the probed frame rate when > 0.
	FPS      float64
	HashSize int
	OnFrame  FrameObserver
	// Stop ends the hashing pass when closed. Unlike cancelling ctx it
	// leaves the extraction pass free to run.
	Stop <-chan struct{}
}

type Segmentation struct {
	Info       types.VideoInfo
	FPS        float64
	Frames     int
	Cuts       []int
	Shots      []types.Shot
	Timecodes  []types.TimecodedShot
	Stats      shots.Stats
	HashFaults int
}

func (u Usecase) Segment(ctx context.Context, in SegmentInput) (Segmentation, error) {
	log := u.d.Logger
	info, err := u.d.Frames.Probe(ctx, in.Video)
	if err != nil {
		return Segmentation{}, err
	}
	fps := info.FPS
	if in.FPS > 0 {
		fps = in.FPS
	}
	if fps <= 0 {
		return Segmentation{}, fmt.Errorf("%w: frame rate of %s is unknown, set an fps override", ErrInvalidConfig, in.Video)
	}
	log.Debug("probed video", "path", in.Video, "width", info.Width, "height", info.Height,
		"frames", info.FrameCount, "fps", info.FPS)

	stream, err := u.d.Frames.OpenFrames(ctx, info)
	if err != nil {
		return Segmentation{}, err
	}

	var (
		seq    shots.Sequencer
		det    = shots.NewDetector(in.Threshold)
		frame  int
		faults int
	)
	for {
		if ctx.Err() != nil {
			log.Warn("hashing interrupted", "frame", frame, "err", ctx.Err())
			break
		}
		if stopped(in.Stop) {
			log.Warn("hashing stopped", "frame", frame)
			break
		}
		img, err := stream.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("frame stream ended early", "frame", frame, "err", err)
			}
			break
		}
		frame++

		h, err := u.d.Hasher.Hash(img, in.HashSize)
		if err != nil {
			faults++
			seq.Reset()
			log.Debug("hash failed", "frame", frame, "err", err)
		} else if rec, ok, err := seq.Push(frame, h); err != nil {
			faults++
			log.Debug("distance failed", "frame", frame, "err", err)
		} else if ok && det.Observe(rec) {
			log.Debug("cut", "frame", rec.Frame-1, "distance", rec.Distance)
		}

		if in.OnFrame != nil && !in.OnFrame(FrameEvent{Frame: frame, Total: info.FrameCount, Cuts: det.Count(), Image: img}) {
			log.Info("hashing stopped by observer", "frame", frame)
			break
		}
	}
	if err := stream.Close(); err != nil {
		if frame == 0 {
			return Segmentation{}, err
		}
		log.Warn("frame decoder exited with error", "frame", frame, "err", err)
	}

	cuts := det.Cuts()
	shotList, stats := shots.Segment(cuts, in.MinShotLength)
	if stats.Degenerate > 0 || stats.Merged > 0 {
		log.Info("cuts absorbed by segmentation", "degenerate", stats.Degenerate, "merged", stats.Merged)
	}
	if faults > 0 {
		log.Warn("frames without hash", "count", faults)
	}
	log.Info("segmentation done", "frames", frame, "cuts", len(cuts), "shots", len(shotList))

	return Segmentation{
		Info:       info,
		FPS:        fps,
		Frames:     frame,
		Cuts:       cuts,
		Shots:      shotList,
		Timecodes:  shots.Timecodes(shotList, fps),
		Stats:      stats,
		HashFaults: faults,
	}, nil
}

func stopped(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

type ExtractInput struct {
	Video string
	Shots []types.Shot
	FPS   float64
	// Destination is a directory. When empty no files are written.
	Destination string
	OnClip      func(done, total int)
}

// Extract maps shots to timecodes and renders one clip per shot. Without a
// destination it returns the clip handles only.
func (u Usecase) Extract(ctx context.Context, in ExtractInput) ([]types.Clip, error) {
	if in.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be > 0", ErrInvalidConfig)
	}
	tcs := shots.Timecodes(in.Shots, in.FPS)
	out := make([]types.Clip, 0, len(in.Shots))
	for i, s := range in.Shots {
		c := types.Clip{Index: i, Source: in.Video, Shot: s, TC: tcs[i]}
		if in.Destination != "" {
			c.Path = ClipPath(in.Destination, in.Video, i)
			if err := u.d.Clips.RenderClip(ctx, in.Video, c.TC, in.FPS, c.Path); err != nil {
				return nil, fmt.Errorf("clip %d: %w", i, err)
			}
			u.d.Logger.Debug("clip written", "index", i, "path", c.Path, "tcin", c.TC.In, "tcout", c.TC.Out)
		}
		out = append(out, c)
		if in.OnClip != nil {
			in.OnClip(i+1, len(in.Shots))
		}
	}
	return out, nil
}

// ClipPath names clip i of video as <basename>-clip-<i><ext> inside dir.
func ClipPath(dir, video string, i int) string {
	ext := filepath.Ext(video)
	name := strings.TrimSuffix(filepath.Base(video), ext)
	return filepath.Join(dir, fmt.Sprintf("%s-clip-%d%s", name, i, ext))
}

type Input struct {
	SegmentInput
	Destination string
	OnClip      func(done, total int)
}

type Result struct {
	Segmentation Segmentation
	Clips        []types.Clip
	Manifest     types.Manifest
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	seg, err := u.Segment(ctx, in.SegmentInput)
	if err != nil {
		return Result{}, err
	}
	clips, err := u.Extract(ctx, ExtractInput{
		Video:       in.Video,
		Shots:       seg.Shots,
		FPS:         seg.FPS,
		Destination: in.Destination,
		OnClip:      in.OnClip,
	})
	if err != nil {
		return Result{}, err
	}

	m := types.Manifest{
		Input:         in.Video,
		FPS:           seg.FPS,
		FrameCount:    seg.Frames,
		Threshold:     in.Threshold,
		MinShotLength: in.MinShotLength,
		HashSize:      in.HashSize,
		Shots:         make([]types.ManifestShot, 0, len(clips)),
	}
	for _, c := range clips {
		ms := types.ManifestShot{
			Index:      c.Index,
			StartFrame: c.Shot.Start,
			EndFrame:   c.Shot.End,
			TCIn:       c.TC.In,
			TCOut:      c.TC.Out,
		}
		if c.Path != "" {
			ms.File = filepath.ToSlash(filepath.Base(c.Path))
		}
		m.Shots = append(m.Shots, ms)
	}
	return Result{Segmentation: seg, Clips: clips, Manifest: m}, nil
}
