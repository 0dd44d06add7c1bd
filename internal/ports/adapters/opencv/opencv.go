//go:build gocv

package opencv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/forPelevin/shotsplit/internal/ports"
	"github.com/forPelevin/shotsplit/internal/types"
)

// Adapter decodes frames with OpenCV instead of an ffmpeg subprocess.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Probe(_ context.Context, path string) (types.VideoInfo, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("opencv open %s: %w", path, err)
	}
	defer vc.Close()
	if !vc.IsOpened() {
		return types.VideoInfo{}, fmt.Errorf("opencv open %s: not a readable video", path)
	}
	return types.VideoInfo{
		Path:       path,
		Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FrameCount: int(vc.Get(gocv.VideoCaptureFrameCount)),
		FPS:        vc.Get(gocv.VideoCaptureFPS),
	}, nil
}

func (a *Adapter) OpenFrames(ctx context.Context, info types.VideoInfo) (ports.FrameStream, error) {
	vc, err := gocv.VideoCaptureFile(info.Path)
	if err != nil {
		return nil, fmt.Errorf("opencv open %s: %w", info.Path, err)
	}
	return &frameStream{ctx: ctx, vc: vc, mat: gocv.NewMat()}, nil
}

type frameStream struct {
	ctx context.Context
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (s *frameStream) Next() (image.Image, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if !s.vc.Read(&s.mat) || s.mat.Empty() {
		return nil, io.EOF
	}
	return s.mat.ToImage()
}

func (s *frameStream) Close() error {
	return errors.Join(s.mat.Close(), s.vc.Close())
}

// display is the part of *gocv.Window the monitor uses.
type display interface {
	IMShow(img gocv.Mat)
	WaitKey(delay int) int
	Close() error
}

// Monitor shows decoded frames in a window. Pressing q asks the hashing
// pass to stop.
type Monitor struct {
	win     display
	toMat   func(image.Image) (gocv.Mat, error)
	log     *slog.Logger
	dropped int
}

func NewMonitor(title string, log *slog.Logger) *Monitor {
	return newMonitor(gocv.NewWindow(title), gocv.ImageToMatRGB, log)
}

func newMonitor(win display, toMat func(image.Image) (gocv.Mat, error), log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{win: win, toMat: toMat, log: log}
}

// Show displays img and reports whether the caller should keep going.
// Frames that cannot be converted are skipped and counted.
func (m *Monitor) Show(img image.Image) bool {
	mat, err := m.toMat(img)
	if err != nil {
		m.dropped++
		m.log.Debug("preview frame dropped", "dropped", m.dropped, "err", err)
		return true
	}
	defer mat.Close()
	m.win.IMShow(mat)
	return m.win.WaitKey(1)&0xFF != 'q'
}

// Dropped is the number of frames that could not be shown.
func (m *Monitor) Dropped() int { return m.dropped }

func (m *Monitor) Close() error {
	if m.dropped > 0 {
		m.log.Warn("preview skipped frames", "count", m.dropped)
	}
	return m.win.Close()
}
