package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/shotsplit/internal/ports"
	"github.com/forPelevin/shotsplit/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames",
		"-print_format", "json",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.VideoInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(exitErr.Stderr))
		}
		return types.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(path, b)
}

type probeResult struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
}

func parseProbe(path string, b []byte) (types.VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(b, &probe); err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return types.VideoInfo{}, fmt.Errorf("no video stream in %s", path)
	}
	s := probe.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return types.VideoInfo{}, fmt.Errorf("invalid video geometry %dx%d", s.Width, s.Height)
	}
	fps := parseFrameRate(s.AvgFrameRate)
	if fps <= 0 {
		fps = parseFrameRate(s.RFrameRate)
	}
	// nb_frames is absent for some containers; 0 means unknown
	n, _ := strconv.Atoi(s.NbFrames)
	return types.VideoInfo{
		Path:       path,
		Width:      s.Width,
		Height:     s.Height,
		FrameCount: n,
		FPS:        fps,
	}, nil
}

// parseFrameRate reads "30000/1001" or "25" style rates.
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func (a *Adapter) OpenFrames(ctx context.Context, info types.VideoInfo) (ports.FrameStream, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid video geometry %dx%d", info.Width, info.Height)
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-v", "error",
		"-i", info.Path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	)
	s, err := startFrameStream(cmd, cancel, info.Width, info.Height)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// startFrameStream runs cmd and reads width*height gray frames from its
// stdout. cancel must kill cmd.
func startFrameStream(cmd *exec.Cmd, cancel context.CancelFunc, width, height int) (*frameStream, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg decode frames: %w", err)
	}
	return &frameStream{
		cmd:    cmd,
		cancel: cancel,
		r:      bufio.NewReaderSize(stdout, width*height),
		stderr: &stderr,
		width:  width,
		height: height,
	}, nil
}

type frameStream struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	r       *bufio.Reader
	stderr  *bytes.Buffer
	width   int
	height  int
	drained bool
	closed  bool
}

func (s *frameStream) Next() (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	if _, err := io.ReadFull(s.r, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			s.drained = true
		}
		return nil, err
	}
	return img, nil
}

// Close stops ffmpeg. A decoder failure is only reported when the stream was
// read to the end, since closing early kills the process.
func (s *frameStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.drained {
		s.cancel()
		_ = s.cmd.Wait()
		return nil
	}
	defer s.cancel()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decode frames: %w\n%s", err, s.stderr.String())
	}
	return nil
}

func (a *Adapter) RenderClip(ctx context.Context, inVideo string, tc types.TimecodedShot, fps float64, outPath string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(tc.In),
		"-to", fmtSeconds(tc.Out),
		"-i", inVideo,
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
