package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/shotsplit/internal/domain/shots"
	"github.com/forPelevin/shotsplit/internal/ports"
	"github.com/forPelevin/shotsplit/internal/ports/adapters/dhash"
	"github.com/forPelevin/shotsplit/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/shotsplit/internal/types"
	"github.com/forPelevin/shotsplit/internal/usecase"
)

var ErrInvalidConfig = usecase.ErrInvalidConfig

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	DecoderFFmpeg = "ffmpeg"
	DecoderOpenCV = "opencv"
)

type Config struct {
	Input string
	// Destination is the clip directory. Empty means no clips are written.
	Destination   string
	Threshold     int
	MinShotLength int
	// FPS overrides the probed frame rate when > 0.
	FPS            float64
	HashSize       int
	ManifestFormat string
	Decoder        string

	FFmpegPath  string
	FFprobePath string

	Logger  *slog.Logger
	OnFrame usecase.FrameObserver
	OnClip  func(done, total int)
	// Stop ends hashing early; shots found so far are still extracted.
	Stop <-chan struct{}
}

// Defaults returns a Config with the stock thresholds.
func Defaults() Config {
	return Config{
		Threshold:      shots.DefaultThreshold,
		MinShotLength:  shots.DefaultMinShotLength,
		HashSize:       dhash.DefaultSize,
		ManifestFormat: FormatJSON,
		Decoder:        DecoderFFmpeg,
	}
}

func (c Config) Validate() error {
	if c.Input == "" {
		return invalid("input is empty")
	}
	st, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("%w: stat input: %w", ErrInvalidConfig, err)
	}
	if st.IsDir() {
		return invalid("input %s is a directory", c.Input)
	}
	if c.Threshold <= 0 {
		return invalid("threshold must be > 0")
	}
	if c.MinShotLength <= 0 {
		return invalid("minimum shot length must be > 0")
	}
	if c.FPS < 0 {
		return invalid("fps must be > 0")
	}
	if c.HashSize <= 0 || c.HashSize%8 != 0 {
		return invalid("hash size must be a positive multiple of 8")
	}
	switch c.ManifestFormat {
	case FormatJSON, FormatYAML:
	default:
		return invalid("unknown manifest format %q", c.ManifestFormat)
	}
	switch c.Decoder {
	case DecoderFFmpeg, DecoderOpenCV:
	default:
		return invalid("unknown decoder %q", c.Decoder)
	}
	if c.Destination != "" {
		if st, err := os.Stat(c.Destination); err == nil && !st.IsDir() {
			return invalid("output %s is not a directory", c.Destination)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Run validates cfg, detects shots and, when a destination is set, writes
// the clips and a manifest next to them.
func Run(ctx context.Context, cfg Config) (usecase.Result, error) {
	if err := cfg.Validate(); err != nil {
		return usecase.Result{}, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	var frames ports.FrameSource = v
	if cfg.Decoder == DecoderOpenCV {
		src, err := openCVSource()
		if err != nil {
			return usecase.Result{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		frames = src
	}

	uc := usecase.New(usecase.Deps{
		Frames: frames,
		Hasher: dhash.New(),
		Clips:  v,
		Logger: log,
	})

	if cfg.Destination != "" {
		if err := os.MkdirAll(cfg.Destination, 0o755); err != nil {
			return usecase.Result{}, err
		}
		log.Info("output dir", "path", cfg.Destination)
	}

	res, err := uc.Run(ctx, usecase.Input{
		SegmentInput: usecase.SegmentInput{
			Video:         cfg.Input,
			MinShotLength: cfg.MinShotLength,
			Threshold:     cfg.Threshold,
			FPS:           cfg.FPS,
			HashSize:      cfg.HashSize,
			OnFrame:       cfg.OnFrame,
			Stop:          cfg.Stop,
		},
		Destination: cfg.Destination,
		OnClip:      cfg.OnClip,
	})
	if err != nil {
		return usecase.Result{}, err
	}

	if cfg.Destination == "" {
		return res, nil
	}
	b, err := EncodeManifest(res.Manifest, cfg.ManifestFormat)
	if err != nil {
		return usecase.Result{}, err
	}
	manifestPath := filepath.Join(cfg.Destination, "manifest."+cfg.ManifestFormat)
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return usecase.Result{}, err
	}
	log.Info("manifest written", "shots", len(res.Manifest.Shots), "path", manifestPath)
	return res, nil
}

// EncodeManifest renders m as json, yaml or the plain start:end listing.
func EncodeManifest(m types.Manifest, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal manifest: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		b, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal manifest: %w", err)
		}
		return b, nil
	case FormatText:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Detected %d shots:\n", len(m.Shots))
		for _, s := range m.Shots {
			fmt.Fprintf(&sb, "%d:%d\n", s.StartFrame, s.EndFrame)
		}
		return []byte(sb.String()), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ensure adapters implement ports
var _ ports.FrameSource = (*ffmpeg.Adapter)(nil)
var _ ports.ClipWriter = (*ffmpeg.Adapter)(nil)
var _ ports.Hasher = (*dhash.Adapter)(nil)
