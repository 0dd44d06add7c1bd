package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/forPelevin/shotsplit/internal/pipeline"
	"github.com/forPelevin/shotsplit/internal/usecase"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("output")
	shotLength, _ := cmd.Flags().GetInt("shot-length")
	threshold, _ := cmd.Flags().GetInt("threshold")
	fps, _ := cmd.Flags().GetFloat64("fps")
	monitor, _ := cmd.Flags().GetBool("monitor")
	format, _ := cmd.Flags().GetString("format")
	manifest, _ := cmd.Flags().GetString("manifest")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	verbose, _ := cmd.Flags().GetBool("verbose")
	hashSize, _ := cmd.Flags().GetInt("hash-size")
	decoder, _ := cmd.Flags().GetString("decoder")

	switch format {
	case pipeline.FormatText, pipeline.FormatJSON, pipeline.FormatYAML:
	default:
		return fmt.Errorf("config: unknown format %q", format)
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	logger := newLogger(verbose)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	stopHashing := watchInterrupts(ctx, sigs, cancel, logger)

	cfg := pipeline.Config{
		Input:          absIn,
		Destination:    outDir,
		Threshold:      threshold,
		MinShotLength:  shotLength,
		FPS:            fps,
		HashSize:       hashSize,
		ManifestFormat: manifest,
		Decoder:        decoder,

		FFmpegPath:  getenvDefault("SHOTSPLIT_FFMPEG", "ffmpeg"),
		FFprobePath: getenvDefault("SHOTSPLIT_FFPROBE", "ffprobe"),

		Logger: logger,
		Stop:   stopHashing,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var observers []usecase.FrameObserver
	if !noProgress {
		hp := &hashProgress{}
		defer hp.finish()
		observers = append(observers, hp.observe)
		cfg.OnClip = clipProgress()
	}
	if monitor {
		show, closeMonitor, err := newMonitor("shotsplit", logger)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		defer func() { _ = closeMonitor() }()
		observers = append(observers, func(ev usecase.FrameEvent) bool { return show(ev.Image) })
	}
	cfg.OnFrame = chainObservers(observers)

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	b, err := pipeline.EncodeManifest(res.Manifest, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
}

// watchInterrupts closes the returned channel on the first signal so hashing
// ends and the shots found so far are still cut. A second signal cancels ctx.
func watchInterrupts(ctx context.Context, sigs <-chan os.Signal, cancel context.CancelFunc, log *slog.Logger) <-chan struct{} {
	stop := make(chan struct{})
	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
			return
		}
		log.Warn("interrupted, finishing with the frames hashed so far (interrupt again to abort)")
		close(stop)
		select {
		case <-sigs:
			log.Warn("aborting")
			cancel()
		case <-ctx.Done():
		}
	}()
	return stop
}

// chainObservers calls every observer and stops once any of them asks to.
func chainObservers(obs []usecase.FrameObserver) usecase.FrameObserver {
	if len(obs) == 0 {
		return nil
	}
	return func(ev usecase.FrameEvent) bool {
		keep := true
		for _, o := range obs {
			if !o(ev) {
				keep = false
			}
		}
		return keep
	}
}

type hashProgress struct {
	bar *progressbar.ProgressBar
}

func (p *hashProgress) observe(ev usecase.FrameEvent) bool {
	if p.bar == nil {
		total := ev.Total
		if total <= 0 {
			total = -1
		}
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Hashing frames"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	p.bar.Describe(fmt.Sprintf("Hashing frames [%d] cuts %d", ev.Frame, ev.Cuts))
	_ = p.bar.Add(1)
	return true
}

func (p *hashProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func clipProgress() func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Clipping shots"),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
			)
		}
		_ = bar.Set(done)
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
