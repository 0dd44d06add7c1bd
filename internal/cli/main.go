package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/shotsplit/internal/pipeline"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	def := pipeline.Defaults()
	root := &cobra.Command{
		Use:          "shotsplit <video>",
		Short:        "Detect cuts in a video and split it into shots",
		Long:         "shotsplit detects cuts by comparing difference hashes of consecutive frames\nand thresholding the Hamming distance between them.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().StringP("output", "o", "", "Directory for the cut clips (no clips are written when empty)")
	root.Flags().IntP("shot-length", "s", def.MinShotLength, "Minimum shot length in frames")
	root.Flags().IntP("threshold", "t", def.Threshold, "Hamming distance threshold")
	root.Flags().Float64P("fps", "f", 0, "Frame rate override (default: probed from the video)")
	root.Flags().BoolP("monitor", "m", false, "Show video monitor while hashing (press q to stop)")
	root.Flags().String("format", pipeline.FormatText, "Result format on stdout: text, json or yaml")
	root.Flags().String("manifest", def.ManifestFormat, "Manifest format written next to the clips: json or yaml")
	root.Flags().Bool("no-progress", false, "Disable progress bars")
	root.Flags().BoolP("verbose", "v", false, "Debug logging")

	// Hidden tuning flags (internal)
	root.Flags().Int("hash-size", def.HashSize, "Difference hash size (bits = size*size)")
	root.Flags().String("decoder", def.Decoder, "Frame decoder: ffmpeg or opencv")
	_ = root.Flags().MarkHidden("hash-size")
	_ = root.Flags().MarkHidden("decoder")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
