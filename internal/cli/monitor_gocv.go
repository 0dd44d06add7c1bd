//go:build gocv

package cli

import (
	"image"
	"log/slog"

	"github.com/forPelevin/shotsplit/internal/ports/adapters/opencv"
)

func newMonitor(title string, log *slog.Logger) (func(image.Image) bool, func() error, error) {
	m := opencv.NewMonitor(title, log)
	return m.Show, m.Close, nil
}
