//go:build !gocv

package cli

import (
	"errors"
	"image"
	"log/slog"
)

func newMonitor(string, *slog.Logger) (func(image.Image) bool, func() error, error) {
	return nil, nil, errors.New("--monitor requires a build with -tags gocv")
}
