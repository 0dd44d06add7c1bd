//go:build gocv

package pipeline

import (
	"github.com/forPelevin/shotsplit/internal/ports"
	"github.com/forPelevin/shotsplit/internal/ports/adapters/opencv"
)

func openCVSource() (ports.FrameSource, error) {
	return opencv.New(), nil
}

var _ ports.FrameSource = (*opencv.Adapter)(nil)
