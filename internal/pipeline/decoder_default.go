//go:build !gocv

package pipeline

import (
	"errors"

	"github.com/forPelevin/shotsplit/internal/ports"
)

func openCVSource() (ports.FrameSource, error) {
	return nil, errors.New("opencv decoder requires a build with -tags gocv")
}
