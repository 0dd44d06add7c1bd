package types

import (
	"errors"
	"math/bits"
)

// Hash is a fixed-width perceptual fingerprint packed into 64-bit words.
type Hash []uint64

// Bits returns the bit width of the hash.
func (h Hash) Bits() int { return len(h) * 64 }

// Distance returns the Hamming distance between h and o.
func (h Hash) Distance(o Hash) (int, error) {
	if len(h) != len(o) {
		return 0, errors.New("hash width mismatch")
	}
	d := 0
	for i := range h {
		d += bits.OnesCount64(h[i] ^ o[i])
	}
	return d, nil
}

// DistanceRecord holds the distance between Frame and the frame before it.
type DistanceRecord struct {
	Frame    int
	Distance int
}

// Shot is an inclusive frame range.
type Shot struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

type TimecodedShot struct {
	In  float64 `json:"tcin" yaml:"tcin"`
	Out float64 `json:"tcout" yaml:"tcout"`
}

type VideoInfo struct {
	Path       string
	Width      int
	Height     int
	FrameCount int
	FPS        float64
}

// Clip is one extracted shot. Path is empty for in-memory handles.
type Clip struct {
	Index  int
	Source string
	Shot   Shot
	TC     TimecodedShot
	Path   string
}

type Manifest struct {
	Input         string         `json:"input" yaml:"input"`
	FPS           float64        `json:"fps" yaml:"fps"`
	FrameCount    int            `json:"frame_count" yaml:"frame_count"`
	Threshold     int            `json:"threshold" yaml:"threshold"`
	MinShotLength int            `json:"minimum_shot_length" yaml:"minimum_shot_length"`
	HashSize      int            `json:"hash_size" yaml:"hash_size"`
	Shots         []ManifestShot `json:"shots" yaml:"shots"`
}

type ManifestShot struct {
	Index      int     `json:"index" yaml:"index"`
	StartFrame int     `json:"start_frame" yaml:"start_frame"`
	EndFrame   int     `json:"end_frame" yaml:"end_frame"`
	TCIn       float64 `json:"tcin" yaml:"tcin"`
	TCOut      float64 `json:"tcout" yaml:"tcout"`
	File       string  `json:"file,omitempty" yaml:"file,omitempty"`
}
