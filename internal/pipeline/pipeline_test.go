package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/shotsplit/internal/types"
)

func writeInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input fixture: %v", err)
	}
	return p
}

func TestValidate(t *testing.T) {
	input := writeInput(t)
	fileOut := writeInput(t)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "fps override", mutate: func(c *Config) { c.FPS = 29.97 }},
		{name: "empty input", mutate: func(c *Config) { c.Input = "" }, wantErr: "input is empty"},
		{name: "missing input", mutate: func(c *Config) { c.Input = input + ".nope" }, wantErr: "stat input"},
		{name: "input dir", mutate: func(c *Config) { c.Input = filepath.Dir(input) }, wantErr: "is a directory"},
		{name: "zero threshold", mutate: func(c *Config) { c.Threshold = 0 }, wantErr: "threshold must be > 0"},
		{name: "negative shot length", mutate: func(c *Config) { c.MinShotLength = -1 }, wantErr: "minimum shot length must be > 0"},
		{name: "zero shot length", mutate: func(c *Config) { c.MinShotLength = 0 }, wantErr: "minimum shot length must be > 0"},
		{name: "negative fps", mutate: func(c *Config) { c.FPS = -25 }, wantErr: "fps must be > 0"},
		{name: "odd hash size", mutate: func(c *Config) { c.HashSize = 7 }, wantErr: "hash size"},
		{name: "manifest format", mutate: func(c *Config) { c.ManifestFormat = "xml" }, wantErr: "unknown manifest format"},
		{name: "decoder", mutate: func(c *Config) { c.Decoder = "vlc" }, wantErr: "unknown decoder"},
		{name: "output is file", mutate: func(c *Config) { c.Destination = fileOut }, wantErr: "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Input = input
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_RejectsBeforeDecoding(t *testing.T) {
	cfg := Defaults()
	cfg.Input = writeInput(t)
	cfg.Threshold = -1
	// a bogus ffprobe path would fail if decoding started
	cfg.FFprobePath = filepath.Join(t.TempDir(), "missing-ffprobe")
	_, err := Run(context.Background(), cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func testManifest() types.Manifest {
	return types.Manifest{
		Input:         "in.mp4",
		FPS:           25,
		FrameCount:    6,
		Threshold:     10,
		MinShotLength: 6,
		HashSize:      8,
		Shots: []types.ManifestShot{
			{Index: 0, StartFrame: 0, EndFrame: 1, TCIn: 0, TCOut: 0.04, File: "in-clip-0.mp4"},
			{Index: 1, StartFrame: 3, EndFrame: 5, TCIn: 0.12, TCOut: 0.2},
		},
	}
}

func TestEncodeManifest_Text(t *testing.T) {
	b, err := EncodeManifest(testManifest(), FormatText)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "Detected 2 shots:\n0:1\n3:5\n"
	if string(b) != want {
		t.Fatalf("got %q, want %q", string(b), want)
	}
}

func TestEncodeManifest_Structured(t *testing.T) {
	m := testManifest()

	b, err := EncodeManifest(m, FormatJSON)
	if err != nil {
		t.Fatalf("encode json: %v", err)
	}
	var fromJSON types.Manifest
	if err := json.Unmarshal(b, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(fromJSON.Shots) != 2 || fromJSON.Shots[1].TCIn != 0.12 || fromJSON.Shots[1].File != "" {
		t.Fatalf("unexpected json manifest: %+v", fromJSON)
	}
	if !strings.Contains(string(b), `"minimum_shot_length": 6`) {
		t.Fatalf("json manifest missing minimum_shot_length:\n%s", b)
	}

	b, err = EncodeManifest(m, FormatYAML)
	if err != nil {
		t.Fatalf("encode yaml: %v", err)
	}
	if !strings.Contains(string(b), "file: in-clip-0.mp4") {
		t.Fatalf("yaml manifest missing clip file:\n%s", b)
	}
	var fromYAML types.Manifest
	if err := yaml.Unmarshal(b, &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if fromYAML.Shots[0].TCOut != 0.04 {
		t.Fatalf("unexpected yaml manifest: %+v", fromYAML)
	}

	if _, err := EncodeManifest(m, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
