//go:build integration

package itest

import (
	"errors"
	"os"
	"path/filepath"
)

// findRepoRoot walks up from the working directory to the module root that
// holds the shotsplit command.
func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := wd; ; {
		_, modErr := os.Stat(filepath.Join(dir, "go.mod"))
		_, cmdErr := os.Stat(filepath.Join(dir, "cmd", "shotsplit"))
		if modErr == nil && cmdErr == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not locate shotsplit module root from " + wd)
		}
		dir = parent
	}
}
