package dhash

import (
	"errors"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"

	"github.com/forPelevin/shotsplit/internal/types"
)

const DefaultSize = 8

// Adapter computes gradient difference hashes of size*size bits.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Hash(img image.Image, size int) (types.Hash, error) {
	if img == nil {
		return nil, errors.New("dhash: nil image")
	}
	if size <= 0 {
		size = DefaultSize
	}
	h, err := goimagehash.ExtDifferenceHash(img, size, size)
	if err != nil {
		return nil, fmt.Errorf("dhash: %w", err)
	}
	return types.Hash(h.GetHash()), nil
}
