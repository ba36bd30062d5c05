package models

import (
	"fmt"
	"os"
	"strings"
)

// Histogram holds the greyscale level statistics of a volume.
// For each level l in [0, 255], H1 is the normalised count of voxels
// at that level and H2 is the accumulated fraction of voxels with
// level <= l.
type Histogram struct {
	H1 [256]float64
	H2 [256]float64
}

// NewHistogram computes the normalised and accumulated histograms of
// the greyscale levels in the volume
func NewHistogram(v *Volume) *Histogram {
	var counter [256]int
	for _, level := range v.Data {
		counter[level]++
	}

	h := &Histogram{}
	total := float64(len(v.Data))
	sum := 0.0
	for l := 0; l < 256; l++ {
		h.H1[l] = float64(counter[l]) / total
		sum += h.H1[l]
		h.H2[l] = sum
	}
	return h
}

// SaveDAT writes the histogram as three ascii columns (level, H1, H2)
func (h *Histogram) SaveDAT(path string) error {
	var b strings.Builder
	for l := 0; l < 256; l++ {
		fmt.Fprintf(&b, "%d %.10e %.10e\n", l, h.H1[l], h.H2[l])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("error writing histogram file: %w", err)
	}
	return nil
}
