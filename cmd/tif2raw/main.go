// Command tif2raw assembles a stack of greyscale TIFF slices into the
// raw binary cube format the pipeline reads. Slices are stacked along
// z in the order they are given on the command line.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/tiff"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

func loadSlice(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening slice: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding slice %s: %w", path, err)
	}
	return img, nil
}

// greyAt reduces a pixel to an 8-bit grey level. The colour model
// yields 16-bit channels, scaled down by 257 so 0xffff maps to 0xff.
func greyAt(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return uint8(r / 257)
}

func main() {
	output := flag.String("output", "geometry.raw", "Output raw cube file")
	pattern := flag.String("glob", "", "Glob pattern for slice files, sorted by name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	files := flag.Args()
	if *pattern != "" {
		matches, err := filepath.Glob(*pattern)
		if err != nil {
			logger.Error("invalid glob pattern", "error", err)
			os.Exit(1)
		}
		files = append(files, matches...)
		sort.Strings(files)
	}
	if len(files) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var volume *models.Volume
	for z, path := range files {
		img, err := loadSlice(path)
		if err != nil {
			logger.Error("failed to load slice", "error", err)
			os.Exit(1)
		}

		bounds := img.Bounds()
		if volume == nil {
			volume = models.NewVolume(bounds.Dx(), bounds.Dy(), len(files))
		}
		if bounds.Dx() != volume.Shape[0] || bounds.Dy() != volume.Shape[1] {
			logger.Error("slice shape mismatch", "file", path,
				"want_x", volume.Shape[0], "want_y", volume.Shape[1],
				"got_x", bounds.Dx(), "got_y", bounds.Dy())
			os.Exit(1)
		}

		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				volume.Set(voxel.Point{x, y, z}, greyAt(img, x, y))
			}
		}
	}

	if err := volume.SaveRaw(*output); err != nil {
		logger.Error("failed to write cube", "error", err)
		os.Exit(1)
	}
	logger.Info("cube assembled", "file", *output,
		"x", volume.Shape[0], "y", volume.Shape[1], "z", volume.Shape[2])
}
