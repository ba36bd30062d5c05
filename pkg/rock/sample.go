// Package rock orchestrates the digital rock pipeline: it loads the
// sample, runs segmentation, the morphological analysis and the
// centerline extraction, and writes every output file to the sample
// folder.
package rock

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"porestream/internal/models"
	"porestream/pkg/centerline"
	"porestream/pkg/config"
	"porestream/pkg/graph"
	"porestream/pkg/morphology"
	"porestream/pkg/network"
	"porestream/pkg/segmentation"
)

// Sample drives the pipeline steps for one rock sample. The volume
// held between steps is the greyscale cube after setup, the binary
// cube after segmentation and the classified cube after morphology.
type Sample struct {
	cfg    *config.Config
	logger *slog.Logger

	volume    *models.Volume
	histogram *models.Histogram
}

// NewSample returns a sample bound to the given configuration.
func NewSample(cfg *config.Config, logger *slog.Logger) *Sample {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sample{cfg: cfg, logger: logger}
}

// load reads a raw cube from the sample folder with the configured shape.
func (s *Sample) load(name string) error {
	shape := s.cfg.Shape()
	path := filepath.Join(s.cfg.Setup.Folder, name)

	v, err := models.LoadRaw(path, shape[0], shape[1], shape[2])
	if err != nil {
		return err
	}
	v.VoxelSize = s.cfg.Setup.VoxelSize
	s.volume = v

	s.logger.Info("volume loaded", "file", name,
		"x", shape[0], "y", shape[1], "z", shape[2])
	return nil
}

// calculateHistogram computes the greyscale histogram and writes
// histogram.dat to the sample folder.
func (s *Sample) calculateHistogram() error {
	s.histogram = models.NewHistogram(s.volume)
	path := filepath.Join(s.cfg.Setup.Folder, "histogram.dat")
	if err := s.histogram.SaveDAT(path); err != nil {
		return err
	}
	s.logger.Info("greyscale histogram calculated", "file", "histogram.dat")
	return nil
}

// RunSetup loads the greyscale cube and calculates its histogram.
func (s *Sample) RunSetup() error {
	if err := s.load(s.cfg.Setup.InputFile); err != nil {
		return err
	}
	return s.calculateHistogram()
}

// RunSegmentation binarises the greyscale cube with the configured
// method and writes binary_image.raw to the sample folder.
func (s *Sample) RunSegmentation() error {
	if err := s.RunSetup(); err != nil {
		return err
	}

	method := segmentation.Method(s.cfg.Segmentation.Method)
	threshold := s.cfg.Segmentation.Threshold
	if method != segmentation.GlobalManual {
		threshold = -1
	}

	level, err := segmentation.Segment(s.volume, s.histogram, method, threshold)
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}
	s.logger.Info("segmentation performed",
		"method", string(method), "level", level)

	pores := 0
	for _, value := range s.volume.Data {
		if value == 0 {
			pores++
		}
	}
	s.logger.Info("volume fraction calculated",
		"pore_percent", 100*float64(pores)/float64(s.volume.Len()))

	path := filepath.Join(s.cfg.Setup.Folder, "binary_image.raw")
	return s.volume.SaveRaw(path)
}

// RunMorphology loads the binary cube, keeps the percolating pore
// clusters, measures porosity, surface-to-volume and fractal
// dimensions, and extracts the pore network centerlines.
func (s *Sample) RunMorphology() error {
	if err := s.load("binary_image.raw"); err != nil {
		return err
	}

	morphology.KeepPercolating(s.volume)
	porosity := morphology.Porosity(s.volume)
	s.logger.Info("connected porosity calculated", "porosity", porosity)

	poreRatio, rockRatio := morphology.SurfaceToVolume(s.volume)
	s.logger.Info("surface-to-volume ratios calculated",
		"pore", poreRatio, "rock", rockRatio)

	if _, err := morphology.FractalDimension(s.cfg.Setup.Folder, s.volume); err != nil {
		return err
	}

	return s.calculateCenterlines()
}

// calculateCenterlines extracts the centerlines of the connected pore
// space and exports centerlines.raw, centerlines.stat and
// centerlines.json to the sample folder.
func (s *Sample) calculateCenterlines() error {
	flavor := graph.FlavorSpeed
	if s.cfg.Morphology.CenterlinesPerformance == "memory" {
		flavor = graph.FlavorMemory
	}

	manager := centerline.NewManager(flavor, s.logger)
	set, err := manager.ComputeCenterlines(s.volume)
	if err != nil {
		return fmt.Errorf("centerline extraction failed: %w", err)
	}
	s.logger.Info("centerlines computed", "paths", set.Len())

	merged, err := centerline.Export(s.cfg.Setup.Folder, set)
	if err != nil {
		return err
	}

	net := network.Build(merged)
	s.logger.Info("pore network built",
		"nodes", len(net.Nodes), "links", len(net.Links))

	path := filepath.Join(s.cfg.Setup.Folder, "centerlines.json")
	return net.ExportJSON(path)
}
