// Package config provides configuration loading and management for porestream.
// It handles loading pipeline parameters from JSON or YAML files and validates
// them before any execution mode runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"porestream/pkg/segmentation"
)

// Config represents the pipeline configuration loaded from a JSON or YAML file
type Config struct {
	// Setup parameters describe the input sample
	Setup struct {
		// Folder is the working directory holding the input file and all outputs
		Folder string `json:"folder" yaml:"folder"`

		// InputFile is the raw greyscale cube file name inside Folder
		InputFile string `json:"input_file" yaml:"input_file"`

		// VoxelSize is the physical edge length of a voxel in metres
		VoxelSize float64 `json:"voxel_size" yaml:"voxel_size"`

		// Shape holds the cube dimensions in voxels
		Shape struct {
			X int `json:"x" yaml:"x"`
			Y int `json:"y" yaml:"y"`
			Z int `json:"z" yaml:"z"`
		} `json:"shape" yaml:"shape"`
	} `json:"setup" yaml:"setup"`

	// Segmentation parameters select the binarization algorithm
	Segmentation struct {
		// Method is one of the global segmentation method names
		Method string `json:"method" yaml:"method"`

		// Threshold is the greyscale level used by the global_manual method
		Threshold int `json:"threshold" yaml:"threshold"`
	} `json:"segmentation" yaml:"segmentation"`

	// Morphology parameters tune the morphological analysis
	Morphology struct {
		// CenterlinesPerformance selects the graph flavor, "speed" or "memory"
		CenterlinesPerformance string `json:"centerlines_performance" yaml:"centerlines_performance"`

		// FractalCountingBox selects the counting box shape, "cubic" or "spherical"
		FractalCountingBox string `json:"fractal_counting_box" yaml:"fractal_counting_box"`
	} `json:"morphology" yaml:"morphology"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Setup.Folder = "."
	cfg.Setup.InputFile = "geometry.raw"
	cfg.Setup.VoxelSize = 1e-6

	cfg.Segmentation.Method = string(segmentation.GlobalOtsu)

	cfg.Morphology.CenterlinesPerformance = "speed"
	cfg.Morphology.FractalCountingBox = "cubic"

	return cfg
}

// LoadConfig loads the configuration from a JSON or YAML file, picked
// by the file extension, and validates it
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent fields
func (cfg *Config) Validate() error {
	if cfg.Setup.Folder == "" {
		return fmt.Errorf("the 'setup.folder' field is missing")
	}
	if cfg.Setup.InputFile == "" {
		return fmt.Errorf("the 'setup.input_file' field is missing")
	}
	if cfg.Setup.Shape.X <= 0 || cfg.Setup.Shape.Y <= 0 || cfg.Setup.Shape.Z <= 0 {
		return fmt.Errorf("the 'setup.shape' dimensions must be positive, got %dx%dx%d",
			cfg.Setup.Shape.X, cfg.Setup.Shape.Y, cfg.Setup.Shape.Z)
	}
	if cfg.Setup.VoxelSize <= 0 {
		return fmt.Errorf("the 'setup.voxel_size' field must be positive, got %g",
			cfg.Setup.VoxelSize)
	}

	if !segmentation.IsValidMethod(cfg.Segmentation.Method) {
		return fmt.Errorf("unknown segmentation method %q", cfg.Segmentation.Method)
	}
	if segmentation.Method(cfg.Segmentation.Method) == segmentation.GlobalManual &&
		(cfg.Segmentation.Threshold < 0 || cfg.Segmentation.Threshold > 255) {
		return fmt.Errorf("the global_manual method needs a 'segmentation.threshold' in [0, 255], got %d",
			cfg.Segmentation.Threshold)
	}

	switch cfg.Morphology.CenterlinesPerformance {
	case "speed", "memory":
	default:
		return fmt.Errorf("the 'morphology.centerlines_performance' field must be 'speed' or 'memory', got %q",
			cfg.Morphology.CenterlinesPerformance)
	}
	switch cfg.Morphology.FractalCountingBox {
	case "cubic", "spherical":
	default:
		return fmt.Errorf("the 'morphology.fractal_counting_box' field must be 'cubic' or 'spherical', got %q",
			cfg.Morphology.FractalCountingBox)
	}

	return nil
}

// Shape returns the cube dimensions as an array in x, y, z order
func (cfg *Config) Shape() [3]int {
	return [3]int{cfg.Setup.Shape.X, cfg.Setup.Shape.Y, cfg.Setup.Shape.Z}
}

// SaveConfig saves the configuration to a JSON or YAML file, picked by
// the file extension
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
