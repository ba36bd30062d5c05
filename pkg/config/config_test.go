package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Setup.Shape.X = 100
	cfg.Setup.Shape.Y = 100
	cfg.Setup.Shape.Z = 100
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.Setup.Folder)
	assert.Equal(t, "geometry.raw", cfg.Setup.InputFile)
	assert.Equal(t, 1e-6, cfg.Setup.VoxelSize)
	assert.Equal(t, "global_otsu", cfg.Segmentation.Method)
	assert.Equal(t, "speed", cfg.Morphology.CenterlinesPerformance)
	assert.Equal(t, "cubic", cfg.Morphology.FractalCountingBox)
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"setup": {
			"folder": "/data/sample",
			"input_file": "berea.raw",
			"voxel_size": 2.25e-6,
			"shape": {"x": 400, "y": 400, "z": 400}
		},
		"segmentation": {"method": "global_manual", "threshold": 120},
		"morphology": {
			"centerlines_performance": "memory",
			"fractal_counting_box": "spherical"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/sample", cfg.Setup.Folder)
	assert.Equal(t, "berea.raw", cfg.Setup.InputFile)
	assert.Equal(t, 2.25e-6, cfg.Setup.VoxelSize)
	assert.Equal(t, [3]int{400, 400, 400}, cfg.Shape())
	assert.Equal(t, "global_manual", cfg.Segmentation.Method)
	assert.Equal(t, 120, cfg.Segmentation.Threshold)
	assert.Equal(t, "memory", cfg.Morphology.CenterlinesPerformance)
	assert.Equal(t, "spherical", cfg.Morphology.FractalCountingBox)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `setup:
  folder: /data/sample
  input_file: berea.raw
  voxel_size: 2.25e-6
  shape:
    x: 400
    y: 400
    z: 400
segmentation:
  method: global_isodata
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "berea.raw", cfg.Setup.InputFile)
	assert.Equal(t, "global_isodata", cfg.Segmentation.Method)
	assert.Equal(t, "speed", cfg.Morphology.CenterlinesPerformance,
		"omitted sections keep their defaults")
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"setup": {"folder": ""}}`), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty folder", func(c *Config) { c.Setup.Folder = "" }},
		{"empty input file", func(c *Config) { c.Setup.InputFile = "" }},
		{"zero shape", func(c *Config) { c.Setup.Shape.Z = 0 }},
		{"negative shape", func(c *Config) { c.Setup.Shape.Y = -1 }},
		{"zero voxel size", func(c *Config) { c.Setup.VoxelSize = 0 }},
		{"unknown method", func(c *Config) { c.Segmentation.Method = "watershed" }},
		{"manual threshold too low", func(c *Config) {
			c.Segmentation.Method = "global_manual"
			c.Segmentation.Threshold = -1
		}},
		{"manual threshold too high", func(c *Config) {
			c.Segmentation.Method = "global_manual"
			c.Segmentation.Threshold = 256
		}},
		{"unknown performance", func(c *Config) { c.Morphology.CenterlinesPerformance = "fast" }},
		{"unknown counting box", func(c *Config) { c.Morphology.FractalCountingBox = "round" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("manual threshold in range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Segmentation.Method = "global_manual"
		cfg.Segmentation.Threshold = 128
		assert.NoError(t, cfg.Validate())
	})

	t.Run("threshold ignored for automatic methods", func(t *testing.T) {
		cfg := validConfig()
		cfg.Segmentation.Threshold = -42
		assert.NoError(t, cfg.Validate())
	})
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)
			cfg := validConfig()
			cfg.Setup.InputFile = "fontainebleau.raw"

			require.NoError(t, SaveConfig(cfg, path))
			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, CreateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"input_file": "geometry.raw"`)
}
