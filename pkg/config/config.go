// Package config provides configuration loading and management for fibertrack.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"fibertrack/pkg/geometry"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Geometry places the tracking grid in physical space
	Geometry struct {
		// Origin is the physical position of the first voxel center
		Origin [3]float64 `yaml:"origin"`

		// Spacing is the physical voxel size in mm
		Spacing [3]float64 `yaml:"spacing"`

		// Direction is the row-major 3x3 orientation matrix
		Direction []float64 `yaml:"direction"`
	} `yaml:"geometry"`

	// Reconstruction parameters
	Reconstruction struct {
		// MinFiberLength is the shortest fiber kept, in physical units
		MinFiberLength float64 `yaml:"minFiberLength"`

		// ParticleSpacing rescales raw particle positions into index space
		ParticleSpacing [3]float64 `yaml:"particleSpacing"`
	} `yaml:"reconstruction"`

	// Input parameters
	Input struct {
		// ParticleFile is the raw particle buffer written by the tracker
		ParticleFile string `yaml:"particleFile"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Geometry.Origin = [3]float64{0, 0, 0}
	cfg.Geometry.Spacing = [3]float64{1, 1, 1}
	cfg.Geometry.Direction = []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}

	cfg.Reconstruction.MinFiberLength = 20
	cfg.Reconstruction.ParticleSpacing = [3]float64{1, 1, 1}

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
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
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the parameters that cannot be caught by YAML decoding
func (c *Config) Validate() error {
	if c.Reconstruction.MinFiberLength < 0 {
		return errors.Wrapf(ErrInvalidConfig, "minFiberLength must not be negative, got %v",
			c.Reconstruction.MinFiberLength)
	}
	for axis, s := range c.Reconstruction.ParticleSpacing {
		if !(s > 0) {
			return errors.Wrapf(ErrInvalidConfig, "particleSpacing[%d] must be positive, got %v", axis, s)
		}
	}
	if _, err := c.ImageGeometry(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// ImageGeometry builds the index to physical transform described by the geometry section
func (c *Config) ImageGeometry() (*geometry.Geometry, error) {
	o := c.Geometry.Origin
	return geometry.New(r3.Vec{X: o[0], Y: o[1], Z: o[2]}, c.Geometry.Spacing, c.Geometry.Direction)
}
