// Package config loads fit-run configuration from JSON files. Fields
// are pointers so a partial file only overrides what it names; the
// Get accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FitConfig is the root configuration for a fitting run.
type FitConfig struct {
	// Model selection
	Model *string `json:"model,omitempty"`

	// Sampler params
	Samples     *int     `json:"samples,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
	ProposalStd *float64 `json:"proposal_std,omitempty"`

	// Likelihood params
	UsePixelWeights *bool    `json:"use_pixel_weights,omitempty"`
	NoiseSigma      *float64 `json:"noise_sigma,omitempty"`
	Amplitude       *float64 `json:"amplitude,omitempty"`

	// Output params
	SampleSetName *string `json:"sample_set_name,omitempty"`
	DBPath        *string `json:"db_path,omitempty"`
	PlotDir       *string `json:"plot_dir,omitempty"`
}

// EmptyFitConfig returns a FitConfig with all fields unset.
func EmptyFitConfig() *FitConfig {
	return &FitConfig{}
}

// LoadFitConfig loads a FitConfig from a JSON file. Fields omitted
// from the file stay nil, so partial configs are safe.
func LoadFitConfig(path string) (*FitConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyFitConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func (c *FitConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Accessors with fallback defaults.

func (c *FitConfig) GetModel() string {
	if c != nil && c.Model != nil {
		return *c.Model
	}
	return "gaussian"
}

func (c *FitConfig) GetSamples() int {
	if c != nil && c.Samples != nil {
		return *c.Samples
	}
	return 2000
}

func (c *FitConfig) GetSeed() uint64 {
	if c != nil && c.Seed != nil {
		return uint64(*c.Seed)
	}
	return 1
}

func (c *FitConfig) GetProposalStd() float64 {
	if c != nil && c.ProposalStd != nil {
		return *c.ProposalStd
	}
	return 0.5
}

func (c *FitConfig) GetUsePixelWeights() bool {
	if c != nil && c.UsePixelWeights != nil {
		return *c.UsePixelWeights
	}
	return true
}

func (c *FitConfig) GetNoiseSigma() float64 {
	if c != nil && c.NoiseSigma != nil {
		return *c.NoiseSigma
	}
	return 0.001
}

func (c *FitConfig) GetAmplitude() float64 {
	if c != nil && c.Amplitude != nil {
		return *c.Amplitude
	}
	return 5.0
}

func (c *FitConfig) GetSampleSetName() string {
	if c != nil && c.SampleSetName != nil {
		return *c.SampleSetName
	}
	return "demo"
}

func (c *FitConfig) GetDBPath() string {
	if c != nil && c.DBPath != nil {
		return *c.DBPath
	}
	return ""
}

func (c *FitConfig) GetPlotDir() string {
	if c != nil && c.PlotDir != nil {
		return *c.PlotDir
	}
	return ""
}
