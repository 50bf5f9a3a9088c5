// Package config provides unified configuration loading for rdsim runs.
// It supports loading from YAML files and RDIFF_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/mtx"
	"github.com/katalvlaran/rdiff/reaction"
)

// Config contains every setting of a simulation run.
type Config struct {
	// Simulation holds the numeric parameters of the stepper.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Inputs names the matrix and mesh files.
	Inputs InputConfig `json:"inputs" yaml:"inputs"`

	// Fill describes the initial-condition zone.
	Fill FillConfig `json:"fill" yaml:"fill"`

	// Output configures the export sinks.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging configures operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig mirrors reaction.Params.
type SimulationConfig struct {
	// Dt is the timestep size.
	Dt float64 `json:"dt" yaml:"dt"`
	// MaxSteps caps the number of timesteps.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`
	// Epsilon is the absolute CG residual tolerance.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
	// CGMaxIterations caps each CG solve; 0 selects 10·n.
	CGMaxIterations int `json:"cg_max_iterations,omitempty" yaml:"cg_max_iterations,omitempty"`
	// Drain is subtracted from both fields every step.
	Drain float64 `json:"drain" yaml:"drain"`
	// Reaction is the rate constant.
	Reaction float64 `json:"reaction" yaml:"reaction"`
	// ConvergenceTol is the steady-state threshold on ‖N − N_prev‖₂.
	ConvergenceTol float64 `json:"convergence_tol" yaml:"convergence_tol"`
}

// InputConfig locates the precomputed FEM data.
type InputConfig struct {
	// Stiffness is the Matrix Market file of S.
	Stiffness string `json:"stiffness" yaml:"stiffness"`
	// Damping is the Matrix Market file of D.
	Damping string `json:"damping" yaml:"damping"`
	// Mesh is the node coordinate file.
	Mesh string `json:"mesh" yaml:"mesh"`
	// Symmetry is the read hint for both matrices: "auto", "symmetric" or "general".
	Symmetry string `json:"symmetry" yaml:"symmetry"`
}

// FillConfig describes where and how N is seeded.
type FillConfig struct {
	// Zone is the region painted with Value.
	Zone ZoneConfig `json:"zone" yaml:"zone"`
	// Value is the concentration painted inside Zone.
	Value float64 `json:"value" yaml:"value"`
	// FillP also paints P.
	FillP bool `json:"fill_p" yaml:"fill_p"`
}

// ZoneConfig is a serializable mesh.Zone.
type ZoneConfig struct {
	// Shape is "rect" (default) or "circle".
	Shape  string  `json:"shape" yaml:"shape"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// OutputConfig configures the export sinks. Empty paths disable a sink.
type OutputConfig struct {
	// CSV is the path of the per-step field CSV.
	CSV string `json:"csv,omitempty" yaml:"csv,omitempty"`
	// SQLite is the path of the run-history database.
	SQLite string `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	// Every writes one record per Every steps (the final step is always written).
	Every int `json:"every" yaml:"every"`
	// IncludeP also exports the P field to CSV.
	IncludeP bool `json:"include_p" yaml:"include_p"`
	// StoreFields stores full fields in SQLite, not only summaries.
	StoreFields bool `json:"store_fields" yaml:"store_fields"`
	// ProgressEvery logs a progress line every ProgressEvery steps; 0 disables it.
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", "trace", "warn" or "error".
	Level string `json:"level" yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config with the reference labyrinth-exploration values.
func Default() *Config {
	p := reaction.DefaultParams()

	return &Config{
		Simulation: SimulationConfig{
			Dt:             p.Dt,
			MaxSteps:       p.MaxSteps,
			Epsilon:        p.Epsilon,
			Drain:          p.Drain,
			Reaction:       p.Reaction,
			ConvergenceTol: p.ConvergenceTol,
		},
		Inputs: InputConfig{Symmetry: "symmetric"},
		Fill: FillConfig{
			Zone:  ZoneConfig{Shape: "rect", X: 0, Y: 0, Width: 500, Height: 10},
			Value: p.FillValue,
		},
		Output: OutputConfig{Every: 1, ProgressEvery: 100},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a configuration. Order: defaults -> path (if non-empty) -> environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Relative input and output paths are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable for a run.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Simulation.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.Simulation.MaxSteps)
	}
	if c.Simulation.CGMaxIterations < 0 {
		return fmt.Errorf("cg_max_iterations must be non-negative, got %d", c.Simulation.CGMaxIterations)
	}
	if _, err := c.ReadType(); err != nil {
		return err
	}
	if _, err := c.Zone(); err != nil {
		return err
	}
	if c.Output.Every < 0 || c.Output.ProgressEvery < 0 {
		return fmt.Errorf("output.every and output.progress_every must be non-negative")
	}

	validLevels := map[string]bool{"": true, "error": true, "warn": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace)", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// ValidateInputs checks that every input path is set.
func (c *Config) ValidateInputs() error {
	var missing []string
	if c.Inputs.Stiffness == "" {
		missing = append(missing, "inputs.stiffness")
	}
	if c.Inputs.Damping == "" {
		missing = append(missing, "inputs.damping")
	}
	if c.Inputs.Mesh == "" {
		missing = append(missing, "inputs.mesh")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return nil
}

// Params converts the simulation section into reaction.Params.
func (c *Config) Params() reaction.Params {
	return reaction.Params{
		Dt:              c.Simulation.Dt,
		Epsilon:         c.Simulation.Epsilon,
		CGMaxIterations: c.Simulation.CGMaxIterations,
		Drain:           c.Simulation.Drain,
		Reaction:        c.Simulation.Reaction,
		ConvergenceTol:  c.Simulation.ConvergenceTol,
		MaxSteps:        c.Simulation.MaxSteps,
		FillValue:       c.Fill.Value,
		FillP:           c.Fill.FillP,
	}
}

// Zone builds the fill zone.
func (c *Config) Zone() (mesh.Zone, error) {
	z := c.Fill.Zone
	switch strings.ToLower(z.Shape) {
	case "", "rect", "rectangle":
		return mesh.NewRectZone(z.X, z.Y, z.Width, z.Height), nil
	case "circle":
		if z.Radius < 0 {
			return nil, fmt.Errorf("fill.zone.radius must be non-negative, got %g", z.Radius)
		}
		return mesh.CircleZone{CX: z.X, CY: z.Y, R: z.Radius}, nil
	}

	return nil, fmt.Errorf("invalid fill.zone.shape: %s (valid: rect, circle)", z.Shape)
}

// ReadType parses the matrix symmetry hint.
func (c *Config) ReadType() (mtx.ReadType, error) {
	return mtx.ParseReadType(c.Inputs.Symmetry)
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Inputs.Stiffness, &c.Inputs.Damping, &c.Inputs.Mesh,
		&c.Output.CSV, &c.Output.SQLite,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// applyEnvOverrides applies RDIFF_* environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	floatVars := map[string]*float64{
		"RDIFF_DT":              &cfg.Simulation.Dt,
		"RDIFF_EPSILON":         &cfg.Simulation.Epsilon,
		"RDIFF_DRAIN":           &cfg.Simulation.Drain,
		"RDIFF_REACTION":        &cfg.Simulation.Reaction,
		"RDIFF_CONVERGENCE_TOL": &cfg.Simulation.ConvergenceTol,
		"RDIFF_FILL_VALUE":      &cfg.Fill.Value,
	}
	for name, dst := range floatVars {
		if v := os.Getenv(name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	if v := os.Getenv("RDIFF_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.MaxSteps = n
		}
	}

	stringVars := map[string]*string{
		"RDIFF_STIFFNESS":  &cfg.Inputs.Stiffness,
		"RDIFF_DAMPING":    &cfg.Inputs.Damping,
		"RDIFF_MESH":       &cfg.Inputs.Mesh,
		"RDIFF_SYMMETRY":   &cfg.Inputs.Symmetry,
		"RDIFF_OUTPUT_CSV": &cfg.Output.CSV,
		"RDIFF_OUTPUT_DB":  &cfg.Output.SQLite,
		"RDIFF_LOG_LEVEL":  &cfg.Logging.Level,
	}
	for name, dst := range stringVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}
