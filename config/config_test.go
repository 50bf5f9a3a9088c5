package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rdiff/mesh"
	"github.com/katalvlaran/rdiff/mtx"
	"github.com/katalvlaran/rdiff/reaction"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, reaction.DefaultParams(), cfg.Params())
	assert.Equal(t, 1000, cfg.Simulation.MaxSteps)
	assert.Equal(t, "symmetric", cfg.Inputs.Symmetry)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())

	z, err := cfg.Zone()
	require.NoError(t, err)
	assert.Equal(t, mesh.RectZone{X0: 0, Y0: 0, X1: 500, Y1: 10}, z)

	rt, err := cfg.ReadType()
	require.NoError(t, err)
	assert.Equal(t, mtx.Symmetric, rt)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	content := `
simulation:
  dt: 0.05
  max_steps: 20
  reaction: 2
inputs:
  stiffness: data/S.mtx
  damping: /abs/D.mtx
  mesh: data/mesh.txt
fill:
  zone: {shape: circle, x: 1, y: 2, radius: 3}
  fill_p: true
output:
  csv: out/n.csv
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Simulation.Dt)
	assert.Equal(t, 20, cfg.Simulation.MaxSteps)
	assert.Equal(t, 2.0, cfg.Simulation.Reaction)
	assert.Equal(t, reaction.DefaultEpsilon, cfg.Simulation.Epsilon, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(dir, "data", "S.mtx"), cfg.Inputs.Stiffness)
	assert.Equal(t, "/abs/D.mtx", cfg.Inputs.Damping)
	assert.Equal(t, filepath.Join(dir, "out", "n.csv"), cfg.Output.CSV)
	assert.True(t, cfg.Params().FillP)
	assert.Equal(t, "debug", cfg.Logging.Level)

	z, err := cfg.Zone()
	require.NoError(t, err)
	assert.Equal(t, mesh.CircleZone{CX: 1, CY: 2, R: 3}, z)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateInputs())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: [1, 2"), 0o600))
	_, err = LoadFromFile(path)
	require.ErrorContains(t, err, "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RDIFF_DT", "0.5")
	t.Setenv("RDIFF_MAX_STEPS", "7")
	t.Setenv("RDIFF_MESH", "/data/mesh.txt")
	t.Setenv("RDIFF_LOG_LEVEL", "trace")
	t.Setenv("RDIFF_REACTION", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Simulation.Dt)
	assert.Equal(t, 7, cfg.Simulation.MaxSteps)
	assert.Equal(t, "/data/mesh.txt", cfg.Inputs.Mesh)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, reaction.DefaultReaction, cfg.Simulation.Reaction, "unparsable values are ignored")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero dt", func(c *Config) { c.Simulation.Dt = 0 }, "dt"},
		{"zero max steps", func(c *Config) { c.Simulation.MaxSteps = 0 }, "max_steps"},
		{"negative cg cap", func(c *Config) { c.Simulation.CGMaxIterations = -1 }, "cg_max_iterations"},
		{"bad symmetry", func(c *Config) { c.Inputs.Symmetry = "skew" }, "unknown read type"},
		{"bad shape", func(c *Config) { c.Fill.Zone.Shape = "hexagon" }, "fill.zone.shape"},
		{"negative radius", func(c *Config) { c.Fill.Zone = ZoneConfig{Shape: "circle", Radius: -1} }, "radius"},
		{"negative every", func(c *Config) { c.Output.Every = -1 }, "output.every"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := Default()
	cfg.Simulation.Dt = -1
	require.ErrorIs(t, cfg.Validate(), reaction.ErrInvalidParams)
}

func TestValidateInputs(t *testing.T) {
	err := Default().ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs.stiffness, inputs.damping, inputs.mesh")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Inputs.Stiffness = "/data/S.mtx"
	cfg.Output.SQLite = "/data/runs.db"
	cfg.Output.StoreFields = true
	require.NoError(t, cfg.Save(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
