// Package config provides configuration loading and validation for the
// transport run: mesh geometry, material constants, the particle
// source, and the run schedule.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Codrin-Popa/neutral-go/neutralerr"
	"github.com/Codrin-Popa/neutral-go/tally"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every parameter a run needs, loaded from an embedded
// default file merged with an optional user-supplied YAML overlay.
type Config struct {
	Mesh          MeshConfig          `yaml:"mesh"`
	Material      MaterialConfig      `yaml:"material"`
	Source        SourceConfig        `yaml:"source"`
	Particles     ParticlesConfig     `yaml:"particles"`
	CrossSections CrossSectionsConfig `yaml:"cross_sections"`
	Tally         TallyConfig         `yaml:"tally"`
	Run           RunConfig           `yaml:"run"`
	Regions       []RegionConfig      `yaml:"regions"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// MeshConfig describes the structured mesh the problem is defined over.
type MeshConfig struct {
	NX     int     `yaml:"nx"`
	NY     int     `yaml:"ny"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Pad    int     `yaml:"pad"`
	DT     float64 `yaml:"dt"`
	SimEnd float64 `yaml:"sim_end"`
}

// MaterialConfig carries the material constants used by the heating
// response and scattering kinematics formulas.
type MaterialConfig struct {
	MolarMass               float64 `yaml:"molar_mass"`
	MassNumber               float64 `yaml:"mass_number"`
	MinEnergyOfInterest      float64 `yaml:"min_energy_of_interest"`
	AverageExitEnergyAbsorb float64 `yaml:"average_exit_energy_absorb"`
}

// SourceConfig is the rectangular emission region and its spectrum.
type SourceConfig struct {
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	InitialEnergy float64 `yaml:"initial_energy"`
}

// RegionConfig is one material patch over a rectangle of the mesh.
// Regions are painted in list order, so a later region overrides an
// earlier one wherever they overlap — a background fill followed by one
// or more denser inclusions.
type RegionConfig struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Density float64 `yaml:"density"`
}

// ParticlesConfig sizes the particle store.
type ParticlesConfig struct {
	Count     int `yaml:"count"`
	BlockSize int `yaml:"block_size"`
}

// CrossSectionsConfig names the scatter/absorb cross-section CSV tables.
type CrossSectionsConfig struct {
	ScatterTable string `yaml:"scatter_table"`
	AbsorbTable  string `yaml:"absorb_table"`
}

// TallyConfig selects the tally accumulation policy (§4.G): "atomic" or
// "deferred".
type TallyConfig struct {
	Mode string `yaml:"mode"`
}

// RunConfig bounds the simulation schedule.
type RunConfig struct {
	Iterations    int    `yaml:"iterations"`
	VisitDump     bool   `yaml:"visit_dump"`
	MasterKeySeed uint64 `yaml:"master_key_seed"`
}

// DerivedConfig holds values computed once after loading.
type DerivedConfig struct {
	CellWidth  float64
	CellHeight float64
}

// Load loads configuration from a YAML file, merging it over embedded
// defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) computeDerived() {
	if c.Mesh.NX > 0 {
		c.Derived.CellWidth = c.Mesh.Width / float64(c.Mesh.NX)
	}
	if c.Mesh.NY > 0 {
		c.Derived.CellHeight = c.Mesh.Height / float64(c.Mesh.NY)
	}
}

// Validate checks the cross-field invariants the core's data model
// requires, returning a wrapped ErrInvalidConfig rather than panicking.
func (c *Config) Validate() error {
	if c.Particles.BlockSize <= 0 {
		return fmt.Errorf("%w: particles.block_size must be positive", neutralerr.ErrInvalidConfig)
	}
	if c.Particles.Count%c.Particles.BlockSize != 0 {
		return fmt.Errorf("%w: particles.count (%d) is not a multiple of particles.block_size (%d)",
			neutralerr.ErrInvalidConfig, c.Particles.Count, c.Particles.BlockSize)
	}
	if c.Mesh.NX <= 0 || c.Mesh.NY <= 0 {
		return fmt.Errorf("%w: mesh.nx and mesh.ny must be positive", neutralerr.ErrInvalidConfig)
	}
	if c.Mesh.Pad <= 0 {
		return fmt.Errorf("%w: mesh.pad must be positive", neutralerr.ErrInvalidConfig)
	}
	if c.Mesh.DT <= 0 {
		return fmt.Errorf("%w: mesh.dt must be positive", neutralerr.ErrInvalidConfig)
	}
	if c.Source.Width > c.Mesh.Width || c.Source.Height > c.Mesh.Height {
		return fmt.Errorf("%w: source region (%gx%g) exceeds mesh extent (%gx%g)",
			neutralerr.ErrInvalidConfig, c.Source.Width, c.Source.Height, c.Mesh.Width, c.Mesh.Height)
	}
	if c.Source.X < 0 || c.Source.Y < 0 ||
		c.Source.X+c.Source.Width > c.Mesh.Width || c.Source.Y+c.Source.Height > c.Mesh.Height {
		return fmt.Errorf("%w: source region falls outside the mesh", neutralerr.ErrInvalidConfig)
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("%w: at least one material region is required", neutralerr.ErrInvalidConfig)
	}
	if c.Run.Iterations <= 0 {
		return fmt.Errorf("%w: run.iterations must be positive", neutralerr.ErrInvalidConfig)
	}
	switch c.Tally.Mode {
	case "atomic", "deferred":
	default:
		return fmt.Errorf("%w: tally.mode must be \"atomic\" or \"deferred\", got %q",
			neutralerr.ErrInvalidConfig, c.Tally.Mode)
	}
	return nil
}

// TallyMode resolves the configured tally accumulation policy; Validate
// guarantees this never hits its default branch on a loaded Config.
func (c *Config) TallyMode() tally.Mode {
	if c.Tally.Mode == "deferred" {
		return tally.DeferredFlush
	}
	return tally.AtomicPerWrite
}
