// Package config provides configuration loading and access for the simulation.
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// ErrInvalidConfiguration is wrapped by every validation failure, so callers
// can check with errors.Is regardless of which parameter was rejected.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Policy tags accepted in PolicyConfig.
const (
	MovementStepToward = "step_toward"
	MovementJumpTo     = "jump_to"
	HarvestShared      = "shared"
	HarvestExclusive   = "exclusive"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Population PopulationConfig `yaml:"population"`
	Wealth     WealthConfig     `yaml:"wealth"`
	Policy     PolicyConfig     `yaml:"policy"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds patch grid dimensions and grain parameters.
type GridConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	PercentBestLand float64 `yaml:"percent_best_land"` // share of patches seeded at max grain, 0..100
	MaxGrain        int     `yaml:"max_grain"`         // grain on the richest patches before diffusion
	GrowthInterval  int     `yaml:"growth_interval"`   // ticks between regrowth passes
	GrainGrown      int     `yaml:"grain_grown"`       // grain added per patch per regrowth pass
}

// PopulationConfig holds agent population parameters.
// Vision and metabolism are rolled uniformly in [1, max]; life expectancy
// in [min, max], all bounds inclusive.
type PopulationConfig struct {
	Count             int `yaml:"count"`
	MaxVision         int `yaml:"max_vision"`
	MaxMetabolism     int `yaml:"max_metabolism"`
	MinLifeExpectancy int `yaml:"min_life_expectancy"`
	MaxLifeExpectancy int `yaml:"max_life_expectancy"`
}

// WealthConfig holds starting-wealth policy flags.
// Uniform takes precedence over Inheritance when both are set.
type WealthConfig struct {
	Inheritance   bool `yaml:"inheritance"`    // reborn agents inherit positive terminal wealth
	Uniform       bool `yaml:"uniform"`        // every new agent starts at UniformAmount
	UniformAmount int  `yaml:"uniform_amount"` // constant used when Uniform is set
}

// PolicyConfig selects the movement and harvest behavior variants.
type PolicyConfig struct {
	Movement string `yaml:"movement"` // step_toward | jump_to
	Harvest  string `yaml:"harvest"`  // shared | exclusive
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	BestLandFraction float64 // Grid.PercentBestLand / 100
	NumPatches       int     // Grid.Width * Grid.Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration for the named scenario plus an optional user file.
// Must be called before Cfg().
func Init(scenario, path string) error {
	cfg, err := LoadScenario(scenario, path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(scenario, path string) {
	if err := Init(scenario, path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	return LoadScenario("", path)
}

// LoadScenario starts from the embedded defaults, applies the named scenario
// overlay, then applies the user file on top. Either argument may be empty.
func LoadScenario(scenario, path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if scenario != "" {
		data, err := scenarioFS.ReadFile("scenarios/" + scenario + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("%w: unknown scenario %q (have %s)",
				ErrInvalidConfiguration, scenario, strings.Join(Scenarios(), ", "))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing scenario %q: %w", scenario, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
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

// Scenarios returns the names of the embedded scenario overlays, sorted.
func Scenarios() []string {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.BestLandFraction = c.Grid.PercentBestLand / 100
	c.Derived.NumPatches = c.Grid.Width * c.Grid.Height
}

// Validate rejects parameter sets the simulation cannot run on. Every
// failure wraps ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive (got %dx%d)",
			ErrInvalidConfiguration, c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.PercentBestLand < 0 || c.Grid.PercentBestLand > 100 {
		return fmt.Errorf("%w: percent_best_land must be within [0,100] (got %g)",
			ErrInvalidConfiguration, c.Grid.PercentBestLand)
	}
	if c.Grid.MaxGrain <= 0 {
		return fmt.Errorf("%w: max_grain must be positive (got %d)",
			ErrInvalidConfiguration, c.Grid.MaxGrain)
	}
	if c.Grid.GrowthInterval <= 0 {
		return fmt.Errorf("%w: growth_interval must be positive (got %d)",
			ErrInvalidConfiguration, c.Grid.GrowthInterval)
	}
	if c.Grid.GrainGrown < 0 {
		return fmt.Errorf("%w: grain_grown must not be negative (got %d)",
			ErrInvalidConfiguration, c.Grid.GrainGrown)
	}
	if c.Population.Count <= 0 {
		return fmt.Errorf("%w: population count must be positive (got %d)",
			ErrInvalidConfiguration, c.Population.Count)
	}
	// Agents spawn on distinct patches, so the grid must fit them all.
	if c.Population.Count > c.Grid.Width*c.Grid.Height {
		return fmt.Errorf("%w: population count %d exceeds patch count %d",
			ErrInvalidConfiguration, c.Population.Count, c.Grid.Width*c.Grid.Height)
	}
	if c.Population.MaxVision < 1 {
		return fmt.Errorf("%w: max_vision must be at least 1 (got %d)",
			ErrInvalidConfiguration, c.Population.MaxVision)
	}
	if c.Population.MaxMetabolism < 1 {
		return fmt.Errorf("%w: max_metabolism must be at least 1 (got %d)",
			ErrInvalidConfiguration, c.Population.MaxMetabolism)
	}
	if c.Population.MinLifeExpectancy < 1 {
		return fmt.Errorf("%w: min_life_expectancy must be at least 1 (got %d)",
			ErrInvalidConfiguration, c.Population.MinLifeExpectancy)
	}
	if c.Population.MinLifeExpectancy > c.Population.MaxLifeExpectancy {
		return fmt.Errorf("%w: life expectancy range inverted (%d > %d)",
			ErrInvalidConfiguration, c.Population.MinLifeExpectancy, c.Population.MaxLifeExpectancy)
	}
	if c.Wealth.UniformAmount < 0 {
		return fmt.Errorf("%w: uniform_amount must not be negative (got %d)",
			ErrInvalidConfiguration, c.Wealth.UniformAmount)
	}
	switch c.Policy.Movement {
	case MovementStepToward, MovementJumpTo:
	default:
		return fmt.Errorf("%w: unknown movement policy %q",
			ErrInvalidConfiguration, c.Policy.Movement)
	}
	switch c.Policy.Harvest {
	case HarvestShared, HarvestExclusive:
	default:
		return fmt.Errorf("%w: unknown harvest policy %q",
			ErrInvalidConfiguration, c.Policy.Harvest)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
