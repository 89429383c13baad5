// Package config loads the run configuration from a yaml or json file with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/core/solve"
	"github.com/mlaoire/pvdispatch/core/tariff"
	"github.com/mlaoire/pvdispatch/infra/influx"
	"github.com/mlaoire/pvdispatch/infra/mqtt"
)

// Config is the full configuration surface of a run. Nothing in the model
// logic is hardwired; everything tunable lives here.
type Config struct {
	Input   InputConfig   `json:"input"`
	Battery model.Battery `json:"battery"`
	Costs   CostsConfig   `json:"costs"`
	Solver  SolverConfig  `json:"solver"`
	Output  OutputConfig  `json:"output"`
	Influx  influx.Config `json:"influx"`
	MQTT    mqtt.Config   `json:"mqtt"`
}

// InputConfig locates the time-series CSV. StepMinutes, when positive,
// overrides the step duration derived from the timestamps.
type InputConfig struct {
	CSVPath     string  `json:"csv_path"`
	StepMinutes float64 `json:"step_minutes"`
}

// CostsConfig defines the tariff rate table and the feed-in price, per kWh.
type CostsConfig struct {
	DayRate   float64 `json:"day_rate"`
	NightRate float64 `json:"night_rate"`
	BoostRate float64 `json:"boost_rate"`
	SellPrice float64 `json:"sell_price"`
}

// Rates returns the time-of-use rate table.
func (c CostsConfig) Rates() tariff.Rates {
	return tariff.Rates{Boost: c.BoostRate, Night: c.NightRate, Day: c.DayRate}
}

// Validate checks the pricing fields.
func (c CostsConfig) Validate() error {
	if c.DayRate < 0 || c.NightRate < 0 || c.BoostRate < 0 {
		return fmt.Errorf("costs: negative buy rate")
	}
	if c.SellPrice < 0 {
		return fmt.Errorf("costs: negative sell price")
	}
	return nil
}

// SolverConfig bounds the engine's effort.
type SolverConfig struct {
	// TimeLimitSeconds caps the wall clock; negative disables the cap.
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	// Gap is the relative optimality-gap tolerance.
	Gap     float64 `json:"gap"`
	Verbose bool    `json:"verbose"`
}

// SetDefaults applies the production solve budget.
func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 300
	}
	if c.Gap == 0 {
		c.Gap = 0.01
	}
}

// Controls converts the section into engine controls.
func (c SolverConfig) Controls() solve.Controls {
	tl := solve.NoTimeLimit
	if c.TimeLimitSeconds >= 0 {
		tl = time.Duration(c.TimeLimitSeconds * float64(time.Second))
	}
	return solve.Controls{TimeLimit: tl, Gap: c.Gap, Verbose: c.Verbose}
}

// Validate checks the solver controls.
func (c SolverConfig) Validate() error {
	if c.Gap < 0 || c.Gap >= 1 {
		return fmt.Errorf("solver: gap %v out of [0,1)", c.Gap)
	}
	return nil
}

// OutputConfig locates the result files. Empty paths skip the writer.
type OutputConfig struct {
	CSVPath  string `json:"csv_path"`
	JSONPath string `json:"json_path"`
}

// SetDefaults applies the default CSV destination.
func (c *OutputConfig) SetDefaults() {
	if c.CSVPath == "" {
		c.CSVPath = "optimization_results.csv"
	}
}

// Load reads the configuration at path, applying PV_ environment overrides
// (PV_SOLVER__GAP=0.05 overrides solver.gap) and per-section defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// The callback rewrites PV_SOLVER__GAP to solver.gap, so the provider
	// must split on "." for the key to nest.
	if err := k.Load(env.Provider("PV_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pv_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Solver.SetDefaults()
	cfg.Output.SetDefaults()
	if cfg.Input.CSVPath == "" {
		return nil, fmt.Errorf("input: csv_path is required")
	}
	if err := cfg.Battery.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Costs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
