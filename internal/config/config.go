package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/scan"
)

const (
	DefaultTimeEnd  = 100.0
	DefaultTimeStep = 0.1
	DefaultPoints   = 5
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Model    string  `yaml:"model"`
	Method   string  `yaml:"method"`
	TimeEnd  float64 `yaml:"time_end"`
	TimeStep float64 `yaml:"time_step"`
	MaxSteps int     `yaml:"max_steps,omitempty"`
	// MaxValues caps (steps+1) * species recorded per simulation.
	MaxValues int `yaml:"max_values,omitempty"`

	InitialConcentrations map[string]float64 `yaml:"initial_concentrations,omitempty"`
	Parameters            map[string]float64 `yaml:"parameters,omitempty"`
	RateConstants         map[string]float64 `yaml:"rate_constants,omitempty"`

	Scan ScanConfig `yaml:"scan,omitempty"`
}

// ScanConfig names exactly one of Parameter or Reaction. Values wins over
// the From/To/Points range when both are given.
type ScanConfig struct {
	Parameter string    `yaml:"parameter,omitempty"`
	Reaction  string    `yaml:"reaction,omitempty"`
	Values    []float64 `yaml:"values,omitempty"`
	From      float64   `yaml:"from,omitempty"`
	To        float64   `yaml:"to,omitempty"`
	Points    int       `yaml:"points,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:    integrators.DefaultMethod,
		TimeEnd:   DefaultTimeEnd,
		TimeStep:  DefaultTimeStep,
		MaxSteps:  engine.DefaultMaxSteps,
		MaxValues: engine.DefaultMaxValues,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalid, field, msg)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (c *Config) Validate() error {
	if !finitePositive(c.TimeEnd) {
		return invalid("time_end", "must be positive and finite")
	}
	if !finitePositive(c.TimeStep) {
		return invalid("time_step", "must be positive and finite")
	}
	if c.MaxSteps < 0 {
		return invalid("max_steps", "must not be negative")
	}
	if c.MaxValues < 0 {
		return invalid("max_values", "must not be negative")
	}
	if c.Scan.Parameter != "" && c.Scan.Reaction != "" {
		return invalid("scan", "set parameter or reaction, not both")
	}
	if len(c.Scan.Values) == 0 && c.Scan.Points < 0 {
		return invalid("scan.points", "must not be negative")
	}
	return nil
}

// Simulation is the run window as an engine config.
func (c *Config) Simulation() engine.Config {
	return engine.Config{
		TimeEnd:  c.TimeEnd,
		TimeStep: c.TimeStep,
		Method:   integrators.Resolve(c.Method),
	}
}

// ScanValues returns the explicit values, or the evenly spaced range.
func (s ScanConfig) ScanValues() []float64 {
	if len(s.Values) > 0 {
		return append([]float64(nil), s.Values...)
	}
	n := s.Points
	if n == 0 {
		n = DefaultPoints
	}
	return scan.Values(s.From, s.To, n)
}

// Target is anything whose model values can be overridden.
type Target interface {
	SetInitialConcentration(id string, v float64) error
	SetParameter(id string, v float64) error
	SetRateConstant(reactionID string, v float64) error
}

// Apply writes the overrides into t in key order and stops at the first
// unknown id.
func (c *Config) Apply(t Target) error {
	steps := []struct {
		values map[string]float64
		set    func(string, float64) error
	}{
		{c.InitialConcentrations, t.SetInitialConcentration},
		{c.Parameters, t.SetParameter},
		{c.RateConstants, t.SetRateConstant},
	}
	for _, s := range steps {
		for _, id := range sortedKeys(s.values) {
			if err := s.set(id, s.values[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
