package biomodel

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/network"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/scan"
)

// SimulationConfig is the host-facing run request. An empty Method means rk4.
type SimulationConfig struct {
	TimeEnd  float64 `json:"time_end" yaml:"time_end"`
	TimeStep float64 `json:"time_step" yaml:"time_step"`
	Method   string  `json:"method,omitempty" yaml:"method,omitempty"`
}

// UnmarshalJSON also accepts the camelCase keys timeEnd and timeStep. The
// snake_case key wins when both are present.
func (c *SimulationConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		TimeEnd       *float64 `json:"time_end"`
		TimeStep      *float64 `json:"time_step"`
		TimeEndCamel  *float64 `json:"timeEnd"`
		TimeStepCamel *float64 `json:"timeStep"`
		Method        string   `json:"method"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pick := func(snake, camel *float64) float64 {
		switch {
		case snake != nil:
			return *snake
		case camel != nil:
			return *camel
		}
		return 0
	}
	*c = SimulationConfig{
		TimeEnd:  pick(raw.TimeEnd, raw.TimeEndCamel),
		TimeStep: pick(raw.TimeStep, raw.TimeStepCamel),
		Method:   raw.Method,
	}
	return nil
}

func (c SimulationConfig) engineConfig() engine.Config {
	method := c.Method
	if method == "" {
		method = integrators.DefaultMethod
	}
	return engine.Config{TimeEnd: c.TimeEnd, TimeStep: c.TimeStep, Method: method}
}

type options struct {
	log          *zap.Logger
	maxSteps     int
	maxValues    int
	runObservers []engine.Observer
	scanObserver []scan.Observer
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

// WithMaxValues caps how many values one simulation may record.
func WithMaxValues(n int) Option {
	return func(o *options) { o.maxValues = n }
}

// WithObserver attaches o to simulations and, when it also implements
// scan.Observer, to scans.
func WithObserver(o engine.Observer) Option {
	return func(opts *options) {
		if o == nil {
			return
		}
		opts.runObservers = append(opts.runObservers, o)
		if so, ok := o.(scan.Observer); ok {
			opts.scanObserver = append(opts.scanObserver, so)
		}
	}
}

type BioModel struct {
	mu     sync.Mutex
	model  *network.Model
	eng    *engine.Engine
	driver *scan.Driver
	log    *zap.Logger
}

// Load parses an SBML document and builds an engine for it.
func Load(text string, opts ...Option) (*BioModel, error) {
	o := collect(opts)
	m, err := sbml.ParseString(text, sbml.WithLogger(o.log.Named("sbml")))
	if err != nil {
		return nil, err
	}
	return build(m, o), nil
}

func LoadFile(path string, opts ...Option) (*BioModel, error) {
	o := collect(opts)
	m, err := sbml.ParseFile(path, sbml.WithLogger(o.log.Named("sbml")))
	if err != nil {
		return nil, err
	}
	return build(m, o), nil
}

// FromModel wraps an already built network. The BioModel keeps its own copy.
func FromModel(m *network.Model, opts ...Option) *BioModel {
	return build(m.Clone(), collect(opts))
}

func collect(opts []Option) *options {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func build(m *network.Model, o *options) *BioModel {
	engOpts := []engine.Option{
		engine.WithLogger(o.log.Named("engine")),
		engine.WithMaxSteps(o.maxSteps),
		engine.WithMaxValues(o.maxValues),
	}
	for _, obs := range o.runObservers {
		engOpts = append(engOpts, engine.WithObserver(obs))
	}
	eng := engine.New(m, engOpts...)

	scanOpts := []scan.Option{scan.WithLogger(o.log.Named("scan"))}
	for _, obs := range o.scanObserver {
		scanOpts = append(scanOpts, scan.WithObserver(obs))
	}

	return &BioModel{
		model:  m,
		eng:    eng,
		driver: scan.NewDriver(eng, scanOpts...),
		log:    o.log,
	}
}

func (b *BioModel) SpeciesIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.SpeciesIDs()
}

func (b *BioModel) SpeciesNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.SpeciesNames()
}

func (b *BioModel) Parameters() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.ParameterValues()
}

func (b *BioModel) InitialConcentrations() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.InitialConcentrations()
}

// Model returns a copy of the current network.
func (b *BioModel) Model() *network.Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.Clone()
}

func (b *BioModel) Simulate(ctx context.Context, cfg SimulationConfig) (*engine.Results, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.Simulate(ctx, cfg.engineConfig())
}

func (b *BioModel) SetInitialConcentration(id string, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apply(func(m *network.Model) error { return m.SetInitialConcentration(id, value) })
}

// SetParameter records the value; rate constants are not derived from
// parameters, so trajectories do not change.
func (b *BioModel) SetParameter(id string, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apply(func(m *network.Model) error { return m.SetParameter(id, value) })
}

func (b *BioModel) SetRateConstant(reactionID string, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apply(func(m *network.Model) error { return m.SetRateConstant(reactionID, value) })
}

// apply runs edit and re-syncs the engine. Callers hold b.mu.
func (b *BioModel) apply(edit func(*network.Model) error) error {
	if err := edit(b.model); err != nil {
		return err
	}
	return b.eng.Update(b.model)
}

// ParameterScan runs scan.Window once per value of the named parameter and
// restores the parameter afterwards.
func (b *BioModel) ParameterScan(ctx context.Context, id string, values []float64) ([]scan.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.driver.Run(ctx, parameterKnob{b: b, id: id}, values)
}

// RateConstantScan sweeps one reaction's rate constant.
func (b *BioModel) RateConstantScan(ctx context.Context, reactionID string, values []float64) ([]scan.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.driver.Run(ctx, rateKnob{b: b, id: reactionID}, values)
}

func (b *BioModel) Stoichiometry() [][]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.Stoichiometry()
}

func (b *BioModel) RateConstants() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.RateConstants()
}

// Rates returns reaction rates at the initial concentrations.
func (b *BioModel) Rates() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.Rates()
}

func (b *BioModel) Derivatives() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.Derivatives()
}
