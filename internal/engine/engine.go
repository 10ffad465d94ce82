package engine

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/integrators"
	"github.com/san-kum/biosim/internal/network"
	"github.com/san-kum/biosim/internal/ode"
)

const (
	// DefaultMaxSteps bounds a single Simulate call.
	DefaultMaxSteps = 10_000_000

	// DefaultMaxValues bounds the recorded trajectory, (steps+1) * species
	// float64 values, at about 800 MB.
	DefaultMaxValues = 100_000_000

	largeRunSteps = 10_000
)

type Config struct {
	TimeEnd  float64 `json:"time_end" yaml:"time_end"`
	TimeStep float64 `json:"time_step" yaml:"time_step"`
	Method   string  `json:"method" yaml:"method"`
}

// Steps is floor(TimeEnd / TimeStep). It does not validate the config.
func (c Config) Steps() int {
	return int(math.Floor(c.TimeEnd / c.TimeStep))
}

// Run describes one finished Simulate call for observers.
type Run struct {
	Method  string
	Steps   int
	Species int
	Elapsed time.Duration
	Err     error
}

type Observer interface {
	ObserveRun(r Run)
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxSteps caps the number of steps a single Simulate call may take.
// Values below one are ignored.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithMaxValues caps the number of values a single Simulate call may record.
// Values below one are ignored.
func WithMaxValues(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxValues = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

type Engine struct {
	model     *network.Model
	stoich    [][]float64
	reactants [][]int
	rates     []float64
	state     ode.State

	flux ode.State
	dx   ode.State

	maxSteps  int
	maxValues int
	log       *zap.Logger
	observers []Observer
}

// New builds an engine from a private copy of model.
func New(model *network.Model, opts ...Option) *Engine {
	e := &Engine{
		maxSteps:  DefaultMaxSteps,
		maxValues: DefaultMaxValues,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.build(model.Clone())
	return e
}

// build allocates everything from snap; nothing is shared with the previous
// snapshot.
func (e *Engine) build(snap *network.Model) {
	nSpecies := len(snap.Species)
	nReactions := len(snap.Reactions)

	stoich := make([][]float64, nSpecies)
	for i := range stoich {
		stoich[i] = make([]float64, nReactions)
	}
	reactants := make([][]int, nReactions)
	rates := make([]float64, nReactions)

	for j, r := range snap.Reactions {
		reactants[j] = make([]int, 0, len(r.Reactants))
		for _, id := range r.Reactants {
			// unknown species contribute nothing
			if i, ok := snap.SpeciesIndex(id); ok {
				stoich[i][j] -= 1.0
				reactants[j] = append(reactants[j], i)
			}
		}
		for _, id := range r.Products {
			if i, ok := snap.SpeciesIndex(id); ok {
				stoich[i][j] += 1.0
			}
		}
		rates[j] = r.RateConstant
	}

	e.model = snap
	e.stoich = stoich
	e.reactants = reactants
	e.rates = rates
	e.state = make(ode.State, nSpecies)
	e.flux = make(ode.State, nReactions)
	e.dx = make(ode.State, nSpecies)
	e.reset()
}

func (e *Engine) reset() {
	for i, s := range e.model.Species {
		e.state[i] = s.InitialConcentration
	}
}

// Update re-syncs the engine with an edited model. The species and reaction
// counts must match the current snapshot; on mismatch the engine is left
// unchanged.
func (e *Engine) Update(model *network.Model) error {
	if !e.model.SameShape(model) {
		return &ConfigError{
			Message: "species/reaction counts changed; build a new engine instead",
			Err:     ErrShapeMismatch,
		}
	}
	e.build(model.Clone())
	return nil
}

func (e *Engine) validate(cfg Config) error {
	if math.IsNaN(cfg.TimeStep) || math.IsInf(cfg.TimeStep, 0) || cfg.TimeStep <= 0 {
		return &ConfigError{Field: "time_step", Message: "must be positive and finite"}
	}
	if math.IsNaN(cfg.TimeEnd) || math.IsInf(cfg.TimeEnd, 0) || cfg.TimeEnd <= 0 {
		return &ConfigError{Field: "time_end", Message: "must be positive and finite"}
	}
	steps := cfg.TimeEnd / cfg.TimeStep
	if steps > float64(e.maxSteps) {
		return &ConfigError{
			Field:   "time_step",
			Message: "yields more steps than the engine allows",
			Err:     ErrStepLimit,
		}
	}
	if values := (math.Floor(steps) + 1) * float64(len(e.state)); values > float64(e.maxValues) {
		return &ConfigError{
			Field:   "time_end",
			Message: "trajectory would record more values than the engine allows",
			Err:     ErrStepLimit,
		}
	}
	return nil
}

// Simulate integrates from t=0 to cfg.TimeEnd. State is reset to the initial
// concentrations first, so repeated calls with the same config agree.
// Negative concentrations are clamped to zero after every step.
func (e *Engine) Simulate(ctx context.Context, cfg Config) (res *Results, err error) {
	start := time.Now()
	method := integrators.Resolve(cfg.Method)
	steps := 0
	defer func() {
		run := Run{Method: method, Steps: steps, Species: len(e.state), Elapsed: time.Since(start), Err: err}
		for _, o := range e.observers {
			o.ObserveRun(run)
		}
	}()

	if err := e.validate(cfg); err != nil {
		return nil, err
	}
	steps = cfg.Steps()
	dt := cfg.TimeStep

	if steps > largeRunSteps {
		e.log.Warn("large simulation", zap.Int("steps", steps), zap.String("method", method))
	}
	e.log.Debug("simulate",
		zap.Float64("time_end", cfg.TimeEnd),
		zap.Float64("time_step", dt),
		zap.String("method", method),
		zap.Int("points", steps+1),
	)

	integ := integrators.Lookup(method)
	e.reset()

	res = newResults(steps, e.model.SpeciesNames())
	res.record(0, e.state)

	x := e.state.Clone()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		x = integ.Step(e, x, float64(i)*dt, dt)
		t := float64(i+1) * dt

		if k := x.FirstInvalid(); k >= 0 {
			return nil, &StepError{Step: i + 1, Time: t, Species: e.model.Species[k].ID, Err: ErrNonFinite}
		}
		x.ClampNonNegative()
		res.record(t, x)
	}
	copy(e.state, x)

	e.log.Debug("simulation complete", zap.Int("points", res.Len()))
	return res, nil
}

// Derive implements ode.System. The returned slice is reused by the next call.
func (e *Engine) Derive(x ode.State, _ float64) ode.State {
	for j, k := range e.rates {
		rate := k
		for _, i := range e.reactants[j] {
			rate *= math.Max(x[i], 0)
		}
		e.flux[j] = rate
	}
	for i, row := range e.stoich {
		sum := 0.0
		for j, coef := range row {
			sum += coef * e.flux[j]
		}
		e.dx[i] = sum
	}
	return e.dx
}

func (e *Engine) StateDim() int { return len(e.state) }

// State returns a copy of the live concentration vector.
func (e *Engine) State() ode.State { return e.state.Clone() }

// Rates returns the reaction rates at the initial concentrations.
func (e *Engine) Rates() []float64 {
	e.reset()
	e.Derive(e.state, 0)
	return append([]float64(nil), e.flux...)
}

// Derivatives returns dX/dt at the initial concentrations.
func (e *Engine) Derivatives() ode.State {
	e.reset()
	return e.Derive(e.state, 0).Clone()
}

// Stoichiometry returns a copy of the species-by-reaction matrix.
func (e *Engine) Stoichiometry() [][]float64 {
	out := make([][]float64, len(e.stoich))
	for i, row := range e.stoich {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (e *Engine) RateConstants() []float64 {
	return append([]float64(nil), e.rates...)
}

// Snapshot returns a copy of the model the engine is working from.
func (e *Engine) Snapshot() *network.Model {
	return e.model.Clone()
}
