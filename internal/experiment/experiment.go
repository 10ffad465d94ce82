// Package experiment wires a config file to a loaded model: it loads the
// document, applies overrides, runs a simulation or scan, scores the
// trajectories and records the run.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/biomodel"
	"github.com/san-kum/biosim/internal/config"
	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/scan"
	"github.com/san-kum/biosim/internal/storage"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Experiment struct {
	cfg   *config.Config
	model *biomodel.BioModel
	log   *zap.Logger
}

// Outcome is one finished simulation.
type Outcome struct {
	Config  engine.Config
	Results *engine.Results
	Metrics map[string]float64
	Elapsed time.Duration
}

// ScanOutcome is one finished sweep.
type ScanOutcome struct {
	Knob    string
	Points  []scan.Point
	Elapsed time.Duration
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup validates the config, loads the model file and applies overrides.
func (e *Experiment) Setup(opts ...biomodel.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if e.cfg.Model == "" {
		return fmt.Errorf("%w: model path is empty", config.ErrInvalid)
	}

	opts = append([]biomodel.Option{
		biomodel.WithLogger(e.log),
		biomodel.WithMaxSteps(e.cfg.MaxSteps),
		biomodel.WithMaxValues(e.cfg.MaxValues),
	}, opts...)
	b, err := biomodel.LoadFile(e.cfg.Model, opts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", e.cfg.Model, err)
	}
	if err := e.cfg.Apply(b); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}

	if m := e.cfg.Simulation().Method; e.cfg.Method != "" && m != e.cfg.Method {
		e.log.Warn("unknown method, falling back", zap.String("method", e.cfg.Method), zap.String("using", m))
	}

	e.model = b
	e.log.Info("model loaded",
		zap.String("path", e.cfg.Model),
		zap.Int("species", len(b.SpeciesIDs())),
		zap.Int("reactions", len(b.RateConstants())),
	)
	return nil
}

// Model is the loaded model, or nil before Setup.
func (e *Experiment) Model() *biomodel.BioModel {
	return e.model
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.model == nil {
		return nil, ErrNotSetup
	}
	sim := e.cfg.Simulation()

	start := time.Now()
	res, err := e.model.Simulate(ctx, biomodel.SimulationConfig{
		TimeEnd:  sim.TimeEnd,
		TimeStep: sim.TimeStep,
		Method:   sim.Method,
	})
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Config:  sim,
		Results: res,
		Metrics: analysis.Evaluate(res, analysis.DefaultMetrics()...),
		Elapsed: time.Since(start),
	}, nil
}

// Scan sweeps the parameter or reaction named in the scan section.
func (e *Experiment) Scan(ctx context.Context) (*ScanOutcome, error) {
	if e.model == nil {
		return nil, ErrNotSetup
	}
	s := e.cfg.Scan
	values := s.ScanValues()

	start := time.Now()
	var (
		points []scan.Point
		err    error
		knob   string
	)
	switch {
	case s.Reaction != "":
		knob = s.Reaction
		points, err = e.model.RateConstantScan(ctx, s.Reaction, values)
	case s.Parameter != "":
		knob = s.Parameter
		points, err = e.model.ParameterScan(ctx, s.Parameter, values)
	default:
		return nil, fmt.Errorf("%w: scan needs a parameter or a reaction", config.ErrInvalid)
	}
	if err != nil {
		return nil, err
	}

	return &ScanOutcome{Knob: knob, Points: points, Elapsed: time.Since(start)}, nil
}

func (e *Experiment) metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Model:  modelName(e.cfg.Model),
		Source: e.cfg.Model,
	}
}

// Record stores out and returns the run id.
func (e *Experiment) Record(st *storage.Store, out *Outcome) (string, error) {
	meta := e.metadata()
	meta.Method = out.Config.Method
	meta.TimeEnd = out.Config.TimeEnd
	meta.TimeStep = out.Config.TimeStep
	meta.Metrics = finite(out.Metrics)
	return st.Save(meta, out.Results)
}

func (e *Experiment) RecordScan(st *storage.Store, out *ScanOutcome) (string, error) {
	meta := e.metadata()
	meta.Method = scan.Window.Method
	meta.TimeEnd = scan.Window.TimeEnd
	meta.TimeStep = scan.Window.TimeStep
	return st.SaveScan(meta, out.Knob, out.Points)
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// finite drops NaN and infinite metrics, which encoding/json rejects.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
