// Package scan sweeps one model value across a list of candidates and runs a
// simulation for each, restoring the original value afterwards no matter how
// the sweep ends.
package scan

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/integrators"
)

// Window is the simulation every scan point runs. It is fixed so points from
// different scans stay comparable.
var Window = engine.Config{TimeEnd: 100, TimeStep: 0.1, Method: integrators.MethodRK4}

type Simulator interface {
	Simulate(ctx context.Context, cfg engine.Config) (*engine.Results, error)
}

// Knob is a named scalar the driver can read and write. Set is expected to
// re-sync whatever simulator the driver is using.
type Knob interface {
	Name() string
	Get() (float64, error)
	Set(v float64) error
}

type Observer interface {
	ObservePoint(knob string, value float64)
}

type Point struct {
	Value   float64         `json:"parameter_value"`
	Results *engine.Results `json:"results"`
}

// PointError identifies the value a sweep failed on.
type PointError struct {
	Knob  string
	Value float64
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("scan %s=%g: %v", e.Knob, e.Value, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

type Option func(*Driver)

func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(d *Driver) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

type Driver struct {
	sim       Simulator
	log       *zap.Logger
	observers []Observer
}

func NewDriver(sim Simulator, opts ...Option) *Driver {
	d := &Driver{sim: sim, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run simulates once per value, in order. It fails before simulating
// anything when the knob cannot be read. The knob's original value is put
// back on every return path; a failed restore is joined into the error.
func (d *Driver) Run(ctx context.Context, knob Knob, values []float64) (points []Point, err error) {
	original, err := knob.Get()
	if err != nil {
		return nil, err
	}

	defer func() {
		if rerr := knob.Set(original); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore %s=%g: %w", knob.Name(), original, rerr))
			points = nil
		}
	}()

	d.log.Debug("scan start", zap.String("knob", knob.Name()), zap.Int("points", len(values)), zap.Float64("original", original))

	points = make([]Point, 0, len(values))
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := knob.Set(v); err != nil {
			return nil, &PointError{Knob: knob.Name(), Value: v, Err: err}
		}
		res, err := d.sim.Simulate(ctx, Window)
		if err != nil {
			d.log.Warn("scan point failed", zap.String("knob", knob.Name()), zap.Float64("value", v), zap.Error(err))
			return nil, &PointError{Knob: knob.Name(), Value: v, Err: err}
		}
		for _, o := range d.observers {
			o.ObservePoint(knob.Name(), v)
		}
		points = append(points, Point{Value: v, Results: res})
	}

	return points, nil
}

// Values returns n evenly spaced values from from to to inclusive.
func Values(from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{from}
	}
	step := (to - from) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	out[n-1] = to
	return out
}
