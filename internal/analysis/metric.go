package analysis

import (
	"math"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/ode"
)

// Metric accumulates one scalar over a trajectory, one time point at a time.
type Metric interface {
	Name() string
	Observe(x []float64, t float64)
	Value() float64
	Reset()
}

// DefaultMetrics is the set stored with every saved run.
func DefaultMetrics() []Metric {
	return []Metric{NewMassDrift(), NewSettlingTime(1e-6), NewActivity()}
}

// Evaluate replays res through each metric.
func Evaluate(res *engine.Results, metrics ...Metric) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		m.Reset()
		for n := 0; n < res.Len(); n++ {
			m.Observe(res.Row(n), res.Time[n])
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// MassDrift is the largest deviation of total concentration from its
// starting value. It is zero, up to rounding, for networks whose reactions
// each conserve molecule count.
type MassDrift struct {
	start   float64
	drift   float64
	samples int
}

func NewMassDrift() *MassDrift { return &MassDrift{} }

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(x []float64, _ float64) {
	sum := ode.State(x).Sum()
	if m.samples == 0 {
		m.start = sum
	}
	m.drift = math.Max(m.drift, math.Abs(sum-m.start))
	m.samples++
}

func (m *MassDrift) Value() float64 { return m.drift }

func (m *MassDrift) Reset() {
	m.start, m.drift, m.samples = 0, 0, 0
}

// SettlingTime is the earliest time after which no species changes by more
// than tol between consecutive points. It is NaN when the run never settles.
type SettlingTime struct {
	tol     float64
	prev    []float64
	prevT   float64
	settled float64
}

func NewSettlingTime(tol float64) *SettlingTime {
	return &SettlingTime{tol: tol, settled: math.NaN()}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x []float64, t float64) {
	if s.prev == nil {
		s.prev = append([]float64(nil), x...)
		s.prevT = t
		return
	}
	still := true
	for i, v := range x {
		if math.Abs(v-s.prev[i]) > s.tol {
			still = false
			break
		}
	}
	switch {
	case !still:
		s.settled = math.NaN()
	case math.IsNaN(s.settled):
		s.settled = s.prevT
	}
	copy(s.prev, x)
	s.prevT = t
}

func (s *SettlingTime) Value() float64 { return s.settled }

func (s *SettlingTime) Reset() {
	s.prev = nil
	s.prevT = 0
	s.settled = math.NaN()
}

// Activity is the mean absolute change of the state between consecutive
// points, summed over species.
type Activity struct {
	prev    []float64
	sum     float64
	samples int
}

func NewActivity() *Activity { return &Activity{} }

func (a *Activity) Name() string { return "activity" }

func (a *Activity) Observe(x []float64, _ float64) {
	if a.prev != nil {
		for i, v := range x {
			a.sum += math.Abs(v - a.prev[i])
		}
		a.samples++
	} else {
		a.prev = make([]float64, len(x))
	}
	copy(a.prev, x)
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Activity) Reset() {
	a.prev = nil
	a.sum = 0
	a.samples = 0
}
