package scan_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/network"
	"github.com/san-kum/biosim/internal/scan"
)

type fakeKnob struct {
	name    string
	value   float64
	missing bool
	failOn  map[float64]error
	history []float64
}

func (k *fakeKnob) Name() string { return k.name }

func (k *fakeKnob) Get() (float64, error) {
	if k.missing {
		return 0, &network.LookupError{Kind: network.KindParameter, ID: k.name}
	}
	return k.value, nil
}

func (k *fakeKnob) Set(v float64) error {
	if err := k.failOn[v]; err != nil {
		return err
	}
	k.value = v
	k.history = append(k.history, v)
	return nil
}

type fakeSimulator struct {
	knob    *fakeKnob
	configs []engine.Config
	seen    []float64
	failAt  float64
	cancel  context.CancelFunc
}

var errBoom = errors.New("boom")

func (s *fakeSimulator) Simulate(ctx context.Context, cfg engine.Config) (*engine.Results, error) {
	s.configs = append(s.configs, cfg)
	s.seen = append(s.seen, s.knob.value)
	if s.cancel != nil && len(s.seen) == 1 {
		s.cancel()
	}
	if s.failAt != 0 && s.knob.value == s.failAt {
		return nil, errBoom
	}
	return &engine.Results{
		Time:         []float64{0},
		Values:       []float64{s.knob.value},
		SpeciesNames: []string{"X"},
		NumSpecies:   1,
	}, nil
}

type countingObserver struct{ values []float64 }

func (o *countingObserver) ObservePoint(_ string, v float64) { o.values = append(o.values, v) }

// rateKnob drives a real engine through its host model.
type rateKnob struct {
	model    *network.Model
	eng      *engine.Engine
	reaction string
}

func (k *rateKnob) Name() string          { return k.reaction }
func (k *rateKnob) Get() (float64, error) { return k.model.RateConstant(k.reaction) }
func (k *rateKnob) Set(v float64) error {
	if err := k.model.SetRateConstant(k.reaction, v); err != nil {
		return err
	}
	return k.eng.Update(k.model)
}

var _ = Describe("Driver", func() {
	var (
		ctx  context.Context
		knob *fakeKnob
		sim  *fakeSimulator
	)

	BeforeEach(func() {
		ctx = context.Background()
		knob = &fakeKnob{name: "k1", value: 0.5}
		sim = &fakeSimulator{knob: knob}
	})

	Context("when every point succeeds", func() {
		It("pairs each value with its results in order", func() {
			points, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1, 2, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(3))
			for i, v := range []float64{1, 2, 3} {
				Expect(points[i].Value).To(Equal(v))
				Expect(points[i].Results.Values).To(Equal([]float64{v}))
			}
			Expect(sim.seen).To(Equal([]float64{1, 2, 3}))
		})

		It("restores the original value", func() {
			_, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1, 2, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(knob.value).To(Equal(0.5))
			Expect(knob.history).To(Equal([]float64{1, 2, 3, 0.5}))
		})

		It("always uses the fixed window", func() {
			_, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1, 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.configs).To(HaveEach(engine.Config{TimeEnd: 100, TimeStep: 0.1, Method: "rk4"}))
		})

		It("reports each point to observers", func() {
			obs := &countingObserver{}
			_, err := scan.NewDriver(sim, scan.WithObserver(obs)).Run(ctx, knob, []float64{4, 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.values).To(Equal([]float64{4, 5}))
		})

		It("returns an empty sweep for no values and still restores", func() {
			points, err := scan.NewDriver(sim).Run(ctx, knob, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(BeEmpty())
			Expect(sim.configs).To(BeEmpty())
			Expect(knob.value).To(Equal(0.5))
		})
	})

	Context("when the knob does not exist", func() {
		It("fails before running anything", func() {
			knob.missing = true
			points, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1, 2})
			Expect(err).To(MatchError(network.ErrNotFound))
			Expect(points).To(BeNil())
			Expect(sim.configs).To(BeEmpty())
			Expect(knob.history).To(BeEmpty())
		})
	})

	Context("when a simulation fails mid-sweep", func() {
		It("returns the failing value and restores the original", func() {
			sim.failAt = 2
			points, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1, 2, 3})
			Expect(points).To(BeNil())
			Expect(err).To(MatchError(errBoom))

			var pe *scan.PointError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Value).To(Equal(2.0))
			Expect(pe.Knob).To(Equal("k1"))

			Expect(knob.value).To(Equal(0.5))
			Expect(sim.seen).To(Equal([]float64{1, 2}))
		})
	})

	Context("when setting a value fails", func() {
		It("restores the original value", func() {
			knob.failOn = map[float64]error{7: errBoom}
			_, err := scan.NewDriver(sim).Run(ctx, knob, []float64{6, 7, 8})
			Expect(err).To(MatchError(errBoom))
			Expect(knob.value).To(Equal(0.5))
		})
	})

	Context("when the restore itself fails", func() {
		It("joins the restore error into the result", func() {
			restoreErr := errors.New("restore refused")
			knob.failOn = map[float64]error{0.5: restoreErr}
			points, err := scan.NewDriver(sim).Run(ctx, knob, []float64{1})
			Expect(points).To(BeNil())
			Expect(err).To(MatchError(restoreErr))
			Expect(err.Error()).To(ContainSubstring("restore k1=0.5"))
		})
	})

	Context("when the context is canceled", func() {
		It("stops between points and restores the original", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()
			sim.cancel = cancel

			points, err := scan.NewDriver(sim).Run(cctx, knob, []float64{1, 2, 3})
			Expect(err).To(MatchError(context.Canceled))
			Expect(points).To(BeNil())
			Expect(sim.seen).To(Equal([]float64{1}))
			Expect(knob.value).To(Equal(0.5))
		})
	})

	Context("with a real engine", func() {
		It("produces distinct trajectories per rate constant and restores it", func() {
			m := network.New()
			m.AddSpecies(network.Species{ID: "A", Name: "A", InitialConcentration: 1})
			m.AddSpecies(network.Species{ID: "B", Name: "B"})
			m.AddReaction(network.Reaction{ID: "r1", Reactants: []string{"A"}, Products: []string{"B"}, RateConstant: network.DefaultRateConstant})
			eng := engine.New(m)
			k := &rateKnob{model: m, eng: eng, reaction: "r1"}

			points, err := scan.NewDriver(eng).Run(ctx, k, []float64{0.01, 0.05})
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(2))
			Expect(points[0].Results.Len()).To(Equal(1001))

			slow := points[0].Results.Final()
			fast := points[1].Results.Final()
			Expect(slow[0]).To(BeNumerically(">", fast[0]))
			Expect(slow[0] + slow[1]).To(BeNumerically("~", 1.0, 1e-9))

			Expect(eng.RateConstants()).To(Equal([]float64{network.DefaultRateConstant}))
			v, err := m.RateConstant("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(network.DefaultRateConstant))
		})
	})
})

var _ = Describe("Values", func() {
	It("spaces values evenly and hits both ends", func() {
		Expect(scan.Values(0.05, 0.2, 4)).To(HaveLen(4))
		vs := scan.Values(0, 1, 5)
		Expect(vs).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
	})

	It("handles degenerate counts", func() {
		Expect(scan.Values(0, 1, 0)).To(BeNil())
		Expect(scan.Values(3, 9, 1)).To(Equal([]float64{3}))
	})
})
