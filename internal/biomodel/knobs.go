package biomodel

import "github.com/san-kum/biosim/internal/network"

// Knobs run inside a scan, which already holds b.mu.

type parameterKnob struct {
	b  *BioModel
	id string
}

func (k parameterKnob) Name() string { return k.id }

func (k parameterKnob) Get() (float64, error) { return k.b.model.Parameter(k.id) }

func (k parameterKnob) Set(v float64) error {
	return k.b.apply(func(m *network.Model) error { return m.SetParameter(k.id, v) })
}

type rateKnob struct {
	b  *BioModel
	id string
}

func (k rateKnob) Name() string { return k.id }

func (k rateKnob) Get() (float64, error) { return k.b.model.RateConstant(k.id) }

func (k rateKnob) Set(v float64) error {
	return k.b.apply(func(m *network.Model) error { return m.SetRateConstant(k.id, v) })
}
