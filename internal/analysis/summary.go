package analysis

import (
	"math"

	"github.com/san-kum/biosim/internal/engine"
)

type SpeciesSummary struct {
	Name     string  `json:"name"`
	Initial  float64 `json:"initial"`
	Final    float64 `json:"final"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	PeakTime float64 `json:"peak_time"`
}

// Summarize reduces each species trajectory to a few numbers. PeakTime is
// the first time the maximum is reached.
func Summarize(res *engine.Results) []SpeciesSummary {
	if res == nil || res.Len() == 0 {
		return nil
	}
	out := make([]SpeciesSummary, res.NumSpecies)
	for i := range out {
		s := SpeciesSummary{
			Name:    res.SpeciesNames[i],
			Initial: res.At(0, i),
			Min:     math.Inf(1),
			Max:     math.Inf(-1),
		}
		for n := 0; n < res.Len(); n++ {
			v := res.At(n, i)
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
				s.PeakTime = res.Time[n]
			}
		}
		s.Final = res.At(res.Len()-1, i)
		out[i] = s
	}
	return out
}
