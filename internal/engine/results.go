package engine

import "github.com/san-kum/biosim/internal/ode"

// Results is a time series in time-major layout: Values holds NumSpecies
// entries per time point, so species i at point n is
// Values[n*NumSpecies+i].
type Results struct {
	Time         []float64 `json:"time"`
	Values       []float64 `json:"values"`
	SpeciesNames []string  `json:"species_names"`
	NumSpecies   int       `json:"num_species"`
}

func newResults(steps int, names []string) *Results {
	return &Results{
		Time:         make([]float64, 0, steps+1),
		Values:       make([]float64, 0, (steps+1)*len(names)),
		SpeciesNames: names,
		NumSpecies:   len(names),
	}
}

func (r *Results) record(t float64, x ode.State) {
	r.Time = append(r.Time, t)
	r.Values = append(r.Values, x...)
}

// Len is the number of time points.
func (r *Results) Len() int { return len(r.Time) }

// At returns species i at time point n.
func (r *Results) At(n, i int) float64 {
	return r.Values[n*r.NumSpecies+i]
}

// Row returns a copy of every species at time point n.
func (r *Results) Row(n int) []float64 {
	row := make([]float64, r.NumSpecies)
	copy(row, r.Values[n*r.NumSpecies:(n+1)*r.NumSpecies])
	return row
}

// Final returns the last recorded row, or nil for empty results.
func (r *Results) Final() []float64 {
	if r.Len() == 0 {
		return nil
	}
	return r.Row(r.Len() - 1)
}

// Trajectory returns species i over time, or nil when i is out of range.
func (r *Results) Trajectory(i int) []float64 {
	if i < 0 || i >= r.NumSpecies {
		return nil
	}
	traj := make([]float64, r.Len())
	for n := range traj {
		traj[n] = r.Values[n*r.NumSpecies+i]
	}
	return traj
}

// TrajectoryOf looks a species up by its display name.
func (r *Results) TrajectoryOf(name string) ([]float64, bool) {
	for i, n := range r.SpeciesNames {
		if n == name {
			return r.Trajectory(i), true
		}
	}
	return nil, false
}
