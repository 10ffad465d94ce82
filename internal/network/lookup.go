package network

type index struct {
	nSpecies, nParameters, nReactions int

	species    map[string]int
	parameters map[string]int
	reactions  map[string]int
}

func firstIndex(n int, id func(int) string) map[string]int {
	m := make(map[string]int, n)
	for i := 0; i < n; i++ {
		if _, ok := m[id(i)]; !ok {
			m[id(i)] = i
		}
	}
	return m
}

// lookup builds the id index on first use and again whenever a collection
// changes length.
func (m *Model) lookup() *index {
	if m.idx != nil &&
		m.idx.nSpecies == len(m.Species) &&
		m.idx.nParameters == len(m.Parameters) &&
		m.idx.nReactions == len(m.Reactions) {
		return m.idx
	}
	m.idx = &index{
		nSpecies:    len(m.Species),
		nParameters: len(m.Parameters),
		nReactions:  len(m.Reactions),
		species:     firstIndex(len(m.Species), func(i int) string { return m.Species[i].ID }),
		parameters:  firstIndex(len(m.Parameters), func(i int) string { return m.Parameters[i].ID }),
		reactions:   firstIndex(len(m.Reactions), func(i int) string { return m.Reactions[i].ID }),
	}
	return m.idx
}

func (m *Model) SpeciesIndex(id string) (int, bool) {
	i, ok := m.lookup().species[id]
	return i, ok
}

func (m *Model) ParameterIndex(id string) (int, bool) {
	i, ok := m.lookup().parameters[id]
	return i, ok
}

func (m *Model) ReactionIndex(id string) (int, bool) {
	i, ok := m.lookup().reactions[id]
	return i, ok
}

// Parameter returns the value of the named parameter.
func (m *Model) Parameter(id string) (float64, error) {
	i, ok := m.ParameterIndex(id)
	if !ok {
		return 0, &LookupError{Kind: KindParameter, ID: id}
	}
	return m.Parameters[i].Value, nil
}

// ParameterValue is the lenient read: unknown ids yield 1.0.
func (m *Model) ParameterValue(id string) float64 {
	v, err := m.Parameter(id)
	if err != nil {
		return 1.0
	}
	return v
}

func (m *Model) InitialConcentration(id string) (float64, error) {
	i, ok := m.SpeciesIndex(id)
	if !ok {
		return 0, &LookupError{Kind: KindSpecies, ID: id}
	}
	return m.Species[i].InitialConcentration, nil
}

func (m *Model) RateConstant(reactionID string) (float64, error) {
	i, ok := m.ReactionIndex(reactionID)
	if !ok {
		return 0, &LookupError{Kind: KindReaction, ID: reactionID}
	}
	return m.Reactions[i].RateConstant, nil
}

func (m *Model) SetInitialConcentration(id string, value float64) error {
	i, ok := m.SpeciesIndex(id)
	if !ok {
		return &LookupError{Kind: KindSpecies, ID: id}
	}
	m.Species[i].InitialConcentration = value
	return nil
}

func (m *Model) SetParameter(id string, value float64) error {
	i, ok := m.ParameterIndex(id)
	if !ok {
		return &LookupError{Kind: KindParameter, ID: id}
	}
	m.Parameters[i].Value = value
	return nil
}

func (m *Model) SetRateConstant(reactionID string, value float64) error {
	i, ok := m.ReactionIndex(reactionID)
	if !ok {
		return &LookupError{Kind: KindReaction, ID: reactionID}
	}
	m.Reactions[i].RateConstant = value
	return nil
}

// Validate rejects duplicate ids within each collection.
func (m *Model) Validate() error {
	checks := []struct {
		kind string
		n    int
		id   func(int) string
	}{
		{KindCompartment, len(m.Compartments), func(i int) string { return m.Compartments[i].ID }},
		{KindSpecies, len(m.Species), func(i int) string { return m.Species[i].ID }},
		{KindParameter, len(m.Parameters), func(i int) string { return m.Parameters[i].ID }},
		{KindReaction, len(m.Reactions), func(i int) string { return m.Reactions[i].ID }},
	}
	for _, c := range checks {
		seen := make(map[string]struct{}, c.n)
		for i := 0; i < c.n; i++ {
			id := c.id(i)
			if _, dup := seen[id]; dup {
				return &StructureError{Kind: c.kind, ID: id}
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}
