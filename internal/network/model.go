package network

// DefaultRateConstant is assigned to every loaded reaction. Kinetic-law math
// is not evaluated, so rate constants never come from the document.
const DefaultRateConstant = 0.1

const (
	KindSpecies     = "species"
	KindParameter   = "parameter"
	KindReaction    = "reaction"
	KindCompartment = "compartment"
)

type Compartment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Species struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Compartment          string  `json:"compartment"`
	InitialConcentration float64 `json:"initial_concentration"`
}

type Reaction struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Reactants    []string `json:"reactants"`
	Products     []string `json:"products"`
	RateConstant float64  `json:"rate_constant"`
	// KineticLaw is the raw text captured from the document, kept for display.
	KineticLaw string `json:"kinetic_law"`
}

type Parameter struct {
	ID       string  `json:"id"`
	Value    float64 `json:"value"`
	Constant bool    `json:"constant"`
}

// Model is a reaction network in first-appearance order.
type Model struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name,omitempty"`
	Compartments []Compartment `json:"compartments"`
	Species      []Species     `json:"species"`
	Reactions    []Reaction    `json:"reactions"`
	Parameters   []Parameter   `json:"parameters"`

	idx *index
}

func New() *Model {
	return &Model{
		Compartments: make([]Compartment, 0),
		Species:      make([]Species, 0),
		Reactions:    make([]Reaction, 0),
		Parameters:   make([]Parameter, 0),
	}
}

// Clone returns a deep copy that shares no memory with m.
func (m *Model) Clone() *Model {
	c := &Model{
		ID:           m.ID,
		Name:         m.Name,
		Compartments: make([]Compartment, len(m.Compartments)),
		Species:      make([]Species, len(m.Species)),
		Reactions:    make([]Reaction, len(m.Reactions)),
		Parameters:   make([]Parameter, len(m.Parameters)),
	}
	copy(c.Compartments, m.Compartments)
	copy(c.Species, m.Species)
	copy(c.Parameters, m.Parameters)
	for i, r := range m.Reactions {
		r.Reactants = append([]string(nil), r.Reactants...)
		r.Products = append([]string(nil), r.Products...)
		c.Reactions[i] = r
	}
	return c
}

func (m *Model) AddCompartment(c Compartment) {
	m.Compartments = append(m.Compartments, c)
	m.idx = nil
}

func (m *Model) AddSpecies(s Species) {
	m.Species = append(m.Species, s)
	m.idx = nil
}

func (m *Model) AddReaction(r Reaction) {
	m.Reactions = append(m.Reactions, r)
	m.idx = nil
}

func (m *Model) AddParameter(p Parameter) {
	m.Parameters = append(m.Parameters, p)
	m.idx = nil
}

func (m *Model) SpeciesIDs() []string {
	ids := make([]string, len(m.Species))
	for i, s := range m.Species {
		ids[i] = s.ID
	}
	return ids
}

func (m *Model) SpeciesNames() []string {
	names := make([]string, len(m.Species))
	for i, s := range m.Species {
		names[i] = s.Name
	}
	return names
}

// ParameterValues returns the parameter id to value mapping.
func (m *Model) ParameterValues() map[string]float64 {
	params := make(map[string]float64, len(m.Parameters))
	for i := len(m.Parameters) - 1; i >= 0; i-- {
		params[m.Parameters[i].ID] = m.Parameters[i].Value
	}
	return params
}

// InitialConcentrations returns the species id to initial concentration
// mapping.
func (m *Model) InitialConcentrations() map[string]float64 {
	conc := make(map[string]float64, len(m.Species))
	for i := len(m.Species) - 1; i >= 0; i-- {
		conc[m.Species[i].ID] = m.Species[i].InitialConcentration
	}
	return conc
}

// SameShape reports whether o has the same species and reaction counts.
func (m *Model) SameShape(o *Model) bool {
	return len(m.Species) == len(o.Species) && len(m.Reactions) == len(o.Reactions)
}
