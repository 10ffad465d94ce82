package sbml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/san-kum/biosim/internal/network"
)

type section int

const (
	sectionNone section = iota
	sectionCompartments
	sectionSpecies
	sectionParameters
	sectionReactions
)

func (s section) String() string {
	switch s {
	case sectionCompartments:
		return "compartments"
	case sectionSpecies:
		return "species"
	case sectionParameters:
		return "parameters"
	case sectionReactions:
		return "reactions"
	default:
		return "none"
	}
}

var wrappers = map[string]section{
	"listOfCompartments": sectionCompartments,
	"listOfSpecies":      sectionSpecies,
	"listOfParameters":   sectionParameters,
	"listOfReactions":    sectionReactions,
}

func isWrapper(name string) bool {
	return strings.HasPrefix(name, "listOf")
}

type Option func(*Parser)

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

type Parser struct {
	log *zap.Logger
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a complete document. On error no partial model is returned.
func Parse(r io.Reader, opts ...Option) (*network.Model, error) {
	return NewParser(opts...).Parse(r)
}

func ParseString(text string, opts ...Option) (*network.Model, error) {
	return NewParser(opts...).Parse(strings.NewReader(text))
}

func ParseFile(path string, opts ...Option) (*network.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewParser(opts...).Parse(f)
}

func (p *Parser) Parse(r io.Reader) (*network.Model, error) {
	dec := xml.NewDecoder(r)
	model := network.New()

	// stack of enclosing list wrappers; unknown wrappers push sectionNone
	stack := make([]section, 0, 4)
	current := func() section {
		if len(stack) == 0 {
			return sectionNone
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmlError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if isWrapper(name) {
				stack = append(stack, wrappers[name])
				p.log.Debug("enter section", zap.String("element", name), zap.Stringer("section", current()))
				continue
			}

			switch {
			case name == "model" && model.ID == "":
				model.ID = attr(t, "id")
				model.Name = attr(t, "name")
			case name == "compartment" && current() == sectionCompartments:
				if c, ok := parseCompartment(t); ok {
					model.AddCompartment(c)
				}
			case name == "species" && current() == sectionSpecies:
				if s, ok := parseSpecies(t); ok {
					p.log.Debug("species", zap.String("id", s.ID), zap.String("name", s.Name))
					model.AddSpecies(s)
				}
			case name == "parameter" && current() == sectionParameters:
				if prm, ok := parseParameter(t); ok {
					model.AddParameter(prm)
				}
			case name == "reaction" && current() == sectionReactions:
				rxn, ok, err := parseReaction(dec, t)
				if err != nil {
					return nil, err
				}
				if ok {
					model.AddReaction(rxn)
				}
			}

		case xml.EndElement:
			if isWrapper(t.Name.Local) && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if err := model.Validate(); err != nil {
		return nil, structureError(err)
	}

	p.log.Debug("parsed model",
		zap.String("model", model.ID),
		zap.Int("compartments", len(model.Compartments)),
		zap.Int("species", len(model.Species)),
		zap.Int("parameters", len(model.Parameters)),
		zap.Int("reactions", len(model.Reactions)),
	)

	return model, nil
}

func attr(e xml.StartElement, key string) string {
	for _, a := range e.Attr {
		if a.Name.Local == key {
			return a.Value
		}
	}
	return ""
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0.0
	}
	return v
}

func parseCompartment(e xml.StartElement) (network.Compartment, bool) {
	var c network.Compartment
	for _, a := range e.Attr {
		switch a.Name.Local {
		case "id":
			c.ID = a.Value
		case "name":
			c.Name = a.Value
		}
	}
	return c, c.ID != ""
}

func parseSpecies(e xml.StartElement) (network.Species, bool) {
	var s network.Species
	for _, a := range e.Attr {
		switch a.Name.Local {
		case "id":
			s.ID = a.Value
		case "name":
			s.Name = a.Value
		case "compartment":
			s.Compartment = a.Value
		// no amount/concentration conversion; later attribute wins
		case "initialAmount", "initialConcentration":
			s.InitialConcentration = parseFloat(a.Value)
		}
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	return s, s.ID != ""
}

func parseParameter(e xml.StartElement) (network.Parameter, bool) {
	prm := network.Parameter{Constant: true}
	for _, a := range e.Attr {
		switch a.Name.Local {
		case "id":
			prm.ID = a.Value
		case "value":
			prm.Value = parseFloat(a.Value)
		// xsd:boolean false is "false" or "0"
		case "constant":
			v := strings.TrimSpace(a.Value)
			prm.Constant = v != "false" && v != "0"
		}
	}
	return prm, prm.ID != ""
}

// parseReaction consumes tokens up to the matching </reaction>.
func parseReaction(dec *xml.Decoder, start xml.StartElement) (network.Reaction, bool, error) {
	rxn := network.Reaction{
		Reactants:    make([]string, 0),
		Products:     make([]string, 0),
		RateConstant: network.DefaultRateConstant,
	}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			rxn.ID = a.Value
		case "name":
			rxn.Name = a.Value
		}
	}

	var (
		inReactants  bool
		inProducts   bool
		inKineticLaw bool
		law          strings.Builder
		depth        int
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("unexpected EOF inside reaction %q", rxn.ID)
			}
			return rxn, false, xmlError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "listOfReactants":
				inReactants = true
			case "listOfProducts":
				inProducts = true
			case "kineticLaw":
				inKineticLaw = true
			case "speciesReference":
				sp := attr(t, "species")
				if sp == "" {
					break
				}
				if inReactants {
					rxn.Reactants = append(rxn.Reactants, sp)
				} else if inProducts {
					rxn.Products = append(rxn.Products, sp)
				}
			}

		case xml.EndElement:
			if depth == 0 {
				rxn.KineticLaw = law.String()
				if rxn.Name == "" {
					rxn.Name = rxn.ID
				}
				return rxn, rxn.ID != "", nil
			}
			depth--
			switch t.Name.Local {
			case "listOfReactants":
				inReactants = false
			case "listOfProducts":
				inProducts = false
			case "kineticLaw":
				inKineticLaw = false
			}

		case xml.CharData:
			if inKineticLaw {
				law.Write(t)
			}
		}
	}
}
