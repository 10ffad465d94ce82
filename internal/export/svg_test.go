package export

import (
	"strings"
	"testing"

	"github.com/san-kum/biosim/internal/engine"
)

func results() *engine.Results {
	return &engine.Results{
		Time:         []float64{0, 1, 2},
		Values:       []float64{1, 0, 0.5, 0.5, 0.25, 0.75},
		SpeciesNames: []string{"A", "B"},
		NumSpecies:   2,
	}
}

func TestPhaseSVG(t *testing.T) {
	svg := PhaseSVG([]float64{0, 1, 2}, []float64{2, 1, 0}, 100, 50, "#fff")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not a complete document: %q", svg)
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected two line segments in %q", svg)
	}
	// x=0 maps to 10% of the padded span, y=2 to the top margin
	if !strings.Contains(svg, "M8.3,4.2") {
		t.Errorf("unexpected start point in %q", svg)
	}

	if PhaseSVG([]float64{1}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("a single point should give no document")
	}
}

func TestPhaseSVGFlatSeries(t *testing.T) {
	svg := PhaseSVG([]float64{1, 1}, []float64{3, 3}, 10, 10, "#fff")
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Errorf("flat series produced bad coordinates: %q", svg)
	}
}

func TestTrajectoriesSVG(t *testing.T) {
	svg, err := TrajectoriesSVG(results(), nil, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected one path per species")
	}
	for _, name := range []string{">A<", ">B<", Palette[0], Palette[1]} {
		if !strings.Contains(svg, name) {
			t.Errorf("missing %s", name)
		}
	}

	svg, err = TrajectoriesSVG(results(), []int{1}, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(svg, "<path") != 1 || strings.Contains(svg, ">A<") {
		t.Errorf("expected only B: %q", svg)
	}

	if _, err := TrajectoriesSVG(results(), []int{5}, 10, 10); err == nil {
		t.Error("expected error for out of range species")
	}
	if _, err := TrajectoriesSVG(&engine.Results{Time: []float64{0}}, nil, 10, 10); err == nil {
		t.Error("expected error for a single point")
	}
}
