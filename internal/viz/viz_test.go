package viz

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/biomodel"
	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/network"
)

func decayResults() *engine.Results {
	return &engine.Results{
		Time:         []float64{0, 1, 2, 3},
		Values:       []float64{1, 0, 0.6, 0.4, 0.3, 0.7, 0.2, 0.8},
		SpeciesNames: []string{"A", "B"},
		NumSpecies:   2,
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"id", "value"}, [][]string{{"k1", "0.5"}, {"k2", "1"}})
	for _, want := range []string{"id", "value", "k1", "0.5", "k2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	res := decayResults()
	out := SummaryTable(analysis.Summarize(res), res.Trajectory)
	if !strings.Contains(out, "species") || !strings.Contains(out, "0.8") {
		t.Errorf("unexpected summary table:\n%s", out)
	}
}

func TestMatrixTable(t *testing.T) {
	out := MatrixTable([]string{"A", "B"}, []string{"r1"}, [][]float64{{-1}, {1}})
	if !strings.Contains(out, "-1") || !strings.Contains(out, "+1") {
		t.Errorf("unexpected matrix table:\n%s", out)
	}
}

func TestPlotSpecies(t *testing.T) {
	res := decayResults()

	out, err := PlotSpecies(res, nil, 40, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Errorf("legend missing species:\n%s", out)
	}

	if _, err := PlotSpecies(res, []int{5}, 40, 8); err == nil {
		t.Error("expected error for out of range index")
	}
	if _, err := PlotSpecies(&engine.Results{}, nil, 40, 8); err == nil {
		t.Error("expected error for empty results")
	}
}

func TestIndicesOf(t *testing.T) {
	idx, err := IndicesOf(decayResults(), []string{"B"})
	if err != nil || len(idx) != 1 || idx[0] != 1 {
		t.Errorf("IndicesOf = %v, %v", idx, err)
	}
	if _, err := IndicesOf(decayResults(), []string{"Z"}); err == nil {
		t.Error("expected error for unknown species")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if Sparkline([]float64{1, 2, 3}, 0) != "" {
		t.Error("expected empty sparkline for zero width")
	}
	out := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4)
	if !strings.ContainsRune(out, '▁') || !strings.ContainsRune(out, '█') {
		t.Errorf("sparkline should span low to high: %q", out)
	}
}

func TestCanvasDrawPath(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawPath([]float64{0, 1}, []float64{0, 1})

	out := c.String()
	if strings.Count(out, "\n") != 5 {
		t.Fatalf("expected 5 rows:\n%s", out)
	}
	// the diagonal runs from the bottom left cell to the top right cell
	if c.Grid[4][0] == brailleBlank || c.Grid[0][9] == brailleBlank {
		t.Errorf("diagonal endpoints not drawn:\n%s", out)
	}
	if c.Grid[0][0] != brailleBlank {
		t.Errorf("top left should be empty:\n%s", out)
	}

	c.Clear()
	c.Set(-1, 3)
	c.Set(100, 100)
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				t.Fatal("out of range dots should be ignored")
			}
		}
	}
}

func newTuner(t *testing.T) (*Tuner, *biomodel.BioModel) {
	t.Helper()
	m := network.New()
	m.AddSpecies(network.Species{ID: "A", Name: "A", InitialConcentration: 1})
	m.AddSpecies(network.Species{ID: "B", Name: "B"})
	m.AddParameter(network.Parameter{ID: "k1", Value: 2, Constant: true})
	m.AddReaction(network.Reaction{ID: "r1", Name: "r1", Reactants: []string{"A"}, Products: []string{"B"}, RateConstant: network.DefaultRateConstant})
	b := biomodel.FromModel(m)
	return NewTuner(context.Background(), b, biomodel.SimulationConfig{TimeEnd: 1, TimeStep: 0.1}), b
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msg to the tuner and runs any simulation it schedules.
func drive(tn *Tuner, msg tea.Msg) {
	_, cmd := tn.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		if _, ok := out.(simulatedMsg); ok {
			tn.Update(out)
		}
	}
}

func TestTunerKnobs(t *testing.T) {
	tn, _ := newTuner(t)
	want := []string{"species/A", "species/B", "parameter/k1", "rate/r1"}
	if len(tn.knobs) != len(want) {
		t.Fatalf("expected %d knobs, got %d", len(want), len(tn.knobs))
	}
	for i, k := range tn.knobs {
		if got := k.kind + "/" + k.id; got != want[i] {
			t.Errorf("knob %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestTunerInitSimulates(t *testing.T) {
	tn, _ := newTuner(t)
	cmd := tn.Init()
	if cmd == nil {
		t.Fatal("expected initial simulation")
	}
	tn.Update(cmd())
	if tn.res == nil || tn.res.Len() != 11 || tn.pending {
		t.Fatalf("unexpected state after init: res=%v pending=%v", tn.res, tn.pending)
	}
	if !strings.Contains(tn.View(), "BIOSIM TUNER") {
		t.Error("view missing header")
	}
}

func TestTunerAdjustWritesThrough(t *testing.T) {
	tn, b := newTuner(t)

	drive(tn, key("l"))
	if got := b.InitialConcentrations()["A"]; got != 1.1 {
		t.Errorf("A = %g, want 1.1", got)
	}
	if tn.res == nil || tn.res.Row(0)[0] != 1.1 {
		t.Error("expected re-simulation from the new initial value")
	}

	drive(tn, key("down"))
	drive(tn, key("down"))
	drive(tn, key("down"))
	drive(tn, key("enter"))
	if !tn.editing {
		t.Fatal("expected edit mode")
	}
	tn.editBuf = ""
	for _, r := range "0.5" {
		drive(tn, key(string(r)))
	}
	drive(tn, key("enter"))
	if got := b.RateConstants()[0]; got != 0.5 {
		t.Errorf("rate constant = %g, want 0.5", got)
	}

	drive(tn, key("r"))
	if got := b.RateConstants()[0]; got != network.DefaultRateConstant {
		t.Errorf("reset left rate constant at %g", got)
	}
	if got := b.InitialConcentrations()["A"]; got != 1 {
		t.Errorf("reset left A at %g", got)
	}
}

func TestTunerBadInput(t *testing.T) {
	tn, b := newTuner(t)
	drive(tn, key("enter"))
	tn.editBuf = "1e"
	drive(tn, key("enter"))
	if tn.err == nil {
		t.Error("expected parse error")
	}
	if got := b.InitialConcentrations()["A"]; got != 1 {
		t.Errorf("A changed to %g on bad input", got)
	}
	if !strings.Contains(tn.View(), "not a number") {
		t.Error("view should show the error")
	}
}

func TestTunerDropsStaleResults(t *testing.T) {
	tn, _ := newTuner(t)
	tn.Update(tn.Init()())

	// the run for the first edit completes only after the second edit's run
	_, first := tn.Update(key("l"))
	older := first()
	_, second := tn.Update(key("l"))
	newer := second()

	tn.Update(newer)
	if tn.pending {
		t.Error("latest result should clear pending")
	}
	tn.Update(older)

	if got := tn.res.Row(0)[0]; math.Abs(got-1.21) > 1e-12 {
		t.Errorf("stale result replaced the latest: A(0) = %g, want 1.21", got)
	}
}

func TestTunerPhaseView(t *testing.T) {
	tn, _ := newTuner(t)
	tn.Update(tn.Init()())
	drive(tn, key("p"))
	if !tn.phase {
		t.Fatal("expected phase view")
	}
	if !strings.Contains(tn.View(), "A (x) vs B (y)") {
		t.Error("phase caption missing")
	}
}

func TestTunerQuit(t *testing.T) {
	tn, _ := newTuner(t)
	_, cmd := tn.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
