package viz

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/biosim/internal/biomodel"
	"github.com/san-kum/biosim/internal/engine"
)

const (
	knobSpecies = "species"
	knobParam   = "parameter"
	knobRate    = "rate"
)

type knob struct {
	kind    string
	id      string
	value   float64
	initial float64
}

// simulatedMsg carries the sequence number of the request that produced it.
type simulatedMsg struct {
	seq uint64
	res *engine.Results
	err error
}

// Tuner is a Bubble Tea model over one BioModel. Every edit is written
// through to the BioModel and triggers a fresh simulation.
type Tuner struct {
	ctx   context.Context
	model *biomodel.BioModel
	cfg   biomodel.SimulationConfig

	knobs   []knob
	cursor  int
	editing bool
	editBuf string
	phase   bool

	res     *engine.Results
	err     error
	pending bool
	seq     uint64
	width   int
	height  int
}

func NewTuner(ctx context.Context, b *biomodel.BioModel, cfg biomodel.SimulationConfig) *Tuner {
	t := &Tuner{ctx: ctx, model: b, cfg: cfg, width: 80, height: 24}

	add := func(kind string, values map[string]float64, order []string) {
		for _, id := range order {
			v := values[id]
			t.knobs = append(t.knobs, knob{kind: kind, id: id, value: v, initial: v})
		}
	}
	add(knobSpecies, b.InitialConcentrations(), uniq(b.SpeciesIDs()))

	params := b.Parameters()
	add(knobParam, params, sortedIDs(params))

	snap := b.Model()
	rates := make(map[string]float64, len(snap.Reactions))
	ids := make([]string, 0, len(snap.Reactions))
	for _, r := range snap.Reactions {
		if _, seen := rates[r.ID]; !seen {
			rates[r.ID] = r.RateConstant
			ids = append(ids, r.ID)
		}
	}
	add(knobRate, rates, ids)
	return t
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sortedIDs(m map[string]float64) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tuner) Init() tea.Cmd {
	return t.simulate()
}

// simulate starts a run tagged with a new sequence number; results of older
// runs are dropped when they arrive.
func (t *Tuner) simulate() tea.Cmd {
	t.seq++
	t.pending = true
	b, cfg, ctx, seq := t.model, t.cfg, t.ctx, t.seq
	return func() tea.Msg {
		res, err := b.Simulate(ctx, cfg)
		return simulatedMsg{seq: seq, res: res, err: err}
	}
}

func (t *Tuner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t, t.handleKey(msg)
	case tea.WindowSizeMsg:
		t.width, t.height = msg.Width, msg.Height
	case simulatedMsg:
		if msg.seq != t.seq {
			break
		}
		t.pending = false
		t.res, t.err = msg.res, msg.err
	}
	return t, nil
}

func (t *Tuner) handleKey(msg tea.KeyMsg) tea.Cmd {
	if t.editing {
		return t.editKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.knobs)-1 {
			t.cursor++
		}
	case "left", "h":
		return t.scale(1 / 1.1)
	case "right", "l":
		return t.scale(1.1)
	case "enter", " ":
		if len(t.knobs) > 0 {
			t.editing = true
			t.editBuf = strconv.FormatFloat(t.knobs[t.cursor].value, 'g', -1, 64)
		}
	case "p":
		t.phase = !t.phase
	case "r":
		return t.reset()
	}
	return nil
}

func (t *Tuner) editKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		t.editing = false
		v, err := strconv.ParseFloat(t.editBuf, 64)
		t.editBuf = ""
		if err != nil {
			t.err = fmt.Errorf("not a number: %w", err)
			return nil
		}
		return t.set(t.cursor, v)
	case "esc":
		t.editing, t.editBuf = false, ""
	case "backspace":
		if len(t.editBuf) > 0 {
			t.editBuf = t.editBuf[:len(t.editBuf)-1]
		}
	default:
		if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-+eE") {
			t.editBuf += s
		}
	}
	return nil
}

func (t *Tuner) scale(f float64) tea.Cmd {
	if len(t.knobs) == 0 {
		return nil
	}
	v := t.knobs[t.cursor].value
	if v == 0 && f > 1 {
		v = 0.01
	}
	return t.set(t.cursor, v*f)
}

func (t *Tuner) set(i int, v float64) tea.Cmd {
	k := &t.knobs[i]
	var err error
	switch k.kind {
	case knobSpecies:
		err = t.model.SetInitialConcentration(k.id, v)
	case knobParam:
		err = t.model.SetParameter(k.id, v)
	case knobRate:
		err = t.model.SetRateConstant(k.id, v)
	}
	if err != nil {
		t.err = err
		return nil
	}
	k.value = v
	return t.simulate()
}

func (t *Tuner) reset() tea.Cmd {
	changed := false
	for i := range t.knobs {
		if t.knobs[i].value == t.knobs[i].initial {
			continue
		}
		if t.set(i, t.knobs[i].initial) != nil {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return t.simulate()
}

func (t *Tuner) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("BIOSIM TUNER") + "\n\n")

	for i, k := range t.knobs {
		val := Num(k.value)
		if t.editing && i == t.cursor {
			val = t.editBuf + "_"
		}
		line := fmt.Sprintf("%-10s %-16s %12s", k.kind, k.id, val)
		if i == t.cursor {
			b.WriteString(Title.Render("▸ ") + Selected.Render(line) + "\n")
		} else {
			b.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case t.err != nil:
		b.WriteString(ErrorText.Render(t.err.Error()) + "\n")
	case t.res != nil:
		b.WriteString(t.viewResults() + "\n")
	}
	if t.pending {
		b.WriteString(Subtle.Render("simulating...") + "\n")
	}

	b.WriteString("\n" + KeyHint.Render("j/k select  h/l adjust  enter edit  p phase  r reset  q quit") + "\n")
	return b.String()
}

func (t *Tuner) viewResults() string {
	width := max(t.width-12, 20)
	height := max(t.height-len(t.knobs)-12, 6)
	if t.phase && t.res.NumSpecies >= 2 {
		c := NewCanvas(width/2, height/2)
		c.DrawPath(t.res.Trajectory(0), t.res.Trajectory(1))
		caption := Subtle.Render(fmt.Sprintf("%s (x) vs %s (y)", t.res.SpeciesNames[0], t.res.SpeciesNames[1]))
		return Panel.Render(c.String() + caption)
	}
	graph, err := PlotSpecies(t.res, nil, width, height)
	if err != nil {
		return Subtle.Render(err.Error())
	}
	return graph
}

// RunTuner blocks until the user quits.
func RunTuner(ctx context.Context, b *biomodel.BioModel, cfg biomodel.SimulationConfig) error {
	_, err := tea.NewProgram(NewTuner(ctx, b, cfg), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
