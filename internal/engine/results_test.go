package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleResults() *Results {
	r := newResults(2, []string{"A", "B"})
	r.record(0, []float64{1, 0})
	r.record(0.5, []float64{0.6, 0.4})
	r.record(1.0, []float64{0.3, 0.7})
	return r
}

func TestResultsIndexing(t *testing.T) {
	r := sampleResults()

	if r.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", r.Len())
	}
	if got := r.At(1, 1); got != 0.4 {
		t.Errorf("At(1,1) = %v, want 0.4", got)
	}
	if diff := cmp.Diff([]float64{0.6, 0.4}, r.Row(1)); diff != "" {
		t.Errorf("Row(1) mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.3, 0.7}, r.Final()); diff != "" {
		t.Errorf("Final() mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 0.4, 0.7}, r.Trajectory(1)); diff != "" {
		t.Errorf("Trajectory(1) mismatch:\n%s", diff)
	}
	if r.Trajectory(2) != nil || r.Trajectory(-1) != nil {
		t.Error("out of range trajectory should be nil")
	}

	traj, ok := r.TrajectoryOf("A")
	if !ok {
		t.Fatal("TrajectoryOf(A) not found")
	}
	if diff := cmp.Diff([]float64{1, 0.6, 0.3}, traj); diff != "" {
		t.Errorf("TrajectoryOf(A) mismatch:\n%s", diff)
	}
	if _, ok := r.TrajectoryOf("Z"); ok {
		t.Error("TrajectoryOf(Z) should not be found")
	}
}

func TestResultsRowIsACopy(t *testing.T) {
	r := sampleResults()
	row := r.Row(0)
	row[0] = 99
	if r.At(0, 0) != 1 {
		t.Error("Row shares memory with Values")
	}
}

func TestResultsJSONShape(t *testing.T) {
	data, err := json.Marshal(sampleResults())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"time", "values", "species_names", "num_species"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if decoded["num_species"].(float64) != 2 {
		t.Errorf("num_species = %v", decoded["num_species"])
	}
}

func TestEmptyResultsFinal(t *testing.T) {
	r := newResults(0, nil)
	if r.Final() != nil {
		t.Error("Final of empty results should be nil")
	}
}
