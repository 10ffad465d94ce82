package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/biosim/internal/engine"
	"github.com/san-kum/biosim/internal/scan"
)

// ExportData is the self-describing JSON form of one simulation.
type ExportData struct {
	Model    string          `json:"model"`
	Method   string          `json:"method"`
	TimeEnd  float64         `json:"time_end"`
	TimeStep float64         `json:"time_step"`
	Steps    int             `json:"steps"`
	Results  *engine.Results `json:"results"`
}

func NewExportData(model string, cfg engine.Config, res *engine.Results) ExportData {
	return ExportData{
		Model:    model,
		Method:   cfg.Method,
		TimeEnd:  cfg.TimeEnd,
		TimeStep: cfg.TimeStep,
		Steps:    res.Len(),
		Results:  res,
	}
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encode(file, data)
}

func ExportJSONStdout(data ExportData) error {
	return encode(os.Stdout, data)
}

func ExportScanJSON(path string, points []scan.Point) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encode(file, points)
}

func ExportScanJSONStdout(points []scan.Point) error {
	return encode(os.Stdout, points)
}

// ExportCSV writes res to path, or to stdout when path is empty.
func ExportCSV(path string, res *engine.Results) error {
	var out io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	w := csv.NewWriter(out)
	if err := WriteCSV(w, res); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
