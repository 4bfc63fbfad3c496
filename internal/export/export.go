// Package export writes evaluation results as CSV tables or JSON documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/surface"
)

var ErrEmptyResult = errors.New("export: result has no data")

// Document is the JSON export of one dashboard view.
type Document struct {
	Domain    string                   `json:"domain"`
	Metric    string                   `json:"metric"`
	Variables []string                 `json:"variables"`
	Ranges    map[string]surface.Range `json:"ranges,omitempty"`
	Result    *surface.Result          `json:"result,omitempty"`
	Smoothed  *empirical.Smoothed      `json:"smoothed,omitempty"`
}

// WriteCSV writes res in long format. header names the columns, x then y
// for curves and x, y, z for surfaces; nil uses exactly those letters.
func WriteCSV(w io.Writer, res *surface.Result, header []string) error {
	var rows [][]float64
	switch res.Dims() {
	case 1:
		header = headerOr(header, "x", "y")
		for i := range res.Curve.X {
			rows = append(rows, []float64{res.Curve.X[i], res.Curve.Y[i]})
		}
	case 2:
		header = headerOr(header, "x", "y", "z")
		s := res.Surface
		for i := range s.Z {
			for j := range s.Z[i] {
				rows = append(rows, []float64{s.X[i][j], s.Y[i][j], s.Z[i][j]})
			}
		}
	default:
		return ErrEmptyResult
	}
	return writeRows(w, header, rows)
}

// WriteSmoothedCSV writes the fitted curve or the interpolated grid. Cells
// without a value are written as empty fields.
func WriteSmoothedCSV(w io.Writer, sm *empirical.Smoothed) error {
	switch {
	case sm == nil:
		return ErrEmptyResult
	case sm.Curve != nil:
		if sm.Curve.Empty() {
			return ErrEmptyResult
		}
		rows := make([][]float64, len(sm.Curve.X))
		for i := range sm.Curve.X {
			rows[i] = []float64{sm.Curve.X[i], sm.Curve.Y[i]}
		}
		return writeRows(w, []string{sm.Curve.Variable, sm.Curve.Metric}, rows)
	case sm.Surface != nil:
		s := sm.Surface
		if s.NoData {
			return ErrEmptyResult
		}
		rows := make([][]float64, 0, len(s.X)*len(s.Y))
		for i := range s.Z {
			for j := range s.Z[i] {
				rows = append(rows, []float64{s.X[j], s.Y[i], s.Z[i][j]})
			}
		}
		return writeRows(w, []string{s.VarX, s.VarY, s.Metric}, rows)
	}
	return ErrEmptyResult
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ToFile runs write against path, or stdout when path is "" or "-".
func ToFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeRows(w io.Writer, header []string, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for k, v := range row {
			record[k] = formatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func headerOr(header []string, def ...string) []string {
	if len(header) == len(def) {
		return header
	}
	return def
}
