package dataset

import (
	"fmt"

	"calinfer/domain/core"
)

// Frame is the canonical tabular object for all statistical computation:
// an ordered collection of equal-length float64 columns keyed by name.
// It is the single input to RegressionPort and the calibration entry points.
type Frame struct {
	names []string
	cols  map[string][]float64
	rows  int
}

// NewFrame creates an empty frame
func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]float64)}
}

// AddColumn appends a named column. The first column fixes the row count;
// later columns must match it.
func (f *Frame) AddColumn(name string, values []float64) error {
	if name == "" {
		return core.NewInvalidDataError("column name cannot be empty")
	}
	if _, exists := f.cols[name]; exists {
		return core.NewInvalidDataError(fmt.Sprintf("duplicate column %q", name))
	}
	if len(f.names) == 0 {
		f.rows = len(values)
	} else if len(values) != f.rows {
		return core.NewInvalidDataError(
			fmt.Sprintf("column %q has %d rows, expected %d", name, len(values), f.rows))
	}
	f.names = append(f.names, name)
	f.cols[name] = values
	return nil
}

// Column returns the data for a named column
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, core.NewInvalidDataError(fmt.Sprintf("column %q not found", name))
	}
	return col, nil
}

// HasColumn reports whether a column exists
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Columns returns column names in insertion order
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// RowCount returns the number of rows
func (f *Frame) RowCount() int {
	return f.rows
}

// ColumnCount returns the number of columns
func (f *Frame) ColumnCount() int {
	return len(f.names)
}

// Validate ensures the frame is internally consistent
func (f *Frame) Validate() error {
	if len(f.names) == 0 || f.rows == 0 {
		return core.NewInvalidDataError("frame is empty")
	}
	for _, name := range f.names {
		if len(f.cols[name]) != f.rows {
			return core.NewInvalidDataError(
				fmt.Sprintf("column %q has %d rows, expected %d", name, len(f.cols[name]), f.rows))
		}
	}
	return nil
}
