package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"calinfer/domain/core"
	"calinfer/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// Reader loads Excel or CSV files into a Frame. Every cell must parse as a
// number; the calibration core works on numeric columns only.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader, dispatching on the file extension
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// ReadFrame reads the file into a Frame with one column per header
func (r *Reader) ReadFrame() (*dataset.Frame, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewInvalidDataError(fmt.Sprintf("file not found: %s", r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, core.NewInvalidDataError(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.NewInvalidDataError("file must have a header row and at least one data row")
	}

	return r.buildFrame(rows)
}

func (r *Reader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

func (r *Reader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// buildFrame parses header names and numeric cells into columns
func (r *Reader) buildFrame(rows [][]string) (*dataset.Frame, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	columns := make([][]float64, len(headers))
	for i := range columns {
		columns[i] = make([]float64, 0, len(rows)-1)
	}

	for rowIdx, row := range rows[1:] {
		if len(row) != len(headers) {
			return nil, core.NewInvalidDataError(
				fmt.Sprintf("row %d has %d cells, expected %d", rowIdx+2, len(row), len(headers)))
		}
		for colIdx, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, core.NewInvalidDataError(
					fmt.Sprintf("row %d column %q: %q is not numeric", rowIdx+2, headers[colIdx], cell))
			}
			columns[colIdx] = append(columns[colIdx], v)
		}
	}

	frame := dataset.NewFrame()
	for i, name := range headers {
		if err := frame.AddColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}

	log.Printf("[Reader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), frame.ColumnCount(), frame.RowCount())
	return frame, nil
}
