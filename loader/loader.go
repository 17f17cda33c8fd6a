// Package loader reads workbooks from JSON documents or .xlsx files and
// writes resolved results back out as JSON.
package loader

import (
	"bytes"
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oarkflow/errors"
	"github.com/oarkflow/json"
	"github.com/xuri/excelize/v2"

	"github.com/test-perspective/excel-formula-engine/formula"
)

// ErrNotFound indicates the input file does not exist.
var ErrNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is neither a workbook JSON document
// nor an xlsx file.
var ErrInvalidFormat = errors.New("invalid workbook format")

// Load reads a workbook from path, choosing the decoder by extension:
// .xlsx goes through excelize, everything else is treated as JSON.
func Load(path string) (*formula.Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, path, "")
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path)
	}
	return LoadJSON(path)
}

// workbookDocument is the JSON shape of an unresolved workbook: tables of
// rows of cells, where a cell is either a bare value or an object with a
// value and an optional format.
type workbookDocument struct {
	Tables []tableDocument `json:"tables"`
}

type tableDocument struct {
	Name string  `json:"name,omitempty"`
	Rows [][]any `json:"rows"`
}

// LoadJSON decodes a workbook JSON document.
func LoadJSON(path string) (*formula.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read workbook", "")
	}

	var doc workbookDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrInvalidFormat, err.Error(), "")
	}

	wb := &formula.Workbook{}
	for _, tableDoc := range doc.Tables {
		table := &formula.Table{Name: tableDoc.Name}
		for _, rowDoc := range tableDoc.Rows {
			row := make([]*formula.Cell, 0, len(rowDoc))
			for _, cellDoc := range rowDoc {
				row = append(row, decodeCell(cellDoc))
			}
			table.Rows = append(table.Rows, row)
		}
		wb.Tables = append(wb.Tables, table)
	}
	return wb, nil
}

// decodeCell accepts either a bare value or a {"value": ..., "format": ...}
// object. Anything else becomes an empty cell.
func decodeCell(doc any) *formula.Cell {
	switch v := doc.(type) {
	case map[string]any:
		cell := &formula.Cell{Raw: v["value"]}
		if format, ok := v["format"].(string); ok {
			cell.Format = format
		}
		return cell
	case nil:
		return &formula.Cell{}
	default:
		return &formula.Cell{Raw: v}
	}
}

// LoadXLSX imports an xlsx file, one table per sheet in sheet order.
// Formula cells keep their "="-prefixed text; plain numeric-looking cells
// become numbers.
func LoadXLSX(path string) (*formula.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidFormat, err.Error(), "")
	}
	defer f.Close()

	wb := &formula.Workbook{}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, errors.Wrap(err, "read sheet "+sheetName, "")
		}

		table := &formula.Table{Name: sheetName}
		for rowIdx, rowValues := range rows {
			row := make([]*formula.Cell, 0, len(rowValues))
			for colIdx, value := range rowValues {
				row = append(row, importCell(f, sheetName, rowIdx, colIdx, value))
			}
			table.Rows = append(table.Rows, row)
		}
		wb.Tables = append(wb.Tables, table)
	}
	return wb, nil
}

// importCell prefers the original formula text over the stored result so
// the engine re-evaluates it.
func importCell(f *excelize.File, sheetName string, rowIdx, colIdx int, value string) *formula.Cell {
	cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err == nil {
		if text, err := f.GetCellFormula(sheetName, cellName); err == nil && text != "" {
			if !strings.HasPrefix(text, "=") {
				text = "=" + text
			}
			return &formula.Cell{Raw: text}
		}
	}
	if value == "" {
		return &formula.Cell{}
	}
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		return &formula.Cell{Raw: num}
	}
	return &formula.Cell{Raw: value}
}

// SaveResult writes a resolution result as JSON.
func SaveResult(path string, result *formula.Result, pretty bool) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encode result", "")
	}
	if pretty {
		var buf bytes.Buffer
		if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
			return errors.Wrap(err, "indent result", "")
		}
		data = buf.Bytes()
	}
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
