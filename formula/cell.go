package formula

import (
	"strconv"
	"strings"
)

// FormulaPrefix marks a raw cell value as a formula.
const FormulaPrefix = "="

// Cell carries a raw value plus the resolution state derived from it. Raw
// is never overwritten; the resolved and display fields may be recomputed
// on every pass.
type Cell struct {
	Raw           Value  `json:"value"`
	Format        string `json:"format,omitempty"`
	Resolved      bool   `json:"resolved"`
	ResolvedValue Value  `json:"resolvedValue,omitempty"`
	DisplayValue  string `json:"displayValue,omitempty"`
	TextColor     string `json:"textColor,omitempty"`
}

// IsFormula reports whether the raw value is a formula string.
func (c *Cell) IsFormula() bool {
	s, ok := c.Raw.(string)
	return ok && strings.HasPrefix(s, FormulaPrefix)
}

// CurrentValue returns the resolved value when resolution has run, the raw
// value otherwise.
func (c *Cell) CurrentValue() Value {
	if c.Resolved {
		return c.ResolvedValue
	}
	return c.Raw
}

// Table is a single two-dimensional grid of cells. Rows may be ragged and
// individual cells may be nil; out-of-bounds access returns nil rather
// than failing.
type Table struct {
	Name string    `json:"name,omitempty"`
	Rows [][]*Cell `json:"rows"`
}

// CellAt returns the cell at row, col or nil when the coordinate is outside
// the grid, including ragged-row gaps.
func (t *Table) CellAt(row, col int) *Cell {
	if t == nil || row < 0 || col < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}
	return r[col]
}

// Workbook is an ordered collection of tables. The table index is the
// stable identity used by cross-table references.
type Workbook struct {
	Tables []*Table `json:"tables"`
}

// TableAt returns the table at the given index or nil when the index is
// out of bounds.
func (wb *Workbook) TableAt(id int) *Table {
	if wb == nil || id < 0 || id >= len(wb.Tables) {
		return nil
	}
	return wb.Tables[id]
}

// ResolveTable maps a table name in a cross-table reference to its index.
// Purely numeric names are taken as zero-based indices; anything else is
// matched against table names case-insensitively.
func (wb *Workbook) ResolveTable(name string) (int, bool) {
	if wb == nil {
		return 0, false
	}
	if idx, err := strconv.Atoi(name); err == nil {
		if idx < 0 || idx >= len(wb.Tables) {
			return 0, false
		}
		return idx, true
	}
	for i, t := range wb.Tables {
		if t != nil && strings.EqualFold(t.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// FormulaCell records a resolved formula cell together with its grid
// position. The embedded cell is a copy taken at resolution time.
type FormulaCell struct {
	Table int `json:"table"`
	Row   int `json:"row"`
	Col   int `json:"col"`
	Cell
}
