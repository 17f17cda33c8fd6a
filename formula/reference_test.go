package formula

import (
	"reflect"
	"testing"
)

// cellRow builds a table row from raw values; nil stays a gap
func cellRow(values ...any) []*Cell {
	row := make([]*Cell, 0, len(values))
	for _, v := range values {
		row = append(row, &Cell{Raw: v})
	}
	return row
}

func testWorkbook(tables ...*Table) *Workbook {
	return &Workbook{Tables: tables}
}

func TestParseReferenceColumns(t *testing.T) {
	cases := []struct {
		text string
		row  int
		col  int
	}{
		{"A1", 0, 0},
		{"a1", 0, 0},
		{"Z1", 0, 25},
		{"AA1", 0, 26},
		{"AB1", 0, 27},
		{"B12", 11, 1},
		{"$C$3", 2, 2},
		{"$aa$10", 9, 26},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			coord, ok := ParseReference(tc.text)
			if !ok {
				t.Fatalf("ParseReference(%q) failed", tc.text)
			}
			if coord.Row != tc.row || coord.Col != tc.col {
				t.Errorf("ParseReference(%q) = (%d,%d), want (%d,%d)",
					tc.text, coord.Row, coord.Col, tc.row, tc.col)
			}
		})
	}
}

func TestParseReferenceAbsoluteFlags(t *testing.T) {
	coord, ok := ParseReference("$B$2")
	if !ok {
		t.Fatal("ParseReference($B$2) failed")
	}
	if !coord.AbsCol || !coord.AbsRow {
		t.Errorf("expected both absolute flags set, got col=%v row=%v", coord.AbsCol, coord.AbsRow)
	}

	coord, ok = ParseReference("B$2")
	if !ok {
		t.Fatal("ParseReference(B$2) failed")
	}
	if coord.AbsCol || !coord.AbsRow {
		t.Errorf("expected only absolute row, got col=%v row=%v", coord.AbsCol, coord.AbsRow)
	}
}

func TestParseReferenceMalformed(t *testing.T) {
	malformed := []string{"", "1A", "A", "$", "$$1", "A0", "A-1", "A1B", "A 1", "!A1"}

	for _, text := range malformed {
		t.Run(text, func(t *testing.T) {
			if _, ok := ParseReference(text); ok {
				t.Errorf("ParseReference(%q) succeeded, want failure", text)
			}
		})
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"}
	for col, want := range cases {
		if got := ColumnName(col); got != want {
			t.Errorf("ColumnName(%d) = %q, want %q", col, got, want)
		}
	}
}

func TestExpandRangeCornerOrder(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, 2.0),
		cellRow(3.0, 4.0),
	}})

	forward, ok := ExpandRange("A1:B2", wb, 0)
	if !ok {
		t.Fatal("ExpandRange(A1:B2) failed")
	}
	backward, ok := ExpandRange("B2:A1", wb, 0)
	if !ok {
		t.Fatal("ExpandRange(B2:A1) failed")
	}
	if !reflect.DeepEqual(forward, backward) {
		t.Errorf("corner order changed values: %v vs %v", forward, backward)
	}
	if !reflect.DeepEqual(forward, []float64{1, 2, 3, 4}) {
		t.Errorf("ExpandRange(A1:B2) = %v, want [1 2 3 4]", forward)
	}
}

func TestExpandRangeDropsNonNumeric(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, "x", 3.0),
	}})

	values, ok := ExpandRange("A1:C1", wb, 0)
	if !ok {
		t.Fatal("ExpandRange failed")
	}
	if !reflect.DeepEqual(values, []float64{1, 3}) {
		t.Errorf("ExpandRange = %v, want [1 3]", values)
	}
}

func TestExpandRangePrefersResolvedValue(t *testing.T) {
	cell := &Cell{Raw: "=1+1", Resolved: true, ResolvedValue: 2.0}
	wb := testWorkbook(&Table{Rows: [][]*Cell{{cell}}})

	values, ok := ExpandRange("A1:A1", wb, 0)
	if !ok {
		t.Fatal("ExpandRange failed")
	}
	if !reflect.DeepEqual(values, []float64{2}) {
		t.Errorf("ExpandRange = %v, want [2]", values)
	}
}

func TestExpandRangeRaggedGrid(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, 2.0),
		cellRow(3.0), // short row: B2 missing
	}})

	values, ok := ExpandRange("A1:B2", wb, 0)
	if !ok {
		t.Fatal("ExpandRange failed")
	}
	if !reflect.DeepEqual(values, []float64{1, 2, 3}) {
		t.Errorf("ExpandRange = %v, want [1 2 3]", values)
	}
}

func TestExpandRangeFailures(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{cellRow(1.0)}})

	cases := []struct {
		name    string
		text    string
		tableID int
	}{
		{"out of bounds table", "A1:B2", 5},
		{"negative table", "A1:B2", -1},
		{"missing colon", "A1", 0},
		{"malformed start", "1A:B2", 0},
		{"malformed end", "A1:$", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if values, ok := ExpandRange(tc.text, wb, tc.tableID); ok {
				t.Errorf("ExpandRange(%q, table %d) = %v, want failure", tc.text, tc.tableID, values)
			}
		})
	}
}

func TestCellValue(t *testing.T) {
	resolved := &Cell{Raw: "=2*2", Resolved: true, ResolvedValue: 4.0}
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		{&Cell{Raw: 7.0}, resolved},
		cellRow("text"),
	}})

	if got := CellValue("A1", wb, 0); got != 7.0 {
		t.Errorf("CellValue(A1) = %v, want 7", got)
	}
	if got := CellValue("B1", wb, 0); got != 4.0 {
		t.Errorf("CellValue(B1) = %v, want resolved 4", got)
	}
	if got := CellValue("A2", wb, 0); got != "text" {
		t.Errorf("CellValue(A2) = %v, want text", got)
	}
}

func TestCellValueRefErrors(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{cellRow(1.0)}})

	cases := []struct {
		name    string
		ref     string
		tableID int
	}{
		{"malformed", "1A", 0},
		{"bare letters", "A", 0},
		{"dollar only", "$", 0},
		{"missing cell", "C9", 0},
		{"ragged gap", "B1", 0},
		{"table out of bounds", "A1", 3},
		{"negative table", "A1", -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CellValue(tc.ref, wb, tc.tableID); got != RefSentinel {
				t.Errorf("CellValue(%q, table %d) = %v, want #REF!", tc.ref, tc.tableID, got)
			}
		})
	}
}
