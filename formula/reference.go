package formula

import "strings"

// Coordinate is a zero-based cell position. The absolute flags mirror the
// optional $ markers in the reference text; they are carried through for
// relative-reference handling and do not currently affect value resolution.
type Coordinate struct {
	Row    int
	Col    int
	AbsRow bool
	AbsCol bool
}

// ParseReference parses text like "B12" or "$AA$3" into a zero-based
// coordinate. Letters are case-insensitive and encode the column in base
// 26 (A=0, Z=25, AA=26, AB=27); digits encode the 1-based row. Malformed
// text returns ok=false; callers translate that into #REF!.
func ParseReference(text string) (Coordinate, bool) {
	var coord Coordinate
	i := 0

	if i < len(text) && text[i] == '$' {
		coord.AbsCol = true
		i++
	}

	col := 0
	letters := 0
	for i < len(text) {
		ch := text[i]
		if ch >= 'A' && ch <= 'Z' {
			col = col*26 + int(ch-'A') + 1
		} else if ch >= 'a' && ch <= 'z' {
			col = col*26 + int(ch-'a') + 1
		} else {
			break
		}
		letters++
		i++
	}
	if letters == 0 {
		return Coordinate{}, false
	}

	if i < len(text) && text[i] == '$' {
		coord.AbsRow = true
		i++
	}

	row := 0
	digits := 0
	for i < len(text) {
		ch := text[i]
		if ch < '0' || ch > '9' {
			return Coordinate{}, false
		}
		row = row*10 + int(ch-'0')
		digits++
		i++
	}
	if digits == 0 || row < 1 {
		return Coordinate{}, false
	}

	coord.Col = col - 1
	coord.Row = row - 1
	return coord, true
}

// ColumnName converts a zero-based column index back to its letter form:
// 0 -> A, 25 -> Z, 26 -> AA and so on.
func ColumnName(col int) string {
	if col < 0 {
		return "?"
	}
	letters := ""
	n := col + 1
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

// ExpandRange expands range text like "A1:B2" against a table into the
// list of its numeric cell values. The corners may come in either order;
// "B2:A1" expands to the same values as "A1:B2". Cells outside the ragged
// grid are skipped, and present cells contribute their resolved value if
// set, else their raw value, only when it coerces to a number; non-numeric
// cells are silently dropped rather than failing the whole range. A
// malformed corner or an out-of-bounds table returns nil, false.
func ExpandRange(rangeText string, wb *Workbook, tableID int) ([]float64, bool) {
	table := wb.TableAt(tableID)
	if table == nil {
		return nil, false
	}

	parts := strings.Split(strings.ToUpper(rangeText), ":")
	if len(parts) != 2 {
		return nil, false
	}
	start, ok := ParseReference(parts[0])
	if !ok {
		return nil, false
	}
	end, ok := ParseReference(parts[1])
	if !ok {
		return nil, false
	}

	values := []float64{}
	for row := min(start.Row, end.Row); row <= max(start.Row, end.Row); row++ {
		for col := min(start.Col, end.Col); col <= max(start.Col, end.Col); col++ {
			cell := table.CellAt(row, col)
			if cell == nil {
				continue
			}
			if num, ok := toNumber(cell.CurrentValue()); ok {
				values = append(values, num)
			}
		}
	}
	return values, true
}

// CellValue resolves reference text against a workbook table and returns
// the referenced cell's resolved value if set, else its raw value. Any
// malformed reference, out-of-bounds table, or missing cell, including
// ragged-row gaps, yields #REF! rather than propagating a fault.
func CellValue(refText string, wb *Workbook, tableID int) Value {
	coord, ok := ParseReference(refText)
	if !ok {
		return RefSentinel
	}
	table := wb.TableAt(tableID)
	if table == nil {
		return RefSentinel
	}
	cell := table.CellAt(coord.Row, coord.Col)
	if cell == nil {
		return RefSentinel
	}
	return cell.CurrentValue()
}
