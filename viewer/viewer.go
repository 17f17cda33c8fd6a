// Package viewer renders a resolved workbook as a read-only terminal grid.
package viewer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/test-perspective/excel-formula-engine/formula"
)

const (
	colWidth    = 12
	leftGutter  = 6
	statusLines = 1
)

// Viewer holds the navigation state over a resolved workbook.
type Viewer struct {
	workbook *formula.Workbook
	table    int
	viewRow  int
	viewCol  int
	quit     bool
}

// New creates a viewer over a resolved workbook.
func New(wb *formula.Workbook) *Viewer {
	return &Viewer{workbook: wb}
}

// Run opens the terminal screen and blocks until the user quits.
func (v *Viewer) Run() error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.Clear()

	for !v.quit {
		v.draw(s)
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			v.handleKey(ev)
		case *tcell.EventResize:
			s.Sync()
		}
	}
	return nil
}

func (v *Viewer) currentTable() *formula.Table {
	return v.workbook.TableAt(v.table)
}

func (v *Viewer) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		v.quit = true
	case tcell.KeyUp:
		if v.viewRow > 0 {
			v.viewRow--
		}
	case tcell.KeyDown:
		v.viewRow++
	case tcell.KeyLeft:
		if v.viewCol > 0 {
			v.viewCol--
		}
	case tcell.KeyRight:
		v.viewCol++
	case tcell.KeyPgUp:
		v.viewRow = max(0, v.viewRow-10)
	case tcell.KeyPgDn:
		v.viewRow += 10
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			v.quit = true
		case '[':
			if v.table > 0 {
				v.table--
				v.viewRow, v.viewCol = 0, 0
			}
		case ']':
			if v.table < len(v.workbook.Tables)-1 {
				v.table++
				v.viewRow, v.viewCol = 0, 0
			}
		}
	}
}

func (v *Viewer) draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	table := v.currentTable()

	// header row: column names
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	x := leftGutter
	for col := v.viewCol; x < w; col++ {
		printFixed(s, x, 0, formula.ColumnName(col), hdrStyle, colWidth)
		x += colWidth
	}

	// rows with gutter numbers
	y := 1
	for row := v.viewRow; y < h-statusLines; row++ {
		printFixed(s, 0, y, fmt.Sprintf("%d", row+1), hdrStyle, leftGutter)
		x = leftGutter
		for col := v.viewCol; x < w; col++ {
			style := tcell.StyleDefault
			text := ""
			if cell := table.CellAt(row, col); cell != nil {
				text = cell.DisplayValue
				if formula.IsSentinel(cell.ResolvedValue) {
					style = style.Foreground(tcell.ColorRed)
				} else if cell.TextColor == "red" {
					style = style.Foreground(tcell.ColorRed)
				}
			}
			printFixed(s, x, y, text, style, colWidth-1)
			x += colWidth
		}
		y++
	}

	// status line: table name and position
	name := ""
	if table != nil {
		name = table.Name
	}
	if name == "" {
		name = fmt.Sprintf("table %d", v.table)
	}
	status := fmt.Sprintf(" %s  (%d/%d)  arrows move, [ ] switch table, q quits",
		name, v.table+1, len(v.workbook.Tables))
	statusStyle := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
	printFixed(s, 0, h-1, status, statusStyle, w)

	s.Show()
}

// printFixed draws text padded or truncated to width
func printFixed(s tcell.Screen, x, y int, text string, style tcell.Style, width int) {
	runes := []rune(text)
	if len(runes) > width && width > 1 {
		runes = append(runes[:width-1], '…')
	}
	padded := string(runes) + strings.Repeat(" ", max(0, width-len(runes)))
	for i, ch := range []rune(padded) {
		s.SetContent(x+i, y, ch, nil, style)
	}
}
