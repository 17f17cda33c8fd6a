package formula

import (
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/test-perspective/excel-formula-engine/logger"
)

// Result is the output of a workbook resolution pass: the augmented tables
// plus a flat list of every resolved formula cell.
type Result struct {
	Tables   []*Table       `json:"tables"`
	Formulas []*FormulaCell `json:"formulas"`
}

// Resolver walks a workbook and resolves every cell in place.
type Resolver struct {
	eval *Evaluator
	log  logger.Logger
}

// NewResolver creates a resolver. A nil logger falls back to the null
// logger.
func NewResolver(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Resolver{eval: NewEvaluator(), log: log}
}

// NewResolverWithEvaluator creates a resolver around a prepared evaluator,
// used by tests that pin the clock.
func NewResolverWithEvaluator(eval *Evaluator, log logger.Logger) *Resolver {
	r := NewResolver(log)
	r.eval = eval
	return r
}

// ResolveWorkbook resolves every cell of every table in place, row-major
// within table-major order, and returns the augmented tables plus the
// formula list. Evaluation order is iteration order, not dependency
// order: each reference resolves independently and on demand, so a
// formula may reference a cell evaluated earlier or later in the pass.
// Shared sub-results are recomputed, not memoized.
//
// The pass mutates the workbook; callers serialize concurrent passes over
// the same workbook externally.
func (r *Resolver) ResolveWorkbook(wb *Workbook) *Result {
	start := time.Now()
	result := &Result{Tables: wb.Tables, Formulas: []*FormulaCell{}}

	for tableID, table := range wb.Tables {
		if table == nil {
			continue
		}
		for rowIdx, row := range table.Rows {
			for colIdx, cell := range row {
				if cell == nil {
					continue
				}
				r.resolveCell(wb, tableID, rowIdx, colIdx, cell, result)
			}
		}
	}

	r.log.Info("workbook resolved",
		logger.Field{Key: "tables", Value: len(wb.Tables)},
		logger.Field{Key: "formulas", Value: len(result.Formulas)},
		logger.Field{Key: "duration", Value: time.Since(start).String()},
	)
	return result
}

func (r *Resolver) resolveCell(wb *Workbook, tableID, row, col int, cell *Cell, result *Result) {
	if cell.IsFormula() {
		value := r.eval.EvaluateFormula(cell.Raw.(string), wb, tableID, map[string]struct{}{})

		// numeric-looking string results become numbers
		if s, ok := value.(string); ok {
			if num, numOK := toNumber(s); numOK {
				value = num
			}
		}

		cell.Resolved = true
		cell.ResolvedValue = value

		display := value
		if IsPercentFormat(cell.Format) {
			if num, ok := toNumber(value); ok {
				display = num / 100
			}
		}
		formatted := Format(display, cell.Format)
		cell.DisplayValue = formatted.DisplayValue
		cell.TextColor = formatted.TextColor

		record := &FormulaCell{Table: tableID, Row: row, Col: col}
		if err := deepcopy.Copy(&record.Cell, cell); err != nil {
			r.log.Error("formula cell copy failed",
				logger.Field{Key: "table", Value: tableID},
				logger.Field{Key: "row", Value: row},
				logger.Field{Key: "col", Value: col},
				logger.Field{Key: "error", Value: err.Error()},
			)
			record.Cell = *cell
		}
		result.Formulas = append(result.Formulas, record)
		return
	}

	cell.Resolved = true
	cell.ResolvedValue = cell.Raw
	if cell.Format != "" {
		formatted := Format(cell.Raw, cell.Format)
		cell.DisplayValue = formatted.DisplayValue
		cell.TextColor = formatted.TextColor
	} else {
		cell.DisplayValue = toString(cell.Raw)
	}
}
