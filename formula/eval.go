package formula

import (
	"math"
	"strconv"
	"strings"
)

// Context carries the ambient state for a single formula evaluation: the
// workbook, the table the formula lives in, and the in-progress key set
// shared along the current call chain.
type Context struct {
	Workbook   *Workbook
	TableID    int
	inProgress map[string]struct{}
}

// Evaluator evaluates formula strings against a workbook. The function
// registry is fixed at construction. Evaluation is synchronous and
// recursive; a single Evaluator may be reused across passes but not
// concurrently against the same workbook.
type Evaluator struct {
	funcs map[string]Function
	clock Clock
}

// NewEvaluator creates an evaluator with the built-in function registry.
func NewEvaluator() *Evaluator {
	e := &Evaluator{clock: wallClock{}}
	e.funcs = builtinFunctions()
	return e
}

// NewEvaluatorWithClock creates an evaluator with a fixed clock, used to
// pin TODAY in tests.
func NewEvaluatorWithClock(clock Clock) *Evaluator {
	e := NewEvaluator()
	e.clock = clock
	return e
}

// EvaluateFormula evaluates formulaText against a workbook table. Text
// without the formula marker is returned unchanged. inProgress tracks the
// (table, formula text) keys currently on the call chain; a key seen twice
// reports #CIRCULAR! without further evaluation. Callers pass a fresh
// empty map per top-level evaluation.
//
// The key is removed on the success path only: a formula that fails to
// parse, or panics mid-evaluation, leaves its key behind and reads as
// #CIRCULAR! if re-entered within the same top-level call. Sentinel
// results count as success and do clean up.
func (e *Evaluator) EvaluateFormula(formulaText string, wb *Workbook, tableID int, inProgress map[string]struct{}) Value {
	if !strings.HasPrefix(formulaText, FormulaPrefix) {
		return formulaText
	}

	key := strconv.Itoa(tableID) + ":" + formulaText
	if _, ok := inProgress[key]; ok {
		return CircularSentinel
	}
	inProgress[key] = struct{}{}

	node, err := Parse(formulaText, &ParseContext{ResolveTable: wb.ResolveTable})
	if err != nil {
		return ErrorSentinel
	}

	ctx := &Context{Workbook: wb, TableID: tableID, inProgress: inProgress}
	result, ok := e.safeEvaluate(node, ctx)
	if !ok {
		return ErrorSentinel
	}

	delete(inProgress, key)
	return result
}

// safeEvaluate evaluates a node, downgrading panics to ok=false so no
// fault escapes the evaluation boundary.
func (e *Evaluator) safeEvaluate(node Node, ctx *Context) (result Value, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			result, ok = nil, false
		}
	}()
	return e.evaluateNode(node, ctx), true
}

// evaluateNode dispatches over the closed node set. Sentinels returned by
// nested evaluation are not special-cased here: when one flows into a
// numeric coercion the coercion fails, which yields #ERROR! at that level.
func (e *Evaluator) evaluateNode(node Node, ctx *Context) Value {
	switch n := node.(type) {
	case *LiteralNode:
		return n.Value

	case *BinaryNode:
		left := e.evaluateNode(n.Left, ctx)
		right := e.evaluateNode(n.Right, ctx)

		leftNum, leftOK := toNumber(left)
		rightNum, rightOK := toNumber(right)
		if !leftOK || !rightOK {
			return ErrorSentinel
		}

		switch n.Op {
		case OpAdd:
			return leftNum + rightNum
		case OpSubtract:
			return leftNum - rightNum
		case OpMultiply:
			return leftNum * rightNum
		case OpPower:
			return math.Pow(leftNum, rightNum)
		case OpDivide:
			if rightNum == 0 {
				return DivZeroSentinel
			}
			return leftNum / rightNum
		default:
			return ErrorSentinel
		}

	case *CallNode:
		// case-sensitive lookup against the fixed registry
		fn, ok := e.funcs[n.Name]
		if !ok {
			return ErrorSentinel
		}
		// functions receive the unevaluated argument list plus the
		// context and resolve their own arguments
		return fn(e, ctx, n.Args)

	case *CellNode:
		tableID := ctx.TableID
		if n.HasTable {
			tableID = n.Table
		}
		value := CellValue(n.Ref, ctx.Workbook, tableID)
		// a referenced cell may itself hold an unresolved formula;
		// resolve it on demand, sharing the cycle set
		if s, ok := value.(string); ok && strings.HasPrefix(s, FormulaPrefix) {
			return e.EvaluateFormula(s, ctx.Workbook, tableID, ctx.inProgress)
		}
		return value

	case *RangeNode:
		tableID := ctx.TableID
		if n.HasTable {
			tableID = n.Table
		}
		values, ok := ExpandRange(n.Ref, ctx.Workbook, tableID)
		if !ok {
			return nil
		}
		return values

	default:
		// unknown variants and nil nodes are internal faults
		return ErrorSentinel
	}
}
