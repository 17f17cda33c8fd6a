package formula

import (
	"math"
	"time"

	"github.com/oarkflow/date"
)

// Function is a registered formula function. Functions receive their
// unevaluated argument nodes plus the evaluation context and are
// responsible for resolving and flattening their own arguments.
type Function func(e *Evaluator, ctx *Context, args []Node) Value

// builtinFunctions constructs the function registry. The set is closed and
// known ahead of time, so the map is built once at evaluator construction
// and never mutated. Lookup is case-sensitive.
func builtinFunctions() map[string]Function {
	return map[string]Function{
		"SUM":     fnSum,
		"AVERAGE": fnAverage,
		"COUNT":   fnCount,
		"MAX":     fnMax,
		"MIN":     fnMin,
		"IF":      fnIf,
		"DATE":    fnDate,
		"TODAY":   fnToday,
	}
}

// flattenArgs evaluates argument nodes in order and splices expanded
// ranges into the scalar stream: a range argument contributes its whole
// numeric list, a cell argument a single value, a literal itself. Every
// function flattens through this one routine so the semantics cannot
// drift between call sites.
func flattenArgs(e *Evaluator, ctx *Context, args []Node) []Value {
	flat := []Value{}
	for _, arg := range args {
		value := e.evaluateNode(arg, ctx)
		if nums, ok := value.([]float64); ok {
			for _, num := range nums {
				flat = append(flat, num)
			}
			continue
		}
		flat = append(flat, value)
	}
	return flat
}

// numericValues filters flattened values down to their numeric subset
func numericValues(values []Value) []float64 {
	nums := []float64{}
	for _, value := range values {
		if num, ok := toNumber(value); ok && !math.IsNaN(num) {
			nums = append(nums, num)
		}
	}
	return nums
}

// fnSum returns the algebraic sum; non-numeric flattened values are
// skipped as the additive identity.
func fnSum(e *Evaluator, ctx *Context, args []Node) Value {
	sum := 0.0
	for _, num := range numericValues(flattenArgs(e, ctx, args)) {
		sum += num
	}
	return sum
}

// fnAverage returns the mean of the numeric subset; an empty subset is 0,
// not an error.
func fnAverage(e *Evaluator, ctx *Context, args []Node) Value {
	nums := numericValues(flattenArgs(e, ctx, args))
	if len(nums) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, num := range nums {
		sum += num
	}
	return sum / float64(len(nums))
}

// fnCount counts values that are numeric or numeric-looking text.
// Booleans, sentinels and empty cells are not counted.
func fnCount(e *Evaluator, ctx *Context, args []Node) Value {
	count := 0
	for _, value := range flattenArgs(e, ctx, args) {
		switch v := value.(type) {
		case float64:
			count++
		case string:
			if _, ok := toNumber(v); ok {
				count++
			}
		}
	}
	return float64(count)
}

func fnMax(e *Evaluator, ctx *Context, args []Node) Value {
	nums := numericValues(flattenArgs(e, ctx, args))
	if len(nums) == 0 {
		return ErrorSentinel
	}
	best := math.Inf(-1)
	for _, num := range nums {
		if num > best {
			best = num
		}
	}
	return best
}

func fnMin(e *Evaluator, ctx *Context, args []Node) Value {
	nums := numericValues(flattenArgs(e, ctx, args))
	if len(nums) == 0 {
		return ErrorSentinel
	}
	best := math.Inf(1)
	for _, num := range nums {
		if num < best {
			best = num
		}
	}
	return best
}

// fnIf picks between its branches on the truthiness of the evaluated
// condition. All three arguments are evaluated; IF is a scalar helper, not
// a lazy control structure.
func fnIf(e *Evaluator, ctx *Context, args []Node) Value {
	if len(args) != 3 {
		return ErrorSentinel
	}
	condition := e.evaluateNode(args[0], ctx)
	whenTrue := e.evaluateNode(args[1], ctx)
	whenFalse := e.evaluateNode(args[2], ctx)
	if isTruthy(condition) {
		return whenTrue
	}
	return whenFalse
}

// fnDate builds a day serial from DATE(year, month, day), or from a
// single date-looking string argument.
func fnDate(e *Evaluator, ctx *Context, args []Node) Value {
	if len(args) == 1 {
		value := e.evaluateNode(args[0], ctx)
		s, ok := value.(string)
		if !ok {
			return ErrorSentinel
		}
		t, err := date.Parse(s)
		if err != nil {
			return ErrorSentinel
		}
		return daySerial(t)
	}

	if len(args) != 3 {
		return ErrorSentinel
	}
	year, okY := toNumber(e.evaluateNode(args[0], ctx))
	month, okM := toNumber(e.evaluateNode(args[1], ctx))
	day, okD := toNumber(e.evaluateNode(args[2], ctx))
	if !okY || !okM || !okD {
		return ErrorSentinel
	}
	t := time.Date(int(year), time.Month(int(month)), int(day), 0, 0, 0, 0, time.UTC)
	return daySerial(t)
}

// fnToday returns the serial for the current local midnight
func fnToday(e *Evaluator, ctx *Context, args []Node) Value {
	if len(args) != 0 {
		return ErrorSentinel
	}
	now := e.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return daySerial(midnight)
}

// day serial epoch: December 30, 1899 00:00:00 UTC in Unix milliseconds,
// the conventional spreadsheet epoch
const (
	epochMillis  = -2209075200000
	millisPerDay = 86400000
)

// daySerial converts a time to whole days since the spreadsheet epoch
func daySerial(t time.Time) float64 {
	return math.Floor(float64(t.UnixMilli()-epochMillis) / millisPerDay)
}

// serialTime converts a day serial back to a UTC time
func serialTime(serial float64) time.Time {
	return time.UnixMilli(epochMillis + int64(serial*millisPerDay)).UTC()
}
