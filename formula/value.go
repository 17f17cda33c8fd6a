package formula

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value represents basic cell value types.
// types:
//   - float64: numeric values (integers are converted to float64)
//   - string: text values
//   - bool: boolean values
//   - nil: empty cells, or a failed range lookup
//   - Sentinel: error values (#REF!, #DIV/0!, ...)
//   - []float64: an expanded range, consumed by aggregate functions
type Value = any

// Sentinel is an evaluation error returned as an ordinary value, never as a
// Go error, at every public boundary. It is a distinct string type so that
// numeric coercion rejects it; a sentinel flowing into an arithmetic
// operation therefore becomes #ERROR! at that level, which is how errors
// cascade outward exactly once per arithmetic boundary.
type Sentinel string

const (
	ErrorSentinel    Sentinel = "#ERROR!"    // generic evaluation failure
	RefSentinel      Sentinel = "#REF!"      // malformed or out-of-range reference
	DivZeroSentinel  Sentinel = "#DIV/0!"    // division by exactly zero
	CircularSentinel Sentinel = "#CIRCULAR!" // formula already being evaluated up the call chain
)

func (s Sentinel) String() string {
	return string(s)
}

// IsSentinel reports whether value is one of the error sentinels.
func IsSentinel(value Value) bool {
	_, ok := value.(Sentinel)
	return ok
}

// Clock provides time functionality for testing
type Clock interface {
	Now() time.Time
}

// wallClock is the default implementation using system time
type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// toNumber converts value to a number, returning ok=false if conversion
// fails. Empty cells and sentinels are not numeric; range expansion and the
// aggregate functions rely on that to drop them rather than treat them
// as zero.
func toNumber(value Value) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

// toString converts value to its display-neutral string form
func toString(value Value) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		// format without unnecessary decimals
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

// isTruthy checks if value is truthy
func isTruthy(value Value) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	case nil:
		return false
	default:
		return true
	}
}
