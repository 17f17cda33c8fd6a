package formula

import (
	"testing"
	"time"
)

func TestSum(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, "x", 3.0),
	}})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=SUM(1,2,3)", 6.0},
		{"=SUM(A1:C1)", 4.0}, // "x" drops out of the range
		{"=SUM(1,\"x\",3)", 4.0},
		{"=SUM(A1:C1,10)", 14.0},
		{"=SUM()", 0.0},
		{"=SUM(\"5\")", 5.0},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}

func TestAverage(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(2.0, 4.0, "skip", 6.0),
	}})

	if got := evalText(t, wb, 0, "=AVERAGE(A1:D1)"); got != 4.0 {
		t.Errorf("AVERAGE over mixed range = %v, want 4", got)
	}
	// empty numeric subset averages to zero rather than erroring
	if got := evalText(t, wb, 0, "=AVERAGE(A2:D2)"); got != 0.0 {
		t.Errorf("AVERAGE over empty range = %v, want 0", got)
	}
}

func TestCount(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, "5", "x", nil, 2.5),
	}})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=COUNT(A1:E1)", 3.0}, // 1, "5", 2.5; text and empty cells excluded
		{"=COUNT(1,2,3)", 3.0},
		{"=COUNT(\"5\",\"x\",3)", 2.0},
		{"=COUNT()", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}

func TestMaxMin(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(3.0, -7.0, 5.0),
	}})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=MAX(A1:C1)", 5.0},
		{"=MIN(A1:C1)", -7.0},
		{"=MAX(1,9,4)", 9.0},
		{"=MIN(-1,-9,4)", -9.0},
		{"=MAX()", ErrorSentinel},
		{"=MIN()", ErrorSentinel},
		{"=MAX(A2:C2)", ErrorSentinel},
		{"=MIN(\"x\")", ErrorSentinel},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}

func TestIf(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(0.0, 1.0),
	}})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=IF(1,2,3)", 2.0},
		{"=IF(0,2,3)", 3.0},
		{"=IF(A1,\"yes\",\"no\")", "no"},
		{"=IF(B1,\"yes\",\"no\")", "yes"},
		{"=IF(\"\",2,3)", 3.0},
		{"=IF(\"text\",2,3)", 2.0},
		{"=IF(1,2)", ErrorSentinel},
		{"=IF(1,2,3,4)", ErrorSentinel},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	wb := testWorkbook(&Table{})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=DATE(2024,1,1)", 45291.0},
		{"=DATE(2024,1,15)", 45305.0},
		{"=DATE(1900,1,1)", 1.0},
		{"=DATE(\"2024-01-01\")", 45291.0},
		{"=DATE(\"x\")", ErrorSentinel},
		{"=DATE(2024)", ErrorSentinel},
		{"=DATE(2024,1)", ErrorSentinel},
		{"=DATE(\"x\",1,1)", ErrorSentinel},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestToday(t *testing.T) {
	wb := testWorkbook(&Table{})
	e := NewEvaluatorWithClock(fixedClock{t: time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC)})

	if got := e.EvaluateFormula("=TODAY()", wb, 0, map[string]struct{}{}); got != 45291.0 {
		t.Errorf("TODAY() = %v, want 45291", got)
	}
	// TODAY and DATE agree on the clock's calendar day
	if got := e.EvaluateFormula("=TODAY()-DATE(2024,1,1)", wb, 0, map[string]struct{}{}); got != 0.0 {
		t.Errorf("TODAY()-DATE(2024,1,1) = %v, want 0", got)
	}
	if got := e.EvaluateFormula("=TODAY(1)", wb, 0, map[string]struct{}{}); got != ErrorSentinel {
		t.Errorf("TODAY(1) = %v, want #ERROR!", got)
	}
}

func TestFunctionsCompose(t *testing.T) {
	wb := testWorkbook(&Table{Rows: [][]*Cell{
		cellRow(1.0, 2.0, 3.0),
	}})

	cases := []struct {
		formula string
		want    Value
	}{
		{"=SUM(A1:C1)*2", 12.0},
		{"=IF(SUM(A1:C1),MAX(A1:C1),MIN(A1:C1))", 3.0},
		{"=SUM(A1:C1,MAX(A1:C1))", 9.0},
		{"=AVERAGE(SUM(A1:C1),0)", 3.0},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			if got := evalText(t, wb, 0, tc.formula); got != tc.want {
				t.Errorf("EvaluateFormula(%q) = %v, want %v", tc.formula, got, tc.want)
			}
		})
	}
}
