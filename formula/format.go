package formula

import (
	"strconv"
	"strings"

	"github.com/oarkflow/date"
)

// FormatResult is the outcome of display formatting: the text to show and
// an optional text colour.
type FormatResult struct {
	DisplayValue string
	TextColor    string
}

// colour applied to negative currency values
const negativeColor = "red"

// IsPercentFormat reports whether a format string denotes a percentage.
func IsPercentFormat(format string) bool {
	return format == "percent" || strings.HasSuffix(format, "%")
}

// Format renders a value for display according to its format string.
// Sentinels display as their sentinel text regardless of format, and a
// value that does not fit the format falls back to its plain string form.
func Format(value Value, format string) FormatResult {
	if s, ok := value.(Sentinel); ok {
		return FormatResult{DisplayValue: string(s)}
	}
	if format == "" {
		return FormatResult{DisplayValue: toString(value)}
	}

	switch {
	case IsPercentFormat(format):
		num, ok := toNumber(value)
		if !ok {
			return FormatResult{DisplayValue: toString(value)}
		}
		return FormatResult{DisplayValue: toString(num*100) + "%"}

	case format == "currency" || strings.HasPrefix(format, "$"):
		num, ok := toNumber(value)
		if !ok {
			return FormatResult{DisplayValue: toString(value)}
		}
		if num < 0 {
			return FormatResult{
				DisplayValue: "-$" + strconv.FormatFloat(-num, 'f', 2, 64),
				TextColor:    negativeColor,
			}
		}
		return FormatResult{DisplayValue: "$" + strconv.FormatFloat(num, 'f', 2, 64)}

	case isDateFormat(format):
		return FormatResult{DisplayValue: formatDate(value)}

	case isDecimalFormat(format):
		num, ok := toNumber(value)
		if !ok {
			return FormatResult{DisplayValue: toString(value)}
		}
		places := len(format) - strings.Index(format, ".") - 1
		return FormatResult{DisplayValue: strconv.FormatFloat(num, 'f', places, 64)}

	default:
		return FormatResult{DisplayValue: toString(value)}
	}
}

func isDateFormat(format string) bool {
	switch strings.ToLower(format) {
	case "date", "yyyy-mm-dd", "yyyy/mm/dd":
		return true
	}
	return false
}

// isDecimalFormat matches fixed-precision patterns like "0.00"
func isDecimalFormat(format string) bool {
	dot := strings.Index(format, ".")
	if dot < 1 {
		return false
	}
	for _, ch := range format {
		if ch != '0' && ch != '#' && ch != '.' {
			return false
		}
	}
	return true
}

// formatDate renders a day serial, a parseable date string, or falls back
// to the plain string form.
func formatDate(value Value) string {
	if num, ok := value.(float64); ok {
		return serialTime(num).Format("2006-01-02")
	}
	if s, ok := value.(string); ok {
		if t, err := date.Parse(s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return toString(value)
}
