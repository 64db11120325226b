package exporter

import (
	"strconv"
	"time"
)

// formatValue renders a fundamental or price value without losing
// precision. Reported values keep their full representation; callers
// decide rounding at presentation time, not in the data files.
func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatOptional renders a possibly-absent value. Absent values become
// the empty cell so that readers never mistake them for zero.
func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatValue(*f)
}

// formatOptionalInt renders a possibly-absent integer value.
func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

// formatDate renders dates the way the rest of the data tree does.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
