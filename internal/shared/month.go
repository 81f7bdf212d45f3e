package shared

import "regexp"

var yearMonthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsYearMonth reports whether s is a YYYY-MM month with month 01-12.
func IsYearMonth(s string) bool {
	return yearMonthRe.MatchString(s)
}
