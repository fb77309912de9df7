package financials

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// quarterPattern matches the canonical quarter string format.
var quarterPattern = regexp.MustCompile(`^\d{4}-Q[1-4]$`)

// ValidQuarter reports whether q is in canonical YYYY-QN form.
func ValidQuarter(q string) bool {
	return quarterPattern.MatchString(q)
}

// QuarterOf derives the canonical quarter string for a calendar date.
// January through March map to Q1, and so on.
func QuarterOf(t time.Time) string {
	return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

// QuarterFromParts builds a canonical quarter string from a year and a
// calendar month (1-12).
func QuarterFromParts(year, month int) string {
	return fmt.Sprintf("%04d-Q%d", year, (month-1)/3+1)
}

// ParseQuarter splits a canonical quarter string into its year and quarter
// number. It returns an error for anything not in YYYY-QN form.
func ParseQuarter(q string) (year, quarter int, err error) {
	if !ValidQuarter(q) {
		return 0, 0, fmt.Errorf("invalid quarter %q: want YYYY-QN", q)
	}
	year, _ = strconv.Atoi(q[:4])
	quarter = int(q[6] - '0')
	return year, quarter, nil
}
