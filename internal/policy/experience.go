package policy

import (
	"regexp"
	"strconv"
)

var yearsRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:\+|plus)?\s*(?:years?|yrs?\.?|yoe)\b`)

// MinYearsRequired extracts "N years/yrs/yoe" mentions from a description
// and returns the smallest one, treating it as the minimum experience the
// listing demands. ok is false when nothing matches.
func MinYearsRequired(desc string) (years int, ok bool) {
	matches := yearsRe.FindAllStringSubmatch(desc, -1)
	if len(matches) == 0 {
		return 0, false
	}
	minYears := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if minYears < 0 || n < minYears {
			minYears = n
		}
	}
	if minYears < 0 {
		return 0, false
	}
	return minYears, true
}
