package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`\d[\d,.]*`)

// ParseCount returns the first run of digits in s, with "," and "."
// separators removed. It returns 0 when s holds no digits.
func ParseCount(s string) int {
	m := countPattern.FindString(s)
	if m == "" {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
