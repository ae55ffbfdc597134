package judge

import (
	"fmt"
	"regexp"
	"strconv"
)

var numberRe = regexp.MustCompile(`-?\d+`)

// ParseScore extracts the first integer within [lo, hi] from a judge's
// free-text output. Judges are instructed to emit a bare integer, but
// in practice they wrap it in prose, code fences, or sign-split tokens;
// scanning for the first in-range number recovers most of those. An
// out-of-range or absent number is a parse failure, never a zero.
func ParseScore(text string, lo, hi int) (float64, error) {
	for _, match := range numberRe.FindAllString(text, -1) {
		n, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if n >= lo && n <= hi {
			return float64(n), nil
		}
	}
	return 0, fmt.Errorf("no integer in [%d, %d] found in judge output %.80q", lo, hi, text)
}
