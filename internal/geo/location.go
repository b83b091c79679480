// Package geo formats coordinate pairs for the event store.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Matches the two leading signed numbers of either the canonical or the
// legacy (unpadded) coordinate string.
var pointRe = regexp.MustCompile(`^([+-]\d+\.?\d*)([+-]\d+\.?\d*)`)

// FormatPoint renders a coordinate pair as an ISO6709 point string:
// latitude zero-padded to two integer digits, longitude to three, signs
// always present, fractional part only when non-zero, trailing solidus.
func FormatPoint(lat, lon float64) string {
	return fmt.Sprintf("%+03d%s%+04d%s/", int(lat), fraction(lat), int(lon), fraction(lon))
}

func fraction(f float64) string {
	if math.Mod(f, 1) == 0 {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[i:]
	}
	return ""
}

// NormalizePoint re-emits a stored coordinate string in canonical form. A
// historical bug stored points without zero padding, so both variants parse.
// An empty input is returned as-is (absent is not an error); anything else
// that does not lead with two signed numbers is malformed.
//
// NormalizePoint(FormatPoint(lat, lon)) == FormatPoint(lat, lon) for all
// inputs, and normalizing twice is a no-op.
func NormalizePoint(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	m := pointRe.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("invalid location %q", text)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", text, err)
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", text, err)
	}
	return FormatPoint(lat, lon), nil
}
