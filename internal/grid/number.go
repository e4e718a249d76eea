// Canonical rendering for JSON numbers.

package grid

import (
	"math"
	"strconv"
	"strings"
)

// NumberString renders a float64 the way SQLite renders the same value
// when cast to TEXT. Values that round to an integer within the int64
// range become plain integer tokens; everything else follows SQLite's
// REAL formatting: round to 15 significant digits, trim trailing zeros,
// and switch to exponent notation with a two-digit exponent and at least
// one fraction digit when the magnitude leaves [1e-4, 1e15). Stores
// persist numbers in exactly this form, so CAST(json_extract(...) AS
// TEXT) reproduces it byte for byte.
func NumberString(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && f >= -9223372036854775808 && f < 9223372036854775808 {
		return strconv.FormatInt(int64(f), 10)
	}
	sign := ""
	if f < 0 {
		sign = "-"
	}
	// Round to 15 significant digits first; shortest-round-trip output
	// sometimes needs 16 or 17, which SQLite never emits.
	s := strconv.FormatFloat(math.Abs(f), 'e', 14, 64)
	e := strings.IndexByte(s, 'e')
	digits := strings.TrimRight(s[:1]+s[2:e], "0")
	exp, _ := strconv.Atoi(s[e+1:])
	switch {
	case exp < -4 || exp >= 15:
		frac := digits[1:]
		if frac == "" {
			frac = "0"
		}
		return sign + digits[:1] + "." + frac + "e" + formatExp(exp)
	case exp < 0:
		return sign + "0." + strings.Repeat("0", -exp-1) + digits
	case len(digits) > exp+1:
		return sign + digits[:exp+1] + "." + digits[exp+1:]
	default:
		// Rounding left no fraction. Emit an integer token so the value
		// stays an integer through a store round trip.
		return sign + digits + strings.Repeat("0", exp+1-len(digits))
	}
}

func formatExp(exp int) string {
	sign := "+"
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	if exp < 10 {
		return sign + "0" + strconv.Itoa(exp)
	}
	return sign + strconv.Itoa(exp)
}
