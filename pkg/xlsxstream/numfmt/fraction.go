package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// maxFractionDigits bounds the denominator at 10^15.
const maxFractionDigits = 15

// GCD returns the greatest common divisor of a and b by Euclid's algorithm.
// GCD(0, 0) is 0.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// renderFraction writes v as an exact fraction of its shortest decimal
// form. With a whole-number slot the integer part is written separately
// and omitted when zero.
func renderFraction(v float64, wholeSlot bool) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, decimals, _ := strings.Cut(strconv.FormatFloat(v, 'f', -1, 64), ".")
	if len(decimals) > maxFractionDigits {
		decimals = decimals[:maxFractionDigits]
	}
	w, _ := strconv.ParseInt(whole, 10, 64)
	num, _ := strconv.ParseInt(decimals, 10, 64)
	den := int64(math.Pow10(len(decimals)))
	if d := GCD(num, den); d > 1 {
		num, den = num/d, den/d
	}
	if num == 0 {
		return sign + strconv.FormatInt(w, 10)
	}

	frac := strconv.FormatInt(num, 10) + "/" + strconv.FormatInt(den, 10)
	if !wholeSlot {
		if w == 0 {
			return sign + frac
		}
		if w <= (math.MaxInt64-num)/den {
			return sign + strconv.FormatInt(w*den+num, 10) + "/" + strconv.FormatInt(den, 10)
		}
	}
	if w == 0 {
		return sign + frac
	}
	return sign + strconv.FormatInt(w, 10) + " " + frac
}
