package domain

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders v the way a calculator display shows numbers:
// shortest round-trip digits, fixed notation for decimal exponents in
// [-6, 21), exponent notation ("1e+21", "1.5e-7") outside that range.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	i := strings.IndexByte(sci, 'e')
	exp, _ := strconv.Atoi(sci[i+1:])
	if exp >= -6 && exp < 21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	mantissa, expPart := sci[:i], sci[i+1:]
	sign := expPart[0]
	digits := strings.TrimLeft(expPart[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
