package record

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseFloat reads a decimal or exponent-notation number, inf or nan.
// Hexadecimal literals are rejected. Literals outside the float64 range
// become ±Inf or 0 instead of failing.
func ParseFloat(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

// FormatFloat renders v as the shortest decimal that round-trips. Values in
// [1e-4, 1e16) use fixed notation and always carry a fractional part ("20.0");
// others use exponent notation ("1e-05", "1.5e+16"). Non-finite values are
// "inf", "-inf" and "nan".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatInt renders an integer total.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
