package token

import (
	"math"
	"strconv"
)

// ParseNumber parses the longest numeric prefix of s.
// "1.2.3" yields 1.2, "50%" yields 50 and text without a leading number yields NaN.
func ParseNumber(s string) float64 {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
			digits++
		}
		if digits > 0 {
			end = frac
		}
	}
	if digits == 0 {
		return math.NaN()
	}

	// ParseFloat only fails here on overflow, where it still returns ±Inf.
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
