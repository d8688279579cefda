// Package core holds the expense domain: records, categories, date-range
// filters and money handling.
//
// This file contains parsing and formatting for monetary amounts. Costs
// travel as decimal strings to keep floating rounding away from the wire;
// internally everything is integer cents.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents.
type Money struct {
	Cents int64
}

// ParseCost converts a serialized cost to cents with half-up rounding on the
// third decimal place. Both dot and comma separators are accepted. Zero is a
// valid amount; negative values and malformed input are not.
//
// Examples:
//
//	ParseCost("100.50") -> 10050, nil
//	ParseCost("12,345") -> 1235, nil (rounds up)
//	ParseCost("-3")     -> 0, ErrInvalidCost
func ParseCost(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCost
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidCost
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidCost
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		if fracPart == "" {
			// a bare "." is not a number
			return 0, ErrInvalidCost
		}
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidCost
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidCost
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidCost
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	const maxCents = 1<<63 - 1
	if iv > maxCents/100 || iv*100 > maxCents-frac {
		return 0, ErrInvalidCost
	}
	return iv*100 + frac, nil
}

// FormatCents renders cents as a decimal string with exactly two fractional
// digits, e.g. 15050 -> "150.50".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// CostCentsOrZero parses a record cost for aggregation. An empty or
// unparseable cost contributes nothing to a total rather than failing the
// whole view.
func CostCentsOrZero(s string) int64 {
	cents, err := ParseCost(s)
	if err != nil {
		return 0
	}
	return cents
}
