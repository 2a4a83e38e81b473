// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package macro mines calorie and protein estimates from free-text dish
// descriptions such as "roughly 550–650 kcal, 35–45g protein".
package macro

import (
	"math"
	"regexp"
	"strconv"
)

var (
	kcalRange     = regexp.MustCompile(`(?i)(\d{2,4})\s*[–-]\s*(\d{2,4})\s*kcal`)
	kcalSingle    = regexp.MustCompile(`(?i)(\d{2,4})\s*kcal`)
	proteinRange  = regexp.MustCompile(`(?i)(\d{1,3})\s*[–-]\s*(\d{1,3})\s*g\s*protein`)
	proteinSingle = regexp.MustCompile(`(?i)(\d{1,3})\s*g\s*protein`)
)

// Extract returns the calorie and protein estimates found in text. A range
// wins over a single value and resolves to its rounded midpoint. When text
// has no usable hint for a macro, the matching fallback is returned
// unchanged.
func Extract(text string, fallbackCalories, fallbackProtein float64) (calories, protein float64) {
	calories = find(text, kcalRange, kcalSingle, fallbackCalories)
	protein = find(text, proteinRange, proteinSingle, fallbackProtein)
	return calories, protein
}

// find applies the range pattern, then the single-value pattern. A range
// match whose endpoints do not parse does not fall through to the single
// pattern.
func find(text string, rangePat, singlePat *regexp.Regexp, fallback float64) float64 {
	if m := rangePat.FindStringSubmatch(text); m != nil {
		low, lowOK := parse(m[1])
		high, highOK := parse(m[2])
		if lowOK && highOK {
			return math.Round((low + high) / 2)
		}
		return fallback
	}
	if m := singlePat.FindStringSubmatch(text); m != nil {
		if v, ok := parse(m[1]); ok {
			return v
		}
	}
	return fallback
}

func parse(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
