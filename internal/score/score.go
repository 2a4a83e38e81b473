// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the Perfect Fit Score: a weighted combination of
// macro fit, distance, AI confidence, and meal-type match, each exposed as
// an integer sub-score for auditability.
package score

import (
	"math"
	"strings"

	"github.com/pdiddy/feastfit/pkg/types"
)

// Fit labels, highest first.
const (
	LabelPerfect   = "Perfect fit"
	LabelExcellent = "Excellent fit"
	LabelGreat     = "Great fit"
	LabelGood      = "Good fit"
	LabelDecent    = "Decent fit"
)

// Distance bands in meters.
const (
	fullScoreMeters = 2000
	midBandMeters   = 5000
	zeroScoreMeters = 10000
	midBandFloor    = 0.7
)

// neutralMealTypeScore is used when the name carries no meal-type keyword.
const neutralMealTypeScore = 0.5

// mealTypeKeywords maps each meal type to the name fragments that suggest it.
var mealTypeKeywords = map[types.MealType][]string{
	types.MealBreakfast: {"breakfast", "brunch", "cafe", "coffee", "bagel", "pancake", "waffle"},
	types.MealLunch:     {"lunch", "sandwich", "salad", "bowl", "deli", "cafe", "bistro"},
	types.MealDinner:    {"dinner", "steakhouse", "fine dining", "restaurant", "tavern", "grill"},
	types.MealSnack:     {"snack", "smoothie", "juice", "cafe", "bar", "lounge"},
}

// Input is one candidate to score.
type Input struct {
	Calories float64
	Protein  float64

	// DistanceMeters is nil when the distance is unknown.
	DistanceMeters *float64

	// Confidence is in [0,1]; values outside are clamped.
	Confidence float64

	BusinessName string
	MealType     types.MealType
}

// Scorer computes Perfect Fit Scores with fixed weights and thresholds.
// A Scorer holds no mutable state.
type Scorer struct {
	weights    types.ScoreWeights
	thresholds types.LabelThresholds
}

// New creates a Scorer from cfg.
func New(cfg types.ScoringConfig) *Scorer {
	return &Scorer{weights: cfg.Weights, thresholds: cfg.Thresholds}
}

// Default returns a Scorer with the standard weights and label cutoffs.
func Default() *Scorer {
	return New(types.DefaultScoringConfig())
}

// Score rates in against target.
func (s *Scorer) Score(in Input, target types.Target) types.ScoreBreakdown {
	macroFit := s.MacroFit(in.Calories, in.Protein, target)
	distance := Distance(in.DistanceMeters)
	confidence := clamp01(in.Confidence)
	mealType := MealTypeMatch(in.BusinessName, in.MealType)

	w := s.weights
	final := int(math.Round(100 * (macroFit*w.MacroFit +
		distance*w.Distance +
		confidence*w.AIConfidence +
		mealType*w.MealType)))
	final = clampInt(final, 0, 100)

	return types.ScoreBreakdown{
		MacroFitScore:     percent(macroFit),
		DistanceScore:     percent(distance),
		AIConfidenceScore: percent(confidence),
		MealTypeScore:     percent(mealType),
		Score:             final,
		Label:             s.Label(final),
	}
}

// MacroFit returns the macro-fit factor in [0,1]. The calorie component
// falls off linearly with the relative calorie gap; the protein component
// is 1 at or above the minimum and falls off linearly below it.
func (s *Scorer) MacroFit(calories, protein float64, target types.Target) float64 {
	calorieGap := math.Abs(target.Calories-calories) / math.Max(target.Calories, 1)
	calorieScore := 1 - math.Min(calorieGap, 1)

	proteinScore := 1.0
	if delta := protein - target.ProteinMin; delta < 0 {
		proteinScore = math.Max(1+delta/math.Max(target.ProteinMin, 1), 0)
	}

	share := s.weights.CalorieShare
	return clamp01(calorieScore*share + proteinScore*(1-share))
}

// Distance returns the distance factor in [0,1]: full at 2 km or less,
// 1.0 to 0.7 between 2 and 5 km, 0.7 to 0 between 5 and 10 km, and 0
// beyond. An unknown distance scores 1.
func Distance(meters *float64) float64 {
	if meters == nil {
		return 1
	}
	d := *meters
	switch {
	case d <= fullScoreMeters:
		return 1
	case d <= midBandMeters:
		return 1 - (d-fullScoreMeters)/(midBandMeters-fullScoreMeters)*(1-midBandFloor)
	case d <= zeroScoreMeters:
		return midBandFloor - (d-midBandMeters)/(zeroScoreMeters-midBandMeters)*midBandFloor
	default:
		return 0
	}
}

// MealTypeMatch returns 1 when the lowercased name contains a keyword for
// mealType and 0.5 otherwise. Unknown meal types use the lunch keywords.
func MealTypeMatch(name string, mealType types.MealType) float64 {
	keywords, ok := mealTypeKeywords[mealType]
	if !ok {
		keywords = mealTypeKeywords[types.MealLunch]
	}
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return 1
		}
	}
	return neutralMealTypeScore
}

// Label maps a final score to its qualitative label.
func (s *Scorer) Label(score int) string {
	t := s.thresholds
	switch {
	case score >= t.Perfect:
		return LabelPerfect
	case score >= t.Excellent:
		return LabelExcellent
	case score >= t.Great:
		return LabelGreat
	case score >= t.Good:
		return LabelGood
	default:
		return LabelDecent
	}
}

func percent(v float64) int {
	return clampInt(int(math.Round(v*100)), 0, 100)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
