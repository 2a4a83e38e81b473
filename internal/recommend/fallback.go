// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"github.com/pdiddy/feastfit/internal/score"
	"github.com/pdiddy/feastfit/pkg/types"
)

// Stand-in inputs for the placeholder result.
const (
	fallbackID         = "fallback-mock-1"
	fallbackName       = "FeastFit Demo Kitchen"
	fallbackDish       = "High-Protein Demo Bowl"
	fallbackRating     = 4.5
	fallbackPrice      = "$$"
	fallbackDistance   = 800.0
	fallbackConfidence = 0.3
)

// Fallback returns the single placeholder result shown when the upstream
// yields no usable businesses. Its dish macros equal the request targets,
// and it is scored by s like any real candidate.
func Fallback(s *score.Scorer, req types.SearchRequest) []types.RestaurantResult {
	distance := fallbackDistance
	breakdown := s.Score(score.Input{
		Calories:       req.CaloriesTarget,
		Protein:        req.ProteinMin,
		DistanceMeters: &distance,
		Confidence:     fallbackConfidence,
		BusinessName:   fallbackName,
		MealType:       req.MealType,
	}, req.Target())

	return []types.RestaurantResult{{
		ID:             fallbackID,
		Name:           fallbackName,
		Rating:         fallbackRating,
		Price:          fallbackPrice,
		DistanceMeters: &distance,
		Address:        req.Location,
		Dishes: []types.DishEstimate{{
			Name:              fallbackDish,
			Description:       "Sample macro-friendly bowl used when Yelp AI returns no structured businesses.",
			EstimatedCalories: req.CaloriesTarget,
			EstimatedProtein:  req.ProteinMin,
			Confidence:        fallbackConfidence,
		}},
		FitScore:       breakdown.Score,
		FitLabel:       breakdown.Label,
		ScoreBreakdown: breakdown,
		Reason:         "Fallback result shown because Yelp AI did not return structured businesses.",
	}}
}
