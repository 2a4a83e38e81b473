// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the FeastFit engine:
// search requests, scored restaurant results, search snapshots, meal logs,
// and configuration.
package types

// MealType selects the keyword set used for meal-type matching.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// DefaultMealType is used when a request leaves mealType empty.
const DefaultMealType = MealLunch

// Valid reports whether m is one of the four known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// SearchRequest is the inbound request for a macro-fit restaurant search.
type SearchRequest struct {
	// Location is the free-text place the user is searching around.
	Location string `json:"location" yaml:"location"`

	// CaloriesTarget is the calorie goal for a single meal. Must be > 0.
	CaloriesTarget float64 `json:"caloriesTarget" yaml:"calories_target"`

	// ProteinMin is the minimum protein in grams for the meal. Must be > 0.
	ProteinMin float64 `json:"proteinMin" yaml:"protein_min"`

	// Diet is an optional dietary preference (e.g. "vegetarian").
	Diet string `json:"diet,omitempty" yaml:"diet,omitempty"`

	// Query is the user's free-text mood or craving.
	Query string `json:"query" yaml:"query"`

	// MealType defaults to lunch when empty.
	MealType MealType `json:"mealType,omitempty" yaml:"meal_type,omitempty"`

	// RadiusMeters and PriceLevels are optional hints forwarded to the prompt.
	RadiusMeters int   `json:"radiusMeters,omitempty" yaml:"radius_meters,omitempty"`
	PriceLevels  []int `json:"priceLevels,omitempty" yaml:"price_levels,omitempty"`
}

// Target is the calorie/protein goal a candidate is scored against.
type Target struct {
	Calories   float64
	ProteinMin float64
}

// Target returns the scoring target derived from the request.
func (r SearchRequest) Target() Target {
	return Target{Calories: r.CaloriesTarget, ProteinMin: r.ProteinMin}
}

// GeoContext is the locale and coordinate pair sent alongside a prompt.
// Latitude and Longitude are nil for follow-up prompts that carry no location.
type GeoContext struct {
	Locale    string   `json:"locale"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
