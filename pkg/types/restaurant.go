// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawBusiness is one candidate venue read defensively from the upstream
// payload. Any field may be empty; Distance is nil when the upstream did not
// report a numeric distance.
type RawBusiness struct {
	ID             string
	Name           string
	Rating         float64
	Price          string
	Distance       *float64
	URL            string
	ImageURL       string
	Address1       string
	City           string
	SummaryShort   string
	SummaryMedium  string
	ContextSummary string
}

// DishEstimate is a suggested dish with macros mined from upstream prose.
type DishEstimate struct {
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	EstimatedCalories float64  `json:"estimatedCalories" yaml:"estimated_calories"`
	EstimatedProtein  float64  `json:"estimatedProtein" yaml:"estimated_protein"`
	EstimatedCarbs    *float64 `json:"estimatedCarbs,omitempty" yaml:"estimated_carbs,omitempty"`
	EstimatedFat      *float64 `json:"estimatedFat,omitempty" yaml:"estimated_fat,omitempty"`

	// Confidence is a value between 0.0 and 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ScoreBreakdown is the Perfect Fit Score with each weighted factor exposed
// as an integer in [0,100].
type ScoreBreakdown struct {
	MacroFitScore     int `json:"macroFitScore" yaml:"macro_fit_score"`
	DistanceScore     int `json:"distanceScore" yaml:"distance_score"`
	AIConfidenceScore int `json:"aiConfidenceScore" yaml:"ai_confidence_score"`
	MealTypeScore     int `json:"mealTypeScore" yaml:"meal_type_score"`

	Score int    `json:"-" yaml:"score"`
	Label string `json:"-" yaml:"label"`
}

// RestaurantResult is a scored candidate returned from a search.
type RestaurantResult struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Rating         float64        `json:"rating" yaml:"rating"`
	Price          string         `json:"price,omitempty" yaml:"price,omitempty"`
	DistanceMeters *float64       `json:"distanceMeters,omitempty" yaml:"distance_meters,omitempty"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Address        string         `json:"address,omitempty" yaml:"address,omitempty"`
	Dishes         []DishEstimate `json:"dishes" yaml:"dishes"`
	FitScore       int            `json:"fitScore" yaml:"fit_score"`
	FitLabel       string         `json:"fitLabel" yaml:"fit_label"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown" yaml:"score_breakdown"`
	Reason         string         `json:"reason" yaml:"reason"`
}
