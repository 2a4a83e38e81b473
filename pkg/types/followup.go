// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RefineRequest asks for a re-explanation of a prior result set under a
// new free-text constraint.
type RefineRequest struct {
	Location       string             `json:"location" yaml:"location"`
	CaloriesTarget float64            `json:"caloriesTarget" yaml:"calories_target"`
	ProteinMin     float64            `json:"proteinMin" yaml:"protein_min"`
	Diet           string             `json:"diet,omitempty" yaml:"diet,omitempty"`
	Query          string             `json:"query" yaml:"query"`
	RefineMessage  string             `json:"refineMessage" yaml:"refine_message"`
	Restaurants    []RestaurantResult `json:"restaurants" yaml:"restaurants"`
}

// CoachRequest is a coaching question with the caller's prior state.
// LastSearch is nil when the caller has no recent search. Logs may span
// several days; only today's entries are used.
type CoachRequest struct {
	Message    string
	LastSearch *SearchSnapshot
	Logs       []MealLog
}
