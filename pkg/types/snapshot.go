// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchSnapshot is the compacted record of a search kept by the caller
// and handed back for coaching. It holds at most five restaurants with at
// most two dishes each.
type SearchSnapshot struct {
	Location       string               `json:"location" yaml:"location"`
	CaloriesTarget float64              `json:"caloriesTarget" yaml:"calories_target"`
	ProteinMin     float64              `json:"proteinMin" yaml:"protein_min"`
	Diet           string               `json:"diet,omitempty" yaml:"diet,omitempty"`
	Query          string               `json:"query" yaml:"query"`
	Timestamp      time.Time            `json:"timestamp" yaml:"timestamp"`
	Restaurants    []SnapshotRestaurant `json:"restaurants" yaml:"restaurants"`
}

// SnapshotRestaurant is one restaurant inside a SearchSnapshot.
type SnapshotRestaurant struct {
	Name     string         `json:"name" yaml:"name"`
	Rating   float64        `json:"rating" yaml:"rating"`
	FitScore int            `json:"fitScore" yaml:"fit_score"`
	FitLabel string         `json:"fitLabel" yaml:"fit_label"`
	Dishes   []SnapshotDish `json:"dishes" yaml:"dishes"`
}

// SnapshotDish is one dish inside a SnapshotRestaurant.
type SnapshotDish struct {
	Name              string  `json:"name" yaml:"name"`
	EstimatedCalories float64 `json:"estimatedCalories" yaml:"estimated_calories"`
	EstimatedProtein  float64 `json:"estimatedProtein" yaml:"estimated_protein"`
	Confidence        float64 `json:"confidence" yaml:"confidence"`
}
