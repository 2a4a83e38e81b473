// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Log sources recorded on a MealLog.
const (
	SourceAccount    = "account"
	SourceGuestLocal = "guest-local"
)

// MealLog is one logged meal. Guest sessions keep these on the client and
// send them back for coaching; signed-in users persist them in the meal log
// store.
type MealLog struct {
	ID                string    `json:"id" yaml:"id"`
	UserID            string    `json:"userId,omitempty" yaml:"user_id,omitempty"`
	RestaurantID      string    `json:"restaurantId" yaml:"restaurant_id"`
	RestaurantName    string    `json:"restaurantName" yaml:"restaurant_name"`
	RestaurantURL     string    `json:"restaurantUrl,omitempty" yaml:"restaurant_url,omitempty"`
	RestaurantAddress string    `json:"restaurantAddress,omitempty" yaml:"restaurant_address,omitempty"`
	FitScore          int       `json:"fitScore" yaml:"fit_score"`
	FitLabel          string    `json:"fitLabel" yaml:"fit_label"`
	DishName          string    `json:"dishName" yaml:"dish_name"`
	Calories          float64   `json:"calories" yaml:"calories"`
	Protein           float64   `json:"protein" yaml:"protein"`
	Carbs             *float64  `json:"carbs,omitempty" yaml:"carbs,omitempty"`
	Fat               *float64  `json:"fat,omitempty" yaml:"fat,omitempty"`
	MealType          MealType  `json:"mealType" yaml:"meal_type"`
	LocationText      string    `json:"locationText,omitempty" yaml:"location_text,omitempty"`
	Source            string    `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt         time.Time `json:"createdAt" yaml:"created_at"`
}
