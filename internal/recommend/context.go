// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"encoding/json"
	"time"

	"github.com/pdiddy/feastfit/pkg/types"
)

// Size caps for compacted context. Snapshots are what callers keep;
// prompt context is what is embedded in a follow-up prompt.
const (
	snapshotRestaurants = 5
	snapshotDishes      = 2
	promptRestaurants   = 3
	promptDishes        = 2
)

const dateFmt = "2006-01-02"

// Snapshot compacts a finished search into the record a caller keeps for
// later coaching.
func Snapshot(req types.SearchRequest, results []types.RestaurantResult, now time.Time) types.SearchSnapshot {
	snap := types.SearchSnapshot{
		Location:       req.Location,
		CaloriesTarget: req.CaloriesTarget,
		ProteinMin:     req.ProteinMin,
		Diet:           req.Diet,
		Query:          req.Query,
		Timestamp:      now.UTC(),
		Restaurants:    make([]types.SnapshotRestaurant, 0, min(len(results), snapshotRestaurants)),
	}
	for _, r := range results[:min(len(results), snapshotRestaurants)] {
		sr := types.SnapshotRestaurant{
			Name:     r.Name,
			Rating:   r.Rating,
			FitScore: r.FitScore,
			FitLabel: r.FitLabel,
			Dishes:   make([]types.SnapshotDish, 0, min(len(r.Dishes), snapshotDishes)),
		}
		for _, d := range r.Dishes[:min(len(r.Dishes), snapshotDishes)] {
			sr.Dishes = append(sr.Dishes, types.SnapshotDish{
				Name:              d.Name,
				EstimatedCalories: d.EstimatedCalories,
				EstimatedProtein:  d.EstimatedProtein,
				Confidence:        d.Confidence,
			})
		}
		snap.Restaurants = append(snap.Restaurants, sr)
	}
	return snap
}

// compactRestaurant is the prompt-embedded form of a restaurant.
type compactRestaurant struct {
	Name     string        `json:"name"`
	FitScore int           `json:"fitScore"`
	Dishes   []compactDish `json:"dishes"`
}

type compactDish struct {
	Name    string  `json:"name"`
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
}

// compactResults keeps at most three restaurants with two dishes each.
func compactResults(results []types.RestaurantResult) []compactRestaurant {
	out := make([]compactRestaurant, 0, promptRestaurants)
	for _, r := range results[:min(len(results), promptRestaurants)] {
		cr := compactRestaurant{Name: r.Name, FitScore: r.FitScore, Dishes: []compactDish{}}
		for _, d := range r.Dishes[:min(len(r.Dishes), promptDishes)] {
			cr.Dishes = append(cr.Dishes, compactDish{Name: d.Name, Kcal: d.EstimatedCalories, Protein: d.EstimatedProtein})
		}
		out = append(out, cr)
	}
	return out
}

// compactSnapshot applies the same caps to a caller-held snapshot.
func compactSnapshot(restaurants []types.SnapshotRestaurant) []compactRestaurant {
	out := make([]compactRestaurant, 0, promptRestaurants)
	for _, r := range restaurants[:min(len(restaurants), promptRestaurants)] {
		cr := compactRestaurant{Name: r.Name, FitScore: r.FitScore, Dishes: []compactDish{}}
		for _, d := range r.Dishes[:min(len(r.Dishes), promptDishes)] {
			cr.Dishes = append(cr.Dishes, compactDish{Name: d.Name, Kcal: d.EstimatedCalories, Protein: d.EstimatedProtein})
		}
		out = append(out, cr)
	}
	return out
}

func compactJSON(rs []compactRestaurant) (string, error) {
	data, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DayTotals summarises the meals logged on one UTC day.
type DayTotals struct {
	Count    int
	Calories float64
	Protein  float64
}

// TodayLogs returns the logs whose UTC date matches now's UTC date, with
// their totals.
func TodayLogs(logs []types.MealLog, now time.Time) ([]types.MealLog, DayTotals) {
	today := now.UTC().Format(dateFmt)
	var kept []types.MealLog
	var totals DayTotals
	for _, l := range logs {
		if l.CreatedAt.UTC().Format(dateFmt) != today {
			continue
		}
		kept = append(kept, l)
		totals.Count++
		totals.Calories += l.Calories
		totals.Protein += l.Protein
	}
	return kept, totals
}
