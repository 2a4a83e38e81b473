// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/feastfit/internal/score"
	"github.com/pdiddy/feastfit/pkg/types"
)

func TestSnapshot_Caps(t *testing.T) {
	req := types.SearchRequest{Location: "SF", CaloriesTarget: 600, ProteinMin: 35, Diet: "keto", Query: "steak"}
	local := time.Date(2026, 3, 10, 9, 0, 0, 0, time.FixedZone("PST", -8*3600))

	snap := Snapshot(req, restaurantsFixture(7, 4), local)

	assert.Equal(t, "SF", snap.Location)
	assert.Equal(t, "keto", snap.Diet)
	assert.Equal(t, time.UTC, snap.Timestamp.Location())
	assert.True(t, snap.Timestamp.Equal(local))
	require.Len(t, snap.Restaurants, 5)
	for _, r := range snap.Restaurants {
		assert.Len(t, r.Dishes, 2)
	}
	assert.Equal(t, "R1", snap.Restaurants[0].Name)
	assert.Equal(t, 99, snap.Restaurants[0].FitScore)
	assert.Equal(t, "R1-D2", snap.Restaurants[0].Dishes[1].Name)
	assert.Equal(t, float64(502), snap.Restaurants[0].Dishes[1].EstimatedCalories)
}

func TestSnapshot_EmptyResultsEncodeAsArray(t *testing.T) {
	snap := Snapshot(types.SearchRequest{Location: "SF"}, nil, fixedNow)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"restaurants":[]`)
}

func TestCompactSnapshot(t *testing.T) {
	snap := Snapshot(types.SearchRequest{}, restaurantsFixture(5, 3), fixedNow)
	got := compactSnapshot(snap.Restaurants)
	require.Len(t, got, 3)
	assert.Equal(t, compactRestaurant{
		Name:     "R2",
		FitScore: 98,
		Dishes: []compactDish{
			{Name: "R2-D1", Kcal: 501, Protein: 31},
			{Name: "R2-D2", Kcal: 502, Protein: 32},
		},
	}, got[1])
}

func TestCompactResults_DishlessRestaurant(t *testing.T) {
	got, err := compactJSON(compactResults([]types.RestaurantResult{{Name: "Bare", FitScore: 61}}))
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Bare","fitScore":61,"dishes":[]}]`, got)
}

func TestTodayLogs(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	logs := []types.MealLog{
		{DishName: "early", Calories: 300, Protein: 20, CreatedAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		// 2026-03-10 06:00 UTC expressed in a western offset.
		{DishName: "offset", Calories: 200, Protein: 10, CreatedAt: time.Date(2026, 3, 10, 1, 0, 0, 0, time.FixedZone("EST", -5*3600))},
		// 2026-03-11 02:00 UTC, still the 10th locally.
		{DishName: "tomorrow", Calories: 900, Protein: 90, CreatedAt: time.Date(2026, 3, 10, 21, 0, 0, 0, time.FixedZone("EST", -5*3600))},
		{DishName: "undated", Calories: 100, Protein: 5},
	}

	kept, totals := TodayLogs(logs, now)
	require.Len(t, kept, 2)
	assert.Equal(t, "early", kept[0].DishName)
	assert.Equal(t, "offset", kept[1].DishName)
	assert.Equal(t, DayTotals{Count: 2, Calories: 500, Protein: 30}, totals)
}

func TestSearchFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	req := saladRequest()
	req.MealType = types.MealLunch
	results := Fallback(score.Default(), req)

	require.NoError(t, WriteSearchFile(path, req, results, fixedNow))

	sf, err := ReadSearchFile(path)
	require.NoError(t, err)
	assert.Equal(t, req, sf.Request)
	require.Len(t, sf.Results, 1)
	assert.Equal(t, results[0].FitScore, sf.Results[0].FitScore)
	assert.Equal(t, results[0].ScoreBreakdown, sf.Results[0].ScoreBreakdown)
	require.NotNil(t, sf.Results[0].DistanceMeters)
	assert.Equal(t, 800.0, *sf.Results[0].DistanceMeters)
	assert.True(t, sf.Summary.Fallback)
	assert.Equal(t, 1, sf.Summary.Total)
	assert.True(t, sf.Snapshot.Timestamp.Equal(fixedNow))
	require.Len(t, sf.Snapshot.Restaurants, 1)

	rr := sf.RefineRequest("lower carb")
	assert.Equal(t, "lower carb", rr.RefineMessage)
	assert.Equal(t, "SF", rr.Location)
	assert.Len(t, rr.Restaurants, 1)
}

func TestReadSearchFile_Missing(t *testing.T) {
	_, err := ReadSearchFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Fallback(score.Default(), saladRequest()), &buf)
	out := buf.String()
	assert.Contains(t, out, "FeastFit Demo Kitchen")
	assert.Contains(t, out, "Great fit")
	assert.Contains(t, out, "800m")
	assert.Contains(t, out, "100/100/30/50")
	assert.Contains(t, out, "1 results")

	buf.Reset()
	FormatTable(nil, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Fallback(score.Default(), saladRequest()), &buf))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "fallback-mock-1", decoded[0]["id"])
	assert.Equal(t, float64(76), decoded[0]["fitScore"])
	breakdown, ok := decoded[0]["scoreBreakdown"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(100), breakdown["macroFitScore"])
	assert.NotContains(t, breakdown, "Score")
}

func TestFormatDistance(t *testing.T) {
	km := 3456.0
	assert.Equal(t, "?", formatDistance(nil))
	assert.Equal(t, "3.5km", formatDistance(&km))
}
