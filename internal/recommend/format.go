// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/feastfit/internal/prompt"
	"github.com/pdiddy/feastfit/pkg/types"
)

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.RestaurantResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-32s  %-5s  %-13s  %-8s  %-6s  %-7s  %s\n",
		"Rank", "Restaurant", "Score", "Label", "Distance", "kcal", "Protein", "Breakdown (macro/dist/ai/meal)")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i, r := range results {
		var kcal, protein string
		if len(r.Dishes) > 0 {
			kcal = prompt.FormatNumber(r.Dishes[0].EstimatedCalories)
			protein = prompt.FormatNumber(r.Dishes[0].EstimatedProtein) + "g"
		}
		b := r.ScoreBreakdown
		fmt.Fprintf(w, "%-4d  %-32s  %-5d  %-13s  %-8s  %-6s  %-7s  %d/%d/%d/%d\n",
			i+1, truncate(r.Name, 32), r.FitScore, r.FitLabel, formatDistance(r.DistanceMeters),
			kcal, protein, b.MacroFitScore, b.DistanceScore, b.AIConfidenceScore, b.MealTypeScore)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.RestaurantResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatDistance(m *float64) string {
	if m == nil {
		return "?"
	}
	if *m < 1000 {
		return fmt.Sprintf("%.0fm", *m)
	}
	return fmt.Sprintf("%.1fkm", *m/1000)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
