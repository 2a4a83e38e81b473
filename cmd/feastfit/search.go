// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find restaurants that fit a calorie and protein target",
	Long: `Search asks the upstream business-search API for places near --location
that match --query, estimates each candidate's macros, and ranks them by
Perfect Fit Score.

Use --save to write the request, results, and snapshot to a YAML file that
refine and coach can reuse.`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("location", "", "place to search around (required)")
	f.Float64("calories", 0, "calorie target for the meal (required)")
	f.Float64("protein", 0, "minimum protein in grams (required)")
	f.String("query", "", "craving or mood, e.g. \"spicy noodles\" (required)")
	f.String("diet", "", "dietary preference, e.g. vegetarian")
	f.String("meal-type", "", "breakfast, lunch, dinner, or snack (default lunch)")
	f.Int("radius", 0, "search radius in meters")
	f.IntSlice("price", nil, "price levels 1-4, comma-separated")
	f.Bool("json", false, "output as JSON")
	f.String("save", "", "write the search to this YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	req, err := recommend.ValidateSearch(searchRequestFromFlags(cmd))
	if err != nil {
		return err
	}
	p := newPipeline(cfg, log)

	results, err := p.Search(context.Background(), cliClientID, req)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := recommend.WriteSearchFile(path, req, results, p.Now()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved search to %s\n", path)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return recommend.FormatJSON(results, os.Stdout)
	}
	recommend.FormatTable(results, os.Stdout)
	return nil
}

func searchRequestFromFlags(cmd *cobra.Command) types.SearchRequest {
	f := cmd.Flags()
	location, _ := f.GetString("location")
	calories, _ := f.GetFloat64("calories")
	protein, _ := f.GetFloat64("protein")
	query, _ := f.GetString("query")
	diet, _ := f.GetString("diet")
	mealType, _ := f.GetString("meal-type")
	radius, _ := f.GetInt("radius")
	price, _ := f.GetIntSlice("price")

	return types.SearchRequest{
		Location:       location,
		CaloriesTarget: calories,
		ProteinMin:     protein,
		Query:          query,
		Diet:           diet,
		MealType:       types.MealType(mealType),
		RadiusMeters:   radius,
		PriceLevels:    price,
	}
}
