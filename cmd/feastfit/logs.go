// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/pkg/types"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect and export the meal log",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's logged meals, newest first",
	RunE:  runLogsList,
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's logged meals to YAML or JSON",
	RunE:  runLogsExport,
}

func init() {
	logsListCmd.Flags().String("user", "", "user id (required)")
	logsListCmd.Flags().Int("limit", 0, "maximum meals to show (default store.max_results)")
	logsListCmd.MarkFlagRequired("user")

	logsExportCmd.Flags().String("user", "", "user id (required)")
	logsExportCmd.Flags().String("format", meallog.FormatYAML, "yaml or json")
	logsExportCmd.Flags().String("out", "", "output file (default stdout)")
	logsExportCmd.MarkFlagRequired("user")

	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsExportCmd)
	rootCmd.AddCommand(logsCmd)
}

func openStore() (*meallog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return meallog.Open(cfg.Store)
}

func runLogsList(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	logs, err := store.ListByUser(context.Background(), user, limit)
	if err != nil {
		return err
	}
	formatLogs(logs, os.Stdout)
	return nil
}

func formatLogs(logs []types.MealLog, w io.Writer) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No meals logged.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-9s  %-28s  %-28s  %5s  %7s  %s\n",
		"Logged", "Meal", "Restaurant", "Dish", "kcal", "Protein", "Fit")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for _, l := range logs {
		fmt.Fprintf(w, "%-20s  %-9s  %-28s  %-28s  %5.0f  %6.1fg  %d %s\n",
			l.CreatedAt.Format("2006-01-02 15:04:05"), l.MealType,
			clip(l.RestaurantName, 28), clip(l.DishName, 28),
			l.Calories, l.Protein, l.FitScore, l.FitLabel)
	}

	fmt.Fprintf(w, "\n%d meals\n", len(logs))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(context.Background(), user, format, w); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
	}
	return nil
}
