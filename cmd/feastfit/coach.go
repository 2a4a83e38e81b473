// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/pkg/types"
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Get nutrition coaching for today",
	Long: `Coach sends --message to the upstream API together with optional
context: the snapshot from a saved search (--file) and today's meals for
--user from the meal log database.`,
	RunE: runCoach,
}

func init() {
	coachCmd.Flags().String("message", "", "question for the coach (required)")
	coachCmd.Flags().String("file", "", "search file from search --save")
	coachCmd.Flags().String("user", "", "user whose logged meals to include")
	coachCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(coachCmd)
}

func runCoach(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("message")
	path, _ := cmd.Flags().GetString("file")
	user, _ := cmd.Flags().GetString("user")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	p := newPipeline(cfg, log)
	req := types.CoachRequest{Message: message}

	if path != "" {
		sf, err := recommend.ReadSearchFile(path)
		if err != nil {
			return err
		}
		req.LastSearch = &sf.Snapshot
	}

	if user != "" {
		store, err := meallog.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		logs, err := store.ListByUserOn(context.Background(), user, p.Now())
		if err != nil {
			return err
		}
		req.Logs = logs
	}

	reply, err := p.Coach(context.Background(), cliClientID, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, reply)
	return nil
}
