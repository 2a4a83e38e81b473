// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/feastfit/internal/recommend"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Ask a follow-up question about a saved search",
	Long: `Refine reads a search file written by "search --save" and sends the
original request, a compact view of its results, and --message to the
upstream API. The reply is printed as plain text.`,
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().String("file", "", "search file from search --save (required)")
	refineCmd.Flags().String("message", "", "follow-up request, e.g. \"something lighter\" (required)")
	refineCmd.MarkFlagRequired("file")
	refineCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	message, _ := cmd.Flags().GetString("message")

	sf, err := recommend.ReadSearchFile(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	reply, err := newPipeline(cfg, log).Refine(context.Background(), cliClientID, sf.RefineRequest(message))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, reply)
	return nil
}
