package cmd

import (
	"fmt"
	"strings"

	"github.com/robertcoopercode/better-photos/internal/config"
	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/robertcoopercode/better-photos/internal/state"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Reconcile hidden tags against the library database",
	Long: `Walk every tag in the Photos library database and reconcile it with the
local hidden-tag list. Tags hidden after a delete or rename that have since
reappeared on items are made visible again. With --prune, hidden entries for
tags that no longer exist anywhere in the library are dropped.`,
	RunE: runResync,
}

func init() {
	rootCmd.AddCommand(resyncCmd)

	resyncCmd.Flags().Bool("prune", false, "Drop hidden entries for tags absent from the library")
}

func runResync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	prune := mustGetBool(cmd, "prune")

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()
	if !idx.Available() {
		return fmt.Errorf("photos library database not readable at %s", cfg.Library.DatabasePath)
	}

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("could not open state database: %w", err)
	}
	defer store.Close()

	counts, err := idx.ListTagCounts(cmd.Context(), true)
	if err != nil {
		return fmt.Errorf("could not list tag counts: %w", err)
	}

	fmt.Printf("Reconciling %d tags\n\n", len(counts))
	bar := progressbar.NewOptions(len(counts),
		progressbar.OptionSetDescription("Reconciling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tags"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	seen := make(map[string]struct{}, len(counts))
	var restored, hidden int
	for _, tc := range counts {
		seen[strings.ToLower(tc.Name)] = struct{}{}
		if store.IsSuppressed(tc.Name) {
			if tc.Total() > 0 {
				if err := store.Unsuppress(tc.Name); err != nil {
					return fmt.Errorf("could not restore tag %q: %w", tc.Name, err)
				}
				restored++
			} else {
				hidden++
			}
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	var pruned int
	if prune {
		for tag := range store.Suppressed() {
			if _, ok := seen[tag]; ok {
				continue
			}
			if err := store.Unsuppress(tag); err != nil {
				return fmt.Errorf("could not prune hidden entry %q: %w", tag, err)
			}
			pruned++
		}
	}

	fmt.Printf("\nRestored %d tags that reappeared on items\n", restored)
	fmt.Printf("Kept %d hidden tags with no items\n", hidden)
	if prune {
		fmt.Printf("Pruned %d hidden entries for tags gone from the library\n", pruned)
	}
	return nil
}
