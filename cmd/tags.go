package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/robertcoopercode/better-photos/internal/config"
	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/robertcoopercode/better-photos/internal/state"
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List and inspect tags",
	Long: `List tags from the Photos library database. Deleted tags that still
linger in the index are hidden unless --hidden is given.`,
	RunE: runTagsList,
}

var tagsCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show per-tag photo and video counts",
	RunE:  runTagsCounts,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsCountsCmd)

	tagsCmd.PersistentFlags().Bool("hidden", false, "Include tags hidden after deletion")
	tagsCountsCmd.Flags().Bool("all", false, "Include tags with zero items")
	tagsCountsCmd.Flags().String("sort", "name", "Sort by: name, count, -name, -count (prefix with - for descending)")
}

func runTagsList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	includeHidden := mustGetBool(cmd, "hidden")

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("could not open state database: %w", err)
	}
	defer store.Close()

	tags, err := idx.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list tags: %w", err)
	}

	shown := 0
	for _, tag := range tags {
		if !includeHidden && store.IsSuppressed(tag) {
			continue
		}
		fmt.Println(tag)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(os.Stderr, "No tags found.")
	}
	return nil
}

func runTagsCounts(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	includeZero := mustGetBool(cmd, "all")
	includeHidden := mustGetBool(cmd, "hidden")
	sortBy := mustGetString(cmd, "sort")

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("could not open state database: %w", err)
	}
	defer store.Close()

	counts, err := idx.ListTagCounts(cmd.Context(), includeZero)
	if err != nil {
		return fmt.Errorf("could not list tag counts: %w", err)
	}

	if !includeHidden {
		visible := counts[:0]
		for _, tc := range counts {
			if !store.IsSuppressed(tc.Name) {
				visible = append(visible, tc)
			}
		}
		counts = visible
	}

	sortTagCounts(counts, sortBy)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tPHOTOS\tVIDEOS\tTOTAL")
	for _, tc := range counts {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", tc.Name, tc.Photos, tc.Videos, tc.Total())
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("could not write table: %w", err)
	}
	fmt.Printf("\n%d tags\n", len(counts))
	return nil
}

func sortTagCounts(counts []library.TagCount, sortBy string) {
	desc := false
	if len(sortBy) > 0 && sortBy[0] == '-' {
		desc = true
		sortBy = sortBy[1:]
	}
	less := func(i, j int) bool { return counts[i].Name < counts[j].Name }
	if sortBy == "count" {
		less = func(i, j int) bool {
			if counts[i].Total() != counts[j].Total() {
				return counts[i].Total() < counts[j].Total()
			}
			return counts[i].Name < counts[j].Name
		}
	}
	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.Slice(counts, less)
}
