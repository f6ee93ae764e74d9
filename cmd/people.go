package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/robertcoopercode/better-photos/internal/config"
	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List people recognized in the library",
	RunE:  runPeopleList,
}

var peopleNoFacesCmd = &cobra.Command{
	Use:   "no-faces",
	Short: "List items without any detected faces",
	RunE:  runPeopleNoFaces,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleNoFacesCmd)

	peopleNoFacesCmd.Flags().Int("limit", 50, "Maximum number of item IDs to print (0 for all)")
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()

	people, err := idx.ListPeople(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list people: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFACES\tID")
	for _, p := range people {
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.FaceCount, p.ID)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("could not write table: %w", err)
	}
	fmt.Printf("\n%d people\n", len(people))
	return nil
}

func runPeopleNoFaces(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	limit := mustGetInt(cmd, "limit")

	idx := library.Open(cfg.Library.DatabasePath)
	defer idx.Close()

	items, total, err := idx.ItemsWithoutFaces(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list items without faces: %w", err)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for _, id := range items {
		fmt.Println(id)
	}
	fmt.Printf("\n%d items without faces (showing %d)\n", total, len(items))
	return nil
}
