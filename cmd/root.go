package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "better-photos",
	Short: "A companion for tagging and organizing an Apple Photos library",
	Long: `Better Photos drives the Apple Photos application through its automation
interface to tag, organize, and reconcile large photo selections. It serves
a local web UI for multi-item selection editing and ships CLI commands for
inspecting tags, albums, and people directly from the library database.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
