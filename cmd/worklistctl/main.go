package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	fixturePath    string
	studiesLimit   int
	resultsPerPage int
)

var rootCmd = &cobra.Command{
	Use:   "worklistctl",
	Short: "Inspect worklist filtering, sorting and paging offline",
	Long: `worklistctl runs the worklist engine against a study fixture so operators can
check how a query string is resolved, which window is fetched and which rows a page shows.

Fixtures are YAML or JSON documents with a top-level "studies" list.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&fixturePath, "fixture", "f", "", "Study fixture file (YAML or JSON)")
	rootCmd.PersistentFlags().IntVar(&studiesLimit, "limit", 101, "Studies fetched per window")
	rootCmd.PersistentFlags().IntVar(&resultsPerPage, "results-per-page", 25, "Default rows per page")

	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
