package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/pacs-worklist-api/internal/worklist"
)

var preservedKeys []string

var queryCmd = &cobra.Command{
	Use:   "query [query-string]",
	Short: "Resolve a query string into filter state",
	Long: `Print the filter state a query string resolves to and its canonical form.
Keys are matched case-insensitively.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&preservedKeys, "preserve", []string{"configUrl"}, "Parameters carried through unchanged")
}

func runQuery(cmd *cobra.Command, args []string) error {
	raw := strings.TrimPrefix(args[0], "?")
	params, err := url.ParseQuery(raw)
	if err != nil {
		return fmt.Errorf("invalid query string: %w", err)
	}

	defaults := worklist.DefaultFilterState(resultsPerPage)
	state := worklist.Resolve(worklist.ParseRawQuery(raw), nil, defaults)
	preserved := worklist.PreservedParams(params, preservedKeys)

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return err
	}
	fmt.Fprintf(out, "canonical: %s\n", worklist.ToQueryString(state, defaults, preserved))
	fmt.Fprintf(out, "filtering: %t\n", worklist.IsFiltering(state, defaults))
	return nil
}
