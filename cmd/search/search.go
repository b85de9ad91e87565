// Package search implements the species autocomplete subcommand.
package search

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/taxonomy"
)

// Command creates the search subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the species catalog",
		Long:  "Search species by common or scientific name prefix or substring.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(settings, strings.Join(args, " "), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", viper.GetInt("taxonomy.searchlimit"), "Maximum number of results")
	return cmd
}

func runSearch(settings *conf.Settings, query string, limit int) error {
	catalog, err := taxonomy.Load(settings.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("loading taxonomy: %w", err)
	}

	results := catalog.Search(query, limit)
	if len(results) == 0 {
		fmt.Printf("no species match %q\n", query)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMON NAME\tSCIENTIFIC NAME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\n", r.Common, r.Scientific)
	}
	return w.Flush()
}
