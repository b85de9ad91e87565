// Package checklist implements the checklist CSV import subcommand.
package checklist

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birddex/internal/checklist"
	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/datastore"
	"github.com/tphakala/birddex/internal/dex"
	"github.com/tphakala/birddex/internal/taxonomy"
)

// Command creates the checklist import subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		user      string
		start     string
		end       string
		location  string
		notes     string
		confirmed bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a checklist CSV as an outing",
		Long:  "Import a field checklist as a new outing with its observations, canonicalizing species names against the catalog.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := checklist.Options{
				UserID:       user,
				LocationName: location,
				Notes:        notes,
				Confirmed:    confirmed,
			}

			var err error
			if opts.StartTime, err = parseTimeFlag(start); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if opts.EndTime, err = parseTimeFlag(end); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			if opts.StartTime.IsZero() {
				opts.StartTime = time.Now().UTC()
			}
			return runImport(settings, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&user, "user", viper.GetString("user"), "User to import the checklist for")
	cmd.Flags().StringVar(&start, "start", "", "Outing start time (RFC3339), defaults to now")
	cmd.Flags().StringVar(&end, "end", "", "Outing end time (RFC3339), defaults to the start time")
	cmd.Flags().StringVar(&location, "location", "", "Outing location name")
	cmd.Flags().StringVar(&notes, "notes", "", "Outing notes")
	cmd.Flags().BoolVar(&confirmed, "confirmed", false, "Mark all imported observations confirmed and update the dex")
	return cmd
}

func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func runImport(settings *conf.Settings, path string, opts checklist.Options) error {
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend configured")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	catalog, err := taxonomy.Load(settings.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("loading taxonomy: %w", err)
	}
	resolver := taxonomy.NewResolverWithThreshold(catalog, settings.Taxonomy.FuzzyMinRatio)

	outing, observations, err := checklist.ImportFile(store, resolver, path, opts)
	if err != nil {
		return fmt.Errorf("importing checklist: %w", err)
	}
	fmt.Printf("imported outing %s with %d observations\n", outing.ID, len(observations))

	// Confirmed observations change the life list, so fold them in now.
	if opts.Confirmed {
		entries, err := rebuildDex(store, outing.UserID)
		if err != nil {
			return fmt.Errorf("rebuilding dex: %w", err)
		}
		fmt.Printf("dex now lists %d species\n", len(entries))
	}
	return nil
}

func rebuildDex(store datastore.Interface, user string) ([]dex.Entry, error) {
	outings, err := store.GetOutings(user)
	if err != nil {
		return nil, err
	}
	observations, err := store.GetObservations(user)
	if err != nil {
		return nil, err
	}
	existing, err := store.GetDexEntries(user)
	if err != nil {
		return nil, err
	}

	entries := dex.Rebuild(outings, observations, existing, time.Now().UTC())
	if err := store.ReplaceDexEntries(user, entries); err != nil {
		return nil, err
	}
	return entries, nil
}
