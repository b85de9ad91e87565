// Package rebuild implements the dex recomputation subcommand.
package rebuild

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/datastore"
	"github.com/tphakala/birddex/internal/dex"
)

// Command creates the rebuild subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute a user's dex from raw records",
		Long:  "Rebuild the life list from stored outings and observations, discarding the cached aggregate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(settings, user)
		},
	}

	cmd.Flags().StringVar(&user, "user", viper.GetString("user"), "User whose dex to rebuild")
	return cmd
}

func runRebuild(settings *conf.Settings, user string) error {
	if user == "" {
		user = "default"
	}

	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend configured")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	outings, err := store.GetOutings(user)
	if err != nil {
		return fmt.Errorf("loading outings: %w", err)
	}
	observations, err := store.GetObservations(user)
	if err != nil {
		return fmt.Errorf("loading observations: %w", err)
	}
	existing, err := store.GetDexEntries(user)
	if err != nil {
		return fmt.Errorf("loading dex: %w", err)
	}

	entries := dex.Rebuild(outings, observations, existing, time.Now().UTC())
	if err := store.ReplaceDexEntries(user, entries); err != nil {
		return fmt.Errorf("saving dex: %w", err)
	}

	fmt.Printf("rebuilt dex for %s: %d species from %d outings\n", user, len(entries), len(outings))
	return nil
}
