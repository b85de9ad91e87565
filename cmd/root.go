package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	checklistcmd "github.com/tphakala/birddex/cmd/checklist"
	"github.com/tphakala/birddex/cmd/rebuild"
	"github.com/tphakala/birddex/cmd/search"
	"github.com/tphakala/birddex/cmd/serve"
	"github.com/tphakala/birddex/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "birddex",
		Short: "Birddex life-list CLI",
		Long:  "Birddex keeps a per-user life list built from confirmed field observations.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		serve.Command(settings),
		search.Command(settings),
		rebuild.Command(settings),
		checklistcmd.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags configures the global flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Taxonomy.Path, "taxonomy", viper.GetString("taxonomy.path"), "Path to a taxonomy CSV, empty uses the embedded dataset")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
