package main

import (
	"fmt"
	"os"

	"github.com/tphakala/birddex/cmd"
	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
