package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agendia/cmd/migrate"
	"agendia/cmd/seed"
	"agendia/cmd/serve"
)

func main() {
	root := &cobra.Command{
		Use:   "agendia",
		Short: "AgendIA multi-tenant scheduling API",
	}

	root.AddCommand(serve.NewServeCommand())
	root.AddCommand(migrate.NewMigrateCommand())
	root.AddCommand(seed.NewSeedCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
