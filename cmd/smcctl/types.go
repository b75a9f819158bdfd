package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smckit/smc/dict"
)

func init() {
	rootCmd.AddCommand(newTypesCmd())
}

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the built-in well-known key types",
		Long: `The types command prints the table of well-known key types applied to
keys created without an explicit type.

Example:
  smcctl types
  smcctl types --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes()
		},
	}
	return cmd
}

func runTypes() error {
	table := dict.DefaultTypes()
	if jsonOut {
		return printJSON(table)
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		printInfo("  %-4s  %s\n", name, table[name])
	}
	printInfo("\nTotal: %d types\n", len(names))
	return nil
}
