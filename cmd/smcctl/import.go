package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import keys and types from a YAML dictionary",
		Long: `The import command ingests a YAML key dictionary and saves the
resulting keys to NVRAM. Reserved and malformed entries are skipped.

Example:
  smcctl import keys.yaml

File format:
  types:
    TC0P: sp78
  keys:
    NATJ: {type: "ui8 ", value: "00"}
    RPlt: {type: "ch8*", text: "j43"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args)
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	printVerbose("Importing: %s\n", args[0])
	res, saved, err := svc.Import(cmd.Context(), args[0])
	if res.Keys == 0 && res.Types == 0 && err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	if err != nil {
		printVerbose("Skipped entries: %v\n", err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"file":  args[0],
			"keys":  res.Keys,
			"types": res.Types,
			"saved": saved,
		})
	}
	printInfo("Imported %d keys and %d types from %s (%d keys saved)\n", res.Keys, res.Types, args[0], saved)
	return nil
}
