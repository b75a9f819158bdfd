package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc/command"
)

var getIndex int

func init() {
	cmd := newGetCmd()
	cmd.Flags().IntVar(&getIndex, "index", -1, "Get the key at this registration index instead of by name")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Get a single key",
		Long: `The get command shows one key, looked up by name or by index.
Names are matched case-insensitively and may be shorter than 4 symbols.

Example:
  smcctl get NATJ
  smcctl get "#KEY" --json
  smcctl get --index 0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args)
		},
	}
	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (getIndex >= 0) {
		return fmt.Errorf("specify either a key name or --index")
	}

	svc, cleanup, err := openService(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		info types.KeyInfo
		st   command.Status
	)
	if getIndex >= 0 {
		info, st, err = svc.Commands().GetByIndex(cmd.Context(), getIndex)
	} else {
		info, st, err = svc.Commands().GetByName(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}

	if jsonOut {
		return printJSON(viewOf(info))
	}
	printInfo("%s\n", formatKey(info))
	return nil
}
