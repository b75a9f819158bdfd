package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newKeysCmd())
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List every key with its current value",
		Long: `The keys command lists the keys of the store in registration order,
starting with the #KEY and FNum counters.

Example:
  smcctl keys
  smcctl keys --config smckit.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(cmd)
		},
	}
	return cmd
}

func runKeys(cmd *cobra.Command) error {
	svc, cleanup, err := openService(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	infos, _, err := svc.Commands().GetAll(cmd.Context())
	if err != nil {
		printVerbose("Some providers failed: %v\n", err)
	}

	if jsonOut {
		views := make([]keyView, 0, len(infos))
		for _, info := range infos {
			views = append(views, viewOf(info))
		}
		return printJSON(map[string]interface{}{
			"keys":  views,
			"count": len(views),
		})
	}

	for _, info := range infos {
		printInfo("  %s\n", formatKey(info))
	}
	printInfo("\nTotal: %d keys\n", len(infos))
	return nil
}
