package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/codec"
)

var (
	setType   string
	setText   bool
	setNumber bool
	setCreate bool
)

func init() {
	cmd := newSetCmd()
	cmd.Flags().StringVarP(&setType, "type", "t", "", "Key type (defaults to the existing or well-known type)")
	cmd.Flags().BoolVar(&setText, "text", false, "Treat value as text (ch8*)")
	cmd.Flags().BoolVar(&setNumber, "number", false, "Treat value as a number encoded per the key type")
	cmd.Flags().BoolVar(&setCreate, "create", false, "Create the key if it does not exist")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Write a key value",
		Long: `The set command writes an inline key value and saves it to NVRAM.
Values are hex bytes unless --text or --number is given.

Example:
  smcctl set NATJ 01
  smcctl set RPlt j43 --text --create --type "ch8*"
  smcctl set TC0P 41.5 --number --create`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args)
		},
	}
	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	if setText && setNumber {
		return fmt.Errorf("--text and --number are mutually exclusive")
	}
	name := args[0]

	svc, cleanup, err := openService(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	typ := setType
	existing, exists := svc.Store().Key(name)
	if typ == "" {
		if exists {
			typ = existing.Type()
		} else if t, ok := svc.Store().DefaultType(name); ok {
			typ = t
		}
	}

	value, err := encodeValue(typ, args[1])
	if err != nil {
		return err
	}

	if !exists {
		if !setCreate {
			return fmt.Errorf("key %s does not exist (use --create)", name)
		}
		info, st, err := svc.Commands().AddValue(cmd.Context(), name, typ, len(value), value)
		if err != nil {
			return fmt.Errorf("%s: %w", st, err)
		}
		printVerbose("Created key %s\n", info.Name)
	} else if st, err := svc.Commands().SetValue(cmd.Context(), name, value); err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}

	printInfo("%s = % x\n", name, value)
	return nil
}

func encodeValue(typ, raw string) ([]byte, error) {
	switch {
	case setText:
		return codec.EncodeString(raw)
	case setNumber:
		t, err := smc.NormalizeType(typ)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return codec.Encode(t, v)
	default:
		return codec.ParseHex(raw)
	}
}
