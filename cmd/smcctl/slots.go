package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smckit/smc/slots"
)

var slotsSensors bool

func init() {
	cmd := newSlotsCmd()
	cmd.Flags().BoolVar(&slotsSensors, "sensors", false, "Register the configured synthetic sensors first")
	rootCmd.AddCommand(cmd)
}

func newSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show fan and GPU slot occupancy",
		Long: `The slots command shows which of the 16 fan and 16 GPU slots are taken.
Slots are claimed by sensors at runtime; use --sensors to register the
sensors declared in the configuration before reporting.

Example:
  smcctl slots --sensors --config smckit.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(cmd)
		},
	}
	return cmd
}

func runSlots(cmd *cobra.Command) error {
	svc, cleanup, err := openService(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	if slotsSensors {
		if err := svc.StartSensors(svc.Config().Sensors); err != nil {
			printVerbose("Some sensors were not registered: %v\n", err)
		}
	}

	fans, gpus := svc.Store().FanSlots(), svc.Store().GPUSlots()
	fnum, _, err := svc.Commands().GetByName(cmd.Context(), "FNum")
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"fan":  occupied(fans),
			"gpu":  occupied(gpus),
			"fnum": fnum.Value[0],
		})
	}
	printInfo("fan  %s  FNum=%d\n", renderMask(fans), fnum.Value[0])
	printInfo("gpu  %s\n", renderMask(gpus))
	return nil
}

func occupied(mask uint16) []int {
	out := []int{}
	for i := 0; i < slots.Capacity; i++ {
		if mask&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// renderMask draws slots 0..15 left to right, '#' for taken.
func renderMask(mask uint16) string {
	var b strings.Builder
	for i := 0; i < slots.Capacity; i++ {
		if mask&(1<<i) != 0 {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
	}
	fmt.Fprintf(&b, "  (%d taken)", len(occupied(mask)))
	return b.String()
}
