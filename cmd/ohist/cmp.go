package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/ohist"
)

// NewCmpCommand creates the cmp subcommand: compare two histories over a
// range. Exits 0 when equal and 1 when different.
func NewCmpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cmp <storage1> <storage2> [<tidrange>]",
		Short: "compare two database histories",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rangeArg(args, 2)
			if err != nil {
				return err
			}
			storA, err := openStorage(args[0])
			if err != nil {
				return err
			}
			defer storA.Close()
			storB, err := openStorage(args[1])
			if err != nil {
				return err
			}
			defer storB.Close()

			equal, err := ohist.CmpStorages(storA, storB, r, func(format string, args ...any) {
				fmt.Printf(format+"\n", args...)
			})
			if err != nil {
				return err
			}
			if !equal {
				os.Exit(1)
			}
			return nil
		},
	}
}
